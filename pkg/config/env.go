package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultTimeZone    = "DEFAULT_TIME_ZONE"
	EnvInactiveUnitPolicy = "INACTIVE_UNIT_POLICY"
	EnvUnitDeletePolicy   = "UNIT_DELETE_POLICY"

	EnvLockTTL           = "LOCK_TTL"
	EnvLockWaitTimeout   = "LOCK_WAIT_TIMEOUT"
	EnvLockRetryInterval = "LOCK_RETRY_INTERVAL"

	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTIssuer    = "JWT_ISSUER"
	EnvAdminRole    = "ADMIN_ROLE"
	EnvAdminUserIDs = "ADMIN_USER_IDS"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"

	EnvUSPSUserID  = "USPS_USER_ID"
	EnvUSPSBaseURL = "USPS_BASE_URL"
	EnvUSPSFromZip = "USPS_FROM_ZIP"
	EnvUSPSTimeout = "USPS_TIMEOUT"

	EnvSeedUnits = "SEED_UNITS"
)
