package config

import "time"

type InactiveUnitPolicy string

const (
	InactiveUnitAllow     InactiveUnitPolicy = "allow"
	InactiveUnitAdminOnly InactiveUnitPolicy = "admin_only"
	InactiveUnitDeny      InactiveUnitPolicy = "deny"
)

type UnitDeletePolicy string

const (
	UnitDeleteCascade  UnitDeletePolicy = "cascade"
	UnitDeleteRestrict UnitDeletePolicy = "restrict"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "stowaway"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTimeZone           = "UTC"
	DefaultInactiveUnitPolicy = InactiveUnitAllow
	DefaultUnitDeletePolicy   = UnitDeleteCascade

	DefaultLockTTL           = 10 * time.Second
	DefaultLockWaitTimeout   = 3 * time.Second
	DefaultLockRetryInterval = 50 * time.Millisecond

	DefaultJWTIssuer = ""
	DefaultAdminRole = "admin"

	DefaultCORSAllowedOrigins = "*"

	DefaultUSPSBaseURL = "https://secure.shippingapis.com/ShippingAPI.dll"
	DefaultUSPSFromZip = "00000"
	DefaultUSPSTimeout = 10 * time.Second

	DefaultSeedUnits = false
)
