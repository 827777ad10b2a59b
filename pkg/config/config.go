package config

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"stowaway/pkg/client"
	kafka_config "stowaway/pkg/kafka/config"
	"stowaway/pkg/logger"
)

var (
	mongoURIRegex      = regexp.MustCompile(`^mongodb(\+srv)?://`)
	mongoCredentialRex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	zipRegex           = regexp.MustCompile(`^\d{5}$`)
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DefaultTimeZone    string
	InactiveUnitPolicy InactiveUnitPolicy
	UnitDeletePolicy   UnitDeletePolicy

	LockTTL           time.Duration
	LockWaitTimeout   time.Duration
	LockRetryInterval time.Duration

	JWTSecret    string
	JWTIssuer    string
	AdminRole    string
	AdminUserIDs []string

	CORSAllowedOrigins []string

	USPSUserID  string
	USPSBaseURL string
	USPSFromZip string
	USPSTimeout time.Duration

	SeedUnits bool

	Kafka *kafka_config.Config

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := FromEnv(serviceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv reads the configuration without validating it.
func FromEnv(serviceName string) *Config {
	return &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		DefaultTimeZone:    getEnvStr(EnvDefaultTimeZone, DefaultTimeZone),
		InactiveUnitPolicy: InactiveUnitPolicy(getEnvStr(EnvInactiveUnitPolicy, string(DefaultInactiveUnitPolicy))),
		UnitDeletePolicy:   UnitDeletePolicy(getEnvStr(EnvUnitDeletePolicy, string(DefaultUnitDeletePolicy))),

		LockTTL:           getEnvDuration(EnvLockTTL, DefaultLockTTL),
		LockWaitTimeout:   getEnvDuration(EnvLockWaitTimeout, DefaultLockWaitTimeout),
		LockRetryInterval: getEnvDuration(EnvLockRetryInterval, DefaultLockRetryInterval),

		JWTSecret:    getEnvStr(EnvJWTSecret, ""),
		JWTIssuer:    getEnvStr(EnvJWTIssuer, DefaultJWTIssuer),
		AdminRole:    getEnvStr(EnvAdminRole, DefaultAdminRole),
		AdminUserIDs: getEnvList(EnvAdminUserIDs, ""),

		CORSAllowedOrigins: getEnvList(EnvCORSAllowedOrigins, DefaultCORSAllowedOrigins),

		USPSUserID:  getEnvStr(EnvUSPSUserID, ""),
		USPSBaseURL: getEnvStr(EnvUSPSBaseURL, DefaultUSPSBaseURL),
		USPSFromZip: getEnvStr(EnvUSPSFromZip, DefaultUSPSFromZip),
		USPSTimeout: getEnvDuration(EnvUSPSTimeout, DefaultUSPSTimeout),

		SeedUnits: getEnvBool(EnvSeedUnits, DefaultSeedUnits),

		Kafka: kafka_config.FromEnv(),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.INFO),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// Location resolves DefaultTimeZone. Validate guarantees it loads.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.DefaultTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positive := map[string]time.Duration{
		"MongoConnTimeout":  cfg.MongoConnTimeout,
		"RateLimitWindow":   cfg.RateLimitWindow,
		"RequestTimeout":    cfg.RequestTimeout,
		"IdempotencyTTL":    cfg.IdempotencyTTL,
		"ReadTimeout":       cfg.ReadTimeout,
		"WriteTimeout":      cfg.WriteTimeout,
		"IdleTimeout":       cfg.IdleTimeout,
		"ShutdownTimeout":   cfg.ShutdownTimeout,
		"LockTTL":           cfg.LockTTL,
		"LockWaitTimeout":   cfg.LockWaitTimeout,
		"LockRetryInterval": cfg.LockRetryInterval,
		"USPSTimeout":       cfg.USPSTimeout,
	}
	for _, name := range sortedKeys(positive) {
		if positive[name] <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, positive[name]))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("DefaultTimeZone must be an IANA time zone, got: %s", cfg.DefaultTimeZone))
	}

	switch cfg.InactiveUnitPolicy {
	case InactiveUnitAllow, InactiveUnitAdminOnly, InactiveUnitDeny:
	default:
		errors = append(errors, fmt.Sprintf("InactiveUnitPolicy must be one of [allow, admin_only, deny], got: %s", cfg.InactiveUnitPolicy))
	}
	switch cfg.UnitDeletePolicy {
	case UnitDeleteCascade, UnitDeleteRestrict:
	default:
		errors = append(errors, fmt.Sprintf("UnitDeletePolicy must be one of [cascade, restrict], got: %s", cfg.UnitDeletePolicy))
	}

	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32 {
		errors = append(errors, "JWTSecret must be at least 32 characters")
	}
	if cfg.AdminRole == "" {
		errors = append(errors, "AdminRole cannot be empty")
	}

	if cfg.USPSBaseURL == "" || !strings.HasPrefix(cfg.USPSBaseURL, "http") {
		errors = append(errors, fmt.Sprintf("USPSBaseURL must be an http(s) URL, got: %s", cfg.USPSBaseURL))
	}
	if !zipRegex.MatchString(cfg.USPSFromZip) {
		errors = append(errors, fmt.Sprintf("USPSFromZip must be a 5 digit ZIP code, got: %s", cfg.USPSFromZip))
	}

	if cfg.Kafka != nil {
		if err := cfg.Kafka.Validate(); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"default_time_zone", cfg.DefaultTimeZone,
		"inactive_unit_policy", cfg.InactiveUnitPolicy,
		"unit_delete_policy", cfg.UnitDeletePolicy,
		"lock_ttl", cfg.LockTTL,
		"lock_wait_timeout", cfg.LockWaitTimeout,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_issuer", cfg.JWTIssuer,
		"admin_role", cfg.AdminRole,
		"admin_user_ids", len(cfg.AdminUserIDs),
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"usps_user_id_set", cfg.USPSUserID != "",
		"usps_base_url", cfg.USPSBaseURL,
		"usps_from_zip", cfg.USPSFromZip,
		"usps_timeout", cfg.USPSTimeout,
		"seed_units", cfg.SeedUnits,
		"kafka_enabled", cfg.Kafka.Enabled(),
		"kafka_reservations_topic", cfg.Kafka.ReservationsTopic,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func redactMongoURI(uri string) string {
	return mongoCredentialRex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnvStr(key, fallback)
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func sortedKeys(m map[string]time.Duration) []string {
	return slices.Sorted(maps.Keys(m))
}
