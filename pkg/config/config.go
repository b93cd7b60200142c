package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App            AppConfig
	Store          StoreConfig
	DB             DBConfig
	Mongo          MongoConfig
	Redis          RedisConfig
	Password       PasswordConfig
	PasswordPolicy PasswordPolicyConfig
	AuthRateLimit  AuthRateLimitConfig
	FeatureFlags   FeatureFlagsConfig
	GCP            GCPConfig
	PubSub         PubSubConfig
	Notify         NotifyConfig
	SMTP           SMTPConfig
	JWT            JWTConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings each selected driver depends on.
func (c *Config) Validate() error {
	switch c.Store.DriverName() {
	case StoreDriverMongo:
		if strings.TrimSpace(c.Mongo.URI) == "" {
			return fmt.Errorf("%s is required when store driver is %s", EnvMongoURI, StoreDriverMongo)
		}
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DB.DSN) == "" {
			return fmt.Errorf("%s is required when store driver is %s", EnvDBDSN, StoreDriverPostgres)
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(c.DB.SQLitePath) == "" {
			return fmt.Errorf("%s is required when store driver is %s", EnvDBSQLitePath, StoreDriverSQLite)
		}
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}

	switch c.Notify.DriverName() {
	case NotifyDriverLog:
	case NotifyDriverSMTP:
		if strings.TrimSpace(c.SMTP.Host) == "" || strings.TrimSpace(c.SMTP.From) == "" {
			return fmt.Errorf("%s and %s are required when notify driver is %s", EnvSMTPHost, EnvSMTPFrom, NotifyDriverSMTP)
		}
	case NotifyDriverPubSub:
		if strings.TrimSpace(c.GCP.ProjectID) == "" || strings.TrimSpace(c.PubSub.NotificationTopic) == "" {
			return fmt.Errorf("%s and %s are required when notify driver is %s", EnvGCPProjectID, EnvPubSubNotificationTopic, NotifyDriverPubSub)
		}
	default:
		return fmt.Errorf("unsupported notify driver %q", c.Notify.Driver)
	}

	if c.PasswordPolicy.MinLength <= 0 || c.PasswordPolicy.MaxLength < c.PasswordPolicy.MinLength {
		return fmt.Errorf("invalid password policy length bounds %d..%d", c.PasswordPolicy.MinLength, c.PasswordPolicy.MaxLength)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"ACCOUNTS_APP_ENV" required:"true"`
	Port         string `envconfig:"ACCOUNTS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ACCOUNTS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ACCOUNTS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ACCOUNTS_LOG_WARN_STACK" default:"false"`

	CORSOrigins     []string      `envconfig:"ACCOUNTS_CORS_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"ACCOUNTS_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StoreConfig struct {
	Driver string `envconfig:"ACCOUNTS_STORE_DRIVER" default:"mongo"`
}

// DriverName returns the normalized persistence driver.
func (s StoreConfig) DriverName() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

type DBConfig struct {
	DSN        string `envconfig:"ACCOUNTS_DB_DSN"`
	SQLitePath string `envconfig:"ACCOUNTS_DB_SQLITE_PATH" default:"accounts.db"`

	MaxOpenConns    int           `envconfig:"ACCOUNTS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ACCOUNTS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ACCOUNTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ACCOUNTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type MongoConfig struct {
	URI            string        `envconfig:"ACCOUNTS_MONGO_URI"`
	Database       string        `envconfig:"ACCOUNTS_MONGO_DATABASE" default:"user_management"`
	UsersColl      string        `envconfig:"ACCOUNTS_MONGO_USERS_COLLECTION" default:"users"`
	ConnectTimeout time.Duration `envconfig:"ACCOUNTS_MONGO_CONNECT_TIMEOUT" default:"10s"`
	MaxPoolSize    uint64        `envconfig:"ACCOUNTS_MONGO_MAX_POOL_SIZE" default:"50"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ACCOUNTS_REDIS_URL"`
	Address      string        `envconfig:"ACCOUNTS_REDIS_ADDR"`
	Password     string        `envconfig:"ACCOUNTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"ACCOUNTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ACCOUNTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ACCOUNTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ACCOUNTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ACCOUNTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ACCOUNTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ACCOUNTS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ACCOUNTS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ACCOUNTS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ACCOUNTS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ACCOUNTS_ARGON_KEY_LEN" default:"32"`
}

// PasswordPolicyConfig is the strength policy enforced at registration.
type PasswordPolicyConfig struct {
	MinLength     int  `envconfig:"ACCOUNTS_PASSWORD_MIN_LENGTH" default:"8"`
	MaxLength     int  `envconfig:"ACCOUNTS_PASSWORD_MAX_LENGTH" default:"128"`
	RequireUpper  bool `envconfig:"ACCOUNTS_PASSWORD_REQUIRE_UPPER" default:"true"`
	RequireLower  bool `envconfig:"ACCOUNTS_PASSWORD_REQUIRE_LOWER" default:"true"`
	RequireDigit  bool `envconfig:"ACCOUNTS_PASSWORD_REQUIRE_DIGIT" default:"true"`
	RequireSymbol bool `envconfig:"ACCOUNTS_PASSWORD_REQUIRE_SYMBOL" default:"false"`
}

// DefaultPasswordPolicy mirrors the envconfig defaults for callers that build
// the service without loading the environment.
func DefaultPasswordPolicy() PasswordPolicyConfig {
	return PasswordPolicyConfig{
		MinLength:    8,
		MaxLength:    128,
		RequireUpper: true,
		RequireLower: true,
		RequireDigit: true,
	}
}

type AuthRateLimitConfig struct {
	RegisterWindow     time.Duration `envconfig:"ACCOUNTS_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ACCOUNTS_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ACCOUNTS_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ACCOUNTS_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ACCOUNTS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"ACCOUNTS_PUBSUB_NOTIFICATION_TOPIC" default:"accounts-notifications"`
	AuditTopic        string `envconfig:"ACCOUNTS_PUBSUB_AUDIT_TOPIC"`
}

// AuditEnabled reports whether audit events should also be published.
func (p PubSubConfig) AuditEnabled() bool {
	return strings.TrimSpace(p.AuditTopic) != ""
}

type NotifyConfig struct {
	Driver  string        `envconfig:"ACCOUNTS_NOTIFY_DRIVER" default:"log"`
	Timeout time.Duration `envconfig:"ACCOUNTS_NOTIFY_TIMEOUT" default:"30s"`
}

// DriverName returns the normalized notification driver.
func (n NotifyConfig) DriverName() string {
	return strings.ToLower(strings.TrimSpace(n.Driver))
}

type SMTPConfig struct {
	Host       string `envconfig:"ACCOUNTS_SMTP_HOST"`
	Port       int    `envconfig:"ACCOUNTS_SMTP_PORT" default:"587"`
	Username   string `envconfig:"ACCOUNTS_SMTP_USERNAME"`
	Password   string `envconfig:"ACCOUNTS_SMTP_PASSWORD"`
	From       string `envconfig:"ACCOUNTS_SMTP_FROM"`
	SenderName string `envconfig:"ACCOUNTS_SMTP_SENDER_NAME" default:"The Team"`
	UseSSL     bool   `envconfig:"ACCOUNTS_SMTP_USE_SSL" default:"false"`
}

// JWTConfig verifies performer tokens. An empty secret disables token checks
// and the performer header is trusted as-is.
type JWTConfig struct {
	Secret            string `envconfig:"ACCOUNTS_JWT_SECRET"`
	Issuer            string `envconfig:"ACCOUNTS_JWT_ISSUER" default:"accounts-backend"`
	ExpirationMinutes int    `envconfig:"ACCOUNTS_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Enabled reports whether bearer tokens are required for performer identity.
func (j JWTConfig) Enabled() bool {
	return strings.TrimSpace(j.Secret) != ""
}
