package config

const EnvPrefix = "ACCOUNTS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

const (
	NotifyDriverLog    = "log"
	NotifyDriverSMTP   = "smtp"
	NotifyDriverPubSub = "pubsub"
)

const (
	EnvAppEnv                  = "ACCOUNTS_APP_ENV"
	EnvPort                    = "ACCOUNTS_APP_PORT"
	EnvStoreDriver             = "ACCOUNTS_STORE_DRIVER"
	EnvDBDSN                   = "ACCOUNTS_DB_DSN"
	EnvDBSQLitePath            = "ACCOUNTS_DB_SQLITE_PATH"
	EnvMongoURI                = "ACCOUNTS_MONGO_URI"
	EnvRedisURL                = "ACCOUNTS_REDIS_URL"
	EnvGCPProjectID            = "ACCOUNTS_GCP_PROJECT_ID"
	EnvPubSubNotificationTopic = "ACCOUNTS_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubAuditTopic        = "ACCOUNTS_PUBSUB_AUDIT_TOPIC"
	EnvNotifyDriver            = "ACCOUNTS_NOTIFY_DRIVER"
	EnvSMTPHost                = "ACCOUNTS_SMTP_HOST"
	EnvSMTPFrom                = "ACCOUNTS_SMTP_FROM"
	EnvPasswordMinLength       = "ACCOUNTS_PASSWORD_MIN_LENGTH"
)
