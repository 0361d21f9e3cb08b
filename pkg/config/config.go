package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "KALACONNECT_DB_DSN"
	EnvDBHost = "KALACONNECT_DB_HOST"
	EnvDBUser = "KALACONNECT_DB_USER"
	EnvDBName = "KALACONNECT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
	Processor    ProcessorConfig
	Vertex       VertexConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KALACONNECT_APP_ENV" required:"true"`
	Port         string `envconfig:"KALACONNECT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KALACONNECT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KALACONNECT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KALACONNECT_DB_DSN"`
	Driver string `envconfig:"KALACONNECT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KALACONNECT_DB_HOST"`
	LegacyPort     int    `envconfig:"KALACONNECT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KALACONNECT_DB_USER"`
	LegacyPassword string `envconfig:"KALACONNECT_DB_PASSWORD"`
	LegacyName     string `envconfig:"KALACONNECT_DB_NAME"`
	LegacySSLMode  string `envconfig:"KALACONNECT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KALACONNECT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KALACONNECT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KALACONNECT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KALACONNECT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KALACONNECT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KALACONNECT_REDIS_ADDR"`
	Password     string        `envconfig:"KALACONNECT_REDIS_PASSWORD"`
	DB           int           `envconfig:"KALACONNECT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KALACONNECT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KALACONNECT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KALACONNECT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KALACONNECT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KALACONNECT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KALACONNECT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KALACONNECT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KALACONNECT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KALACONNECT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KALACONNECT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KALACONNECT_GCP_PROJECT_ID" required:"true"`
	Region                 string `envconfig:"KALACONNECT_GCP_REGION" default:"us-central1"`
	CredentialsJSON        string `envconfig:"KALACONNECT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"KALACONNECT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"KALACONNECT_GCS_BUCKET_NAME" required:"true"`
	MaxDownloadMB int    `envconfig:"KALACONNECT_GCS_MAX_DOWNLOAD_MB" default:"200"`
}

type PubSubConfig struct {
	MediaTopic        string `envconfig:"KALACONNECT_PUBSUB_MEDIA_TOPIC" required:"true"`
	MediaSubscription string `envconfig:"KALACONNECT_PUBSUB_MEDIA_SUBSCRIPTION" required:"true"`
}

type ProcessorConfig struct {
	CallbackURL     string        `envconfig:"KALACONNECT_PROCESSOR_CALLBACK_URL" required:"true"`
	CallbackTimeout time.Duration `envconfig:"KALACONNECT_PROCESSOR_CALLBACK_TIMEOUT" default:"30s"`
	// StatusRetention bounds how long terminal event records are kept in the
	// status store. Zero keeps them forever; pruning is an operator concern.
	StatusRetention time.Duration `envconfig:"KALACONNECT_PROCESSOR_STATUS_RETENTION" default:"0"`
	MetricsPort     string        `envconfig:"KALACONNECT_PROCESSOR_METRICS_PORT" default:"9090"`
}

type VertexConfig struct {
	TextModel      string        `envconfig:"KALACONNECT_VERTEX_TEXT_MODEL" default:"gemini-2.0-flash"`
	EmbeddingModel string        `envconfig:"KALACONNECT_VERTEX_EMBEDDING_MODEL" default:"multimodalembedding@001"`
	ImageModel     string        `envconfig:"KALACONNECT_VERTEX_IMAGE_MODEL" default:"imagen-3.0-generate-002"`
	Timeout        time.Duration `envconfig:"KALACONNECT_VERTEX_TIMEOUT" default:"60s"`
	MaxOutputToken int           `envconfig:"KALACONNECT_VERTEX_MAX_OUTPUT_TOKENS" default:"1024"`
	CacheSize      int           `envconfig:"KALACONNECT_VERTEX_CACHE_SIZE" default:"512"`
	CacheTTL       time.Duration `envconfig:"KALACONNECT_VERTEX_CACHE_TTL" default:"1h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
