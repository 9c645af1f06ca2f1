package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Rewards       RewardsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"NAKAWIN_APP_ENV" required:"true"`
	Port         string `envconfig:"NAKAWIN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NAKAWIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NAKAWIN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"NAKAWIN_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"NAKAWIN_DB_DSN"`
	Driver string `envconfig:"NAKAWIN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NAKAWIN_DB_HOST"`
	LegacyPort     int    `envconfig:"NAKAWIN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NAKAWIN_DB_USER"`
	LegacyPassword string `envconfig:"NAKAWIN_DB_PASSWORD"`
	LegacyName     string `envconfig:"NAKAWIN_DB_NAME"`
	LegacySSLMode  string `envconfig:"NAKAWIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NAKAWIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NAKAWIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NAKAWIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NAKAWIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NAKAWIN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NAKAWIN_REDIS_ADDR"`
	Password     string        `envconfig:"NAKAWIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"NAKAWIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NAKAWIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NAKAWIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NAKAWIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NAKAWIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NAKAWIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"NAKAWIN_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"NAKAWIN_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"NAKAWIN_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"NAKAWIN_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NAKAWIN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NAKAWIN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NAKAWIN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NAKAWIN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NAKAWIN_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"NAKAWIN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit    int           `envconfig:"NAKAWIN_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"NAKAWIN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"NAKAWIN_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"NAKAWIN_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"NAKAWIN_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NAKAWIN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"NAKAWIN_AUTO_MIGRATE" default:"false"`
}

// RewardsConfig tunes the redemption core.
type RewardsConfig struct {
	StartingBalance  int64 `envconfig:"NAKAWIN_REWARDS_STARTING_BALANCE" default:"1000"`
	MaxRedeemRetries int   `envconfig:"NAKAWIN_REWARDS_MAX_REDEEM_RETRIES" default:"3"`
	MaxPageSize      int   `envconfig:"NAKAWIN_REWARDS_MAX_PAGE_SIZE" default:"100"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"NAKAWIN_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"NAKAWIN_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"NAKAWIN_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	WithdrawalsTopic        string `envconfig:"NAKAWIN_PUBSUB_WITHDRAWALS_TOPIC" default:"nkw-withdrawal-events"`
	WithdrawalsSubscription string `envconfig:"NAKAWIN_PUBSUB_WITHDRAWALS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"NAKAWIN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"NAKAWIN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"NAKAWIN_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
