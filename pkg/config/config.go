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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Reset         ResetConfig
	SMTP          SMTPConfig
	FeatureFlags  FeatureFlagsConfig
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

// ClientConfig is the slice of configuration the local session-authority
// CLI needs. It deliberately excludes the server sections so the CLI runs
// on machines that carry no database or redis settings.
type ClientConfig struct {
	JWT      JWTConfig
	LogLevel string `envconfig:"CROPCARE_LOG_LEVEL" default:"info"`
}

// LoadClient parses only the client-side configuration.
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CROPCARE_APP_ENV" required:"true"`
	Port         string `envconfig:"CROPCARE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CROPCARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CROPCARE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CROPCARE_DB_DSN"`

	Host     string `envconfig:"CROPCARE_DB_HOST"`
	Port     int    `envconfig:"CROPCARE_DB_PORT" default:"5432"`
	User     string `envconfig:"CROPCARE_DB_USER"`
	Password string `envconfig:"CROPCARE_DB_PASSWORD"`
	Name     string `envconfig:"CROPCARE_DB_NAME"`
	SSLMode  string `envconfig:"CROPCARE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CROPCARE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CROPCARE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CROPCARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CROPCARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CROPCARE_REDIS_URL"`
	Address      string        `envconfig:"CROPCARE_REDIS_ADDR"`
	Password     string        `envconfig:"CROPCARE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CROPCARE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CROPCARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CROPCARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CROPCARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CROPCARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CROPCARE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CROPCARE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CROPCARE_JWT_ISSUER" default:"cropcare"`
	ExpirationMinutes int    `envconfig:"CROPCARE_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// TokenTTL returns the access token lifetime. The default of 1440 minutes
// matches the client session window.
func (j JWTConfig) TokenTTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"CROPCARE_BCRYPT_COST" default:"10"`
}

type AuthRateLimitConfig struct {
	LoginWindow       time.Duration `envconfig:"CROPCARE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserLimit    int           `envconfig:"CROPCARE_AUTH_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	LoginIPLimit      int           `envconfig:"CROPCARE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow    time.Duration `envconfig:"CROPCARE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUserLimit int           `envconfig:"CROPCARE_AUTH_RATE_LIMIT_REGISTER_USER_LIMIT" default:"3"`
	RegisterIPLimit   int           `envconfig:"CROPCARE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type ResetConfig struct {
	OTPTTL     time.Duration `envconfig:"CROPCARE_RESET_OTP_TTL" default:"5m"`
	SessionTTL time.Duration `envconfig:"CROPCARE_RESET_SESSION_TTL" default:"10m"`
	OTPDigits  int           `envconfig:"CROPCARE_RESET_OTP_DIGITS" default:"6"`
}

type SMTPConfig struct {
	Host     string `envconfig:"CROPCARE_SMTP_HOST"`
	Port     int    `envconfig:"CROPCARE_SMTP_PORT" default:"587"`
	Username string `envconfig:"CROPCARE_SMTP_USERNAME"`
	Password string `envconfig:"CROPCARE_SMTP_PASSWORD"`
	From     string `envconfig:"CROPCARE_SMTP_FROM"`
}

// Enabled reports whether OTP mail delivery is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CROPCARE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
