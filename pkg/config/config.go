package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Session      SessionConfig
	Commerce     CommerceConfig
	Currency     CurrencyConfig
	Catalog      CatalogConfig
	FeatureFlags FeatureFlagsConfig
	GCS          GCSConfig
	GCP          GCPConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Commerce.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string `envconfig:"BOUTIQUE_APP_ENV" required:"true"`
	Port            string `envconfig:"BOUTIQUE_APP_PORT" required:"true"`
	LogLevel        string `envconfig:"BOUTIQUE_LOG_LEVEL" default:"info"`
	LogWarnStack    bool   `envconfig:"BOUTIQUE_LOG_WARN_STACK" default:"false"`
	DefaultLanguage string `envconfig:"BOUTIQUE_DEFAULT_LANGUAGE" default:"en"`

	CORSOrigins []string `envconfig:"BOUTIQUE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOUTIQUE_DB_DSN"`
	Driver string `envconfig:"BOUTIQUE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOUTIQUE_DB_HOST"`
	LegacyPort     int    `envconfig:"BOUTIQUE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOUTIQUE_DB_USER"`
	LegacyPassword string `envconfig:"BOUTIQUE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOUTIQUE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOUTIQUE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOUTIQUE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOUTIQUE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOUTIQUE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOUTIQUE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOUTIQUE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOUTIQUE_REDIS_ADDR"`
	Password     string        `envconfig:"BOUTIQUE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOUTIQUE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOUTIQUE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOUTIQUE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOUTIQUE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOUTIQUE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOUTIQUE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"BOUTIQUE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"BOUTIQUE_JWT_ISSUER" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BOUTIQUE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BOUTIQUE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BOUTIQUE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BOUTIQUE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BOUTIQUE_ARGON_KEY_LEN" default:"32"`
}

// SessionConfig fixes the principal session lifetimes. Admin and customer
// sessions both run 24 hours; "remember me" stretches a customer session to 30
// days.
type SessionConfig struct {
	AdminTTL    time.Duration `envconfig:"BOUTIQUE_SESSION_ADMIN_TTL" default:"24h"`
	CustomerTTL time.Duration `envconfig:"BOUTIQUE_SESSION_CUSTOMER_TTL" default:"24h"`
	RememberTTL time.Duration `envconfig:"BOUTIQUE_SESSION_REMEMBER_TTL" default:"720h"`
}

// CommerceConfig carries the fixed cart business rules. Values are decimal
// strings so the totals math never goes through binary floats.
type CommerceConfig struct {
	FreeShippingThreshold string `envconfig:"BOUTIQUE_FREE_SHIPPING_THRESHOLD" default:"200"`
	ShippingFlatRate      string `envconfig:"BOUTIQUE_SHIPPING_FLAT_RATE" default:"15"`
	TaxRate               string `envconfig:"BOUTIQUE_TAX_RATE" default:"0.08"`
	MinLineQuantity       int    `envconfig:"BOUTIQUE_CART_MIN_QTY" default:"1"`
	MaxLineQuantity       int    `envconfig:"BOUTIQUE_CART_MAX_QTY" default:"10"`
}

func (c CommerceConfig) validate() error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"free shipping threshold", c.FreeShippingThreshold},
		{"shipping flat rate", c.ShippingFlatRate},
		{"tax rate", c.TaxRate},
	} {
		if _, err := decimal.NewFromString(field.value); err != nil {
			return fmt.Errorf("commerce config: %s %q is not a decimal: %w", field.name, field.value, err)
		}
	}
	if c.MinLineQuantity < 1 || c.MaxLineQuantity < c.MinLineQuantity {
		return fmt.Errorf("commerce config: invalid quantity bounds [%d, %d]", c.MinLineQuantity, c.MaxLineQuantity)
	}
	return nil
}

// FreeShippingThresholdDecimal returns the parsed threshold. validate ran at load time.
func (c CommerceConfig) FreeShippingThresholdDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.FreeShippingThreshold)
}

func (c CommerceConfig) ShippingFlatRateDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.ShippingFlatRate)
}

func (c CommerceConfig) TaxRateDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.TaxRate)
}

type CurrencyConfig struct {
	BaseCode        string        `envconfig:"BOUTIQUE_CURRENCY_BASE" default:"USD"`
	StalenessWindow time.Duration `envconfig:"BOUTIQUE_CURRENCY_STALENESS_WINDOW" default:"1h"`
	RatesURL        string        `envconfig:"BOUTIQUE_CURRENCY_RATES_URL"`
	FetchTimeout    time.Duration `envconfig:"BOUTIQUE_CURRENCY_FETCH_TIMEOUT" default:"10s"`
}

type CatalogConfig struct {
	SnapshotTTL       time.Duration `envconfig:"BOUTIQUE_CATALOG_SNAPSHOT_TTL" default:"24h"`
	NewArrivalWindow  time.Duration `envconfig:"BOUTIQUE_CATALOG_NEW_ARRIVAL_WINDOW" default:"720h"`
	LowStockThreshold int           `envconfig:"BOUTIQUE_CATALOG_LOW_STOCK_THRESHOLD" default:"10"`
	RelatedLimit      int           `envconfig:"BOUTIQUE_CATALOG_RELATED_LIMIT" default:"8"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BOUTIQUE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BOUTIQUE_AUTO_MIGRATE" default:"false"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"BOUTIQUE_GCS_BUCKET_NAME"`
	UploadURLExpiry   time.Duration `envconfig:"BOUTIQUE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"BOUTIQUE_GCS_DOWNLOAD_URL_EXPIRY" default:"24h"`
}

type GCPConfig struct {
	CredentialsJSON        string `envconfig:"BOUTIQUE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
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
