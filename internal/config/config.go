package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	DB           DBConfig
	Log          LogConfig
	JWT          JWTConfig
	Extractor    ExtractorConfig
	Storage      StorageConfig
	S3           S3Config
	Upload       UploadConfig
	Tables       TablesConfig
	MultiTenancy MultiTenancyConfig
	Routes       RoutesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// JWTConfig holds bearer-token verification settings.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// ExtractorConfig holds the model-provider settings for invoice extraction.
type ExtractorConfig struct {
	Driver      string `mapstructure:"driver"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// StorageConfig selects and configures the file storage disk.
type StorageConfig struct {
	Disk     string `mapstructure:"disk"` // "local" or "s3"
	Path     string `mapstructure:"path"` // key prefix for stored invoice files
	LocalDir string `mapstructure:"local_dir"`
}

// S3Config holds AWS S3 settings for the "s3" storage disk.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// UploadConfig holds upload intake limits.
type UploadConfig struct {
	MaxFileSizeKB int64    `mapstructure:"max_file_size_kb"`
	AllowedMimes  []string `mapstructure:"allowed_mimes"`
}

// TablesConfig holds the table name prefix and per-entity overrides.
type TablesConfig struct {
	Prefix       string `mapstructure:"prefix"`
	Invoices     string `mapstructure:"invoices"`
	LineItems    string `mapstructure:"line_items"`
	Discounts    string `mapstructure:"discounts"`
	OtherCharges string `mapstructure:"other_charges"`
}

// InvoicesTable returns the fully prefixed invoices table name.
func (t *TablesConfig) InvoicesTable() string { return t.Prefix + t.Invoices }

// LineItemsTable returns the fully prefixed line items table name.
func (t *TablesConfig) LineItemsTable() string { return t.Prefix + t.LineItems }

// DiscountsTable returns the fully prefixed discounts table name.
func (t *TablesConfig) DiscountsTable() string { return t.Prefix + t.Discounts }

// OtherChargesTable returns the fully prefixed other charges table name.
func (t *TablesConfig) OtherChargesTable() string { return t.Prefix + t.OtherCharges }

// MultiTenancyConfig holds tenant isolation settings.
type MultiTenancyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Column  string `mapstructure:"column"`
	// TenantOverride pins every request to a fixed tenant ID. Used when the
	// process serves a single tenant and no auth context carries one.
	TenantOverride string `mapstructure:"tenant_override"`
}

// RoutesConfig holds route mounting settings.
type RoutesConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Prefix     string   `mapstructure:"prefix"`
	Middleware []string `mapstructure:"middleware"`
}

// Load reads configuration from environment variables with the INVOICEAI_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVOICEAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.cors_origins",
		"http://localhost:3000,http://127.0.0.1:3000")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invoiceai")
	v.SetDefault("db.password", "invoiceai_secret")
	v.SetDefault("db.name", "invoiceai_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "invoiceai")

	// Extractor defaults
	v.SetDefault("extractor.driver", "claude")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("extractor.timeout_secs", 120)

	// Storage defaults
	v.SetDefault("storage.disk", "local")
	v.SetDefault("storage.path", "invoices")
	v.SetDefault("storage.local_dir", "storage")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "invoiceai-uploads")
	v.SetDefault("s3.endpoint", "")

	// Upload defaults
	v.SetDefault("upload.max_file_size_kb", 10240)
	v.SetDefault("upload.allowed_mimes",
		"image/jpeg,image/png,image/gif,image/webp,application/pdf")

	// Table naming defaults
	v.SetDefault("tables.prefix", "invoiceai_")
	v.SetDefault("tables.invoices", "invoices")
	v.SetDefault("tables.line_items", "invoice_line_items")
	v.SetDefault("tables.discounts", "invoice_discounts")
	v.SetDefault("tables.other_charges", "invoice_other_charges")

	// Multi-tenancy defaults
	v.SetDefault("multi_tenancy.enabled", true)
	v.SetDefault("multi_tenancy.column", "tenant_id")
	v.SetDefault("multi_tenancy.tenant_override", "")

	// Route defaults
	v.SetDefault("routes.enabled", true)
	v.SetDefault("routes.prefix", "api/invoiceai")
	v.SetDefault("routes.middleware", "auth")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "INVOICEAI_SERVER_PORT",
		"server.read_timeout":           "INVOICEAI_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "INVOICEAI_SERVER_WRITE_TIMEOUT",
		"server.environment":            "INVOICEAI_SERVER_ENVIRONMENT",
		"server.cors_origins":           "INVOICEAI_SERVER_CORS_ORIGINS",
		"db.host":                       "INVOICEAI_DB_HOST",
		"db.port":                       "INVOICEAI_DB_PORT",
		"db.user":                       "INVOICEAI_DB_USER",
		"db.password":                   "INVOICEAI_DB_PASSWORD",
		"db.name":                       "INVOICEAI_DB_NAME",
		"db.sslmode":                    "INVOICEAI_DB_SSLMODE",
		"db.max_open":                   "INVOICEAI_DB_MAX_OPEN",
		"db.max_idle":                   "INVOICEAI_DB_MAX_IDLE",
		"log.level":                     "INVOICEAI_LOG_LEVEL",
		"log.format":                    "INVOICEAI_LOG_FORMAT",
		"jwt.secret":                    "INVOICEAI_JWT_SECRET",
		"jwt.issuer":                    "INVOICEAI_JWT_ISSUER",
		"extractor.driver":              "INVOICEAI_EXTRACTOR_DRIVER",
		"extractor.api_key":             "INVOICEAI_EXTRACTOR_API_KEY",
		"extractor.model":               "INVOICEAI_EXTRACTOR_MODEL",
		"extractor.timeout_secs":        "INVOICEAI_EXTRACTOR_TIMEOUT_SECS",
		"storage.disk":                  "INVOICEAI_STORAGE_DISK",
		"storage.path":                  "INVOICEAI_STORAGE_PATH",
		"storage.local_dir":             "INVOICEAI_STORAGE_LOCAL_DIR",
		"s3.region":                     "INVOICEAI_S3_REGION",
		"s3.bucket":                     "INVOICEAI_S3_BUCKET",
		"s3.endpoint":                   "INVOICEAI_S3_ENDPOINT",
		"s3.access_key":                 "INVOICEAI_S3_ACCESS_KEY",
		"s3.secret_key":                 "INVOICEAI_S3_SECRET_KEY",
		"upload.max_file_size_kb":       "INVOICEAI_UPLOAD_MAX_FILE_SIZE_KB",
		"upload.allowed_mimes":          "INVOICEAI_UPLOAD_ALLOWED_MIMES",
		"tables.prefix":                 "INVOICEAI_TABLES_PREFIX",
		"tables.invoices":               "INVOICEAI_TABLES_INVOICES",
		"tables.line_items":             "INVOICEAI_TABLES_LINE_ITEMS",
		"tables.discounts":              "INVOICEAI_TABLES_DISCOUNTS",
		"tables.other_charges":          "INVOICEAI_TABLES_OTHER_CHARGES",
		"multi_tenancy.enabled":         "INVOICEAI_MULTI_TENANCY_ENABLED",
		"multi_tenancy.column":          "INVOICEAI_MULTI_TENANCY_COLUMN",
		"multi_tenancy.tenant_override": "INVOICEAI_MULTI_TENANCY_TENANT_OVERRIDE",
		"routes.enabled":                "INVOICEAI_ROUTES_ENABLED",
		"routes.prefix":                 "INVOICEAI_ROUTES_PREFIX",
		"routes.middleware":             "INVOICEAI_ROUTES_MIDDLEWARE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVOICEAI_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOICEAI_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		CORSOrigins:  splitList(v.GetString("server.cors_origins")),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.Extractor = ExtractorConfig{
		Driver:      v.GetString("extractor.driver"),
		APIKey:      v.GetString("extractor.api_key"),
		Model:       v.GetString("extractor.model"),
		TimeoutSecs: v.GetInt("extractor.timeout_secs"),
	}
	cfg.Storage = StorageConfig{
		Disk:     v.GetString("storage.disk"),
		Path:     v.GetString("storage.path"),
		LocalDir: v.GetString("storage.local_dir"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeKB: v.GetInt64("upload.max_file_size_kb"),
		AllowedMimes:  splitList(v.GetString("upload.allowed_mimes")),
	}
	cfg.Tables = TablesConfig{
		Prefix:       v.GetString("tables.prefix"),
		Invoices:     v.GetString("tables.invoices"),
		LineItems:    v.GetString("tables.line_items"),
		Discounts:    v.GetString("tables.discounts"),
		OtherCharges: v.GetString("tables.other_charges"),
	}
	cfg.MultiTenancy = MultiTenancyConfig{
		Enabled:        v.GetBool("multi_tenancy.enabled"),
		Column:         v.GetString("multi_tenancy.column"),
		TenantOverride: v.GetString("multi_tenancy.tenant_override"),
	}
	cfg.Routes = RoutesConfig{
		Enabled:    v.GetBool("routes.enabled"),
		Prefix:     v.GetString("routes.prefix"),
		Middleware: splitList(v.GetString("routes.middleware")),
	}

	return cfg, nil
}

// splitList parses a comma-separated string into a slice, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
