package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"

	pkglogger "github.com/damoang/angple-cms/pkg/logger"
)

const minSecretLength = 32

// Config is the resolved application configuration
type Config struct {
	Environment   string              `yaml:"environment"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	JWT           JWTConfig           `yaml:"jwt"`
	Cookie        CookieConfig        `yaml:"cookie"`
	CORS          CORSConfig          `yaml:"cors"`
	Storage       StorageConfig       `yaml:"storage"`
	Media         MediaConfig         `yaml:"media"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Webhook       WebhookConfig       `yaml:"webhook"`
	Admin         AdminConfig         `yaml:"admin"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // gin mode: debug | release | test
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // mysql | sqlite
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	Path            string `yaml:"path"` // sqlite file
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
	LogLevel        string `yaml:"log_level"`         // silent | error | warn | info
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // minutes
}

type CookieConfig struct {
	Name     string `yaml:"name"`
	Domain   string `yaml:"domain"`
	Secure   bool   `yaml:"secure"`
	SameSite string `yaml:"same_site"` // lax | strict | none
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"` // comma separated
}

type StorageConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	CDNURL          string `yaml:"cdn_url"`
	BasePath        string `yaml:"base_path"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
}

type MediaConfig struct {
	Dir         string   `yaml:"dir"`
	BaseURL     string   `yaml:"base_url"`
	MaxSizeMB   int      `yaml:"max_size_mb"`
	AllowedExts []string `yaml:"allowed_exts"`
}

type ElasticsearchConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Index     string   `yaml:"index"`
}

type WebhookConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxAttempts    int `yaml:"max_attempts"`
	Concurrency    int `yaml:"concurrency"`
}

type AdminConfig struct {
	LoginPath string `yaml:"login_path"`
	Dir       string `yaml:"dir"` // static admin bundle
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	FormsPerMinute    int  `yaml:"forms_per_minute"`
}

// Load reads the YAML config at path, expands ${VAR} references and applies env overrides
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse builds a Config from YAML bytes
func Parse(raw []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" && cfg.Environment == "" {
		cfg.Environment = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.Storage.SecretAccessKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "local"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8082
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "data/cms.db"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 3306
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 50
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.JWT.ExpiresIn == 0 {
		cfg.JWT.ExpiresIn = 60 * 24
	}
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = "authToken"
	}
	if cfg.Cookie.SameSite == "" {
		cfg.Cookie.SameSite = "lax"
	}
	if cfg.CORS.AllowOrigins == "" {
		cfg.CORS.AllowOrigins = "http://localhost:3000"
	}
	if cfg.Media.Dir == "" {
		cfg.Media.Dir = "uploads"
	}
	if cfg.Media.BaseURL == "" {
		cfg.Media.BaseURL = "/uploads"
	}
	if cfg.Media.MaxSizeMB == 0 {
		cfg.Media.MaxSizeMB = 10
	}
	if len(cfg.Media.AllowedExts) == 0 {
		cfg.Media.AllowedExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".pdf", ".mp4"}
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = "cms_content"
	}
	if cfg.Webhook.TimeoutSeconds == 0 {
		cfg.Webhook.TimeoutSeconds = 10
	}
	if cfg.Webhook.MaxAttempts == 0 {
		cfg.Webhook.MaxAttempts = 3
	}
	if cfg.Webhook.Concurrency == 0 {
		cfg.Webhook.Concurrency = 8
	}
	if cfg.Admin.LoginPath == "" {
		cfg.Admin.LoginPath = "/admin/login"
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 300
	}
	if cfg.RateLimit.FormsPerMinute == 0 {
		cfg.RateLimit.FormsPerMinute = 5
	}
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required (set JWT_SECRET)"))
	} else if !c.IsDevelopment() && len(c.JWT.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("jwt.secret must be at least %d bytes outside development", minSecretLength))
	}

	switch c.Database.Driver {
	case "mysql":
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("database.host and database.dbname are required for mysql"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}

	switch strings.ToLower(c.Cookie.SameSite) {
	case "lax", "strict", "none":
	default:
		errs = append(errs, fmt.Errorf("unsupported cookie.same_site %q", c.Cookie.SameSite))
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket is required when storage is enabled"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the app runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	switch c.Environment {
	case "local", "dev", "development", "test":
		return true
	}
	return false
}

// GetDSN returns the MySQL DSN for the configured database
func (d *DatabaseConfig) GetDSN() string {
	mc := mysqldriver.NewConfig()
	mc.User = d.User
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	mc.DBName = d.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime as a time.Duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// AllowOriginList splits the comma separated CORS origins
func (c *CORSConfig) AllowOriginList() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// LogResolved prints the resolved configuration with secrets masked
func LogResolved(cfg *Config) {
	pkglogger.Info("Config: env=%s port=%d db=%s(%s) redis=%v(%s:%d) storage=%v(bucket=%s) es=%v",
		cfg.Environment, cfg.Server.Port,
		cfg.Database.Driver, dbTarget(&cfg.Database),
		cfg.Redis.Enabled, cfg.Redis.Host, cfg.Redis.Port,
		cfg.Storage.Enabled, cfg.Storage.Bucket,
		cfg.Elasticsearch.Enabled,
	)
	pkglogger.Info("Secrets: jwt=%s db_password=%s redis_password=%s s3_secret=%s",
		mask(cfg.JWT.Secret), mask(cfg.Database.Password), mask(cfg.Redis.Password), mask(cfg.Storage.SecretAccessKey))
}

func dbTarget(d *DatabaseConfig) string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("%s@%s:%d/%s", d.User, d.Host, d.Port, d.DBName)
}

func mask(s string) string {
	if s == "" {
		return "(empty)"
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", 6) + fmt.Sprintf("(%d)", len(s))
}
