package config

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string `validate:"required"`
	LogMode  string `validate:"oneof=development production"`

	// ServerSSLCertFile and ServerSSLKeyFile enable TLS on the API listener when both are set
	ServerSSLCertFile, ServerSSLKeyFile string

	Database DatabaseConfig
	JWT      JWTConfig
	DNS      DNSConfig
	Proxy    ProxyConfig
	Storage  StorageConfig

	// RecheckInterval is how often unverified domains are re-checked. Zero disables the job unless
	// RecheckSchedule is set, which takes precedence.
	RecheckInterval time.Duration `validate:"gte=0"`
	RecheckSchedule string

	MaxDashboardsPerUser    int `validate:"gte=1"`
	MaxSectionsPerDashboard int `validate:"gte=1"`
}

type DatabaseConfig struct {
	Driver string `validate:"oneof=sqlite postgres"`
	DSN    string `validate:"required"`
}

type JWTConfig struct {
	Secret string        `validate:"required,min=16"`
	TTL    time.Duration `validate:"gt=0"`
}

type DNSConfig struct {
	// Nameservers are queried directly when set (host:port). Empty means the system resolver.
	Nameservers []string      `validate:"dive,hostname_port"`
	Timeout     time.Duration `validate:"gt=0"`
}

// ProxyConfig describes the Nginx Proxy Manager instance and the origin verified domains forward to.
type ProxyConfig struct {
	URL           string        `validate:"required,url"`
	Identity      string        `validate:"required"`
	Secret        string        `validate:"required"`
	ForwardScheme string        `validate:"oneof=http https"`
	ForwardHost   string        `validate:"required,hostname|ip"`
	ForwardPort   int           `validate:"min=1,max=65535"`
	RootPath      string        `validate:"omitempty,startswith=/"`
	Timeout       time.Duration `validate:"gt=0"`
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string `validate:"required_with=Endpoint"`
	Region    string
	UseSSL    bool
	PublicURL string `validate:"omitempty,url"`
}

// New reads configuration from the environment. A .env file in the working directory is loaded
// first when present; variables already set in the environment win.
func New() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "failed to load .env")
	}

	var errs []error
	cfg := Config{
		HTTPAddr:          getString("HTTP_ADDR", ":3646"),
		LogMode:           getString("LOG_MODE", "development"),
		ServerSSLCertFile: os.Getenv("SERVER_SSL_CERT_FILE"),
		ServerSSLKeyFile:  os.Getenv("SERVER_SSL_KEY_FILE"),
		Database: DatabaseConfig{
			Driver: getString("DB_DRIVER", "sqlite"),
			DSN:    getString("DB_DSN", "accordee.db"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			TTL:    getDuration("JWT_TTL", time.Hour, &errs),
		},
		DNS: DNSConfig{
			Nameservers: getList("DNS_NAMESERVERS"),
			Timeout:     getDuration("DNS_TIMEOUT", 5*time.Second, &errs),
		},
		Proxy: ProxyConfig{
			URL:           strings.TrimSuffix(os.Getenv("NPM_URL"), "/"),
			Identity:      os.Getenv("NPM_IDENTITY"),
			Secret:        os.Getenv("NPM_SECRET"),
			ForwardScheme: getString("PROXY_FORWARD_SCHEME", "http"),
			ForwardHost:   os.Getenv("PROXY_FORWARD_HOST"),
			ForwardPort:   getInt("PROXY_FORWARD_PORT", 5000, &errs),
			RootPath:      os.Getenv("PROXY_ROOT_PATH"),
			Timeout:       getDuration("PROXY_TIMEOUT", 15*time.Second, &errs),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:    os.Getenv("STORAGE_BUCKET"),
			Region:    os.Getenv("STORAGE_REGION"),
			UseSSL:    getBool("STORAGE_USE_SSL", true, &errs),
			PublicURL: strings.TrimSuffix(os.Getenv("STORAGE_PUBLIC_URL"), "/"),
		},
		RecheckInterval:         getDuration("RECHECK_INTERVAL", 0, &errs),
		RecheckSchedule:         strings.TrimSpace(os.Getenv("RECHECK_SCHEDULE")),
		MaxDashboardsPerUser:    getInt("MAX_DASHBOARDS_PER_USER", 5, &errs),
		MaxSectionsPerDashboard: getInt("MAX_SECTIONS_PER_DASHBOARD", 10, &errs),
	}

	if len(errs) > 0 {
		return Config{}, errs[0]
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			fields := lo.Map(vErrs, func(item validator.FieldError, _ int) string {
				return fmt.Sprintf("%s (%s)", item.Namespace(), item.Tag())
			})
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

func (c Config) HasTLSConfig() bool {
	return c.ServerSSLCertFile != "" && c.ServerSSLKeyFile != ""
}

func (c Config) HasStorage() bool {
	return c.Storage.Endpoint != ""
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	return lo.Compact(lo.Map(strings.Split(raw, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}

func getInt(key string, fallback int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func getBool(key string, fallback bool, errs *[]error) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}
