package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"fulfillment/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	HTTPPort   string `validate:"required,numeric"`
	DBHost     string `validate:"required"`
	DBPort     string `validate:"required,numeric"`
	DBUser     string `validate:"required"`
	DBPassword string
	DBName     string `validate:"required"`
	DBSslMode  string `validate:"oneof=disable allow prefer require verify-ca verify-full"`

	SFTPHost                  string `validate:"required"`
	SFTPPort                  int    `validate:"min=1,max=65535"`
	SFTPUser                  string `validate:"required"`
	SFTPPassword              string `validate:"required_without=SFTPPrivateKeyPath"`
	SFTPPrivateKeyPath        string
	SFTPKnownHostsPath        string `validate:"required_without=SFTPInsecureIgnoreHostKey"`
	SFTPInsecureIgnoreHostKey bool
	SFTPOutgoingDir           string        `validate:"required"`
	SFTPTimeout               time.Duration `validate:"gt=0"`

	SSCCCompanyPrefix  string `validate:"required,numeric,max=15"`
	SSCCExtensionDigit string `validate:"required,numeric,len=1"`
	SupplierID         string `validate:"required"`

	DefaultCapacity    int `validate:"min=1"`
	DefaultAllowSplit  bool
	Carriers           []string `validate:"required,min=1,dive,required"`
	DefaultPackageType string   `validate:"oneof=box envelope bag pallet"`

	AMQPURL      string
	AMQPExchange string `validate:"required_with=AMQPURL"`
	AMQPQueue    string `validate:"required_with=AMQPURL"`

	DispatchSchedule  string        `validate:"required,cron"`
	RetrySchedule     string        `validate:"required,cron"`
	SweepBatchSize    int           `validate:"min=1"`
	StalePendingAfter time.Duration `validate:"gt=0"`

	OTELTracesStdout bool
	LogLevel         string `validate:"oneof=debug info warn error"`
}

// DSN is the libpq connection string for the configured database.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// AMQPEnabled reports whether the order-ready consumer should run.
func (c Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadConfig reads .env when present, then the environment, and validates the result.
// Every problem is an *errs.ConfigurationError.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errs.NewConfigurationError(".env", err.Error())
	}
	return ConfigFromEnv(os.Getenv)
}

// ConfigFromEnv builds the configuration from a lookup function, applying defaults for
// optional keys.
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	r := envReader{getenv: getenv}

	cfg := Config{
		HTTPPort:   r.str("HTTP_PORT", "8080"),
		DBHost:     r.str("DB_HOST", ""),
		DBPort:     r.str("DB_PORT", "5432"),
		DBUser:     r.str("DB_USER", ""),
		DBPassword: r.str("DB_PASSWORD", ""),
		DBName:     r.str("DB_NAME", ""),
		DBSslMode:  r.str("DB_SSLMODE", "disable"),

		SFTPHost:                  r.str("SFTP_HOST", ""),
		SFTPPort:                  r.integer("SFTP_PORT", 22),
		SFTPUser:                  r.str("SFTP_USER", ""),
		SFTPPassword:              r.str("SFTP_PASSWORD", ""),
		SFTPPrivateKeyPath:        r.str("SFTP_PRIVATE_KEY_PATH", ""),
		SFTPKnownHostsPath:        r.str("SFTP_KNOWN_HOSTS_PATH", ""),
		SFTPInsecureIgnoreHostKey: r.boolean("SFTP_INSECURE_IGNORE_HOST_KEY", false),
		SFTPOutgoingDir:           r.str("SFTP_OUTGOING_DIR", ""),
		SFTPTimeout:               r.duration("SFTP_TIMEOUT", 30*time.Second),

		SSCCCompanyPrefix:  r.str("SSCC_COMPANY_PREFIX", ""),
		SSCCExtensionDigit: r.str("SSCC_EXTENSION_DIGIT", ""),
		SupplierID:         r.str("SUPPLIER_ID", ""),

		DefaultCapacity:    r.integer("DEFAULT_CAPACITY", 20),
		DefaultAllowSplit:  r.boolean("DEFAULT_ALLOW_SPLIT", true),
		Carriers:           r.list("CARRIERS", "DHL"),
		DefaultPackageType: strings.ToLower(r.str("DEFAULT_PACKAGE_TYPE", "box")),

		AMQPURL:      r.str("AMQP_URL", ""),
		AMQPExchange: r.str("AMQP_EXCHANGE", "order.ready"),
		AMQPQueue:    r.str("AMQP_QUEUE", "fulfillment.order.ready"),

		DispatchSchedule:  r.str("DISPATCH_SCHEDULE", "0 * * * * *"),
		RetrySchedule:     r.str("RETRY_SCHEDULE", "30 */5 * * * *"),
		SweepBatchSize:    r.integer("SWEEP_BATCH_SIZE", 50),
		StalePendingAfter: r.duration("STALE_PENDING_AFTER", 10*time.Minute),

		OTELTracesStdout: r.boolean("OTEL_TRACES_STDOUT", false),
		LogLevel:         strings.ToLower(r.str("LOG_LEVEL", "info")),
	}
	if len(r.problems) > 0 {
		return Config{}, errors.Join(r.problems...)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var configKeys = map[string]string{
	"HTTPPort": "HTTP_PORT", "DBHost": "DB_HOST", "DBPort": "DB_PORT", "DBUser": "DB_USER",
	"DBName": "DB_NAME", "DBSslMode": "DB_SSLMODE",
	"SFTPHost": "SFTP_HOST", "SFTPPort": "SFTP_PORT", "SFTPUser": "SFTP_USER",
	"SFTPPassword": "SFTP_PASSWORD", "SFTPKnownHostsPath": "SFTP_KNOWN_HOSTS_PATH",
	"SFTPOutgoingDir": "SFTP_OUTGOING_DIR", "SFTPTimeout": "SFTP_TIMEOUT",
	"SSCCCompanyPrefix": "SSCC_COMPANY_PREFIX", "SSCCExtensionDigit": "SSCC_EXTENSION_DIGIT",
	"SupplierID": "SUPPLIER_ID", "DefaultCapacity": "DEFAULT_CAPACITY", "Carriers": "CARRIERS",
	"DefaultPackageType": "DEFAULT_PACKAGE_TYPE", "AMQPExchange": "AMQP_EXCHANGE", "AMQPQueue": "AMQP_QUEUE",
	"DispatchSchedule": "DISPATCH_SCHEDULE", "RetrySchedule": "RETRY_SCHEDULE",
	"SweepBatchSize": "SWEEP_BATCH_SIZE", "StalePendingAfter": "STALE_PENDING_AFTER", "LogLevel": "LOG_LEVEL",
}

var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks the struct tags and reports one ConfigurationError per field.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cronParser.Parse(fl.Field().String())
		return err == nil
	})

	err := v.Struct(c)
	if err == nil {
		if c.AMQPURL != "" {
			if _, perr := url.Parse(c.AMQPURL); perr != nil {
				return errs.NewConfigurationError("AMQP_URL", perr.Error())
			}
		}
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errs.NewConfigurationError("config", err.Error())
	}
	problems := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key, ok := configKeys[fe.StructField()]
		if !ok {
			key = fe.StructField()
		}
		problems = append(problems, errs.NewConfigurationError(key, fmt.Sprintf("failed %q check (value %v)", fe.Tag(), redact(key, fe.Value()))))
	}
	return errors.Join(problems...)
}

func redact(key string, v any) any {
	if strings.Contains(key, "PASSWORD") {
		return "***"
	}
	return v
}

type envReader struct {
	getenv   func(string) string
	problems []error
}

func (r *envReader) str(key, fallback string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (r *envReader) integer(key string, fallback int) int {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.problems = append(r.problems, errs.NewConfigurationError(key, fmt.Sprintf("%q is not an integer", raw)))
		return fallback
	}
	return v
}

func (r *envReader) boolean(key string, fallback bool) bool {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.problems = append(r.problems, errs.NewConfigurationError(key, fmt.Sprintf("%q is not a boolean", raw)))
		return fallback
	}
	return v
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.problems = append(r.problems, errs.NewConfigurationError(key, fmt.Sprintf("%q is not a duration", raw)))
		return fallback
	}
	return v
}

func (r *envReader) list(key, fallback string) []string {
	raw := r.str(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
