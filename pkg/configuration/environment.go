package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/workstream-hr/workstream/pkg/logging"
)

const Production = "production"

// Duplicate-detection windowing policies for transfer workflow records.
// "calendar-day" buckets duplicates by the UTC calendar date of creation;
// "none" disables transfer deduplication entirely.
const (
	DedupWindowCalendarDay = "calendar-day"
	DedupWindowNone        = "none"
)

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"workstream"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type WorkflowOptions struct {
	// DedupWindow names the duplicate-detection policy for transfer records.
	DedupWindow string `env:"DEDUP_WINDOW" envDefault:"calendar-day"`
	// SweepOnStart runs the deduplication sweep once during server startup.
	SweepOnStart bool `env:"SWEEP_ON_START" envDefault:"true"`
	// SweepSchedule is an optional cron expression for periodic sweeps.
	// Empty disables scheduling.
	SweepSchedule string `env:"SWEEP_SCHEDULE" envDefault:""`
	// StrictPropagation surfaces request-propagation failures to the caller
	// instead of logging and committing the status change anyway.
	StrictPropagation bool `env:"STRICT_PROPAGATION" envDefault:"false"`
}

func (w *WorkflowOptions) Validate() error {
	switch w.DedupWindow {
	case DedupWindowCalendarDay, DedupWindowNone:
		return nil
	default:
		return fmt.Errorf("unknown DEDUP_WINDOW %q, expected %q or %q",
			w.DedupWindow, DedupWindowCalendarDay, DedupWindowNone)
	}
}

type Configuration struct {
	Database   DatabaseOptions
	Prometheus PrometheusOptions
	Workflow   WorkflowOptions

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	Domain           string `env:"DOMAIN" envDefault:"localhost"`
	PageSize         int    `env:"PAGE_SIZE" envDefault:"25"`
	MaxPageSize      int    `env:"MAX_PAGE_SIZE" envDefault:"100"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`
	AllowedOrigins   string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:4200"`

	// TenantIDHeader carries the tenant scope for every API request.
	TenantIDHeader string `env:"TENANT_ID_HEADER" envDefault:"X-Tenant-ID"`
	// RequestIDHeader is echoed back when present, generated otherwise.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Workflow.Validate(); err != nil {
		return fmt.Errorf("workflow configuration error: %w", err)
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Println("failed to close log file:", err)
		}
		c.logFile = nil
	}
}
