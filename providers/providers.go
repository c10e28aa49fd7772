// Package providers holds the framework's built-in service providers.
//
// ConfigServiceProvider is always registered explicitly first by the
// application kernel; the rest register themselves with the named-provider
// registry so config (app.providers) can select them:
//
//	{"providers": ["log", "routing", "view", "database", "schedule"]}
package providers

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vessel-go/framework/config"
	"github.com/vessel-go/framework/container"
	"github.com/vessel-go/framework/database"
	vhttp "github.com/vessel-go/framework/http"
	"github.com/vessel-go/framework/routing"
	"github.com/vessel-go/framework/schedule"
)

func init() {
	container.RegisterProviderFactory("log", func() container.ServiceProvider {
		return &LogServiceProvider{}
	})
	container.RegisterProviderFactory("routing", func() container.ServiceProvider {
		return &RoutingServiceProvider{}
	})
	container.RegisterProviderFactory("view", func() container.ServiceProvider {
		return &ViewServiceProvider{}
	})
	container.RegisterProviderFactory("database", func() container.ServiceProvider {
		return &DatabaseServiceProvider{}
	})
	container.RegisterProviderFactory("schedule", func() container.ServiceProvider {
		return &ScheduleServiceProvider{}
	})
}

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads .env files and binds the configuration
// repository.
//
// Bound abstracts:
//   - "config" → *config.Repository
//   - "configuration" (alias)
type ConfigServiceProvider struct {
	container.BaseProvider
	Dir      string   // configuration directory, default "./config"
	EnvFiles []string // dotenv files, default ".env"
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	config.LoadEnv(p.EnvFiles...)

	dir := p.Dir
	if dir == "" {
		dir = "./config"
	}
	app.Singleton("config", func(c *container.Container) (any, error) {
		return config.Load(dir)
	})
	app.Alias("config", "configuration")
	return nil
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider binds the shared logger.
//
// Bound abstracts:
//   - "log" → *logrus.Logger
//
// Configuration keys:
//   - log.level  (default "info")
//   - log.format ("json" or "text", default "text")
type LogServiceProvider struct {
	container.BaseProvider
}

func (p *LogServiceProvider) Register(app *container.Container) error {
	app.Singleton("log", func(c *container.Container) (any, error) {
		log := logrus.New()

		cfg, err := container.Resolve[*config.Repository](c, "config")
		if err != nil {
			return log, nil
		}
		if level, err := logrus.ParseLevel(cfg.GetString("log.level", "info")); err == nil {
			log.SetLevel(level)
		}
		if cfg.GetString("log.format", "text") == "json" {
			log.SetFormatter(&logrus.JSONFormatter{})
		}
		return log, nil
	})
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider binds the HTTP router.
//
// Bound abstracts:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	app.Singleton("router", func(c *container.Container) (any, error) {
		return routing.New(), nil
	})
	return nil
}

// ── ViewServiceProvider ───────────────────────────────────────────────────────

// ViewServiceProvider binds the template engine.
//
// Bound abstracts:
//   - "view" → *vhttp.ViewEngine
//
// Configuration keys (overridden by the struct fields when set):
//   - view.dir (default "./views")
//   - view.ext (default ".html")
type ViewServiceProvider struct {
	container.BaseProvider
	Dir string
	Ext string
}

func (p *ViewServiceProvider) Register(app *container.Container) error {
	app.Singleton("view", func(c *container.Container) (any, error) {
		dir, ext := p.Dir, p.Ext
		if cfg, err := container.Resolve[*config.Repository](c, "config"); err == nil {
			if dir == "" {
				dir = cfg.GetString("view.dir", "")
			}
			if ext == "" {
				ext = cfg.GetString("view.ext", "")
			}
		}
		if dir == "" {
			dir = "./views"
		}
		if ext == "" {
			ext = ".html"
		}
		return vhttp.NewViewEngine(dir, ext), nil
	})
	return nil
}

// ── DatabaseServiceProvider ───────────────────────────────────────────────────

// DatabaseServiceProvider binds the SQL connection pool. Deferred: the
// connection is not opened until something resolves "db".
//
// Bound abstracts:
//   - "db" → *sql.DB
//
// Configuration keys under "database": driver, host, port, name, username,
// password, dsn, max_open_conns, max_idle_conns.
type DatabaseServiceProvider struct {
	container.BaseProvider
}

func (p *DatabaseServiceProvider) Provides() []string { return []string{"db"} }
func (p *DatabaseServiceProvider) IsDeferred() bool   { return true }

func (p *DatabaseServiceProvider) Register(app *container.Container) error {
	app.Singleton("db", func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Repository](c, "config")
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		dbc := database.Defaults()
		dbc.Driver = cfg.GetString("database.driver", dbc.Driver)
		dbc.Host = cfg.GetString("database.host", "127.0.0.1")
		dbc.Port = cfg.GetInt("database.port", 0)
		dbc.Name = cfg.GetString("database.name", dbc.Name)
		dbc.Username = cfg.GetString("database.username", "")
		dbc.Password = cfg.GetString("database.password", "")
		dbc.DSN = cfg.GetString("database.dsn", "")
		dbc.MaxOpenConns = cfg.GetInt("database.max_open_conns", dbc.MaxOpenConns)
		dbc.MaxIdleConns = cfg.GetInt("database.max_idle_conns", dbc.MaxIdleConns)
		return database.Open(dbc)
	})
	return nil
}

// ── ScheduleServiceProvider ───────────────────────────────────────────────────

// ScheduleServiceProvider binds the cron scheduler and starts it on Boot
// when schedule.enabled is true.
//
// Bound abstracts:
//   - "schedule" → *schedule.Schedule
type ScheduleServiceProvider struct {
	container.BaseProvider
}

func (p *ScheduleServiceProvider) Register(app *container.Container) error {
	app.Singleton("schedule", func(c *container.Container) (any, error) {
		log, err := container.Resolve[*logrus.Logger](c, "log")
		if err != nil {
			log = logrus.New()
		}
		return schedule.New(log), nil
	})
	return nil
}

func (p *ScheduleServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Resolve[*config.Repository](app, "config")
	if err != nil || !cfg.GetBool("schedule.enabled", false) {
		return nil
	}
	sched, err := container.Resolve[*schedule.Schedule](app, "schedule")
	if err != nil {
		return err
	}
	sched.Start()
	return nil
}
