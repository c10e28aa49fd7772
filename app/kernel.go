// Package app is the application kernel: it wires the container, the
// provider lifecycle, configuration, routing, and the HTTP server into one
// bootstrap surface.
package app

import (
	"database/sql"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vessel-go/framework/config"
	"github.com/vessel-go/framework/container"
	vhttp "github.com/vessel-go/framework/http"
	"github.com/vessel-go/framework/providers"
	"github.com/vessel-go/framework/routing"
	"github.com/vessel-go/framework/schedule"
)

// Application is the top-level application value. It embeds the container
// so user code calls app.Bind, app.Singleton, and app.Make directly; there
// is no process-wide instance, callers pass the Application explicitly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	configDir string
	envFiles  []string
	pending   []container.ServiceProvider
}

// Option configures New.
type Option func(*Application)

// WithConfigDir sets the configuration directory (default "./config").
func WithConfigDir(dir string) Option {
	return func(a *Application) { a.configDir = dir }
}

// WithEnvFiles sets the dotenv files loaded before configuration (default
// ".env").
func WithEnvFiles(files ...string) Option {
	return func(a *Application) { a.envFiles = files }
}

// WithProviders registers extra providers after the configured ones.
func WithProviders(ps ...container.ServiceProvider) Option {
	return func(a *Application) { a.pending = append(a.pending, ps...) }
}

// New creates the application and runs the register phase: configuration
// first, then every provider named in app.providers in declared order, then
// any WithProviders extras. Boot has not run when New returns.
func New(opts ...Option) (*Application, error) {
	c := container.New()
	a := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		configDir: "./config",
	}
	for _, opt := range opts {
		opt(a)
	}

	err := a.Providers.Register(&providers.ConfigServiceProvider{
		Dir:      a.configDir,
		EnvFiles: a.envFiles,
	})
	if err != nil {
		return nil, err
	}

	cfg, err := container.Resolve[*config.Repository](c, "config")
	if err != nil {
		return nil, err
	}

	if err := a.Providers.RegisterNamed(cfg.GetStrings("app.providers")); err != nil {
		return nil, err
	}
	for _, p := range a.pending {
		if err := a.Providers.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the boot phase on all registered providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// ── Accessors ────────────────────────────────────────────────────────────────

// Config resolves the configuration repository.
func (a *Application) Config() *config.Repository {
	return container.MustResolve[*config.Repository](a.Container, "config")
}

// Router resolves the HTTP router.
func (a *Application) Router() *routing.Router {
	return container.MustResolve[*routing.Router](a.Container, "router")
}

// Log resolves the shared logger, falling back to a fresh logger when no
// log provider is registered.
func (a *Application) Log() *logrus.Logger {
	if log, err := container.Resolve[*logrus.Logger](a.Container, "log"); err == nil {
		return log
	}
	return logrus.StandardLogger()
}

// Views resolves the template engine.
func (a *Application) Views() *vhttp.ViewEngine {
	return container.MustResolve[*vhttp.ViewEngine](a.Container, "view")
}

// DB resolves the SQL connection pool, opening it on first use.
func (a *Application) DB() (*sql.DB, error) {
	return container.Resolve[*sql.DB](a.Container, "db")
}

// Schedule resolves the cron scheduler.
func (a *Application) Schedule() *schedule.Schedule {
	return container.MustResolve[*schedule.Schedule](a.Container, "schedule")
}

// ── Dispatch ─────────────────────────────────────────────────────────────────

// Action adapts a dependency-injected function into an http.HandlerFunc.
// Exactly one *vhttp.Request and *vhttp.Response are created per dispatch
// and offered to fn alongside the raw *http.Request and ResponseWriter;
// every other parameter resolves through the container.
//
// Return values are inspected in order: a non-nil error logs and sends a
// 500, a vhttp.Responder is sent to the client. Anything else is ignored.
func (a *Application) Action(fn any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := vhttp.NewRequest(r)
		res := vhttp.NewResponse(w)

		results, err := a.Call(fn, req, res, r, w)
		if err != nil {
			a.Log().WithError(err).Error("action dispatch failed")
			res.ServerError()
			return
		}

		for _, result := range results {
			if e, ok := result.(error); ok && e != nil {
				a.Log().WithError(e).Error("action returned error")
				res.ServerError()
				return
			}
		}
		for _, result := range results {
			if responder, ok := result.(vhttp.Responder); ok && responder != nil {
				if err := responder.Send(w); err != nil {
					a.Log().WithError(err).Error("send response failed")
				}
				return
			}
		}
	}
}

// Handle registers a dependency-injected action on the router.
func (a *Application) Handle(method, pattern string, fn any) {
	a.Router().Method(method, pattern, a.Action(fn))
}

func (a *Application) Get(pattern string, fn any)    { a.Handle(http.MethodGet, pattern, fn) }
func (a *Application) Post(pattern string, fn any)   { a.Handle(http.MethodPost, pattern, fn) }
func (a *Application) Put(pattern string, fn any)    { a.Handle(http.MethodPut, pattern, fn) }
func (a *Application) Patch(pattern string, fn any)  { a.Handle(http.MethodPatch, pattern, fn) }
func (a *Application) Delete(pattern string, fn any) { a.Handle(http.MethodDelete, pattern, fn) }

// ── Lifecycle ────────────────────────────────────────────────────────────────

// Run boots the application (if needed) and serves HTTP on app.port
// (default 8000). It blocks until the server stops.
func (a *Application) Run() error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	cfg := a.Config()
	addr := ":" + cfg.GetString("app.port", "8000")
	a.Log().WithFields(logrus.Fields{
		"app":  cfg.GetString("app.name", "vessel"),
		"addr": addr,
		"env":  a.Environment(),
	}).Info("http server listening")
	return http.ListenAndServe(addr, a.Router())
}

// Shutdown releases resources held by resolved services: the scheduler is
// stopped and the database pool closed. Never-resolved services are not
// touched, so Shutdown does not open a connection just to close it.
func (a *Application) Shutdown() error {
	if a.Resolved("schedule") {
		a.Schedule().Stop()
	}
	if a.Resolved("db") {
		db, err := a.DB()
		if err != nil {
			return err
		}
		return db.Close()
	}
	return nil
}

// ── Environment ──────────────────────────────────────────────────────────────

// Environment returns app.env (default "production").
func (a *Application) Environment() string {
	return a.Config().GetString("app.env", "production")
}

func (a *Application) IsLocal() bool      { return a.Environment() == "local" }
func (a *Application) IsProduction() bool { return a.Environment() == "production" }
func (a *Application) IsTesting() bool    { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool      { return a.Config().GetBool("app.debug", false) }

// Version is the framework release.
func (a *Application) Version() string { return "0.1.0" }

// ── Controller base ──────────────────────────────────────────────────────────

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

// Request wraps a raw request.
func (Controller) Request(r *http.Request) *vhttp.Request {
	return vhttp.NewRequest(r)
}

// Response wraps a raw writer.
func (Controller) Response(w http.ResponseWriter) *vhttp.Response {
	return vhttp.NewResponse(w)
}
