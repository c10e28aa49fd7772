package providers_test

import (
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vessel-go/framework/config"
	"github.com/vessel-go/framework/container"
	vhttp "github.com/vessel-go/framework/http"
	"github.com/vessel-go/framework/providers"
	"github.com/vessel-go/framework/routing"
	"github.com/vessel-go/framework/schedule"
)

// bootstrap registers the config provider against testdata and returns the
// container and registry.
func bootstrap(t *testing.T) (*container.Container, *container.ProviderRegistry) {
	t.Helper()
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&providers.ConfigServiceProvider{Dir: "testdata/config"}))
	return c, reg
}

func TestConfigServiceProvider(t *testing.T) {
	c, _ := bootstrap(t)

	cfg, err := container.Resolve[*config.Repository](c, "config")
	require.NoError(t, err)
	assert.Equal(t, "providers-test", cfg.GetString("app.name", ""))

	// alias points at the same singleton
	aliased, err := container.Resolve[*config.Repository](c, "configuration")
	require.NoError(t, err)
	assert.Same(t, cfg, aliased)
}

func TestLogServiceProvider_ConfiguredFromRepository(t *testing.T) {
	c, reg := bootstrap(t)
	require.NoError(t, reg.Register(&providers.LogServiceProvider{}))

	log, err := container.Resolve[*logrus.Logger](c, "log")
	require.NoError(t, err)

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestLogServiceProvider_WorksWithoutConfig(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&providers.LogServiceProvider{}))

	log, err := container.Resolve[*logrus.Logger](c, "log")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestRoutingServiceProvider(t *testing.T) {
	c, reg := bootstrap(t)
	require.NoError(t, reg.Register(&providers.RoutingServiceProvider{}))

	router, err := container.Resolve[*routing.Router](c, "router")
	require.NoError(t, err)

	again, err := container.Resolve[*routing.Router](c, "router")
	require.NoError(t, err)
	assert.Same(t, router, again)
}

func TestViewServiceProvider_ReadsConfigKeys(t *testing.T) {
	c, reg := bootstrap(t)
	require.NoError(t, reg.Register(&providers.ViewServiceProvider{}))

	engine, err := container.Resolve[*vhttp.ViewEngine](c, "view")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, engine.Render(w, "hello", map[string]any{"name": "Vessel"}))
	assert.Equal(t, "Hello, Vessel!\n", w.Body.String())
}

func TestDatabaseServiceProvider_IsDeferred(t *testing.T) {
	c, reg := bootstrap(t)

	p := &providers.DatabaseServiceProvider{}
	require.True(t, p.IsDeferred())
	require.NoError(t, reg.Register(p))

	// not opened until someone asks for it
	assert.False(t, c.Resolved("db"))

	db, err := container.Resolve[*sql.DB](c, "db")
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)

	again, err := container.Resolve[*sql.DB](c, "db")
	require.NoError(t, err)
	assert.Same(t, db, again)
}

func TestScheduleServiceProvider(t *testing.T) {
	c, reg := bootstrap(t)
	require.NoError(t, reg.Register(&providers.LogServiceProvider{}))
	require.NoError(t, reg.Register(&providers.ScheduleServiceProvider{}))
	require.NoError(t, reg.Boot())

	sched, err := container.Resolve[*schedule.Schedule](c, "schedule")
	require.NoError(t, err)
	require.NoError(t, sched.Call("tick", "@hourly", func() error { return nil }))
	sched.Stop()
}

func TestNamedProviders_SelectableFromConfig(t *testing.T) {
	c, reg := bootstrap(t)

	cfg := container.MustResolve[*config.Repository](c, "config")
	require.NoError(t, reg.RegisterNamed(cfg.GetStrings("app.providers")))
	require.NoError(t, reg.Boot())

	assert.True(t, c.Bound("log"))
	assert.True(t, c.Bound("router"))
	assert.True(t, c.Bound("view"))
}
