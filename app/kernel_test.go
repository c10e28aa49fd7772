package app_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vessel-go/framework/app"
	"github.com/vessel-go/framework/container"
	vhttp "github.com/vessel-go/framework/http"
)

func newApp(t *testing.T, opts ...app.Option) *app.Application {
	t.Helper()
	opts = append([]app.Option{app.WithConfigDir("testdata/config")}, opts...)
	a, err := app.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })
	return a
}

func serve(a *app.Application, method, target string, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, r)
	return w
}

// ── bootstrap ─────────────────────────────────────────────────────────────────

func TestNew_RegistersConfiguredProviders(t *testing.T) {
	a := newApp(t)

	assert.True(t, a.Bound("config"))
	assert.True(t, a.Bound("log"))
	assert.True(t, a.Bound("router"))
	assert.False(t, a.Providers.Booted(), "New must not boot")
}

func TestNew_MissingConfigDir(t *testing.T) {
	_, err := app.New(app.WithConfigDir("testdata/no-such-dir"))
	assert.Error(t, err)
}

func TestNew_UnknownProviderName(t *testing.T) {
	// testdata-bad names a provider that has no registered factory
	_, err := app.New(app.WithConfigDir("testdata/config-bad"))

	var unknown *container.UnknownProviderError
	assert.ErrorAs(t, err, &unknown)
}

type recordingProvider struct {
	container.BaseProvider
	events *[]string
	name   string
}

func (p *recordingProvider) Register(c *container.Container) error {
	*p.events = append(*p.events, "register:"+p.name)
	return nil
}

func (p *recordingProvider) Boot(c *container.Container) error {
	*p.events = append(*p.events, "boot:"+p.name)
	return nil
}

func TestBoot_RunsAfterAllRegisters(t *testing.T) {
	var events []string
	a := newApp(t, app.WithProviders(
		&recordingProvider{events: &events, name: "A"},
		&recordingProvider{events: &events, name: "B"},
	))

	require.NoError(t, a.Boot())

	assert.Equal(t, []string{"register:A", "register:B", "boot:A", "boot:B"}, events)
}

func TestBoot_ProviderErrorAborts(t *testing.T) {
	boom := errors.New("boot failed")
	a := newApp(t, app.WithProviders(&failingBootProvider{err: boom}))

	err := a.Boot()
	require.ErrorIs(t, err, boom)
}

type failingBootProvider struct {
	container.BaseProvider
	err error
}

func (p *failingBootProvider) Register(c *container.Container) error { return nil }
func (p *failingBootProvider) Boot(c *container.Container) error     { return p.err }

func TestEnvironmentHelpers(t *testing.T) {
	a := newApp(t)

	assert.Equal(t, "testing", a.Environment())
	assert.True(t, a.IsTesting())
	assert.False(t, a.IsProduction())
	assert.True(t, a.IsDebug())
}

// ── dispatch ──────────────────────────────────────────────────────────────────

func TestAction_ResponderIsSent(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Boot())

	a.Get("/hello/{name}", func(req *vhttp.Request) vhttp.Responder {
		return vhttp.OK(map[string]any{"greeting": "hello " + req.RouteParam("name")})
	})

	w := serve(a, "GET", "/hello/world", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello world")
}

func TestAction_ErrorReturnsServerError(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Boot())

	a.Get("/broken", func() error {
		return errors.New("kaboom")
	})

	w := serve(a, "GET", "/broken", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Server Error.")
}

func TestAction_ResponseWrapperWritesDirectly(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Boot())

	a.Post("/direct", func(req *vhttp.Request, res *vhttp.Response) {
		var payload struct {
			Name string `json:"name"`
		}
		if err := req.Bind(&payload); err != nil {
			res.Error(http.StatusBadRequest, "bad payload")
			return
		}
		res.Created(payload.Name)
	})

	w := serve(a, "POST", "/direct", `{"name": "widget"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "widget")
}

type visitCounter struct {
	container.SharesInstance
	visits int
}

func TestAction_SharedStateSurvivesAcrossRequests(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Boot())

	a.Get("/count", func(counter *visitCounter) vhttp.Responder {
		counter.visits++
		return vhttp.OK(map[string]any{"visits": counter.visits})
	})

	serve(a, "GET", "/count", "")
	w := serve(a, "GET", "/count", "")

	assert.Contains(t, w.Body.String(), `"visits":2`)
}

func TestAction_ContainerParameterResolves(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Boot())
	a.Instance("answer", 42)

	a.Get("/answer", func(c *container.Container) vhttp.Responder {
		return vhttp.OK(map[string]any{"answer": c.MustMake("answer")})
	})

	w := serve(a, "GET", "/answer", "")
	assert.Contains(t, w.Body.String(), `"answer":42`)
}

func TestController_Base(t *testing.T) {
	var ctrl struct{ app.Controller }
	r := httptest.NewRequest("GET", "/x?q=1", nil)
	w := httptest.NewRecorder()

	assert.Equal(t, "1", ctrl.Request(r).Query("q"))
	ctrl.Response(w).NoContent()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

// ── shutdown ──────────────────────────────────────────────────────────────────

func TestShutdown_WithoutResolvedServices(t *testing.T) {
	a := newApp(t)
	assert.NoError(t, a.Shutdown())
}
