package container_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vessel-go/framework/container"
)

func TestBind_TransientBuildsFreshValues(t *testing.T) {
	c := container.New()

	n := 0
	c.Bind("counter", func(c *container.Container) (any, error) {
		n++
		return n, nil
	})

	first, err := c.Make("counter")
	require.NoError(t, err)
	second, err := c.Make("counter")
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestSingleton_CachesFirstResolution(t *testing.T) {
	c := container.New()

	calls := 0
	c.Singleton("svc", func(c *container.Container) (any, error) {
		calls++
		return &struct{ name string }{"svc"}, nil
	})

	first := c.MustMake("svc")
	second := c.MustMake("svc")

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestInstance_ReturnsTheBoundValue(t *testing.T) {
	c := container.New()
	value := &struct{ n int }{42}

	c.Instance("value", value)

	got, err := c.Make("value")
	require.NoError(t, err)
	assert.Same(t, value, got)
}

func TestRegister_LastWriteWins(t *testing.T) {
	c := container.New()

	c.Bind("svc", func(c *container.Container) (any, error) { return "first", nil })
	c.Bind("svc", func(c *container.Container) (any, error) { return "second", nil })

	got, err := c.Make("svc")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestRegister_OverwritingSingletonDropsCachedInstance(t *testing.T) {
	c := container.New()

	c.Singleton("svc", func(c *container.Container) (any, error) { return "old", nil })
	require.Equal(t, "old", c.MustMake("svc"))

	c.Singleton("svc", func(c *container.Container) (any, error) { return "new", nil })
	assert.Equal(t, "new", c.MustMake("svc"))
}

func TestMake_UnknownAbstract(t *testing.T) {
	c := container.New()

	_, err := c.Make("ghost")

	var notFound *container.BindingNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Abstract)
}

func TestMake_SelfBinding(t *testing.T) {
	c := container.New()

	got, err := c.Make("container")
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestMake_CircularDependency(t *testing.T) {
	c := container.New()

	c.Bind("a", func(c *container.Container) (any, error) { return c.Make("b") })
	c.Bind("b", func(c *container.Container) (any, error) { return c.Make("a") })

	_, err := c.Make("a")

	var cycle *container.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Chain)
}

func TestMake_SelfReferencingFactory(t *testing.T) {
	c := container.New()

	c.Bind("loop", func(c *container.Container) (any, error) { return c.Make("loop") })

	_, err := c.Make("loop")

	var cycle *container.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
}

func TestMake_DiamondDependencyIsNotACycle(t *testing.T) {
	c := container.New()

	c.Singleton("base", func(c *container.Container) (any, error) { return "base", nil })
	c.Bind("left", func(c *container.Container) (any, error) { return c.Make("base") })
	c.Bind("right", func(c *container.Container) (any, error) { return c.Make("base") })
	c.Bind("top", func(c *container.Container) (any, error) {
		if _, err := c.Make("left"); err != nil {
			return nil, err
		}
		return c.Make("right")
	})

	_, err := c.Make("top")
	assert.NoError(t, err)
}

func TestMake_FactoryErrorPropagates(t *testing.T) {
	c := container.New()
	boom := errors.New("boom")

	c.Singleton("svc", func(c *container.Container) (any, error) { return nil, boom })

	_, err := c.Make("svc")
	require.ErrorIs(t, err, boom)

	// a failed singleton is not cached
	assert.False(t, c.Resolved("svc"))
}

func TestAlias_ResolvesThroughCanonicalKey(t *testing.T) {
	c := container.New()

	c.Singleton("config", func(c *container.Container) (any, error) { return "cfg", nil })
	c.Alias("config", "configuration")

	assert.Equal(t, "cfg", c.MustMake("configuration"))
	assert.True(t, c.Bound("configuration"))
}

func TestAlias_SelfAliasPanics(t *testing.T) {
	c := container.New()
	assert.Panics(t, func() { c.Alias("x", "x") })
}

func TestTagged_ResolvesGroupInOrder(t *testing.T) {
	c := container.New()

	c.Bind("report.csv", func(c *container.Container) (any, error) { return "csv", nil })
	c.Bind("report.pdf", func(c *container.Container) (any, error) { return "pdf", nil })
	c.Tag([]string{"report.csv", "report.pdf"}, "reports")

	got, err := c.Tagged("reports")
	require.NoError(t, err)
	assert.Equal(t, []any{"csv", "pdf"}, got)
}

func TestExtend_DecoratesResolvedInstance(t *testing.T) {
	c := container.New()

	c.Bind("greeting", func(c *container.Container) (any, error) { return "hello", nil })
	c.Extend("greeting", func(instance any, c *container.Container) any {
		return instance.(string) + ", world"
	})

	assert.Equal(t, "hello, world", c.MustMake("greeting"))
}

func TestExtend_RewrapsCachedSingleton(t *testing.T) {
	c := container.New()

	c.Singleton("svc", func(c *container.Container) (any, error) { return "base", nil })
	require.Equal(t, "base", c.MustMake("svc"))

	c.Extend("svc", func(instance any, c *container.Container) any {
		return instance.(string) + "+ext"
	})

	assert.Equal(t, "base+ext", c.MustMake("svc"))
}

func TestExtend_ExtenderMayResolveFromContainer(t *testing.T) {
	c := container.New()
	c.Instance("suffix", "!")

	c.Singleton("greeting", func(c *container.Container) (any, error) { return "hey", nil })
	require.Equal(t, "hey", c.MustMake("greeting"))

	c.Extend("greeting", func(instance any, c *container.Container) any {
		return instance.(string) + c.MustMake("suffix").(string)
	})

	assert.Equal(t, "hey!", c.MustMake("greeting"))
}

func TestSingleton_ConcurrentFirstResolutionConverges(t *testing.T) {
	c := container.New()
	c.Singleton("svc", func(c *container.Container) (any, error) {
		return &struct{ n int }{}, nil
	})

	results := make([]any, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.MustMake("svc")
		}(i)
	}
	wg.Wait()

	for _, got := range results[1:] {
		assert.Same(t, results[0], got)
	}
}

func TestContextual_OverridesDependencyPerConsumer(t *testing.T) {
	c := container.New()

	c.Bind("store", func(c *container.Container) (any, error) { return "default-store", nil })
	c.Bind("reports", func(c *container.Container) (any, error) { return c.Make("store") })
	c.Bind("uploads", func(c *container.Container) (any, error) { return c.Make("store") })

	c.When("reports").Needs("store").GiveValue("report-store")

	assert.Equal(t, "report-store", c.MustMake("reports"))
	assert.Equal(t, "default-store", c.MustMake("uploads"))
}

func TestRebinding_FiresOnReRegistration(t *testing.T) {
	c := container.New()

	c.Singleton("svc", func(c *container.Container) (any, error) { return "v1", nil })
	require.Equal(t, "v1", c.MustMake("svc"))

	var seen any
	c.Rebinding("svc", func(instance any) { seen = instance })

	c.Singleton("svc", func(c *container.Container) (any, error) { return "v2", nil })

	assert.Equal(t, "v2", seen)
}

func TestAfterResolving_FiresPerResolution(t *testing.T) {
	c := container.New()

	var resolved []string
	c.AfterResolving(func(abstract string, instance any) {
		resolved = append(resolved, abstract)
	})

	c.Bind("svc", func(c *container.Container) (any, error) { return 1, nil })
	c.MustMake("svc")
	c.MustMake("svc")

	assert.Equal(t, []string{"svc", "svc"}, resolved)
}

func TestForget_DropsBindingAndInstance(t *testing.T) {
	c := container.New()

	c.Singleton("svc", func(c *container.Container) (any, error) { return 1, nil })
	c.MustMake("svc")

	c.Forget("svc")

	assert.False(t, c.Bound("svc"))
	_, err := c.Make("svc")
	var notFound *container.BindingNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestFlush_KeepsSelfBinding(t *testing.T) {
	c := container.New()
	c.Singleton("svc", func(c *container.Container) (any, error) { return 1, nil })

	c.Flush()

	assert.False(t, c.Bound("svc"))
	assert.Same(t, c, c.MustMake("container"))
}

func TestResolve_TypedHelper(t *testing.T) {
	c := container.New()
	c.Instance("n", 42)

	n, err := container.Resolve[int](c, "n")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestResolve_TypeMismatch(t *testing.T) {
	c := container.New()
	c.Instance("n", 42)

	_, err := container.Resolve[string](c, "n")

	var mismatch *container.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "n", mismatch.Abstract)
}

func TestResolved_TracksSingletonResolution(t *testing.T) {
	c := container.New()
	c.Singleton("svc", func(c *container.Container) (any, error) { return 1, nil })

	assert.False(t, c.Resolved("svc"))
	c.MustMake("svc")
	assert.True(t, c.Resolved("svc"))
}
