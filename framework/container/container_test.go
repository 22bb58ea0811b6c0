package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-capability/framework/container"
)

type account struct{ name string }

// ── Bind / Singleton / Instance ───────────────────────────────────────────────

func TestContainer_Bind_IsTransient(t *testing.T) {
	c := container.New()
	c.Bind("account", func(container.Scope) (any, error) { return &account{name: "a"}, nil })

	first, err := c.Make("account")
	require.NoError(t, err)
	second, err := c.Make("account")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}

func TestContainer_Singleton_IsCached(t *testing.T) {
	c := container.New()
	calls := 0
	c.Singleton("account", func(container.Scope) (any, error) {
		calls++
		return &account{name: "a"}, nil
	})

	first, err := c.Make("account")
	require.NoError(t, err)
	second, err := c.Make("account")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestContainer_Instance(t *testing.T) {
	c := container.New()
	acc := &account{name: "prebuilt"}
	c.Instance("account", acc)

	got, err := container.Resolve[*account](c, "account")
	require.NoError(t, err)
	assert.Same(t, acc, got)
}

func TestContainer_BindsItself(t *testing.T) {
	c := container.New()

	got, err := container.Resolve[*container.Container](c, "container")
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestContainer_Rebind_OverwritesAndDropsCachedSingleton(t *testing.T) {
	c := container.New()
	c.Singleton("account", constant(&account{name: "old"}))
	_, err := c.Make("account")
	require.NoError(t, err)

	c.Singleton("account", constant(&account{name: "new"}))

	got, err := container.Resolve[*account](c, "account")
	require.NoError(t, err)
	assert.Equal(t, "new", got.name)
}

// ── Errors ────────────────────────────────────────────────────────────────────

func TestContainer_Make_Unbound(t *testing.T) {
	c := container.New()

	_, err := c.Make("missing")

	var notBound *container.NotBoundError
	require.ErrorAs(t, err, &notBound)
	assert.Equal(t, "missing", notBound.Key)
}

func TestContainer_Make_FactoryError(t *testing.T) {
	c := container.New()
	boom := errors.New("boom")
	c.Singleton("broken", func(container.Scope) (any, error) { return nil, boom })

	_, err := c.Make("broken")

	require.ErrorIs(t, err, boom)
	var resolveErr *container.ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, "broken", resolveErr.Key)
}

func TestContainer_Forget_RemovesBinding(t *testing.T) {
	c := container.New()
	c.Instance("account", &account{})
	c.SingletonNamed("account", "x", constant(&account{}))

	c.Forget("account")

	_, err := c.Make("account")
	assert.ErrorAs(t, err, new(*container.NotBoundError))
	_, err = c.MakeNamed("account", "x")
	assert.ErrorAs(t, err, new(*container.NotBoundError))
	assert.False(t, c.Bound("account"))
}

func TestResolve_TypeMismatch(t *testing.T) {
	c := container.New()
	c.Instance("account", "not an account")

	_, err := container.Resolve[*account](c, "account")
	assert.Error(t, err)
}

func TestMustResolve_PanicsWhenUnbound(t *testing.T) {
	c := container.New()
	assert.Panics(t, func() { container.MustResolve[*account](c, "missing") })
}

// ── Named bindings ────────────────────────────────────────────────────────────

func TestContainer_SingletonNamed(t *testing.T) {
	c := container.New()
	c.SingletonNamed("account", "a", constant(&account{name: "a"}))
	c.SingletonNamed("account", "b", constant(&account{name: "b"}))

	a, err := container.ResolveNamed[*account](c, "account", "a")
	require.NoError(t, err)
	b, err := container.ResolveNamed[*account](c, "account", "b")
	require.NoError(t, err)

	assert.Equal(t, "a", a.name)
	assert.Equal(t, "b", b.name)

	_, err = c.Make("account")
	assert.ErrorAs(t, err, new(*container.NotBoundError), "named bindings are not visible without a name")

	var notBound *container.NotBoundError
	_, err = c.MakeNamed("account", "c")
	require.ErrorAs(t, err, &notBound)
	assert.Equal(t, "c", notBound.Name)
}

// ── All ───────────────────────────────────────────────────────────────────────

func TestContainer_All_RegistrationOrder(t *testing.T) {
	c := container.New()
	c.SingletonNamed("pool", "second", constant("2"))
	c.SingletonNamed("pool", "first", constant("1"))
	c.Instance("pool", "plain")
	c.SingletonNamed("pool", "second", constant("2b")) // rebinding keeps its slot

	got, err := c.All("pool")
	require.NoError(t, err)
	assert.Equal(t, []any{"2b", "1", "plain"}, got)
}

func TestContainer_All_EmptyIsNotAnError(t *testing.T) {
	got, err := container.New().All("nothing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestContainer_All_IncludesAncestors(t *testing.T) {
	parent := container.New()
	parent.SingletonNamed("pool", "a", constant("parent-a"))
	parent.SingletonNamed("pool", "b", constant("parent-b"))
	child := parent.Child()
	child.SingletonNamed("pool", "b", constant("child-b"))
	child.SingletonNamed("pool", "c", constant("child-c"))

	got, err := child.All("pool")
	require.NoError(t, err)
	assert.Equal(t, []any{"parent-a", "child-b", "child-c"}, got)

	got, err = parent.All("pool")
	require.NoError(t, err)
	assert.Equal(t, []any{"parent-a", "parent-b"}, got)
}

// ── Scopes ────────────────────────────────────────────────────────────────────

func TestContainer_Child_SeesParent(t *testing.T) {
	parent := container.New()
	parent.Instance("shared", "from-parent")
	child := parent.Child()

	got, err := container.Resolve[string](child, "shared")
	require.NoError(t, err)
	assert.Equal(t, "from-parent", got)
}

func TestContainer_Child_BindingsStayPrivate(t *testing.T) {
	parent := container.New()
	a := parent.Child()
	b := parent.Child()
	a.Instance("settings", "a")

	_, err := parent.Make("settings")
	assert.ErrorAs(t, err, new(*container.NotBoundError))
	_, err = b.Make("settings")
	assert.ErrorAs(t, err, new(*container.NotBoundError))

	got, err := container.Resolve[string](a, "settings")
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestContainer_ParentFactoryRunsInParentScope(t *testing.T) {
	parent := container.New()
	parent.Singleton("reader", func(c container.Scope) (any, error) {
		// Must not see the child's "settings".
		_, err := c.Make("settings")
		return err != nil, nil
	})
	child := parent.Child()
	child.Instance("settings", "child-only")

	got, err := container.Resolve[bool](child, "reader")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestContainer_Child_ShadowsParent(t *testing.T) {
	parent := container.New()
	parent.Instance("settings", "parent")
	child := parent.Child()
	child.Instance("settings", "child")

	got, err := container.Resolve[string](child, "settings")
	require.NoError(t, err)
	assert.Equal(t, "child", got)

	got, err = container.Resolve[string](parent, "settings")
	require.NoError(t, err)
	assert.Equal(t, "parent", got)
}

// ── Alias / Bindings / Callbacks ──────────────────────────────────────────────

func TestContainer_Alias(t *testing.T) {
	c := container.New()
	c.Instance("config", "cfg")
	c.Alias("config", "configuration")

	got, err := container.Resolve[string](c, "configuration")
	require.NoError(t, err)
	assert.Equal(t, "cfg", got)

	assert.Panics(t, func() { c.Alias("x", "x") })
}

func TestContainer_Bindings_ListsPlainAndNamed(t *testing.T) {
	c := container.New()
	c.Instance("b", 1)
	c.SingletonNamed("a", "x", constant(2))

	assert.Equal(t, []string{"a#x", "b", "container"}, c.Bindings())
}

func TestContainer_AfterResolving(t *testing.T) {
	c := container.New()
	c.Singleton("svc", constant("value"))

	var seen []string
	c.AfterResolving(func(abstract string, _ any) { seen = append(seen, abstract) })

	_, err := c.Make("svc")
	require.NoError(t, err)
	_, err = c.Make("svc") // cached, no second callback
	require.NoError(t, err)

	assert.Equal(t, []string{"svc"}, seen)
}
