package capability_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-capability/framework/capability"
	"github.com/km-arc/go-capability/framework/container"
)

const blobType capability.Type = "Blob"

type blob interface{ Name() string }

type blobService struct{ name string }

func (b *blobService) Name() string { return b.name }

// backend binds a blobService named after its configured instance.
type backend struct {
	capability.Base
}

func newBackend(name string) *backend {
	return &backend{Base: capability.NewBase(blobType, name)}
}

func (b *backend) Register(_ context.Context, c container.Scope, cfg capability.Config) error {
	c.Singleton(string(blobType), func(container.Scope) (any, error) {
		return &blobService{name: b.Name() + ":" + cfg.InstanceName}, nil
	})
	return nil
}

type blobRouter struct{ pool *capability.Pool[blob] }

func (r *blobRouter) Name() string { return "router" }

func newBlobRouter(p *capability.Pool[blob]) blob { return &blobRouter{pool: p} }

type dispatches struct {
	calls []string
}

func (d *dispatches) ObserveDispatch(t capability.Type, discriminator string, matched bool) {
	outcome := "miss"
	if matched {
		outcome = "hit"
	}
	d.calls = append(d.calls, discriminator+"="+outcome)
}

// ── Factory ──────────────────────────────────────────────────────────────────

func TestFactory_GetAndNames(t *testing.T) {
	f := capability.NewFactory(blobType, nil)
	f.Add(newBackend("b"))
	f.Add(newBackend("a"))

	impl, err := f.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", impl.Name())
	assert.Equal(t, []string{"a", "b"}, f.Names())
	assert.Equal(t, blobType, f.Type())
}

func TestFactory_Get_Unregistered(t *testing.T) {
	f := capability.NewFactory(blobType, nil)
	f.Add(newBackend("a"))

	_, err := f.Get("z")

	var unreg *capability.UnregisteredImplementationError
	require.ErrorAs(t, err, &unreg)
	assert.Equal(t, []string{"a"}, unreg.Known)
	assert.Contains(t, err.Error(), "registered: a")
}

func TestFactory_Add_ReplacesAndWarns(t *testing.T) {
	log, hook := test.NewNullLogger()
	f := capability.NewFactory(blobType, logrus.NewEntry(log))

	first, second := newBackend("a"), newBackend("a")
	f.Add(first)
	f.Add(second)

	impl, err := f.Get("a")
	require.NoError(t, err)
	assert.Same(t, second, impl)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "a", hook.LastEntry().Data["implementation"])
}

func TestFactory_CapabilityChecks(t *testing.T) {
	f := capability.NewFactory(blobType, nil)
	f.Add(newBackend("plain"))
	f.Add(capability.Named(newBackend("named")))
	f.Add(capability.NewStrategy(newBackend("strategy"), newBlobRouter))

	_, err := f.GetNamedCapable("plain")
	var noNamed *capability.UnsupportedNamedInstanceError
	assert.ErrorAs(t, err, &noNamed)

	_, err = f.GetNamedCapable("named")
	assert.NoError(t, err)

	_, err = f.GetStrategyCapable("named")
	var noStrategy *capability.UnsupportedStrategyError
	assert.ErrorAs(t, err, &noStrategy)

	_, err = f.GetStrategyCapable("strategy")
	assert.NoError(t, err)
	_, err = f.GetNamedCapable("strategy")
	assert.NoError(t, err, "strategy implementations support named instances")
}

// ── named instances ──────────────────────────────────────────────────────────

func TestRegisterInstance_IsolatedChildScopes(t *testing.T) {
	c := container.New()
	impl := newBackend("mem")

	_, err := capability.RegisterInstance(context.Background(), c, impl, capability.Config{DependencyName: "mem", InstanceName: "x"})
	require.NoError(t, err)
	_, err = capability.RegisterInstance(context.Background(), c, impl, capability.Config{DependencyName: "mem", InstanceName: "y"})
	require.NoError(t, err)

	x, err := container.ResolveNamed[blob](c, string(blobType), "x")
	require.NoError(t, err)
	y, err := container.ResolveNamed[blob](c, string(blobType), "y")
	require.NoError(t, err)

	assert.Equal(t, "mem:x", x.Name())
	assert.Equal(t, "mem:y", y.Name())
	assert.False(t, c.Bound(string(blobType)))
}

func TestRegisterInstance_RequiresName(t *testing.T) {
	_, err := capability.RegisterInstance(context.Background(), container.New(), newBackend("mem"), capability.Config{DependencyName: "mem"})

	var missing *capability.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, capability.FieldInstanceName, missing.Field)
}

func TestNamed_KeepsExistingNamedImplementation(t *testing.T) {
	s := capability.NewStrategy(newBackend("s"), newBlobRouter)
	assert.Same(t, s, capability.Named(s))
}

// ── Pool / Strategy ──────────────────────────────────────────────────────────

func TestPool_Route(t *testing.T) {
	a, b := &blobService{name: "a"}, &blobService{name: "b"}
	p, err := capability.NewPool[blob](blobType, []capability.PoolMember{
		{Tag: "azure", Instance: a},
		{Tag: "gcp", Instance: b},
	})
	require.NoError(t, err)

	got, err := p.Route("gcp")
	require.NoError(t, err)
	assert.Same(t, b, got)
	assert.Equal(t, []string{"azure", "gcp"}, p.Tags())
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, blobType, p.Type())

	_, err = p.Route("aws")
	var unknown *capability.UnknownPoolMemberError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "aws", unknown.Discriminator)
}

func TestPool_RejectsWrongMemberType(t *testing.T) {
	_, err := capability.NewPool[blob](blobType, []capability.PoolMember{{Tag: "x", Instance: 42}})
	assert.ErrorContains(t, err, `pool member "x"`)
}

func TestStrategy_AggregateOverContributedInstances(t *testing.T) {
	c := container.New()
	obs := &dispatches{}
	c.Instance(capability.ObserverKey, obs)

	azure := capability.NewStrategy(newBackend("azure"), newBlobRouter)
	gcp := capability.NewStrategy(newBackend("gcp"), newBlobRouter)
	ctx := context.Background()

	require.NoError(t, azure.RegisterInstance(ctx, c, capability.Config{DependencyName: "azure", InstanceName: "one"}))
	require.NoError(t, gcp.RegisterInstance(ctx, c, capability.Config{DependencyName: "gcp", InstanceName: "two"}))
	require.NoError(t, azure.RegisterStrategy(ctx, c, capability.Config{DependencyName: "azure"}))

	agg, err := container.Resolve[blob](c, string(blobType))
	require.NoError(t, err)
	router := agg.(*blobRouter)

	got, err := router.pool.Route("gcp")
	require.NoError(t, err)
	assert.Equal(t, "gcp:two", got.Name())

	_, err = router.pool.Route("aws")
	assert.Error(t, err)
	assert.Equal(t, []string{"gcp=hit", "aws=miss"}, obs.calls)
}

func TestStrategy_RegisterStrategy_RequiresDependencyName(t *testing.T) {
	s := capability.NewStrategy(newBackend("azure"), newBlobRouter)

	err := s.RegisterStrategy(context.Background(), container.New(), capability.Config{})

	var missing *capability.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, capability.FieldDependencyName, missing.Field)
}
