package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-capability/framework/container"
)

// ── stub providers ────────────────────────────────────────────────────────────

func constant(v any) container.Factory {
	return func(container.Scope) (any, error) { return v, nil }
}

type eagerProvider struct {
	container.BaseProvider
	registerCalled bool
	bootCalled     bool
}

func (p *eagerProvider) Register(app *container.Container) error {
	p.registerCalled = true
	app.Singleton("eager-svc", constant("eager"))
	return nil
}

func (p *eagerProvider) Boot(app *container.Container) error {
	p.bootCalled = true
	return nil
}

// deferredProvider is lazy: it is only registered when "deferred-svc" is first resolved.
type deferredProvider struct {
	container.BaseProvider
	registerCount int
}

func (p *deferredProvider) Register(app *container.Container) error {
	p.registerCount++
	app.Singleton("deferred-svc", constant("deferred-value"))
	return nil
}

func (p *deferredProvider) IsDeferred() bool   { return true }
func (p *deferredProvider) Provides() []string { return []string{"deferred-svc"} }

type failingProvider struct {
	container.BaseProvider
	registerErr error
	bootErr     error
}

func (p *failingProvider) Register(app *container.Container) error { return p.registerErr }
func (p *failingProvider) Boot(app *container.Container) error     { return p.bootErr }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestRegistry_EagerProvider_RegisterCalled(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))

	assert.True(t, p.registerCalled, "Register() should be called immediately for eager providers")
}

func TestRegistry_EagerProvider_BootCalledAfterBoot(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	assert.False(t, p.bootCalled, "Boot() should NOT be called before registry.Boot()")

	require.NoError(t, reg.Boot())
	assert.True(t, p.bootCalled)
	assert.True(t, reg.Booted())
}

func TestRegistry_EagerProvider_ServiceResolvable(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&eagerProvider{}))
	require.NoError(t, reg.Boot())

	got, err := container.Resolve[string](c, "eager-svc")
	require.NoError(t, err)
	assert.Equal(t, "eager", got)
}

func TestRegistry_DuplicateRegister_Ignored(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Register(p))

	assert.Len(t, reg.Providers(), 1)
}

func TestRegistry_RegisterError_Propagates(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	boom := errors.New("boom")

	err := reg.Register(&failingProvider{registerErr: boom})

	require.ErrorIs(t, err, boom)
	assert.Empty(t, reg.Providers())
}

func TestRegistry_BootError_Propagates(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	boom := errors.New("boot failed")
	require.NoError(t, reg.Register(&failingProvider{bootErr: boom}))

	require.ErrorIs(t, reg.Boot(), boom)
}

// ── Deferred providers ────────────────────────────────────────────────────────

func TestRegistry_DeferredProvider_NotRegisteredEagerly(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())

	p := &deferredProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Boot())

	assert.Zero(t, p.registerCount, "deferred provider Register() should not run until Make()")
	assert.Empty(t, reg.Providers(), "deferred providers are not listed as eager")
}

func TestRegistry_DeferredProvider_RegisteredOnFirstMake(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Boot())

	got, err := container.Resolve[string](c, "deferred-svc")
	require.NoError(t, err)
	assert.Equal(t, "deferred-value", got)

	_, err = c.Make("deferred-svc")
	require.NoError(t, err)
	assert.Equal(t, 1, p.registerCount)
}

// ── Boot after registration (late provider) ───────────────────────────────────

func TestRegistry_RegisterAfterBoot_BootsImmediately(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	require.NoError(t, reg.Boot())

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))

	assert.True(t, p.bootCalled, "provider registered after Boot() should be booted immediately")
}

func TestBaseProvider_Defaults(t *testing.T) {
	var p container.BaseProvider

	assert.NoError(t, p.Boot(container.New()))
	assert.False(t, p.IsDeferred())
	assert.Empty(t, p.Provides())
}
