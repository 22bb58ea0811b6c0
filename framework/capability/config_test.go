package capability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-capability/framework/capability"
)

func parse(t *testing.T, src string) capability.Document {
	t.Helper()
	var doc capability.Document
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	return doc
}

// ── document shapes ──────────────────────────────────────────────────────────

func TestDocument_SingleEntry(t *testing.T) {
	doc := parse(t, `
ServerStorage:
  dependencyName: memory
  bucket: uploads
  ttl: 900
`)
	b := doc["ServerStorage"]
	require.Equal(t, capability.Dependency, b.Strategy)
	require.NotNil(t, b.Instance)
	assert.Equal(t, "memory", b.Instance.DependencyName)
	assert.Empty(t, b.Instance.InstanceName)
	assert.Equal(t, "uploads", b.Instance.Fields["bucket"])
	assert.Equal(t, 900, b.Instance.Fields["ttl"])
	assert.NotContains(t, b.Instance.Fields, "dependencyName")
}

func TestDocument_NamedList(t *testing.T) {
	doc := parse(t, `
ServerStorage:
  - dependencyName: memory
    instanceName: a
    bucket: alpha
  - dependencyName: memory
    instanceName: b
    bucket: beta
`)
	b := doc["ServerStorage"]
	require.Equal(t, capability.NamedDependency, b.Strategy)
	require.Len(t, b.Instances, 2)
	assert.Equal(t, "a", b.Instances[0].InstanceName)
	assert.Equal(t, "beta", b.Instances[1].Fields["bucket"])
}

func TestDocument_ExplicitForms(t *testing.T) {
	doc := parse(t, `
Single:
  bindingStrategy: Dependency
  instance:
    dependencyName: memory
Named:
  bindingStrategy: NamedDependency
  instances:
    - dependencyName: memory
      instanceName: only
`)
	assert.Equal(t, "memory", doc["Single"].Instance.DependencyName)
	assert.Equal(t, capability.NamedDependency, doc["Named"].Strategy)
	assert.Equal(t, "only", doc["Named"].Instances[0].InstanceName)
}

func TestDocument_StrategyDescriptor(t *testing.T) {
	doc := parse(t, `
ClientStorage:
  bindingStrategy: StrategyDependency
  dependencyName: memory
  defaultStorageType: memory
  instances:
    - dependencyName: memory
      instanceName: primary
`)
	b := doc["ClientStorage"]
	require.Equal(t, capability.StrategyDependency, b.Strategy)
	assert.Equal(t, "memory", b.Instance.DependencyName)
	assert.Equal(t, map[string]any{"defaultStorageType": "memory"}, b.Instance.Fields,
		"reserved keys must not leak into descriptor fields")
	require.Len(t, b.Instances, 1)
	assert.Equal(t, "primary", b.Instances[0].InstanceName)

	explicit := parse(t, `
ClientStorage:
  bindingStrategy: StrategyDependency
  instance:
    dependencyName: memory
    defaultStorageType: memory
  instances:
    - dependencyName: memory
      instanceName: browser
`)["ClientStorage"]
	require.Equal(t, capability.StrategyDependency, explicit.Strategy)
	require.NotNil(t, explicit.Instance)
	assert.Equal(t, "memory", explicit.Instance.DependencyName)
	assert.Equal(t, map[string]any{"defaultStorageType": "memory"}, explicit.Instance.Fields)
	require.Len(t, explicit.Instances, 1)
	assert.Equal(t, "browser", explicit.Instances[0].InstanceName)
}

func TestDocument_Invalid(t *testing.T) {
	var doc capability.Document

	err := yaml.Unmarshal([]byte("ServerStorage: memory"), &doc)
	assert.ErrorContains(t, err, "mapping or a list")

	err = yaml.Unmarshal([]byte("S:\n  bindingStrategy: Dependency\n"), &doc)
	assert.ErrorContains(t, err, "needs an instance")

	err = yaml.Unmarshal([]byte("S:\n  bindingStrategy: Random\n"), &doc)
	assert.ErrorContains(t, err, "unknown bindingStrategy")
}

// ── Config ───────────────────────────────────────────────────────────────────

func TestConfig_Decode_WeaklyTyped(t *testing.T) {
	cfg := capability.Config{DependencyName: "memory", Fields: map[string]any{
		"bucket": "uploads",
		"ttl":    "900",
		"public": "true",
	}}

	var out struct {
		Bucket string `mapstructure:"bucket"`
		TTL    int    `mapstructure:"ttl"`
		Public bool   `mapstructure:"public"`
	}
	require.NoError(t, cfg.Decode(&out))
	assert.Equal(t, "uploads", out.Bucket)
	assert.Equal(t, 900, out.TTL)
	assert.True(t, out.Public)
}

func TestConfig_Decode_Error(t *testing.T) {
	cfg := capability.Config{DependencyName: "memory", Fields: map[string]any{"ttl": "soon"}}

	var out struct {
		TTL int `mapstructure:"ttl"`
	}
	assert.ErrorContains(t, cfg.Decode(&out), `"memory"`)
}

func TestConfig_Field(t *testing.T) {
	cfg := capability.Config{DependencyName: "memory", InstanceName: "a", Fields: map[string]any{"ttl": 5}}

	assert.Equal(t, "memory", cfg.Field(capability.FieldDependencyName))
	assert.Equal(t, "a", cfg.Field(capability.FieldInstanceName))
	assert.Equal(t, "5", cfg.Field("ttl"))
	assert.Equal(t, "", cfg.Field("missing"))
}
