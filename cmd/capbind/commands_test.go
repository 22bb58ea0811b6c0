package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-capability/framework/binding"
	"github.com/km-arc/go-capability/framework/capability"
)

// ── helpers ──────────────────────────────────────────────────────────────────

const document = `
ServerStorage:
  - dependencyName: memory
    instanceName: primary
    bucket: uploads
  - dependencyName: memory
    instanceName: archive
    bucket: archive
ClientStorage:
  bindingStrategy: StrategyDependency
  dependencyName: memory
  instances:
    - dependencyName: memory
      instanceName: browser
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "panic")

	dir := t.TempDir()
	path := filepath.Join(dir, "capabilities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(dir, "missing.env"), "--config", path))
	err := cmd.Execute()
	return out.String(), err
}

// ── check ────────────────────────────────────────────────────────────────────

func TestCheck_Text(t *testing.T) {
	out, err := run(t, "check")
	require.NoError(t, err)

	assert.Contains(t, out, "ServerStorage")
	assert.Contains(t, out, "instances=primary,archive")
	assert.Contains(t, out, "StrategyDependency")
	assert.Contains(t, out, "members=memory")
}

func TestCheck_JSON(t *testing.T) {
	out, err := run(t, "check", "-o", "json")
	require.NoError(t, err)

	var records []binding.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, capability.NamedDependency, records[0].Strategy)
	assert.Equal(t, []string{"primary", "archive"}, records[0].Instances)
	assert.Equal(t, capability.StrategyDependency, records[1].Strategy)
}

func TestCheck_UnknownFormat(t *testing.T) {
	_, err := run(t, "check", "-o", "xml")
	assert.ErrorContains(t, err, `unknown output format "xml"`)
}

func TestCheck_MissingDocument(t *testing.T) {
	t.Setenv("LOG_LEVEL", "panic")
	dir := t.TempDir()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"check", "--env-file", filepath.Join(dir, "missing.env"), "--config", filepath.Join(dir, "nope.yaml")})
	assert.ErrorIs(t, cmd.Execute(), os.ErrNotExist)
}
