package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insertion-workers/pkg/registry"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	registryPath = ""
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate")

	require.NoError(t, err)
	assert.Contains(t, out, "Found 3 templates")
}

func TestValidateCommand_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"templates":[{"type":"x","channels":["sms"]}]}`), 0644))

	_, err := execute(t, "validate", "--path", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs an sms text")
}

func TestListCommand(t *testing.T) {
	out, err := execute(t, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "eligibility_result")
	assert.Contains(t, out, "email,sms")
}

func TestRenderCommand(t *testing.T) {
	out, err := execute(t, "render", "eligibility_result", "--var", "prenom=Awa", "--var", "statutEligibilite=ELIGIBLE")

	require.NoError(t, err)
	assert.Contains(t, out, "Bonjour Awa")
	assert.Contains(t, out, "SMS: Bonjour Awa, résultat d'éligibilité : ELIGIBLE.")
}

func TestRenderCommand_Errors(t *testing.T) {
	_, err := execute(t, "render", "unknown_type")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = execute(t, "render", "stage_changed", "--var", "novalue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want key=value")
}

func TestExportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "templates.json")

	_, err := execute(t, "export", path)
	require.NoError(t, err)

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Templates, 3)
	assert.NotEqual(t, "2026-10-01", reg.LastUpdated)
}
