package testserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
listen = ":9999"
token = "fixed-token"
page-size = 5

[users]
admin = "admin"
viewer = "secret"

[[seed."dcim/sites"]]
name = "seeded"
slug = "seeded"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, "fixed-token", cfg.Token)
	assert.Equal(t, 5, cfg.PageSize)

	// Unset fields keep their defaults.
	assert.Equal(t, "4.1.3", cfg.APIVersion)
	assert.Equal(t, 204, cfg.DeleteStatusCode)

	assert.Equal(t, "secret", cfg.Users["viewer"])
	require.Len(t, cfg.Seed["dcim/sites"], 1)
	assert.Equal(t, "seeded", cfg.Seed["dcim/sites"][0].GetString("name"))
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfigFile(t, `listen = `))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfigFile(t, `page-size = 0`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page size")

	_, err = LoadConfig(writeConfigFile(t, `delete-status-code = 404`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete status code")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Listen = ""
	assert.Error(t, cfg.Validate())
}
