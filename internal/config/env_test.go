package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENSPRINKLER_ENDPOINT=http://192.168.1.20\nOPENSPRINKLER_PASSWORD=opendoor\n"), 0600))

	// t.Setenv registers cleanup; Unsetenv lets godotenv fill the value.
	t.Setenv(EndpointEnvVar, "")
	t.Setenv(PasswordEnvVar, "")
	require.NoError(t, os.Unsetenv(EndpointEnvVar))
	require.NoError(t, os.Unsetenv(PasswordEnvVar))

	require.NoError(t, LoadEnv(envFile))

	endpoint, ok := EnvEndpoint()
	assert.True(t, ok)
	assert.Equal(t, "http://192.168.1.20", endpoint)

	pw, ok := EnvPassword()
	assert.True(t, ok)
	assert.Equal(t, "opendoor", pw)
}

func TestLoadEnv_ExistingWins(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENSPRINKLER_ENDPOINT=http://from-file\n"), 0600))

	t.Setenv(EndpointEnvVar, "http://from-env")
	require.NoError(t, LoadEnv(envFile))

	endpoint, _ := EnvEndpoint()
	assert.Equal(t, "http://from-env", endpoint)
}

func TestLoadEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestEnvPassword_Blank(t *testing.T) {
	t.Setenv(PasswordEnvVar, "   ")
	_, ok := EnvPassword()
	assert.False(t, ok, "whitespace-only password should count as unset")
}

func TestResolvePassword_FromEnv(t *testing.T) {
	t.Setenv(PasswordEnvVar, "a6d82bced638de3def1e9bbb4983225c")
	pw, err := ResolvePassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "a6d82bced638de3def1e9bbb4983225c", pw)
}
