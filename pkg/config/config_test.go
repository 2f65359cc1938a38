package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: sqlite
storage:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "./data", cfg.Build.DataDir)
	assert.Equal(t, 20, cfg.Build.Width)
	assert.Equal(t, 4, cfg.Build.Roots)
	assert.Equal(t, 120, cfg.Build.DistanceCap)
	assert.Equal(t, 8, cfg.Build.BPThreads)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
build:
  data_dir: "/tmp/data"
  width: 32
  roots: 8
  distance_cap: 200
database:
  type: postgres
  host: db.example.com
  port: 5432
  database: coretree
  user: admin
  password: secret
storage:
  type: local
  local_path: /tmp/artifacts
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/data", cfg.Build.DataDir)
	assert.Equal(t, 32, cfg.Build.Width)
	assert.Equal(t, 8, cfg.Build.Roots)
	assert.Equal(t, 200, cfg.Build.DistanceCap)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "coretree", cfg.Database.Database)
}

func TestLoad_InvalidDatabaseType(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: mongo
storage:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestLoad_COSWithCredentials(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: sqlite
storage:
  type: cos
  bucket: test-bucket
  region: ap-guangzhou
  secret_id: test-id
  secret_key: test-key
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, "cos", cfg.Storage.Type)
	assert.Equal(t, "test-bucket", cfg.Storage.Bucket)
}

func TestValidate_InvalidWidth(t *testing.T) {
	cfg := &Config{
		Build:    BuildConfig{Width: 0, Roots: 4, DistanceCap: 120, BPThreads: 8},
		Database: DatabaseConfig{Type: "sqlite"},
		Storage:  StorageConfig{Type: "local"},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "width")
}

func TestValidate_InvalidRoots(t *testing.T) {
	cfg := &Config{
		Build:    BuildConfig{Width: 20, Roots: 0, DistanceCap: 120, BPThreads: 8},
		Database: DatabaseConfig{Type: "sqlite"},
		Storage:  StorageConfig{Type: "local"},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "roots")
}

func TestGraphDir(t *testing.T) {
	cfg := &Config{
		Build: BuildConfig{DataDir: "/tmp/data"},
	}

	assert.Equal(t, "/tmp/data/social-graph", cfg.GraphDir("social-graph"))
}

func TestEnsureDataDir(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "build", "data")

	cfg := &Config{
		Build: BuildConfig{DataDir: dataDir},
	}

	err := cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(dataDir)
	assert.NoError(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
database:
  type: mysql
  host: mysql.local
storage:
  type: local
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, "mysql.local", cfg.Database.Host)
}
