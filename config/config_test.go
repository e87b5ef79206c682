package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "hr", cfg.DefaultPracticeDB())
}

func TestPracticeDBConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PracticeDBConfig
		wantErr bool
	}{
		{"sqlite", PracticeDBConfig{Name: "hr", Driver: DriverSQLite, Path: ":memory:"}, false},
		{"sqlite without path", PracticeDBConfig{Name: "hr", Driver: DriverSQLite}, true},
		{"unknown driver", PracticeDBConfig{Name: "hr", Driver: "duckdb", Path: "x"}, true},
		{"mysql without dsn", PracticeDBConfig{Name: "hr", Driver: DriverMySQL}, true},
		{"postgres", PracticeDBConfig{Name: "hr", Driver: DriverPostgres, DSN: "postgres://localhost/hr"}, false},
		{"bad name", PracticeDBConfig{Name: "h r", Driver: DriverSQLite, Path: "x"}, true},
		{"oracle", PracticeDBConfig{Name: "HR", Driver: DriverOracle, Oracle: OracleConfig{
			Username: "JUDGE_HR", Password: "secret", Host: "localhost", Port: "1521", SID: "XE",
		}}, false},
		{"oracle wrong user", PracticeDBConfig{Name: "HR", Driver: DriverOracle, Oracle: OracleConfig{
			Username: "SCOTT", Password: "tiger", Host: "localhost", Port: "1521", SID: "XE",
		}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOracleConnectionString(t *testing.T) {
	c := PracticeDBConfig{Driver: DriverOracle, Oracle: OracleConfig{
		Username: "JUDGE_HR", Password: "pw", Host: "db", Port: "1521", SID: "XE",
	}}
	assert.Equal(t, "JUDGE_HR/pw@db:1521/XE", c.ConnectionString())
}

func TestTrainerConfigValidate(t *testing.T) {
	cfg := Default()
	cfg.SelectionJudgeConfig.QueryTimeout = 10
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.SelectionJudgeConfig.Tolerance.Absolute = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.PracticeDBConfigs = append(cfg.PracticeDBConfigs, cfg.PracticeDBConfigs[0])
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.PracticeDBConfigs = nil
	assert.Error(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{
		"main_db": {"path": "main.db"},
		"practice_dbs": [{"name": "shop", "driver": "sqlite", "path": ":memory:"}],
		"selection_judge": {"query_timeout": 2000, "max_rows": 50, "tolerance": {"absolute": 0.01}}
	}`
	require.NoError(t, ioutil.WriteFile(path, []byte(data), 0o644))

	cfg := Default()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "main.db", cfg.MainDBConfig.Path)
	require.Len(t, cfg.PracticeDBConfigs, 1)
	assert.Equal(t, "shop", cfg.PracticeDBConfigs[0].Name)
	assert.Empty(t, cfg.PracticeDBConfigs[0].DatasetDir)
	assert.Equal(t, 2000, cfg.SelectionJudgeConfig.QueryTimeout)
	assert.Equal(t, 0.01, cfg.SelectionJudgeConfig.Tolerance.Absolute)
	assert.Equal(t, "exercises", cfg.ExercisesConfig.Dir)
	assert.Equal(t, "localhost:8080", cfg.HTTPConfig.Address)
}

func TestLoadFromFileKeepsDefaultPracticeDBs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`{"http": {"address": ":9000"}}`), 0o644))

	cfg := Default()
	require.NoError(t, cfg.LoadFromFile(path))
	assert.Equal(t, ":9000", cfg.HTTPConfig.Address)
	require.Len(t, cfg.PracticeDBConfigs, 1)
	assert.Equal(t, "data", cfg.PracticeDBConfigs[0].DatasetDir)
}

func TestLoadFromFileRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("http: {}"), 0o644))

	cfg := Default()
	err := cfg.LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown configuration file extension")
}
