package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/go-ozzo/ozzo-validation/v3"
	"github.com/go-ozzo/ozzo-validation/v3/is"
	"go.uber.org/zap"
)

const (
	DriverSQLite   = "sqlite"
	DriverOracle   = "godror"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type OracleConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	SID      string `json:"sid"`
}

func (c *OracleConfig) ConnectionString() string {
	return fmt.Sprintf("%s/%s@%s:%s/%s", c.Username, c.Password, c.Host, c.Port, c.SID)
}

func (c *OracleConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.Password, validation.Required),
		validation.Field(&c.Host, validation.Required, is.Host),
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.SID, validation.Required),
	)
}

type MainDBConfig struct {
	Path string `json:"path"`
}

func (c *MainDBConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Path, validation.Required),
	)
}

// PracticeDBConfig describes a database holding an exercise dataset.
// Path is used by the sqlite driver, DSN by mysql and postgres, Oracle by godror.
type PracticeDBConfig struct {
	Name       string       `json:"name"`
	Driver     string       `json:"driver"`
	Path       string       `json:"path"`
	DSN        string       `json:"dsn"`
	Oracle     OracleConfig `json:"oracle"`
	DatasetDir string       `json:"dataset_dir"`
}

func (c *PracticeDBConfig) Validate() error {
	if err := validation.ValidateStruct(
		c,
		validation.Field(&c.Name, validation.Required, is.Alphanumeric),
		validation.Field(&c.Driver, validation.Required, validation.In(DriverSQLite, DriverOracle, DriverMySQL, DriverPostgres)),
	); err != nil {
		return err
	}

	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return errors.New("practice DB path is required for sqlite")
		}
	case DriverOracle:
		if err := c.Oracle.Validate(); err != nil {
			return err
		}
		if c.Oracle.Username != "JUDGE_"+c.Name {
			return errors.New("invalid practice DB username")
		}
	default:
		if c.DSN == "" {
			return fmt.Errorf("practice DB dsn is required for %s", c.Driver)
		}
	}
	return nil
}

// ConnectionString returns the data source name handed to the driver.
func (c *PracticeDBConfig) ConnectionString() string {
	switch c.Driver {
	case DriverSQLite:
		return c.Path
	case DriverOracle:
		return c.Oracle.ConnectionString()
	default:
		return c.DSN
	}
}

type ExercisesConfig struct {
	Dir string `json:"dir"`
}

func (c *ExercisesConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Dir, validation.Required),
	)
}

type ToleranceConfig struct {
	Absolute float64 `json:"absolute"`
	Relative float64 `json:"relative"`
}

func (c *ToleranceConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Absolute, validation.Min(0.0)),
		validation.Field(&c.Relative, validation.Min(0.0)),
	)
}

const (
	minQueryTimeout = 100
	minMaxRows      = 1
)

type SelectionJudgeConfig struct {
	QueryTimeout     int             `json:"query_timeout"`
	MaxRows          int             `json:"max_rows"`
	Tolerance        ToleranceConfig `json:"tolerance"`
	CheckColumnNames bool            `json:"check_column_names"`
}

func (c *SelectionJudgeConfig) Validate() error {
	if err := c.Tolerance.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(
		c,
		validation.Field(&c.QueryTimeout, validation.Required, validation.Min(minQueryTimeout)),
		validation.Field(&c.MaxRows, validation.Required, validation.Min(minMaxRows)),
	)
}

type HTTPConfig struct {
	Address string `json:"address"`
}

func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Address, validation.Required),
	)
}

type TrainerConfig struct {
	LoggerConfig zap.Config `json:"logger"`

	MainDBConfig      MainDBConfig       `json:"main_db"`
	PracticeDBConfigs []PracticeDBConfig `json:"practice_dbs"`

	ExercisesConfig      ExercisesConfig      `json:"exercises"`
	SelectionJudgeConfig SelectionJudgeConfig `json:"selection_judge"`
	HTTPConfig           HTTPConfig           `json:"http"`
}

// Default returns a configuration that runs against the bundled dataset
// and exercises from the working directory.
func Default() TrainerConfig {
	return TrainerConfig{
		LoggerConfig: zap.NewProductionConfig(),
		MainDBConfig: MainDBConfig{
			Path: "trainer.db",
		},
		PracticeDBConfigs: []PracticeDBConfig{
			{
				Name:       "hr",
				Driver:     DriverSQLite,
				Path:       "practice.db",
				DatasetDir: "data",
			},
		},
		ExercisesConfig: ExercisesConfig{
			Dir: "exercises",
		},
		SelectionJudgeConfig: SelectionJudgeConfig{
			QueryTimeout: 5000,
			MaxRows:      10000,
			Tolerance: ToleranceConfig{
				Absolute: 1e-6,
				Relative: 1e-9,
			},
		},
		HTTPConfig: HTTPConfig{
			Address: "localhost:8080",
		},
	}
}

func (c *TrainerConfig) Validate() error {
	if err := c.MainDBConfig.Validate(); err != nil {
		return err
	}
	if len(c.PracticeDBConfigs) == 0 {
		return errors.New("at least one practice DB is required")
	}
	names := map[string]bool{}
	for i := range c.PracticeDBConfigs {
		pc := &c.PracticeDBConfigs[i]
		if err := pc.Validate(); err != nil {
			return err
		}
		if names[pc.Name] {
			return fmt.Errorf("duplicate practice DB name: %s", pc.Name)
		}
		names[pc.Name] = true
	}
	if err := c.ExercisesConfig.Validate(); err != nil {
		return err
	}
	if err := c.SelectionJudgeConfig.Validate(); err != nil {
		return err
	}
	if err := c.HTTPConfig.Validate(); err != nil {
		return err
	}
	return nil
}

// DefaultPracticeDB is the database free-form queries run against.
func (c *TrainerConfig) DefaultPracticeDB() string {
	if len(c.PracticeDBConfigs) == 0 {
		return ""
	}
	return c.PracticeDBConfigs[0].Name
}

func (c *TrainerConfig) LoadFromFile(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}

	switch ext := filepath.Ext(path); ext {
	case ".json":
		if err := c.loadFromJSON(data); err != nil {
			return err
		}
		return c.Validate()
	default:
		return fmt.Errorf("unknown configuration file extension: %s", ext)
	}
}

// loadFromJSON overlays data on c. A practice_dbs array in the file replaces
// the default list instead of being merged element by element.
func (c *TrainerConfig) loadFromJSON(data []byte) error {
	defaults := c.PracticeDBConfigs
	c.PracticeDBConfigs = nil
	if err := json.Unmarshal(data, c); err != nil {
		return err
	}
	if c.PracticeDBConfigs == nil {
		c.PracticeDBConfigs = defaults
	}
	return nil
}

const DefaultConfigFile = "config.json"

func (c *TrainerConfig) LoadDefault() error {
	return c.LoadFromFile(DefaultConfigFile)
}
