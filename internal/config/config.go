package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

type Config struct {
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Outputs   OutputsConfig   `mapstructure:"outputs"`
}

// SchedulerConfig selects the scheduling strategy and its parameter set.
type SchedulerConfig struct {
	Strategy         string    `mapstructure:"strategy" validate:"required,strategy"`
	RequestRetention float64   `mapstructure:"request_retention" validate:"gt=0,lt=1"`
	MaximumInterval  int       `mapstructure:"maximum_interval" validate:"min=1,max=36500"`
	Weights          []float64 `mapstructure:"weights" validate:"omitempty,len=17,dive,gte=0"`
}

type StorageConfig struct {
	Driver         string `mapstructure:"driver" validate:"required,oneof=yaml mysql sqlite"`
	CardsDirectory string `mapstructure:"cards_directory" validate:"required_if=Driver yaml"`
	SQLitePath     string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
	ConnectAttempts uint              `mapstructure:"connect_attempts" validate:"min=1"`
}

type OutputsConfig struct {
	ReportDirectory string `mapstructure:"report_directory"`
	// StatisticsTemplate overrides the embedded markdown template of `stats`.
	StatisticsTemplate string `mapstructure:"statistics_template"`
}

// StrategyName returns the configured strategy. Load has already validated it.
func (c SchedulerConfig) StrategyName() (scheduler.Strategy, error) {
	return scheduler.ParseStrategy(c.Strategy)
}

// Parameters builds the immutable parameter set handed to the scheduler.
func (c SchedulerConfig) Parameters() (scheduler.Parameters, error) {
	weights, err := scheduler.WeightsFromSlice(c.Weights)
	if err != nil {
		return scheduler.Parameters{}, fmt.Errorf("scheduler.WeightsFromSlice() > %w", err)
	}
	params, err := scheduler.NewParameters(c.RequestRetention, c.MaximumInterval, weights)
	if err != nil {
		return scheduler.Parameters{}, fmt.Errorf("scheduler.NewParameters() > %w", err)
	}
	return params, nil
}

// NewScheduler builds the configured Scheduler.
func (c SchedulerConfig) NewScheduler() (scheduler.Scheduler, error) {
	strategy, err := c.StrategyName()
	if err != nil {
		return nil, err
	}
	params, err := c.Parameters()
	if err != nil {
		return nil, err
	}
	return scheduler.NewScheduler(strategy, params)
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/spacedrep")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("scheduler.strategy", string(scheduler.StrategyFSRS))
	v.SetDefault("scheduler.request_retention", scheduler.DefaultRequestRetention)
	v.SetDefault("scheduler.maximum_interval", scheduler.DefaultMaximumInterval)
	v.SetDefault("storage.driver", "yaml")
	v.SetDefault("storage.cards_directory", "cards")
	v.SetDefault("storage.sqlite_path", "spacedrep.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "spacedrep")
	v.SetDefault("database.username", "user")
	v.SetDefault("database.connect_attempts", 3)
	v.SetDefault("outputs.report_directory", filepath.Join("outputs", "reports"))

	// Bind database password to environment variable
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
