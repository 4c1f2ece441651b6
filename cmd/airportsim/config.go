package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// config holds the simulation settings. Values come from the flag defaults,
// then an optional YAML file, then any flag set explicitly on the command line.
type config struct {
	AirportID         string        `yaml:"airport_id" validate:"required,max=40"`
	Runways           int           `yaml:"runways" validate:"gte=0"`
	ParkingStands     int           `yaml:"parking_stands" validate:"gte=0"`
	Aircraft          int           `yaml:"aircraft" validate:"gte=0"`
	OperationDuration time.Duration `yaml:"operation_duration" validate:"gt=0"`
	TokenValidity     time.Duration `yaml:"token_validity" validate:"gt=0"`
	MaxDelay          time.Duration `yaml:"max_delay" validate:"gte=0"`
	RetryInterval     time.Duration `yaml:"retry_interval" validate:"gt=0"`
	Takeoff           bool          `yaml:"takeoff"`
	Interactive       bool          `yaml:"interactive"`
	Trace             bool          `yaml:"trace"`
	LogLevel          string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	Journal           journalConfig `yaml:"journal"`
}

type journalConfig struct {
	Driver       string   `yaml:"driver" validate:"omitempty,oneof=postgres sqlite3"`
	DSN          string   `yaml:"dsn" validate:"required_with=Driver"`
	KafkaBrokers []string `yaml:"kafka_brokers" validate:"omitempty,dive,hostname_port"`
	KafkaTopic   string   `yaml:"kafka_topic" validate:"required_with=KafkaBrokers"`
}

func defaultConfig() config {
	return config{
		AirportID:         "airport",
		Runways:           1,
		ParkingStands:     2,
		Aircraft:          3,
		OperationDuration: 5 * time.Second,
		TokenValidity:     4 * time.Second,
		MaxDelay:          5 * time.Second,
		RetryInterval:     500 * time.Millisecond,
		LogLevel:          "info",
	}
}

// loadConfigFile overlays the YAML file at path onto cfg.
func loadConfigFile(path string, cfg *config) error {
	var data, err = os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func (c config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
