// Package config loads service configuration from a config.yml file, an
// optional .env file and the process environment.
//
// # Usage
//
//	type Config struct {
//		config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//		Server server.Config `yaml:"server" mapstructure:"server"`
//	}
//
//	cfg, err := config.Load[Config]("oswald")
//
// Environment variables override file values by mapping UPPER_SNAKE names
// onto nested keys (LOGGING_LEVEL sets logging.level).
package config
