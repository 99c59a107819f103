package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

func (config OutputConfig) validate() error {
	if config.Dir == "" {
		return fmt.Errorf("missing variable: output dir")
	}
	return nil
}

func (config OutputConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("output.dir", "OUTPUT_DIR")
}
