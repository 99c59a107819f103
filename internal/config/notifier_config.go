package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// NotifierConfig is optional: when the token is empty, no notifications are
// sent.
type NotifierConfig struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
}

func (config NotifierConfig) validate() error {
	if config.TelegramToken != "" && config.TelegramChatID == 0 {
		return fmt.Errorf("telegram_chat_id is required when telegram_token is set")
	}
	return nil
}

func (config NotifierConfig) bindEnvironmentVariables() error {

	if err := viper.BindEnv("notifier.telegram_token", "TG_TOKEN"); err != nil {
		return err
	}

	return viper.BindEnv("notifier.telegram_chat_id", "TG_CHAT_ID")
}
