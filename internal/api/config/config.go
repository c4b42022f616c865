package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	Cfg = &cfg

	return nil
}

// applyDefaults 补全保留策略等关键字段的缺省值
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Retention.CronSpec == "" {
		c.Retention.CronSpec = "@hourly"
	}
	if c.Retention.MessageTTLDays == 0 {
		c.Retention.MessageTTLDays = 30
	}
	if c.Retention.FileTTLDays == 0 {
		c.Retention.FileTTLDays = 30
	}
	if c.Retention.CodeTTLHours == 0 {
		c.Retention.CodeTTLHours = 24
	}
	if c.Retention.NotificationTTLDays == 0 {
		c.Retention.NotificationTTLDays = 30
	}
	if c.Storage.MaxUploadBytes == 0 {
		c.Storage.MaxUploadBytes = 50 << 20
	}
}
