package config

// Config 配置主体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Logstash  LogstashConfig  `mapstructure:"logstash"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Retention RetentionConfig `mapstructure:"retention"`
	Crypto    CryptoConfig    `mapstructure:"crypto"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	MediaBucket      string `mapstructure:"media_bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
}

// LogstashConfig 远程日志配置
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// StorageConfig 上传限制
type StorageConfig struct {
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// RetentionConfig 数据保留策略
type RetentionConfig struct {
	CronSpec            string `mapstructure:"cron_spec"`
	MessageTTLDays      int    `mapstructure:"message_ttl_days"`
	FileTTLDays         int    `mapstructure:"file_ttl_days"`
	CodeTTLHours        int    `mapstructure:"code_ttl_hours"`
	NotificationTTLDays int    `mapstructure:"notification_ttl_days"`
}

// CryptoConfig 消息加密配置
type CryptoConfig struct {
	MasterKey string `mapstructure:"master_key"`
}
