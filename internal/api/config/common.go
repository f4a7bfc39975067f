package config

// Config 配置主体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logstash LogstashConfig `mapstructure:"logstash"`
	Guest    GuestConfig    `mapstructure:"guest"`
	Image    ImageConfig    `mapstructure:"image"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// GuestConfig 游客账号配置
type GuestConfig struct {
	TTLSeconds  int `mapstructure:"ttl_seconds"`
	SeedFollows int `mapstructure:"seed_follows"`
}

// ImageConfig 图片外链白名单配置
type ImageConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}
