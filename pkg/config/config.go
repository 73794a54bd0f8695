package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"signing-oracle/pkg/bip32"

	"github.com/spf13/viper"
)

// Config 是整个进程的配置快照。
// Load 返回值后不再修改，由调用方显式传入各组件的构造函数。
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Oracle OracleConfig `mapstructure:"oracle"`
	Device DeviceConfig `mapstructure:"device"`
	Cache  CacheConfig  `mapstructure:"cache"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	HttpPort string `mapstructure:"http_port"`
}

type OracleConfig struct {
	DefaultPath  string        `mapstructure:"default_path"`  // 未指定路径时使用的派生路径
	AwaitTimeout time.Duration `mapstructure:"await_timeout"` // 调用方等待设备结果的截止时间，oracle 本身不设超时
}

// DeviceConfig 仅用于内存模拟设备 (演示与测试)
type DeviceConfig struct {
	Mnemonic     string `mapstructure:"mnemonic"`
	BlindSigning bool   `mapstructure:"blind_signing"`
}

type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	TTL      time.Duration `mapstructure:"ttl"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
}

// Load 读取配置文件 (可选) 与环境变量。
// path 为空时在 . 和 ./config 中查找 config.yaml；找不到文件时使用默认值。
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // name of config file (without extension)
		v.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// 环境变量设置: ORACLE_AWAIT_TIMEOUT -> oracle.await_timeout
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache.type %q", c.Cache.Type)
	}
	if _, err := bip32.ParseKadenaPath(c.Oracle.DefaultPath); err != nil {
		return fmt.Errorf("oracle.default_path: %w", err)
	}
	if c.Oracle.AwaitTimeout < 0 {
		return fmt.Errorf("oracle.await_timeout must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "")

	v.SetDefault("server.http_port", "8080")

	v.SetDefault("oracle.default_path", "m/44'/626'/0'/0/0")
	v.SetDefault("oracle.await_timeout", "60s")

	// Zemu 默认测试助记词
	v.SetDefault("device.mnemonic", "equip will roof matter pink blind book anxiety banner elbow sun young")
	v.SetDefault("device.blind_signing", false)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.db", 0)
}
