package config

import (
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	cfg  *Config
	once sync.Once
)

// envPrefix 环境变量前缀，例如 FM_MODE、FM_MYSQL_PASSWORD
const envPrefix = "FM"

// Init 读取 config.yaml，再用环境变量覆盖
func Init() {
	once.Do(func() {
		c, err := Load()
		if err != nil {
			panic(err)
		}
		cfg = c
	})
}

// Load 在当前目录或 ./config 下查找 config.yaml，找不到时只使用默认值和环境变量
func Load() (*Config, error) {
	c := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	} else if err := v.Unmarshal(c); err != nil {
		return nil, err
	}

	if err := envconfig.Process(envPrefix, c); err != nil {
		return nil, err
	}
	c.normalize()
	return c, nil
}

// Get 获取全局配置，未初始化时返回默认配置
func Get() *Config {
	if cfg == nil {
		Init()
	}
	return cfg
}

// Set 替换全局配置，仅用于测试
func Set(c *Config) {
	once.Do(func() {})
	c.normalize()
	cfg = c
}

// Default 返回各项默认值
func Default() *Config {
	return &Config{
		Host:   "0.0.0.0",
		Port:   "8080",
		Prefix: "api",
		Mode:   ModeDebug,
		Log: Log{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
		},
		JWT: JWT{AccessExpire: 7 * 24 * 3600},
		OTel: OTel{
			ServiceName: "freelance-marketplace",
		},
		Lock: Lock{
			Backend: LockBackendRedis,
			TTLMs:   10_000,
			WaitMs:  3_000,
			RetryMs: 50,
		},
		Notify: Notify{TimeoutMs: 3_000},
		Cors: Cors{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowCredentials: true,
			MaxAgeSec:        600,
		},
	}
}

func (c *Config) normalize() {
	c.Mode = Mode(strings.ToLower(string(c.Mode)))
	if c.Mode != ModeRelease {
		c.Mode = ModeDebug
	}
	c.Prefix = strings.Trim(c.Prefix, "/")
	if c.Lock.Backend == "" {
		c.Lock.Backend = LockBackendRedis
	}
}
