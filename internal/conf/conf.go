package conf

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// 默认值与上游行为对齐：2900 秒的直链缓存略短于 115 直链自身的有效期
const (
	DefaultAddr           = "0.0.0.0:8000"
	DefaultCookiePath     = "115-cookies.txt"
	DefaultCacheSize      = 65536
	DefaultDownloadURLTTL = 2900 * time.Second
	DefaultHTTPTimeout    = 30 * time.Second
)

// Config 网关运行配置
type Config struct {
	Addr           string        `mapstructure:"addr"`
	CookiePath     string        `mapstructure:"cookie_path"`
	Debug          bool          `mapstructure:"debug"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	CacheSize      int           `mapstructure:"cache_size"`
	DownloadURLTTL time.Duration `mapstructure:"download_url_ttl"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
}

// Load 加载配置：默认值 < 配置文件 < 环境变量（P115GATE_*）
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("cookie_path", DefaultCookiePath)
	v.SetDefault("debug", false)
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("cache_size", DefaultCacheSize)
	v.SetDefault("download_url_ttl", DefaultDownloadURLTTL)
	v.SetDefault("http_timeout", DefaultHTTPTimeout)

	v.SetEnvPrefix("p115gate")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("conf: config file loaded")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.DownloadURLTTL <= 0 {
		cfg.DownloadURLTTL = DefaultDownloadURLTTL
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	return cfg, nil
}
