package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`
	LogEncoding string `mapstructure:"log_encoding"`

	// 前端静态文件目录，为空则不托管
	StaticDir string `mapstructure:"static_dir"`
	// 访问密码，为空则不校验
	Password string `mapstructure:"password"`

	UploadDir     string `mapstructure:"upload_dir"`
	MaxVoiceBytes int64  `mapstructure:"max_voice_bytes"`
	// 自定义词库，为空则使用内置词库
	WordsFile string `mapstructure:"words_file"`

	PrepSeconds            int `mapstructure:"prep_seconds"`
	GuessSeconds           int `mapstructure:"guess_seconds"`
	DisconnectGraceSeconds int `mapstructure:"disconnect_grace_seconds"`
	GameDisconnectSeconds  int `mapstructure:"game_disconnect_seconds"`

	// 每条连接每秒允许的消息数和突发上限
	MessageRate  float64 `mapstructure:"message_rate"`
	MessageBurst int     `mapstructure:"message_burst"`
}

func (c *AppConfig) PrepWindow() time.Duration {
	return time.Duration(c.PrepSeconds) * time.Second
}

func (c *AppConfig) GuessWindow() time.Duration {
	return time.Duration(c.GuessSeconds) * time.Second
}

func (c *AppConfig) DisconnectGrace() time.Duration {
	return time.Duration(c.DisconnectGraceSeconds) * time.Second
}

func (c *AppConfig) GameDisconnectGrace() time.Duration {
	return time.Duration(c.GameDisconnectSeconds) * time.Second
}

var cfg *AppConfig

func GetConfig() *AppConfig {
	if cfg == nil {
		cfg = InitConfig()
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_encoding", "console")
	v.SetDefault("static_dir", "./undercover-fe")
	v.SetDefault("password", "")
	v.SetDefault("upload_dir", "./uploads")
	v.SetDefault("max_voice_bytes", 5<<20)
	v.SetDefault("words_file", "")
	v.SetDefault("prep_seconds", 30)
	v.SetDefault("guess_seconds", 30)
	v.SetDefault("disconnect_grace_seconds", 8)
	v.SetDefault("game_disconnect_seconds", 60)
	v.SetDefault("message_rate", 10)
	v.SetDefault("message_burst", 20)
}

func InitConfig() *AppConfig {
	config, err := Load(".")
	if err != nil {
		panic(err)
	}

	cfg = config

	return config
}

// Load 从 dir/app_config.json 读取配置，文件不存在时使用默认值，
// 环境变量 UNDERCOVER_<KEY> 优先级最高
func Load(dir string) (*AppConfig, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("app_config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("UNDERCOVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("加载配置失败: %w", err)
		}
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *AppConfig) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("端口无效: %d", c.Port)
	}

	if c.PrepSeconds <= 0 || c.GuessSeconds <= 0 ||
		c.DisconnectGraceSeconds <= 0 || c.GameDisconnectSeconds <= 0 {
		return errors.New("计时配置必须为正数")
	}

	if c.MaxVoiceBytes <= 0 {
		return errors.New("max_voice_bytes 必须为正数")
	}

	if c.MessageRate <= 0 || c.MessageBurst <= 0 {
		return errors.New("消息限流配置必须为正数")
	}

	return nil
}
