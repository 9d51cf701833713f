package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Security SecurityConfig `yaml:"security"`
	Data     DataConfig     `yaml:"data"`
	Poll     PollConfig     `yaml:"poll"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

// UpstreamConfig 第三方 AI 服务配置
type UpstreamConfig struct {
	Host    string        `yaml:"host"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type SecurityConfig struct {
	AppSecret              string `yaml:"app_secret"`
	MaxReferenceImages     int    `yaml:"max_reference_images"`
	MaxReferenceImageBytes int    `yaml:"max_reference_image_bytes"`
}

type DataConfig struct {
	Dir string `yaml:"dir"`
}

// PollConfig 客户端轮询配置
type PollConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "5000",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/app.db",
		},
		Upstream: UpstreamConfig{
			Host:    "https://api.grsai.com",
			Timeout: 120 * time.Second,
		},
		Security: SecurityConfig{
			AppSecret:              "change-me",
			MaxReferenceImages:     3,
			MaxReferenceImageBytes: 5 * 1024 * 1024,
		},
		Data: DataConfig{
			Dir: "./data",
		},
		Poll: PollConfig{
			Interval:    2 * time.Second,
			MaxAttempts: 150,
		},
	}
}

func loadConfig() *Config {
	config := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		// 解析失败时整体回退到默认值，不使用解析了一半的配置
		fileConfig := Default()
		if err := yaml.Unmarshal(data, fileConfig); err != nil {
			klog.Warningf("配置文件解析失败，使用默认配置: path=%s, error=%v", configPath, err)
		} else {
			config = fileConfig
		}
	}

	applyEnv(config)
	return config
}

// applyEnv 环境变量优先级高于配置文件
func applyEnv(config *Config) {
	if host := os.Getenv("NANO_BANANA_HOST"); host != "" {
		config.Upstream.Host = host
	}
	if apiKey := os.Getenv("NANO_BANANA_API_KEY"); apiKey != "" {
		config.Upstream.APIKey = apiKey
	}
	if secret := os.Getenv("APP_SECRET_KEY"); secret != "" {
		config.Security.AppSecret = secret
	}

	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		config.Server.Mode = mode
	}

	// 数据目录环境变量
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		config.Data.Dir = dataDir
		config.Database.DSN = filepath.Join(dataDir, "app.db")
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		config.Database.DSN = dbPath
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	if n, ok := envInt("MAX_REFERENCE_IMAGES"); ok {
		config.Security.MaxReferenceImages = n
	}
	if n, ok := envInt("MAX_REFERENCE_IMAGE_BYTES"); ok {
		config.Security.MaxReferenceImageBytes = n
	}
}

func envInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// DrawEndpoint 图像生成端点
func (c *Config) DrawEndpoint() string {
	return strings.TrimRight(c.Upstream.Host, "/") + "/v1/draw/nano-banana"
}

// ResultEndpoint 结果查询端点
func (c *Config) ResultEndpoint() string {
	return strings.TrimRight(c.Upstream.Host, "/") + "/v1/draw/result"
}

// ChatEndpoint 聊天完成端点
func (c *Config) ChatEndpoint() string {
	return strings.TrimRight(c.Upstream.Host, "/") + "/v1/chat/completions"
}
