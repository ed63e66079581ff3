package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config 全局配置容器
// 启动时构造一次，按引用传给所有组件，业务代码不直接读环境变量
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Meli     PlatformConfig
	Amazon   AmazonConfig
	Magalu   PlatformConfig
	Storage  StorageConfig
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:"8080"`
	Mode string `envconfig:"GIN_MODE" default:"debug"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN string `envconfig:"DATABASE_DSN" default:"host=localhost user=marketsync password=1234 dbname=marketsync port=5432 sslmode=disable"`
}

// AuthConfig 对外 HTTP 层鉴权配置
type AuthConfig struct {
	JWTSecret    string `envconfig:"JWT_SECRET" default:"marketsync-secret-change-in-production"`
	PasswordHash string `envconfig:"APP_PASSWORD_HASH"`
	Password     string `envconfig:"APP_PASSWORD"` // 未提供 hash 时退化为明文比对配置
}

// PlatformConfig 单个平台的接入配置
// TokensJSON 为 map[vendedor]{access_token,refresh_token,seller_id} 的 JSON
type PlatformConfig struct {
	BaseURL      string `envconfig:"URL_BASE"`
	AuthBaseURL  string `envconfig:"URL_BASE_AUTH"`
	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`
	TokensJSON   string `envconfig:"TOKENS"`
}

// AmazonConfig Amazon SP-API 在平台配置之上还需要站点 ID
type AmazonConfig struct {
	PlatformConfig
	MarketplaceID string `envconfig:"MARKETPLACE_ID"`
}

// StorageConfig 报表归档的对象存储配置（可选）
type StorageConfig struct {
	Provider  string `envconfig:"STORAGE_PROVIDER" default:""`
	Bucket    string `envconfig:"AWS_BUCKET"`
	Region    string `envconfig:"AWS_REGION"`
	AccessKey string `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	BasePath  string `envconfig:"STORAGE_BASE_PATH" default:"marketsync"`
}

// Load 加载 .env 并解析全部配置
// .env 缺失不报错（生产环境直接用进程环境变量）
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] 未找到 .env 文件，使用进程环境变量")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.Auth); err != nil {
		return nil, err
	}
	if err := envconfig.Process("MERCADOLIVRE", &cfg.Meli); err != nil {
		return nil, err
	}
	if err := envconfig.Process("AMAZON", &cfg.Amazon); err != nil {
		return nil, err
	}
	if err := envconfig.Process("MAGALU", &cfg.Magalu); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.Storage); err != nil {
		return nil, err
	}
	return &cfg, nil
}
