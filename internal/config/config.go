// Package config 负责加载和管理应用程序的配置。
package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件与环境变量加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig 存储 PostgreSQL 数据库的配置。
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
	Prompt     LLMPromptConfig     `mapstructure:"prompt"`
}

// LLMGenerationConfig 配置生成相关参数（可选）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// LLMPromptConfig 配置系统提示词（可选，缺省时使用代码内置的提示词）。
type LLMPromptConfig struct {
	System string `mapstructure:"system"`
}

// Init 初始化配置加载：先读取 .env（若存在），再读取 YAML 文件，
// 环境变量 PORT / DATABASE_URL / GROQ_API_KEY 优先于文件中的对应项。
func Init(configPath string) {
	// 本地开发时从 .env 加载环境变量，文件不存在则忽略
	_ = godotenv.Load()

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("database.postgres.dsn", "DATABASE_URL")
	_ = viper.BindEnv("llm.api_key", "GROQ_API_KEY")

	viper.SetDefault("server.port", "4000")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("database.postgres.dsn", "")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("llm.model", "openai/gpt-oss-20b")
	viper.SetDefault("llm.generation.temperature", 0.3)
	viper.SetDefault("llm.generation.max_tokens", 300)

	// 配置文件缺失时仅依赖默认值与环境变量运行
	_ = viper.ReadInConfig()

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(err)
	}
}
