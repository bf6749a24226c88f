package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Значения по умолчанию
const (
	defaultServerAddress      = "localhost:8080"
	defaultLoggerLevel        = "info"
	defaultFileStoragePath    = "internal/app/storage/runs.json"
	defaultPprofAddress       = "localhost:6060"
	defaultRequestTimeoutMs   = 10000
	defaultMaxCompare         = 200
	defaultVerifyConcurrency  = 6
	defaultMaxSitemapChildren = 50
	defaultUserAgent          = "redirectmap/1.0"
	defaultMaxRequestBody     = 20 << 20
)

// Config содержит все конфигурационные параметры приложения
type Config struct {
	ServerAddress       string `json:"server_address" yaml:"server_address" env:"SERVER_ADDRESS" envDefault:"localhost:8080" validate:"required"`
	LoggerLevel         string `json:"log_level" yaml:"log_level" env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error dpanic panic fatal"`
	FileStoragePath     string `json:"file_storage_path" yaml:"file_storage_path" env:"FILE_STORAGE_PATH" envDefault:"internal/app/storage/runs.json"`
	DatabaseDSN         string `json:"database_dsn" yaml:"database_dsn" env:"DATABASE_DSN"`
	ConfigFile          string `json:"-" yaml:"-" env:"CONFIG"`
	TrustedSubnet       string `json:"trusted_subnet" yaml:"trusted_subnet" env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
	SecretKey           string `json:"secret_key" yaml:"secret_key" env:"SECRET_KEY"`
	EnablePprof         bool   `json:"enable_pprof" yaml:"enable_pprof" env:"ENABLE_PPROF"`
	PprofAddress        string `json:"pprof_address" yaml:"pprof_address" env:"PPROF_ADDRESS" envDefault:"localhost:6060"`
	RequestTimeoutMs    int    `json:"request_timeout_ms" yaml:"request_timeout_ms" env:"REQUEST_TIMEOUT_MS" envDefault:"10000" validate:"min=1000,max=30000"`
	MaxCompare          int    `json:"max_compare" yaml:"max_compare" env:"MAX_COMPARE" envDefault:"200" validate:"min=1,max=200"`
	VerifyConcurrency   int    `json:"verify_concurrency" yaml:"verify_concurrency" env:"VERIFY_CONCURRENCY" envDefault:"6" validate:"min=1,max=32"`
	SameRegDomainOnly   bool   `json:"same_reg_domain_only" yaml:"same_reg_domain_only" env:"SAME_REG_DOMAIN_ONLY" envDefault:"true"`
	VerifyTargets       bool   `json:"verify_targets" yaml:"verify_targets" env:"VERIFY_TARGETS"`
	MaxSitemapChildren  int    `json:"max_sitemap_children" yaml:"max_sitemap_children" env:"MAX_SITEMAP_CHILDREN" envDefault:"50" validate:"min=0,max=50"`
	AllowPrivateTargets bool   `json:"allow_private_targets" yaml:"allow_private_targets" env:"ALLOW_PRIVATE_TARGETS"`
	UserAgent           string `json:"user_agent" yaml:"user_agent" env:"USER_AGENT" envDefault:"redirectmap/1.0"`
	MaxRequestBodyBytes int64  `json:"max_request_body_bytes" yaml:"max_request_body_bytes" env:"MAX_REQUEST_BODY_BYTES" envDefault:"20971520" validate:"min=0"`
}

// RequestTimeout возвращает таймаут одного исходящего запроса
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// LoadConfig загружает конфигурацию из переменных окружения, флагов командной строки
// и, если указан, из JSON или YAML конфиг файла
func LoadConfig(args []string) (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("redirectmap", flag.ContinueOnError)
	if err := ParseFlags(fs, args, config); err != nil {
		return nil, err
	}

	if config.ConfigFile != "" {
		fileConfig, err := loadConfigFromFile(config.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
		mergeConfigs(config, fileConfig)
	}

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseFlags добавляет флаги командной строки для параметров конфигурации
// и переопределяет значения, если они указаны в аргументах запуска.
func ParseFlags(fs *flag.FlagSet, args []string, config *Config) error {
	fs.StringVar(&config.ServerAddress, "a", config.ServerAddress, "address and port to run server")
	fs.StringVar(&config.LoggerLevel, "l", config.LoggerLevel, "log level")
	fs.StringVar(&config.FileStoragePath, "f", config.FileStoragePath, "file storage path")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.ConfigFile, "c", config.ConfigFile, "path to JSON or YAML config file")
	fs.StringVar(&config.TrustedSubnet, "t", config.TrustedSubnet, "trusted subnet in CIDR format")
	fs.BoolVar(&config.EnablePprof, "p", config.EnablePprof, "enable pprof server")
	fs.IntVar(&config.RequestTimeoutMs, "timeout", config.RequestTimeoutMs, "default verification timeout in ms")
	fs.IntVar(&config.MaxCompare, "max-compare", config.MaxCompare, "default cap of URLs per inventory")
	fs.IntVar(&config.VerifyConcurrency, "concurrency", config.VerifyConcurrency, "default verification concurrency")
	fs.BoolVar(&config.AllowPrivateTargets, "allow-private", config.AllowPrivateTargets, "allow fetching private and loopback addresses")

	return fs.Parse(args)
}

// Validate проверяет значения конфигурации по тегам validate
func Validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) isDefault(field string) bool {
	switch field {
	case "ServerAddress":
		return c.ServerAddress == defaultServerAddress
	case "LoggerLevel":
		return c.LoggerLevel == defaultLoggerLevel
	case "FileStoragePath":
		return c.FileStoragePath == defaultFileStoragePath
	case "PprofAddress":
		return c.PprofAddress == defaultPprofAddress
	case "RequestTimeoutMs":
		return c.RequestTimeoutMs == defaultRequestTimeoutMs
	case "MaxCompare":
		return c.MaxCompare == defaultMaxCompare
	case "VerifyConcurrency":
		return c.VerifyConcurrency == defaultVerifyConcurrency
	case "MaxSitemapChildren":
		return c.MaxSitemapChildren == defaultMaxSitemapChildren
	case "UserAgent":
		return c.UserAgent == defaultUserAgent
	case "MaxRequestBodyBytes":
		return c.MaxRequestBodyBytes == defaultMaxRequestBody
	default:
		return false
	}
}

// mergeConfigs переносит значения из файла только в поля, оставшиеся по умолчанию.
// Булевы флаги из файла могут только включить опцию.
func mergeConfigs(dst, src *Config) {
	if src.ServerAddress != "" && dst.isDefault("ServerAddress") {
		dst.ServerAddress = src.ServerAddress
	}
	if src.LoggerLevel != "" && dst.isDefault("LoggerLevel") {
		dst.LoggerLevel = src.LoggerLevel
	}
	if src.FileStoragePath != "" && dst.isDefault("FileStoragePath") {
		dst.FileStoragePath = src.FileStoragePath
	}
	if src.DatabaseDSN != "" && dst.DatabaseDSN == "" {
		dst.DatabaseDSN = src.DatabaseDSN
	}
	if src.TrustedSubnet != "" && dst.TrustedSubnet == "" {
		dst.TrustedSubnet = src.TrustedSubnet
	}
	if src.SecretKey != "" && dst.SecretKey == "" {
		dst.SecretKey = src.SecretKey
	}
	if src.PprofAddress != "" && dst.isDefault("PprofAddress") {
		dst.PprofAddress = src.PprofAddress
	}
	if src.RequestTimeoutMs != 0 && dst.isDefault("RequestTimeoutMs") {
		dst.RequestTimeoutMs = src.RequestTimeoutMs
	}
	if src.MaxCompare != 0 && dst.isDefault("MaxCompare") {
		dst.MaxCompare = src.MaxCompare
	}
	if src.VerifyConcurrency != 0 && dst.isDefault("VerifyConcurrency") {
		dst.VerifyConcurrency = src.VerifyConcurrency
	}
	if src.MaxSitemapChildren != 0 && dst.isDefault("MaxSitemapChildren") {
		dst.MaxSitemapChildren = src.MaxSitemapChildren
	}
	if src.UserAgent != "" && dst.isDefault("UserAgent") {
		dst.UserAgent = src.UserAgent
	}
	if src.MaxRequestBodyBytes != 0 && dst.isDefault("MaxRequestBodyBytes") {
		dst.MaxRequestBodyBytes = src.MaxRequestBodyBytes
	}
	dst.EnablePprof = dst.EnablePprof || src.EnablePprof
	dst.VerifyTargets = dst.VerifyTargets || src.VerifyTargets
	dst.AllowPrivateTargets = dst.AllowPrivateTargets || src.AllowPrivateTargets
}
