// Package config loads service configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Gateway struct {
		Port int `yaml:"port"`
	} `yaml:"gateway"`
	Inference struct {
		Port       int    `yaml:"port"`
		ModelPath  string `yaml:"model_path"`
		ConfigPath string `yaml:"config_path"`
	} `yaml:"inference"`
	MLServiceURL string `yaml:"ml_service_url"`
	Database     struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Redis struct {
		Host          string `yaml:"host"`
		Port          int    `yaml:"port"`
		DB            int    `yaml:"db"`
		ExpireSeconds int    `yaml:"expire_seconds"`
	} `yaml:"redis"`
	Log struct {
		Level string `yaml:"level"`
		Path  string `yaml:"path"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() *Config {
	var c Config
	c.Gateway.Port = 8001
	c.Inference.Port = 8002
	c.Inference.ModelPath = "./models/iris_knn.json"
	c.Inference.ConfigPath = "./models/config.json"
	c.MLServiceURL = "http://localhost:8002"
	c.Database.Path = "./data/kadupul.db"
	c.Redis.Host = ""
	c.Redis.Port = 6379
	c.Redis.DB = 0
	c.Redis.ExpireSeconds = 3600
	c.Log.Level = "info"
	return &c
}

// Load reads the config file at path if it exists, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		file, err := os.Open(path)
		if err == nil {
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(config); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnv(config)
	return config, nil
}

func applyEnv(c *Config) {
	envInt("GATEWAY_PORT", &c.Gateway.Port)
	envInt("INFERENCE_PORT", &c.Inference.Port)
	envString("MODEL_PATH", &c.Inference.ModelPath)
	envString("MODEL_CONFIG_PATH", &c.Inference.ConfigPath)
	envString("ML_SERVICE_URL", &c.MLServiceURL)
	envString("DB_PATH", &c.Database.Path)
	envString("REDIS_HOST", &c.Redis.Host)
	envInt("REDIS_PORT", &c.Redis.Port)
	envInt("REDIS_DB", &c.Redis.DB)
	envInt("REDIS_EXPIRE_TIME", &c.Redis.ExpireSeconds)
	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_PATH", &c.Log.Path)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
