package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig holds defaults for the menuctl command, read from YAML.
type FileConfig struct {
	Database struct {
		Driver     string `yaml:"driver"`
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		User       string `yaml:"user"`
		Password   string `yaml:"password"`
		Name       string `yaml:"name"`
		SSLMode    string `yaml:"sslMode"`
		SQLitePath string `yaml:"sqlitePath"`
	} `yaml:"database"`
	Import struct {
		SheetsDir string `yaml:"sheetsDir"`
		Output    string `yaml:"output"`
		StartDate string `yaml:"startDate"`
	} `yaml:"import"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
}

// LoadFile reads a YAML defaults file.
func LoadFile(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// Apply overlays non-empty file values onto cfg.
func (fc *FileConfig) Apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.DBDriver, fc.Database.Driver)
	set(&cfg.DBHost, fc.Database.Host)
	set(&cfg.DBPort, fc.Database.Port)
	set(&cfg.DBUser, fc.Database.User)
	set(&cfg.DBPassword, fc.Database.Password)
	set(&cfg.DBName, fc.Database.Name)
	set(&cfg.DBSSLMode, fc.Database.SSLMode)
	set(&cfg.SQLitePath, fc.Database.SQLitePath)
	set(&cfg.LogLevel, fc.Logging.Level)
	set(&cfg.LogFile, fc.Logging.File)
	set(&cfg.KafkaTopic, fc.Kafka.Topic)
	if len(fc.Kafka.Brokers) > 0 {
		cfg.KafkaBrokers = fc.Kafka.Brokers
	}
	if cfg.DBDriver == "sqlite" && cfg.SQLitePath == "" {
		cfg.SQLitePath = DefaultSQLitePath
	}
}
