package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const dirName = ".taskflow"

type Config struct {
	API     APIConfig    `mapstructure:"api"`
	DataDir string       `mapstructure:"data_dir"`
	Log     LogConfig    `mapstructure:"log"`
	Server  ServerConfig `mapstructure:"server"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig is only read by the development server.
type ServerConfig struct {
	Addr     string        `mapstructure:"addr"`
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 5 * time.Second,
		},
		DataDir: GlobalDir(),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			TokenTTL: 24 * time.Hour,
		},
	}
}

// Load layers defaults, the global file, the project file, a .env file in
// the working directory and finally TASKFLOW_* environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if err := loadFile(GlobalConfigPath(), cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("global config: %w", err)
	}
	if err := loadFile(ProjectConfigPath(), cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("project config: %w", err)
	}
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadFile is Load with an explicit config file in place of the global and
// project ones. The file must exist.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

type fileConfig struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	DataDir string `yaml:"data_dir"`
	Log     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Server struct {
		Addr     string `yaml:"addr"`
		TokenTTL string `yaml:"token_ttl"`
	} `yaml:"server"`
}

// Save writes cfg as YAML. The server secret is never written.
func Save(path string, cfg *Config) error {
	var fc fileConfig
	fc.API.BaseURL = cfg.API.BaseURL
	fc.API.Timeout = cfg.API.Timeout.String()
	fc.DataDir = cfg.DataDir
	fc.Log.Level = cfg.Log.Level
	fc.Log.Format = cfg.Log.Format
	fc.Server.Addr = cfg.Server.Addr
	fc.Server.TokenTTL = cfg.Server.TokenTTL.String()

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// SessionPath is where the persisted credential and profile live.
func (c *Config) SessionPath() string {
	return filepath.Join(c.DataDir, "session.json")
}

// GlobalDir returns ~/.taskflow, or .taskflow when there is no home.
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

func GlobalConfigPath() string {
	return filepath.Join(GlobalDir(), "config.yaml")
}

func ProjectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(dirName, "config.yaml")
	}
	return filepath.Join(cwd, dirName, "config.yaml")
}
