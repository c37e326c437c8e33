// Load .env
// Load YAML settings
// Apply environment overrides and defaults

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shouni/go-job-exact/pkg/search"
)

const (
	DefaultOutput = "latest_links.csv"
	DefaultPause  = 2 * time.Second

	EnvOutput   = "JOB_EXACT_OUTPUT"
	EnvSettings = "JOB_EXACT_SETTINGS"
)

// DefaultRoles と DefaultLocations は discover コマンドの既定の検索条件です。
var (
	DefaultRoles = []string{
		"data scientist",
		"data analyst",
		"machine learning engineer",
		"ai engineer",
	}
	DefaultLocations = []string{
		"Atlanta",
		"New York",
		"San Francisco",
		"Boston",
	}
)

// Config はアプリケーションの設定を保持します。
type Config struct {
	Output     string        `yaml:"output"`
	Roles      []string      `yaml:"roles"`
	Locations  []string      `yaml:"locations"`
	SearchSite string        `yaml:"search_site"`
	Pause      time.Duration `yaml:"pause"`
}

// Load は .env、YAML 設定ファイル、環境変数の順に設定を読み込みます。
// path が空の場合は JOB_EXACT_SETTINGS を参照し、それも空なら YAML は読み込みません。
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if path == "" {
		path = os.Getenv(EnvSettings)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("設定ファイルのパースに失敗しました (%s): %w", path, err)
		}
	}

	// 環境変数で上書き
	if out := os.Getenv(EnvOutput); out != "" {
		cfg.Output = out
	}

	// デフォルト値の設定
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if len(cfg.Roles) == 0 {
		cfg.Roles = DefaultRoles
	}
	if len(cfg.Locations) == 0 {
		cfg.Locations = DefaultLocations
	}
	if cfg.SearchSite == "" {
		cfg.SearchSite = search.DefaultSite
	}
	if cfg.Pause == 0 {
		cfg.Pause = DefaultPause
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の整合性を確認します。
func (c *Config) Validate() error {
	if c.Pause < 0 {
		return errors.New("pause には0以上の値を指定してください")
	}
	return nil
}
