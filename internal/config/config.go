package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"tsumugi/internal/address"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
	Admin  AdminConfig  `yaml:"admin" toml:"admin"`
}

// ServerConfig はTCPサーバーの設定
type ServerConfig struct {
	Address string `yaml:"address" toml:"address" validate:"required"` // リッスンするアドレス (a.b.c.d:port)

	Workers        int `yaml:"workers" toml:"workers" validate:"min=1"`                 // ワーカー数
	MaxConnections int `yaml:"max_connections" toml:"max_connections" validate:"min=0"` // 受け付ける接続数の上限 (0は無制限)
	QueueSize      int `yaml:"queue_size" toml:"queue_size" validate:"min=0"`           // ジョブキュー容量 (0はワーカー数から算出)

	ContentDir string `yaml:"content_dir" toml:"content_dir" validate:"required"` // 静的HTMLのディレクトリ
}

// AdminConfig は状態確認用HTTPサーバーの設定
type AdminConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Host    string `yaml:"host" toml:"host"`
	Port    int    `yaml:"port" toml:"port" validate:"min=0,max=65535"`

	// タイムアウト設定
	ReadTimeout  time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout"`
}

// デフォルト値
const (
	DefaultAddress        = "127.0.0.1:7878"
	DefaultWorkers        = 4
	DefaultMaxConnections = 4
	DefaultContentDir     = "."
)

var validate = validator.New()

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        DefaultAddress,
			Workers:        DefaultWorkers,
			MaxConnections: DefaultMaxConnections,
			ContentDir:     DefaultContentDir,
		},
		Admin: AdminConfig{
			Enabled:      false,
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Load は設定を読み込む
// デフォルト値、設定ファイル（path が空でなければ）、環境変数の順に上書きする
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// Read は Load と同じ順序で設定を組み立てるが検証はしない
// コマンドライン引数で上書きしてから Validate を呼ぶ場合に使う
func Read(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// loadFile は拡張子に応じてYAMLまたはTOMLを読み込む
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("未対応の設定ファイル形式です: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("設定ファイル %s の解析に失敗: %w", path, err)
	}

	return nil
}

// applyEnv は環境変数で設定を上書きする
func (c *Config) applyEnv() {
	c.Server.Address = getEnvOrDefault("TSUMUGI_ADDRESS", c.Server.Address)
	c.Server.Workers = getEnvAsIntOrDefault("TSUMUGI_WORKERS", c.Server.Workers)
	c.Server.MaxConnections = getEnvAsIntOrDefault("TSUMUGI_MAX_CONNECTIONS", c.Server.MaxConnections)
	c.Server.ContentDir = getEnvOrDefault("TSUMUGI_CONTENT_DIR", c.Server.ContentDir)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	// アドレス形式の検証
	if _, err := address.Validate(c.Server.Address); err != nil {
		return fmt.Errorf("無効なアドレス %q: %w", c.Server.Address, err)
	}

	if c.Admin.Enabled && c.Admin.Port == 0 {
		return errors.New("管理サーバーのポートが設定されていません")
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return c.Server.Address
}

// AdminAddress は管理サーバーのリッスンアドレスを返す
func (c *Config) AdminAddress() string {
	return fmt.Sprintf("%s:%d", c.Admin.Host, c.Admin.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
