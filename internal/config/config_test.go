package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestConfigLoad は設定の読み込みをテストする
func TestConfigLoad(t *testing.T) {
	// 設定を読み込む
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// 基本的な設定値を検証
	if cfg == nil {
		t.Fatal("設定がnilです")
	}

	// サーバー設定の検証
	if cfg.Server.Address == "" {
		t.Error("サーバーアドレスが設定されていません")
	}
	if cfg.Server.Workers != DefaultWorkers {
		t.Errorf("ワーカー数がデフォルト値ではありません: got %d, want %d", cfg.Server.Workers, DefaultWorkers)
	}
	if cfg.Server.MaxConnections != DefaultMaxConnections {
		t.Errorf("接続数上限がデフォルト値ではありません: got %d, want %d", cfg.Server.MaxConnections, DefaultMaxConnections)
	}
	if cfg.Server.ContentDir == "" {
		t.Error("コンテンツディレクトリが設定されていません")
	}

	// 管理サーバーはデフォルトで無効
	if cfg.Admin.Enabled {
		t.Error("管理サーバーがデフォルトで有効になっています")
	}
	if cfg.Admin.ReadTimeout <= 0 {
		t.Error("読み込みタイムアウトが設定されていません")
	}
}

// TestConfigValidation は設定の検証をテストする
func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Server.Address = "127.0.0.1:8080"
		return cfg
	}

	testCases := []struct {
		name      string
		modify    func(c *Config)
		expectErr bool
	}{
		{
			name:      "正常な設定",
			modify:    func(c *Config) {},
			expectErr: false,
		},
		{
			name:      "接続数無制限",
			modify:    func(c *Config) { c.Server.MaxConnections = 0 },
			expectErr: false,
		},
		{
			name:      "ワーカー数0",
			modify:    func(c *Config) { c.Server.Workers = 0 },
			expectErr: true,
		},
		{
			name:      "負の接続数上限",
			modify:    func(c *Config) { c.Server.MaxConnections = -1 },
			expectErr: true,
		},
		{
			name:      "アドレスなし",
			modify:    func(c *Config) { c.Server.Address = "" },
			expectErr: true,
		},
		{
			name:      "無効なポート番号",
			modify:    func(c *Config) { c.Server.Address = "127.0.0.1:99999" },
			expectErr: true,
		},
		{
			name:      "先頭ゼロのセグメント",
			modify:    func(c *Config) { c.Server.Address = "127.0.0.01:80" },
			expectErr: true,
		},
		{
			name:      "コンテンツディレクトリなし",
			modify:    func(c *Config) { c.Server.ContentDir = "" },
			expectErr: true,
		},
		{
			name: "管理サーバーのポートなし",
			modify: func(c *Config) {
				c.Admin.Enabled = true
				c.Admin.Port = 0
			},
			expectErr: true,
		},
		{
			name:      "管理サーバーのポート範囲外",
			modify:    func(c *Config) { c.Admin.Port = 70000 },
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.expectErr && err == nil {
				t.Error("エラーが期待されましたが、エラーが発生しませんでした")
			}
			if !tc.expectErr && err != nil {
				t.Errorf("予期しないエラーが発生しました: %v", err)
			}
		})
	}
}

// TestServerAddress はアドレスの生成をテストする
func TestServerAddress(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Address: "192.168.1.100:9090"},
		Admin:  AdminConfig{Host: "127.0.0.1", Port: 8081},
	}

	if actual := cfg.ServerAddress(); actual != "192.168.1.100:9090" {
		t.Errorf("サーバーアドレスが一致しません: got %s, want 192.168.1.100:9090", actual)
	}
	if actual := cfg.AdminAddress(); actual != "127.0.0.1:8081" {
		t.Errorf("管理サーバーアドレスが一致しません: got %s, want 127.0.0.1:8081", actual)
	}
}

// TestLoadYAML はYAML設定ファイルの読み込みをテストする
func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsumugi.yaml")
	data := `server:
  address: 10.0.0.1:8000
  workers: 8
  max_connections: 0
  content_dir: /srv/html
admin:
  enabled: true
  port: 9100
  read_timeout: 3s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("設定ファイルの作成に失敗しました: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Server.Address != "10.0.0.1:8000" || cfg.Server.Workers != 8 || cfg.Server.MaxConnections != 0 {
		t.Errorf("サーバー設定が反映されていません: %+v", cfg.Server)
	}
	if cfg.Server.ContentDir != "/srv/html" {
		t.Errorf("コンテンツディレクトリが一致しません: got %s, want /srv/html", cfg.Server.ContentDir)
	}
	if !cfg.Admin.Enabled || cfg.Admin.Port != 9100 || cfg.Admin.ReadTimeout != 3*time.Second {
		t.Errorf("管理サーバー設定が反映されていません: %+v", cfg.Admin)
	}
	// ファイルで指定していない値はデフォルトのまま
	if cfg.Admin.Host != "127.0.0.1" {
		t.Errorf("管理サーバーのホストがデフォルト値ではありません: got %s, want 127.0.0.1", cfg.Admin.Host)
	}
}

// TestLoadTOML はTOML設定ファイルの読み込みをテストする
func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsumugi.toml")
	data := `[server]
address = "192.168.0.10:7000"
workers = 2
queue_size = 8
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("設定ファイルの作成に失敗しました: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Server.Address != "192.168.0.10:7000" || cfg.Server.Workers != 2 || cfg.Server.QueueSize != 8 {
		t.Errorf("サーバー設定が反映されていません: %+v", cfg.Server)
	}
	if cfg.Server.MaxConnections != DefaultMaxConnections {
		t.Errorf("接続数上限がデフォルト値ではありません: got %d, want %d", cfg.Server.MaxConnections, DefaultMaxConnections)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("存在しないファイルでエラーが発生しませんでした")
	}

	unknown := filepath.Join(dir, "tsumugi.json")
	if err := os.WriteFile(unknown, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("設定ファイルの作成に失敗しました: %v", err)
	}
	if _, err := Load(unknown); err == nil {
		t.Error("未対応の拡張子でエラーが発生しませんでした")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("server:\n  workers: 0\n"), 0o644); err != nil {
		t.Fatalf("設定ファイルの作成に失敗しました: %v", err)
	}
	if _, err := Load(invalid); err == nil {
		t.Error("ワーカー数0で検証エラーが発生しませんでした")
	}
}

// TestEnvironmentVariables は環境変数の処理をテストする
// 注意: このテストは環境変数を変更するため、parallelは使わない
func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("TSUMUGI_ADDRESS", "10.1.2.3:9999")
	t.Setenv("TSUMUGI_WORKERS", "6")
	t.Setenv("TSUMUGI_MAX_CONNECTIONS", "0")
	t.Setenv("TSUMUGI_CONTENT_DIR", "/var/www")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Server.Address != "10.1.2.3:9999" {
		t.Errorf("環境変数のアドレスが反映されていません: got %s, want 10.1.2.3:9999", cfg.Server.Address)
	}
	if cfg.Server.Workers != 6 {
		t.Errorf("環境変数のワーカー数が反映されていません: got %d, want 6", cfg.Server.Workers)
	}
	if cfg.Server.MaxConnections != 0 {
		t.Errorf("環境変数の接続数上限が反映されていません: got %d, want 0", cfg.Server.MaxConnections)
	}
	if cfg.Server.ContentDir != "/var/www" {
		t.Errorf("環境変数のディレクトリが反映されていません: got %s, want /var/www", cfg.Server.ContentDir)
	}
}

// TestRead は Read が検証せずに設定を返すことをテストする
func TestRead(t *testing.T) {
	t.Setenv("TSUMUGI_ADDRESS", "not-an-address")

	cfg, err := Read("")
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}
	if cfg.Server.Address != "not-an-address" {
		t.Errorf("環境変数のアドレスが反映されていません: got %s, want not-an-address", cfg.Server.Address)
	}

	if _, err := Load(""); err == nil {
		t.Error("Load では不正なアドレスで検証エラーが発生するはずです")
	}

	cfg.Server.Address = "127.0.0.1:8080"
	if err := cfg.Validate(); err != nil {
		t.Errorf("予期しないエラーが発生しました: %v", err)
	}
}
