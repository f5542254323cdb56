// Package main はtsumugiサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"

	"tsumugi/internal/address"
	"tsumugi/internal/config"
	"tsumugi/internal/server"
	"tsumugi/internal/session"
)

func main() {
	// コマンドラインオプション
	var (
		configPath = flag.String("config", "", "設定ファイル (.yaml / .yml / .toml)")
		addr       = flag.String("addr", "", "リッスンするアドレス a.b.c.d:port (デフォルト: 127.0.0.1:7878)")
		workers    = flag.Int("workers", 0, "ワーカー数 (デフォルト: 4)")
		maxConns   = flag.Int("max-conns", -1, "受け付ける接続数の上限、0で無制限 (デフォルト: 4)")
		contentDir = flag.String("content-dir", "", "静的HTMLのディレクトリ (デフォルト: カレントディレクトリ)")
		admin      = flag.Bool("admin", false, "管理サーバーを有効にする")
		debug      = flag.Bool("debug", false, "Ginをデバッグモードで動かす")
		help       = flag.Bool("help", false, "ヘルプを表示")
	)

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("tsumugi")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	sess := session.New(os.Stdout)
	sess.Started()

	// 設定を読み込む
	cfg, err := config.Read(*configPath)
	if err != nil {
		os.Exit(sess.End(1, err.Error()))
	}

	// コマンドラインオプションで設定を上書き
	if *addr != "" {
		validated, err := address.Validate(*addr)
		if err != nil {
			os.Exit(sess.End(1, err.Error()))
		}
		cfg.Server.Address = validated
	}
	if *workers != 0 {
		cfg.Server.Workers = *workers
	}
	if *maxConns >= 0 {
		cfg.Server.MaxConnections = *maxConns
	}
	if *contentDir != "" {
		cfg.Server.ContentDir = *contentDir
	}
	if *admin {
		cfg.Admin.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		os.Exit(sess.End(1, err.Error()))
	}

	// 端末以外への出力では色を付けない
	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if fd := os.Stderr.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		gin.DisableConsoleColor()
	}

	srv, err := server.New(cfg, sess)
	if err != nil {
		os.Exit(sess.End(1, err.Error()))
	}

	// サーバーを起動
	log.Printf("tsumugi サーバーを起動します: %s", cfg.ServerAddress())
	if err := srv.Start(context.Background()); err != nil {
		os.Exit(sess.End(1, err.Error()))
	}

	os.Exit(sess.End(0, "TCP Connections Closed"))
}
