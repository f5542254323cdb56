package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"tsumugi/internal/address"
	"tsumugi/internal/config"
	"tsumugi/internal/server"
	"tsumugi/internal/session"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run は tsumugi <ip:port> を実行し、終了コードを返す
func run(args []string) int {
	sess := session.New(os.Stdout)
	sess.Started()

	if len(args) < 1 {
		return sess.End(1, address.ErrMissing.Error())
	}

	// アドレスを検証
	addr, err := address.Validate(args[0])
	if err != nil {
		return sess.End(1, err.Error())
	}

	cfg, err := loadConfig(addr)
	if err != nil {
		return sess.End(1, err.Error())
	}

	// サーバーを作成
	srv, err := server.New(cfg, sess)
	if err != nil {
		return sess.End(1, err.Error())
	}

	// サーバーを起動
	if err := srv.Start(context.Background()); err != nil {
		log.Printf("サーバーの実行に失敗しました: %v", err)
		return sess.End(1, err.Error())
	}

	return sess.End(0, "TCP Connections Closed")
}

// loadConfig は設定を読み込み、検証済みのアドレス addr で上書きしてから検証する
// 環境変数のアドレスは引数で置き換えられるため検証対象にならない
func loadConfig(addr string) (*config.Config, error) {
	cfg, err := config.Read("")
	if err != nil {
		return nil, err
	}
	cfg.Server.Address = addr

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}
	return cfg, nil
}
