package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"tsumugi/internal/config"
	"tsumugi/internal/content"
	"tsumugi/internal/pool"
	"tsumugi/internal/router"
	"tsumugi/internal/session"
)

// Accept失敗時の待機時間
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = 1 * time.Second
)

// MaxRequestLineSize はリクエスト行として読み込む最大バイト数
// 改行が現れないまま上限に達した場合は 500 を返す
const MaxRequestLineSize = 8192

// Server は接続を受け付け、処理をワーカープールに委ねるTCPサーバー
type Server struct {
	config  *config.Config
	session *session.Session
	pool    *pool.Pool
	router  *router.Router
	admin   *http.Server

	mu       sync.Mutex
	listener net.Listener

	accepted     atomic.Uint64
	acceptErrors atomic.Uint64
	startedAt    time.Time

	shutdownOnce sync.Once
	shutdownErr  error
}

// New は新しいServerインスタンスを作成する
// ワーカープールはここで起動する
func New(cfg *config.Config, sess *session.Session) (*Server, error) {
	p, err := pool.NewWithQueue(cfg.Server.Workers, cfg.Server.QueueSize)
	if err != nil {
		return nil, fmt.Errorf("ワーカープールの作成に失敗: %w", err)
	}

	s := &Server{
		config:  cfg,
		session: sess,
		pool:    p,
		router:  router.New(content.NewFileStore(cfg.Server.ContentDir)),
	}

	if cfg.Admin.Enabled {
		s.admin = &http.Server{
			Addr:         cfg.AdminAddress(),
			Handler:      s.newAdminEngine(),
			ReadTimeout:  cfg.Admin.ReadTimeout,
			WriteTimeout: cfg.Admin.WriteTimeout,
		}
	}

	return s, nil
}

// Start はサーバーを起動する
// 接続数の上限に達するか、コンテキストのキャンセルまたはシグナルを受けるまでブロックする
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ServerAddress())
	if err != nil {
		s.pool.Close()
		return fmt.Errorf("リッスンに失敗: %w", err)
	}

	adminErrCh := make(chan error, 1)
	if s.admin != nil {
		go func() {
			log.Printf("管理サーバーを起動しています: %s", s.admin.Addr)
			if err := s.admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				adminErrCh <- fmt.Errorf("管理サーバーの起動に失敗: %w", err)
			}
		}()
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	// 受付ループを別ゴルーチンで起動
	serveCh := make(chan error, 1)
	go func() {
		serveCh <- s.Serve(ln)
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var serveErr error
	select {
	case serveErr = <-serveCh:
	case <-ctx.Done():
		log.Println("コンテキストがキャンセルされました")
		serveErr = s.stopAccepting(ln, serveCh)
	case sig := <-sigCh:
		log.Printf("シグナルを受信しました: %v", sig)
		serveErr = s.stopAccepting(ln, serveCh)
	case err := <-adminErrCh:
		s.stopAccepting(ln, serveCh)
		return errors.Join(err, s.Shutdown())
	}

	return errors.Join(serveErr, s.Shutdown())
}

// stopAccepting はリスナーを閉じ、受付ループの終了を待つ
// 受付ループのゴルーチンがまだ動き出していなくても ln を直接閉じる
func (s *Server) stopAccepting(ln net.Listener, serveCh <-chan error) error {
	ln.Close()
	return <-serveCh
}

// Serve は ln で接続を受け付け、各接続の処理をジョブとして投入する
// MaxConnections 件を受け付けるか ln が閉じられると nil を返す
// ln は戻る前に閉じられる
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.startedAt = time.Now()
	s.mu.Unlock()
	defer ln.Close()

	limit := uint64(s.config.Server.MaxConnections)
	log.Printf("接続の受付を開始します: %s (上限: %d, 0は無制限)", ln.Addr(), limit)

	var delay time.Duration
	for limit == 0 || s.accepted.Load() < limit {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				log.Println("リスナーが閉じられたため受付を終了します")
				return nil
			}

			// 個別の接続エラーとして扱い、受付は続ける
			s.acceptErrors.Add(1)
			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay = min(delay*2, maxAcceptDelay)
			}
			log.Printf("接続の受け付けに失敗しました: %v (%v後に再試行)", err, delay)
			time.Sleep(delay)
			continue
		}
		delay = 0

		s.accepted.Add(1)
		if err := s.pool.Execute(func() { s.handleConnection(conn) }); err != nil {
			log.Printf("ジョブの投入に失敗しました: %v", err)
			conn.Close()
		}
	}

	log.Printf("接続数の上限 %d に達したため受付を終了します", limit)
	return nil
}

// handleConnection は1接続分の処理を行う
// リクエスト行を読み、ルーティングし、応答を書いて接続を閉じる
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	line, err := bufio.NewReader(io.LimitReader(conn, MaxRequestLineSize)).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		log.Printf("%s からリクエスト行を読めませんでした: %v", conn.RemoteAddr(), err)
		return
	}

	var response []byte
	if len(line) >= MaxRequestLineSize && !strings.HasSuffix(line, "\n") {
		log.Printf("%s のリクエスト行が上限 %d バイトを超えました", conn.RemoteAddr(), MaxRequestLineSize)
		response = s.router.Malformed()
	} else {
		response = s.router.Route(line)
	}

	w := bufio.NewWriter(conn)
	if _, err := w.Write(response); err != nil {
		log.Printf("%s への応答の書き込みに失敗しました: %v", conn.RemoteAddr(), err)
		return
	}
	if err := w.Flush(); err != nil {
		log.Printf("%s への応答のフラッシュに失敗しました: %v", conn.RemoteAddr(), err)
	}
}

// closeListener は受付中のリスナーを閉じる
func (s *Server) closeListener() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
}

// Shutdown はサーバーを停止する
// 受付を止めた後、キューに残ったジョブと実行中のジョブの完了を待つ
func (s *Server) Shutdown() error {
	s.shutdownOnce.Do(func() {
		log.Println("サーバーをシャットダウンしています...")

		s.closeListener()

		if s.admin != nil {
			// 5秒のタイムアウトを設定
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := s.admin.Shutdown(ctx); err != nil {
				s.shutdownErr = fmt.Errorf("管理サーバーのシャットダウンに失敗: %w", err)
			}
		}

		s.pool.Close()

		log.Printf("サーバーが正常にシャットダウンされました (受付: %d件)", s.accepted.Load())
	})

	return s.shutdownErr
}

// Accepted は受け付けた接続数を返す
func (s *Server) Accepted() uint64 {
	return s.accepted.Load()
}
