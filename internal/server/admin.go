package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tsumugi/internal/pool"
)

// HealthResponse はヘルスチェックの応答
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse はサーバー状態の応答
type StatusResponse struct {
	Status         string     `json:"status"`
	SessionID      string     `json:"session_id,omitempty"`
	Address        string     `json:"address"`
	Accepted       uint64     `json:"accepted"`
	AcceptErrors   uint64     `json:"accept_errors"`
	MaxConnections int        `json:"max_connections"`
	Pool           pool.Stats `json:"pool"`
	WorkerIDs      []string   `json:"worker_ids"`
	Uptime         string     `json:"uptime"`
	Timestamp      time.Time  `json:"timestamp"`
}

// newAdminEngine は管理用のGinエンジンを作成する
func (s *Server) newAdminEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/api/status", s.handleStatus)

	return r
}

// handleHealth はヘルスチェックエンドポイント
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// handleStatus は受付状況とワーカープールの統計を返す
func (s *Server) handleStatus(c *gin.Context) {
	s.mu.Lock()
	startedAt := s.startedAt
	s.mu.Unlock()

	status := "running"
	uptime := time.Duration(0)
	if startedAt.IsZero() {
		status = "starting"
	} else {
		uptime = time.Since(startedAt).Truncate(time.Second)
	}

	response := StatusResponse{
		Status:         status,
		Address:        s.config.ServerAddress(),
		Accepted:       s.accepted.Load(),
		AcceptErrors:   s.acceptErrors.Load(),
		MaxConnections: s.config.Server.MaxConnections,
		Pool:           s.pool.Stats(),
		WorkerIDs:      s.pool.WorkerIDs(),
		Uptime:         uptime.String(),
		Timestamp:      time.Now(),
	}
	if s.session != nil {
		response.SessionID = s.session.ID.String()
	}

	c.JSON(http.StatusOK, response)
}
