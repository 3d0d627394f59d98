package hostendpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bootbridge/internal/domain"
	"bootbridge/internal/metrics"
)

const (
	// CurrentTaskPath is the route polled by the task bridge.
	CurrentTaskPath = "/current_task"
	// MetricsPath exposes Prometheus metrics.
	MetricsPath = "/metrics"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Server is the host-local HTTP endpoint.
type Server struct {
	engine   *gin.Engine
	board    *TaskBoard
	recorder Recorder
	logger   *slog.Logger
}

// NewServer creates a server for board. Requests are counted on recorder,
// which may be nil. A nil metrics handler disables /metrics.
func NewServer(board *TaskBoard, recorder Recorder, metricsHandler http.Handler, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	// The page polling us lives on another origin and must be allowed to
	// read the task header.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	corsConfig.ExposeHeaders = []string{domain.HeaderCurrentTask}
	engine.Use(cors.New(corsConfig))

	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	s := &Server{
		engine:   engine,
		board:    board,
		recorder: recorder,
		logger:   logger,
	}

	engine.GET(CurrentTaskPath, s.handleCurrentTask)
	if metricsHandler != nil {
		engine.GET(MetricsPath, gin.WrapH(metricsHandler))
	}

	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleCurrentTask(c *gin.Context) {
	task := s.board.Current()
	s.recorder.ObserveHostRequest()
	c.Header(domain.HeaderCurrentTask, string(task))
	c.Data(http.StatusOK, "text/plain", nil)
}

// Serve accepts connections on listener until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	s.logger.InfoContext(ctx, "Host endpoint listening", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("host endpoint stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down host endpoint: %w", err)
	}
	s.logger.InfoContext(ctx, "Host endpoint stopped")
	return nil
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}
