package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mindwell-app/mindwell/internal/bootstrap"
)

// LocalServer 进度引擎的本地 HTTP 入口
type LocalServer struct {
	core    *bootstrap.Core
	ln      net.Listener
	srv     *http.Server
	baseURL string
}

type Options struct {
	ListenAddr string // e.g. "127.0.0.1:8470"
}

// Start 启动 HTTP 服务，ctx 取消时优雅退出
func Start(ctx context.Context, core *bootstrap.Core, opts Options) (*LocalServer, error) {
	if core == nil {
		return nil, fmt.Errorf("core 不能为空")
	}
	if strings.TrimSpace(opts.ListenAddr) == "" {
		opts.ListenAddr = "127.0.0.1:0"
	}

	ln, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return nil, err
	}

	baseURL := "http://" + ln.Addr().String()

	api := newAPI(core)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", api.handleHealth)
	mux.HandleFunc("GET /api/events", api.handleSSE)
	mux.HandleFunc("POST /api/activities", api.handleRecordActivity)
	mux.HandleFunc("GET /api/accounts/{id}/statistics", api.handleStatistics)
	mux.HandleFunc("GET /api/accounts/{id}/activities", api.handleActivities)
	mux.HandleFunc("POST /api/accounts/{id}/badges/evaluate", api.handleEvaluateBadges)
	mux.HandleFunc("GET /api/accounts/{id}/badges", api.handleListAwards)
	mux.HandleFunc("GET /api/accounts/{id}/stability", api.handleStabilityHistory)
	mux.HandleFunc("GET /api/badges", api.handleCatalog)
	mux.HandleFunc("POST /api/stability", api.handleStability)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ls := &LocalServer{
		core:    core,
		ln:      ln,
		srv:     srv,
		baseURL: baseURL,
	}

	go func() {
		<-ctx.Done()
		_ = ls.Shutdown(context.Background())
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server 异常退出", "error", err)
		}
	}()

	slog.Info("本地 HTTP 已启动", "base_url", baseURL)
	return ls, nil
}

func (s *LocalServer) BaseURL() string {
	if s == nil {
		return ""
	}
	return s.baseURL
}

func (s *LocalServer) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
