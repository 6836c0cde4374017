package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Server HTTP-сервер анкеты с graceful shutdown.
type Server struct {
	srv     *http.Server
	logger  *zap.SugaredLogger
	running atomic.Bool
	addr    atomic.Value // string, фактический адрес после Start
}

// NewServer создаёт сервер. writeTimeout должен покрывать синхронную генерацию (?sync=1).
func NewServer(bindAddr string, handler http.Handler, writeTimeout time.Duration, logger *zap.SugaredLogger) *Server {
	if bindAddr == "" {
		bindAddr = "127.0.0.1:8501"
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	s := &Server{logger: logger}
	s.addr.Store(bindAddr)
	s.srv = &http.Server{
		Addr:              bindAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Start открывает порт и обслуживает запросы в отдельной горутине.
// Ошибка занятого порта возвращается сразу. При отмене ctx сервер останавливается.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		s.running.Store(false)
		return err
	}
	s.addr.Store(ln.Addr().String())

	go func() {
		s.logger.Infow("Web server listening", "addr", s.Addr())
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("Web server stopped with error", "error", err)
		} else {
			s.logger.Infow("Web server stopped")
		}
	}()

	// Watch for context cancellation to stop the server
	go func() {
		<-ctx.Done()
		_ = s.Stop(context.WithoutCancel(ctx))
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("web server shutdown timeout"))
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("graceful shutdown error", "error", err)
		return s.srv.Close()
	}
	return nil
}

// Addr возвращает адрес, на котором слушает сервер.
func (s *Server) Addr() string { return s.addr.Load().(string) }
