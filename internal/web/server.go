package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joacominatel/telemetrydash/internal/app"
	"github.com/joacominatel/telemetrydash/internal/view"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Server serves the dashboard. Every page view is a fresh activation.
type Server struct {
	loader   view.Loader
	variant  app.Variant
	renderer *Renderer
	metrics  *Metrics
	logger   *zap.Logger
	timeout  time.Duration
}

// NewServer creates a dashboard server.
func NewServer(loader view.Loader, variant app.Variant, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Server{
		loader:   loader,
		variant:  variant,
		renderer: r,
		metrics:  NewMetrics(),
		logger:   logger,
		timeout:  30 * time.Second,
	}, nil
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler builds the echo router.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(accessLogger(s.logger))
	e.Pre(middleware.RemoveTrailingSlash())

	e.GET("/", s.handlePage)
	e.GET("/fragment", s.handleFragment)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	return e
}

// Start listens on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	e := s.Handler()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func (s *Server) handlePage(c echo.Context) error {
	return s.render(c, s.renderer.Page)
}

func (s *Server) handleFragment(c echo.Context) error {
	return s.render(c, s.renderer.Fragment)
}

func (s *Server) render(c echo.Context, fn func(w io.Writer, st *view.State) error) error {
	st := s.activate(c.Request().Context())

	var buf bytes.Buffer
	if err := fn(&buf, st); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	status := http.StatusOK
	if st.Kind() == view.KindError {
		status = http.StatusBadGateway
	}
	return c.HTMLBlob(status, buf.Bytes())
}

// activate runs one fetch cycle for a fresh view.
func (s *Server) activate(ctx context.Context) *view.State {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	ctrl := view.NewController(s.loader, s.variant)
	_ = ctrl.Activate(ctx)
	st := ctrl.State()

	s.metrics.Duration.Observe(time.Since(start).Seconds())
	s.metrics.Cycles.WithLabelValues(st.Kind().String()).Inc()
	if st.Kind() == view.KindError {
		s.logger.Warn("fetch cycle failed", zap.String("error", st.Err()))
	}
	return st
}

// accessLogger logs one line per request.
func accessLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			// skip metric endpoints
			if strings.HasPrefix(c.Path(), "/metrics") {
				return nil
			}

			req := c.Request()
			res := c.Response()
			fields := []zapcore.Field{
				zap.String("remote_ip", c.RealIP()),
				zap.String("request", fmt.Sprintf("%s %s", req.Method, req.RequestURI)),
				zap.Int("status", res.Status),
				zap.Int64("size", res.Size),
				zap.Duration("latency", time.Since(start)),
			}

			switch n := res.Status; {
			case n >= 500:
				log.Error("Server error", fields...)
			case n >= 400:
				log.Warn("Client error", fields...)
			default:
				log.Info("Success", fields...)
			}
			return nil
		}
	}
}
