// Package server exposes analysis and preprocessing over HTTP. It is
// stateless: every request carries its dataset in the body.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dataprep/internal/metrics"
	"github.com/KaramelBytes/dataprep/internal/preprocess"
)

// Config tunes the HTTP server.
type Config struct {
	Addr           string
	RequestTimeout time.Duration
	BodyLimit      string // e.g. "32M"
	Delimiter      rune   // CSV download delimiter
}

// Server wires the HTTP API onto an echo instance.
type Server struct {
	e   *echo.Echo
	cfg Config
	tr  *preprocess.Transformer
	log *zap.Logger
	rec *metrics.Recorder
}

// New builds the server and registers all routes. log and rec may be nil.
func New(cfg Config, tr *preprocess.Transformer, log *zap.Logger, rec *metrics.Recorder) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.New()
	}
	if cfg.Delimiter == 0 {
		cfg.Delimiter = ','
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}

	s := &Server{e: e, cfg: cfg, tr: tr, log: log, rec: rec}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	h := &handler{s: s}
	h.RegisterRoutes(e)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(rec.Handler()))
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.e }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.cfg.Addr))
		errCh <- s.e.Start(s.cfg.Addr)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			s.rec.ObserveRequest(route, strconv.Itoa(v.Status), v.Latency)
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				s.log.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			s.log.Info("request", fields...)
			return nil
		},
	})
}

// handleError maps domain errors onto status codes before falling back to
// echo's default handler.
func (s *Server) handleError(err error, c echo.Context) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
	case errors.Is(err, preprocess.ErrUnknownMethod):
		err = echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, context.DeadlineExceeded):
		err = echo.NewHTTPError(http.StatusServiceUnavailable, "request timed out").SetInternal(err)
	case errors.Is(err, context.Canceled):
		err = echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled").SetInternal(err)
	}
	s.e.DefaultHTTPErrorHandler(err, c)
}

// jsonSerializer swaps echo's encoding/json for goccy/go-json.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body: "+err.Error()).SetInternal(err)
	}
	return nil
}
