// Package server exposes the fusion engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/searchfusion/adapters"
	"github.com/mohammad-safakhou/searchfusion/cache"
	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/engine"
	"github.com/mohammad-safakhou/searchfusion/internal/store"
	"github.com/mohammad-safakhou/searchfusion/internal/sweeper"
	"github.com/mohammad-safakhou/searchfusion/models"
)

// Run wires the store, registry, engine and sweeper, then serves until the
// listener fails.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]any{"error": msg})
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := adapters.NewRegistry(cfg.Sources)
	eng := engine.New(cfg, registry, st)

	if cfg.Cache.SweepSchedule != "" {
		sw, err := sweeper.New(eng.Cache(), cfg.Cache.SweepSchedule, cfg.Cache.SweepBatchSize)
		if err != nil {
			return fmt.Errorf("configure sweeper: %w", err)
		}
		go sw.Run(ctx)
	}

	h := &Handler{Engine: eng}
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	if cfg.Server.JWTSecret != "" {
		api.Use(jwtMiddleware([]byte(cfg.Server.JWTSecret)))
	}
	api.POST("/search", h.Search)
	api.POST("/search/invalidate", h.Invalidate)

	return e.Start(cfg.Server.Address)
}

func buildStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		st, err := store.NewRedis(ctx, cfg.Storage.Redis.Host+":"+cfg.Storage.Redis.Port, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	default:
		dsn, err := cfg.Storage.Postgres.DSN()
		if err != nil {
			return nil, nil, err
		}
		st, err := store.NewPostgres(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	}
}

// SearchRequest is the /api/search body.
type SearchRequest struct {
	Query   string               `json:"query"`
	Mode    models.SearchMode    `json:"mode"`
	Options models.SearchOptions `json:"options"`
}

// Handler serves the search API.
type Handler struct {
	Engine *engine.Engine
}

func (h *Handler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if req.Mode != "" && !req.Mode.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid mode %q", req.Mode))
	}

	env, err := h.Engine.Search(c.Request().Context(), req.Query, req.Mode, req.Options)
	if err != nil {
		if errors.Is(err, models.ErrUnsupportedSource) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, env)
}

func (h *Handler) Invalidate(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	mode := req.Mode
	if mode == "" {
		mode = models.ModeBalanced
	}
	if err := h.Engine.Invalidate(c.Request().Context(), req.Query, mode, req.Options); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
