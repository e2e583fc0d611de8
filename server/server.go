// Package server exposes crew plan generation over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/crewforge/storage"
)

// Flow is the part of crewforge.Flow the server needs. Narrowed for tests.
type Flow interface {
	Run(ctx context.Context, taskDescription string, config crewforge.GenerationConfig) (*crewforge.CrewPlan, error)
	RunDebug(ctx context.Context, taskDescription string, config crewforge.GenerationConfig) (*crewforge.Snapshot, error)
}

// Server handles crew plan creation and retrieval requests.
type Server struct {
	echo  *echo.Echo
	flow  Flow
	store *storage.Store
}

// New builds the HTTP server around a flow and an optional store. With a nil
// store the crews endpoints report 503 and created plans are not persisted.
func New(flow Flow, store *storage.Store, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	s := &Server{
		echo:  e,
		flow:  flow,
		store: store,
	}

	e.GET("/health", s.handleHealth)
	e.POST("/flow/create", s.handleCreate)
	e.POST("/flow/debug", s.handleDebug)
	e.GET("/crews", s.handleListCrews)
	e.GET("/crews/:id", s.handleGetCrew)
	e.DELETE("/crews/:id", s.handleDeleteCrew)

	return s
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"elapsed", time.Since(start).String(),
			)
			return err
		}
	}
}

// Start listens on the given address until the server is shut down.
func (x *Server) Start(addr string) error {
	return x.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (x *Server) Shutdown(ctx context.Context) error {
	return x.echo.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler.
func (x *Server) Handler() http.Handler {
	return x.echo
}

type createRequest struct {
	Task        string  `json:"task"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

func (x *createRequest) config() crewforge.GenerationConfig {
	config := crewforge.DefaultGenerationConfig()
	if x.Model != "" {
		config.Model = x.Model
	}
	if x.Temperature > 0 {
		config.Temperature = x.Temperature
	}
	return config
}

type errorResponse struct {
	Error string `json:"error"`
}

func (x *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (x *Server) handleCreate(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if req.Task == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "task is required"})
	}

	config := req.config()
	plan, err := x.flow.Run(c.Request().Context(), req.Task, config)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	if x.store != nil {
		if err := x.store.SaveCrew(c.Request().Context(), plan, req.Task, config); err != nil {
			crewforge.LoggerFromContext(c.Request().Context()).Warn("failed to persist crew plan",
				"crew_id", plan.ID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, plan)
}

func (x *Server) handleDebug(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if req.Task == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "task is required"})
	}

	snapshot, err := x.flow.RunDebug(c.Request().Context(), req.Task, req.config())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (x *Server) handleListCrews(c echo.Context) error {
	if x.store == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "persistence is not configured"})
	}

	crews, err := x.store.ListCrews(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	if crews == nil {
		crews = []storage.CrewSummary{}
	}
	return c.JSON(http.StatusOK, crews)
}

func (x *Server) handleGetCrew(c echo.Context) error {
	if x.store == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "persistence is not configured"})
	}

	crew, err := x.store.GetCrew(c.Request().Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "crew not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, crew)
}

func (x *Server) handleDeleteCrew(c echo.Context) error {
	if x.store == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "persistence is not configured"})
	}

	if err := x.store.DeleteCrew(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "crew not found"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
