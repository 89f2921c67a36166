// Package server is a reference implementation of the task REST API,
// backed by internal/store.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskview/internal/logging"
	"taskview/internal/store"
	"taskview/internal/task"
)

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"

const shutdownTimeout = 5 * time.Second

// TaskStore is the persistence the server needs.
type TaskStore interface {
	List(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, d task.Draft) (task.Task, error)
	Toggle(ctx context.Context, id int64) (task.Task, error)
	Update(ctx context.Context, id int64, d task.Draft) (task.Task, error)
	Delete(ctx context.Context, id int64) error
}

// Options configures a Server.
type Options struct {
	// Token, when set, must be presented as "Authorization: Bearer <token>".
	Token string

	// Logger receives one line per request. Nil discards.
	Logger *log.Logger
}

// Server serves the task API.
type Server struct {
	store  TaskStore
	token  string
	logger *log.Logger
	router *gin.Engine
}

// New creates a server and registers its routes.
func New(st TaskStore, opts Options) *Server {
	s := &Server{
		store:  st,
		token:  opts.Token,
		logger: opts.Logger,
		router: gin.New(),
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}

	s.router.Use(gin.Recovery(), s.requestID, s.logRequest)
	s.router.NoRoute(func(c *gin.Context) {
		abortError(c, http.StatusNotFound, "not found")
	})

	api := s.router.Group("/api", s.authorize)
	{
		api.GET("/tasks", s.handleList)
		api.POST("/tasks", s.handleCreate)
		api.PATCH("/tasks/:id/toggle", s.handleToggle)
		api.PUT("/tasks/:id", s.handleUpdate)
		api.DELETE("/tasks/:id", s.handleDelete)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

func (s *Server) logRequest(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Info("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
		"request_id", c.GetString("request_id"),
	)
}

func (s *Server) authorize(c *gin.Context) {
	if s.token == "" {
		c.Next()
		return
	}
	got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
		abortError(c, http.StatusUnauthorized, "invalid or missing token")
		return
	}
	c.Next()
}

func (s *Server) handleList(c *gin.Context) {
	tasks, err := s.store.List(c.Request.Context())
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreate(c *gin.Context) {
	d, ok := bindDraft(c)
	if !ok {
		return
	}
	t, err := s.store.Create(c.Request.Context(), d)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleToggle(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := s.store.Toggle(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleUpdate(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	d, ok := bindDraft(c)
	if !ok {
		return
	}
	t, err := s.store.Update(c.Request.Context(), id, d)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		abortError(c, http.StatusNotFound, "task not found")
		return
	}
	s.logger.Error("store failed", "err", err, "request_id", c.GetString("request_id"))
	abortError(c, http.StatusInternalServerError, "internal error")
}

// bindDraft decodes the request body and requires a non-blank title.
func bindDraft(c *gin.Context) (task.Draft, bool) {
	var d task.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		abortError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return task.Draft{}, false
	}
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		abortError(c, http.StatusBadRequest, task.ErrEmptyTitle.Error())
		return task.Draft{}, false
	}
	return d, true
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		abortError(c, http.StatusBadRequest, "invalid task id: "+c.Param("id"))
		return 0, false
	}
	return id, true
}

// abortError writes {"error":{"code":N,"message":"..."}}.
func abortError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
