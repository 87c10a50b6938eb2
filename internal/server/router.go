package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/restage/restage/internal/engine"
	"github.com/restage/restage/internal/metrics"
	"github.com/restage/restage/internal/store"
)

// Router provides embeddable HTTP handlers for workspace operations.
// Endpoints:
//
//	POST   {basePath}/capture            query: name=...
//	POST   {basePath}/restore            query: name=...
//	GET    {basePath}/workspaces         list names, newest first
//	GET    {basePath}/workspaces/:name   stored snapshot
//	DELETE {basePath}/workspaces/:name
//	GET    /healthz
//	GET    /metrics
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	eng      *engine.Engine
	basePath string
}

// NewRouter constructs a Router with a configurable basePath, e.g.
// "/api" results in /api/capture, /api/restore, /api/workspaces.
func NewRouter(eng *engine.Engine, basePath string) *Router {
	return &Router{eng: eng, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted
// in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/capture", r.handleCapture)
	group.POST("/restore", r.handleRestore)
	group.GET("/workspaces", r.handleList)
	group.GET("/workspaces/:name", r.handleGet)
	group.DELETE("/workspaces/:name", r.handleDelete)
	g.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, okResp{OK: true}) })
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr, basePath string, eng *engine.Engine) (*http.Server, error) {
	r := NewRouter(eng, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Capture/restore block on the automation surface; give them
		// room before the write deadline cuts the response off.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

func (r *Router) handleCapture(c *gin.Context) {
	name := c.Query("name")
	if !store.ValidName(name) {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid workspace name: allowed [A-Za-z0-9._ -]"})
		return
	}
	report, err := r.eng.CaptureWorkspace(c.Request.Context(), name)
	if err != nil {
		c.JSON(statusFor(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (r *Router) handleRestore(c *gin.Context) {
	name := c.Query("name")
	if !store.ValidName(name) {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid workspace name: allowed [A-Za-z0-9._ -]"})
		return
	}
	report, err := r.eng.RestoreWorkspace(c.Request.Context(), name)
	if err != nil {
		c.JSON(statusFor(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (r *Router) handleList(c *gin.Context) {
	names, err := r.eng.ListWorkspaces(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": names})
}

func (r *Router) handleGet(c *gin.Context) {
	name := c.Param("name")
	if !store.ValidName(name) {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid workspace name"})
		return
	}
	snap, err := r.eng.GetWorkspace(c.Request.Context(), name)
	if err != nil {
		c.JSON(statusFor(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (r *Router) handleDelete(c *gin.Context) {
	name := c.Param("name")
	if !store.ValidName(name) {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid workspace name"})
		return
	}
	if err := r.eng.DeleteWorkspace(c.Request.Context(), name); err != nil {
		c.JSON(statusFor(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, okResp{OK: true})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func sanitizeBase(basePath string) string {
	bp := strings.TrimSpace(basePath)
	if bp == "" {
		return ""
	}
	if !strings.HasPrefix(bp, "/") {
		bp = "/" + bp
	}
	return strings.TrimSuffix(bp, "/")
}
