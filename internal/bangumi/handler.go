package bangumi

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bangumi/internal/logger"
	"bangumi/internal/store"
)

const (
	defaultOffset = 0
	defaultLimit  = 12
)

type Handler struct {
	Store     *store.Store
	PublicDir string // static assets; empty disables them
}

func NewHandler(st *store.Store, publicDir string) *Handler {
	return &Handler{Store: st, PublicDir: publicDir}
}

// RegisterRoutes mounts the collection API on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	methods := []string{http.MethodGet, http.MethodHead}
	rg.Match(methods, "/bangumi", h.page)         // GET /bangumi?type=&offset=&limit=
	rg.Match(methods, "/bangumi_total", h.totals) // GET /bangumi_total
	rg.Match(methods, "/calendar", h.calendar)    // GET /calendar
}

// NewRouter builds the complete serving engine: middleware, the API under
// both / and /api, health and the static fallback.
func NewRouter(h *Handler, log logger.Logger) *gin.Engine {
	if log == nil {
		log = logger.NewNop()
	}

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(RequestIDMiddleware(), LoggerMiddleware(log), RecoveryMiddleware(log), CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "totals": h.Store.Totals()})
	})

	h.RegisterRoutes(&router.RouterGroup)
	h.RegisterRoutes(router.Group("/api"))
	router.NoRoute(h.static)

	return router
}

func (h *Handler) page(c *gin.Context) {
	category := c.Query("type")
	res, err := h.Store.Page(category, parseInt(c.Query("offset"), defaultOffset), parseInt(c.Query("limit"), defaultLimit))
	if errors.Is(err, store.ErrUnknownCategory) {
		c.JSON(http.StatusNotFound, gin.H{"msg": "No collection " + category})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) totals(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Totals())
}

func (h *Handler) calendar(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Calendar())
}

// static serves files from PublicDir for GET and HEAD; a directory serves its
// index.html. Everything else is a plain-text 404.
func (h *Handler) static(c *gin.Context) {
	method := c.Request.Method
	if h.PublicDir == "" || (method != http.MethodGet && method != http.MethodHead) {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	name := filepath.Join(h.PublicDir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
	info, err := os.Stat(name)
	if err == nil && info.IsDir() {
		name = filepath.Join(name, "index.html")
		info, err = os.Stat(name)
	}
	if err != nil || info.IsDir() {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	c.File(name)
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
