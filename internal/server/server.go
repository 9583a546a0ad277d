package server

import (
	"errors"
	"io/fs"
	"net/http"
	"net/http/pprof"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/OpenFogStack/enoki/internal/output"
	"github.com/gin-gonic/gin"
)

const reportSuffix = "-sorted.csv"

// Server exposes a finished output directory read-only over HTTP.
type Server struct {
	engine *gin.Engine
	dir    string
	addr   string
}

// ReportInfo describes one report file.
type ReportInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// New creates a server for the reports in dir.
func New(dir, addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine: engine,
		dir:    dir,
		addr:   addr,
	}

	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		reports, err := s.list()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"dir":     s.dir,
			"reports": len(reports),
		})
	})

	api := s.engine.Group("/api")
	api.GET("/reports", s.handleList)
	api.GET("/reports/:name", s.handleReport)
	api.GET("/reports/:name/summary", s.handleSummary)

	// pprof profiling endpoints.
	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

func (s *Server) handleList(c *gin.Context) {
	reports, err := s.list()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (s *Server) handleReport(c *gin.Context) {
	rows, ok := s.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleSummary(c *gin.Context) {
	rows, ok := s.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Summarize(rows))
}

// load reads the report named by the :name parameter, writing an error
// response and returning false on failure.
func (s *Server) load(c *gin.Context) ([]output.Row, bool) {
	name := c.Param("name")
	if name != filepath.Base(name) || !strings.HasSuffix(name, reportSuffix) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report name"})
		return nil, false
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	defer f.Close()

	rows, err := output.ReadReport(f)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return nil, false
	}
	if rows == nil {
		rows = []output.Row{}
	}
	return rows, true
}

func (s *Server) list() ([]ReportInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	reports := []ReportInfo{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), reportSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		reports = append(reports, ReportInfo{Name: e.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Name < reports[j].Name })
	return reports, nil
}

// Start runs the server. Blocks until the server is stopped.
func (s *Server) Start() error {
	return s.engine.Run(s.addr)
}
