package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"gokinet/app"
	"gokinet/internal/config"
	"gokinet/ports"

	"github.com/gin-gonic/gin"
)

//go:embed templates/* static/* docs/*
var embeddedFiles embed.FS

// Server is the web UI for kinetic analysis
type Server struct {
	router    *gin.Engine
	service   *app.AnalysisService
	exporter  ports.WorkbookExporter
	renderer  ports.FigureRenderer
	templates *template.Template
	maxUpload int64
}

// NewServer creates and wires the UI server
func NewServer(service *app.AnalysisService, exporter ports.WorkbookExporter, renderer ports.FigureRenderer, cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:    gin.Default(),
		service:   service,
		exporter:  exporter,
		renderer:  renderer,
		maxUpload: cfg.Upload.MaxBytes,
	}

	if err := s.parseTemplates(); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// parseTemplates loads all templates from the embedded FS with the
// formatting helpers the pages use
func (s *Server) parseTemplates() error {
	funcMap := template.FuncMap{
		"f1":    func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"f2":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"f3":    func(v float64) string { return fmt.Sprintf("%.3f", v) },
		"f4":    func(v float64) string { return fmt.Sprintf("%.4f", v) },
		"f5":    func(v float64) string { return fmt.Sprintf("%.5f", v) },
		"upper": strings.ToUpper,
		"add":   func(a, b int) int { return a + b },
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return err
	}
	s.templates = templates
	return nil
}

// setupMiddleware configures HTTP middleware and static assets
func (s *Server) setupMiddleware() {
	s.router.MaxMultipartMemory = s.maxUpload

	staticFS := http.FS(embeddedFiles)
	s.router.GET("/static/*filepath", func(c *gin.Context) {
		c.FileFromFS("static/"+strings.TrimPrefix(c.Param("filepath"), "/"), staticFS)
	})
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/manual", s.handleManual)
	s.router.GET("/analyses/:id", s.handleAnalysis)
	s.router.GET("/analyses/:id/plot.png", s.handlePlot)
	s.router.GET("/analyses/:id/export.xlsx", s.handleExport)
	s.router.POST("/analyses/:id/delete", s.handleDelete)
	s.router.GET("/methodology", s.handleMethodology)
	s.router.GET("/health", s.handleHealth)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// render executes a template into the response
func (s *Server) render(c *gin.Context, status int, name string, data interface{}) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "template error: %v", err)
	}
}
