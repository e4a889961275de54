package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sheetqa/app"
	"sheetqa/internal/session"
	"sheetqa/internal/usage"
)

//go:embed templates/*.html templates/fragments/*.html static/* help/*.md
var embeddedFiles embed.FS

// Deps are the services the server renders
type Deps struct {
	Workbooks *app.WorkbookService
	Queries   *app.QueryService
	Health    *app.HealthProbe
	Sessions  *session.Store
	Usage     *usage.Service // optional

	DefaultLanguage string
	MaxUploadBytes  int64
	Model           string
	BaseURL         string
}

// Server is the web front end of the question answering tool
type Server struct {
	router    *gin.Engine
	handler   http.Handler
	templates *template.Template
	help      map[string]template.HTML
	deps      Deps
	logger    *slog.Logger
}

// NewServer creates a new web server instance
func NewServer(deps Deps, logger *slog.Logger) (*Server, error) {
	logger = logger.With("component", "ui")

	templates, err := template.ParseFS(embeddedFiles, "templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	help, err := renderHelp(embeddedFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to render help: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		templates: templates,
		help:      help,
		deps:      deps,
		logger:    logger,
	}
	// Uploads are read into memory whole; keep the parsed form on disk
	// beyond this.
	s.router.MaxMultipartMemory = 32 << 20

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()

	// chi middleware wraps the gin engine so the request id is set before
	// gin logs anything
	s.handler = chi.Chain(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Compress(5),
	).Handler(s.router)

	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.limitBody, s.handleUpload)
	s.router.POST("/query", s.handleQuery)
	s.router.POST("/reset", s.handleReset)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/sheets", s.handleAPISheets)
		api.POST("/upload", s.limitBody, s.handleAPIUpload)
		api.POST("/query", s.handleAPIQuery)
	}
}

func (s *Server) staticFS() (http.FileSystem, error) {
	sub, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static files: %w", err)
	}
	return http.FS(sub), nil
}
