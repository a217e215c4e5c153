package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"clima-dashboard/internal/countries"
	"clima-dashboard/internal/lookup"

	"github.com/gin-gonic/gin"
)

// Server exposes the lookup pipeline and the widget assets over HTTP.
type Server struct {
	router  *gin.Engine
	server  *http.Server
	service *lookup.Service
	session *lookup.Session
	loader  *countries.Loader
	port    int
	webPath string
}

type ServerConfig struct {
	Port    int
	Service *lookup.Service
	Session *lookup.Session
	Loader  *countries.Loader
	WebPath string
}

func NewServer(cfg ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	webPath := cfg.WebPath
	if webPath == "" {
		webPath = "./web"
	}

	s := &Server{
		router:  router,
		service: cfg.Service,
		session: cfg.Session,
		loader:  cfg.Loader,
		port:    cfg.Port,
		webPath: webPath,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Serve the widget when its assets are present; the API works without.
	if index := filepath.Join(s.webPath, "index.html"); fileExists(index) {
		s.router.StaticFile("/", index)
		s.router.Static("/static", filepath.Join(s.webPath, "static"))
	}

	// Health check
	s.router.GET("/health", s.healthHandler)

	// API routes
	api := s.router.Group("/api/v1")
	{
		api.GET("/weather", s.weatherHandler)
		api.GET("/weather/coords", s.weatherByCoordsHandler)
		api.GET("/weather/latest", s.latestHandler)
		api.GET("/countries", s.countriesHandler)
		api.POST("/countries/reload", s.reloadCountriesHandler)
	}
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	log.Printf("API server starting on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Router exposes the handler for in-process tests.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"countries_loaded": s.session.Countries().Len(),
		"countries_source": countriesSource(s.session.Countries()),
		"timestamp":        time.Now(),
	})
}

func (s *Server) weatherHandler(c *gin.Context) {
	city := c.Query("city")
	country := c.Query("country")

	outcome := s.service.SubmitQuery(c.Request.Context(), city, country)
	s.respond(c, outcome)
}

func (s *Server) weatherByCoordsHandler(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":  lookup.KindValidation.String(),
			"error": lookup.MsgInvalidCoords,
		})
		return
	}

	outcome := s.service.SubmitCoordinates(c.Request.Context(), lat, lon)
	s.respond(c, outcome)
}

func (s *Server) latestHandler(c *gin.Context) {
	latest := s.service.Latest()
	if latest == nil || !latest.OK() {
		c.JSON(http.StatusNotFound, gin.H{"error": "No hay datos disponibles"})
		return
	}
	c.JSON(http.StatusOK, latest)
}

func (s *Server) countriesHandler(c *gin.Context) {
	dir := s.session.Countries()
	matches := dir.Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"countries": matches,
		"source":    countriesSource(dir),
	})
}

// reloadCountriesHandler replaces the session directory with a freshly
// loaded one. Load already degrades to the static fallback on failure.
func (s *Server) reloadCountriesHandler(c *gin.Context) {
	dir := s.loader.Load(c.Request.Context())
	s.session.ReplaceCountries(dir)

	log.Printf("Country directory reloaded: %d entries (%s)", dir.Len(), countriesSource(dir))
	c.JSON(http.StatusOK, gin.H{
		"countries_loaded": dir.Len(),
		"source":           countriesSource(dir),
	})
}

func (s *Server) respond(c *gin.Context, outcome lookup.Outcome) {
	if outcome.OK() {
		c.JSON(http.StatusOK, outcome)
		return
	}

	c.JSON(statusFor(outcome.Err.Kind), gin.H{
		"kind":  outcome.Err.Kind.String(),
		"error": outcome.Err.Message,
	})
}

func statusFor(kind lookup.Kind) int {
	switch kind {
	case lookup.KindValidation:
		return http.StatusBadRequest
	case lookup.KindNotFound:
		return http.StatusNotFound
	case lookup.KindConnectivity:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func countriesSource(dir *countries.Directory) string {
	if dir.FromNetwork() {
		return "network"
	}
	return "fallback"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
