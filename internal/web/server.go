// Package web serves the manager's pages and upload endpoints.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/zulandar/retromgr/internal/bios"
	"github.com/zulandar/retromgr/internal/config"
	"github.com/zulandar/retromgr/internal/logging"
	"github.com/zulandar/retromgr/internal/monitor"
	"github.com/zulandar/retromgr/internal/notify"
	"github.com/zulandar/retromgr/internal/roms"
	"gorm.io/gorm"
)

// Options holds the dependencies of the web server.
type Options struct {
	Config   *config.Config
	DB       *gorm.DB
	Bios     *bios.Store
	Roms     *roms.Library
	Sampler  monitor.Sampler
	Notifier notify.Notifier
	Out      io.Writer
}

// Server renders the manager pages.
type Server struct {
	cfg      *config.Config
	db       *gorm.DB
	bios     *bios.Store
	roms     *roms.Library
	sampler  monitor.Sampler
	notifier notify.Notifier
	log      zerolog.Logger
	pages    map[string]*settingsPage
	engine   *gin.Engine
}

// New validates opts and builds the router. Stores that are not supplied
// are created from the configured paths.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("web: config is required")
	}
	if opts.DB == nil {
		return nil, fmt.Errorf("web: db is required")
	}
	cfg := opts.Config
	s := &Server{
		cfg:      cfg,
		db:       opts.DB,
		bios:     opts.Bios,
		roms:     opts.Roms,
		sampler:  opts.Sampler,
		notifier: opts.Notifier,
		log:      logging.WithComponent("web"),
	}
	var err error
	if s.bios == nil {
		if s.bios, err = bios.NewStore(cfg.Paths.Bios); err != nil {
			return nil, fmt.Errorf("web: %w", err)
		}
	}
	if s.roms == nil {
		if s.roms, err = roms.NewLibrary(cfg.Paths.Roms); err != nil {
			return nil, fmt.Errorf("web: %w", err)
		}
	}
	if s.sampler == nil {
		s.sampler = monitor.NewReader(cfg.Monitoring.ProcRoot, cfg.Paths.Share)
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	s.pages = settingsPages(cfg.Paths)

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), requestLogger(s.log))
	router.SetHTMLTemplate(tmpl)
	s.registerRoutes(router)
	s.engine = router
	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.engine }

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts Options) error {
	gin.SetMode(gin.ReleaseMode)
	s, err := New(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("shutdown")
		}
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "%s running at %s\n", s.cfg.Site.Name, s.cfg.Site.PublicURL())
	}
	s.log.Info().Str("addr", srv.Addr).Str("url", s.cfg.Site.PublicURL()).Msg("listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web: %w", err)
	}
	return nil
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// staticFS returns the packaged assets, or the configured directory when
// assets are not packaged.
func (s *Server) staticFS() http.FileSystem {
	if !s.cfg.AssetsPackaged && s.cfg.AssetsDir != "" {
		return http.Dir(s.cfg.AssetsDir)
	}
	sub, _ := fs.Sub(assetsFS, "assets")
	return http.FS(sub)
}

func (s *Server) handleStatic() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.FileFromFS(c.Param("filepath"), s.staticFS())
	}
}
