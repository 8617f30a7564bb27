// Package web provides the main web server of the campus panel, including
// HTTP/HTTPS serving, routing, templates, and background job scheduling.
package web

import (
	"context"
	"crypto/tls"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/usjp/campus-panel/config"
	"github.com/usjp/campus-panel/logger"
	"github.com/usjp/campus-panel/util/common"
	"github.com/usjp/campus-panel/util/metrics"
	"github.com/usjp/campus-panel/util/random"
	"github.com/usjp/campus-panel/web/cache"
	"github.com/usjp/campus-panel/web/controller"
	"github.com/usjp/campus-panel/web/job"
	"github.com/usjp/campus-panel/web/locale"
	"github.com/usjp/campus-panel/web/middleware"
	"github.com/usjp/campus-panel/web/network"
	"github.com/usjp/campus-panel/web/service"
	"github.com/usjp/campus-panel/web/session"
)

//go:embed assets
var assetsFS embed.FS

//go:embed html/*
var htmlFS embed.FS

//go:embed translation/*
var i18nFS embed.FS

var startTime = time.Now()

type wrapAssetsFS struct {
	embed.FS
}

func (f *wrapAssetsFS) Open(name string) (fs.File, error) {
	file, err := f.FS.Open("assets/" + name)
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFile{File: file}, nil
}

type wrapAssetsFile struct {
	fs.File
}

func (f *wrapAssetsFile) Stat() (fs.FileInfo, error) {
	info, err := f.File.Stat()
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFileInfo{FileInfo: info}, nil
}

// wrapAssetsFileInfo pins ModTime so embedded assets get stable caching headers.
type wrapAssetsFileInfo struct {
	fs.FileInfo
}

func (f *wrapAssetsFileInfo) ModTime() time.Time {
	return startTime
}

// Server represents the web server of the panel with its services and
// scheduled jobs.
type Server struct {
	cfg *config.Config
	db  *gorm.DB

	httpServer *http.Server
	listener   net.Listener

	redis   *cache.Redis
	limiter *middleware.MemoryLimiter
	audit   *service.AuditLogService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer(cfg *config.Config, db *gorm.DB) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		db:     db,
		audit:  &service.AuditLogService{DB: db},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Paths returns the entry points under the configured base path.
func Paths(basePath string) middleware.Paths {
	return middleware.Paths{
		AdminLogin:     basePath + "admin-login",
		MALogin:        basePath + "ma-login",
		AdminDashboard: basePath + "admin-dashboard",
		MADashboard:    basePath + "ma-dashboard",
	}
}

// getHtmlTemplate parses embedded HTML templates from the bundled `htmlFS`.
func getHtmlTemplate() (*template.Template, error) {
	return template.New("").ParseFS(htmlFS, "html/*.html")
}

func (s *Server) sessionStore() (sessions.Store, error) {
	secret := s.cfg.Session.Secret
	if secret == "" {
		logger.Warning("CAMPUS_SESSION_SECRET is not set; sessions will not survive a restart")
		secret = random.Seq(32)
	}
	opts := session.Options(s.cfg.Session.MaxAge*60, s.cfg.Session.Secure)

	if s.cfg.Session.Store == config.SessionStoreRedis {
		if err := s.openRedis(); err != nil {
			return nil, err
		}
		return cache.NewRedisStore(s.redis.Client(), opts, []byte(secret)), nil
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(opts)
	return store, nil
}

func (s *Server) openRedis() error {
	if s.redis != nil {
		return nil
	}
	r, err := cache.Open(s.ctx, s.cfg.Redis)
	if err != nil {
		return err
	}
	s.redis = r
	return nil
}

// loginLimiter throttles the login surfaces. Redis backed sessions share
// their counter across processes; otherwise buckets live in memory.
func (s *Server) loginLimiter() middleware.Limiter {
	if s.cfg.LoginRatePerMinute <= 0 {
		return nil
	}
	if s.redis != nil {
		return &middleware.WindowLimiter{Counter: s.redis, PerMinute: s.cfg.LoginRatePerMinute}
	}
	s.limiter = middleware.NewMemoryLimiter(s.cfg.LoginRatePerMinute, s.cfg.LoginBurst)
	return s.limiter
}

// Router builds the gin engine: middleware, templates, static assets and
// controllers.
func (s *Server) Router() (*gin.Engine, error) {
	if s.cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if s.cfg.Debug {
		engine.Use(gin.Logger())
	}

	basePath := s.cfg.NormalizedBasePath()
	engine.Use(middleware.RequestID())
	engine.Use(metrics.Middleware())
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{basePath + "panel/api/"}),
	))
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
	})

	store, err := s.sessionStore()
	if err != nil {
		return nil, err
	}
	engine.Use(sessions.Sessions(session.CookieName, store))

	if err := locale.InitLocalizer(i18nFS, "translation"); err != nil {
		return nil, err
	}
	engine.Use(locale.LocalizerMiddleware())

	tpl, err := getHtmlTemplate()
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tpl)
	engine.StaticFS(basePath+"assets", http.FS(&wrapAssetsFS{FS: assetsFS}))

	if s.cfg.MetricsEnable {
		engine.GET(basePath+"metrics", metrics.Handler())
	}

	credentials := &service.CredentialService{DB: s.db}
	profiles := &service.ProfileService{DB: s.db}
	provision := service.NewProvisionService(credentials, profiles)
	auth := service.NewAuthService(credentials)
	campus := service.NewCampusService(credentials)
	paths := Paths(basePath)

	// static assets and /metrics never resolve the principal
	authenticate := middleware.Authenticate(credentials)

	g := engine.Group(basePath, authenticate)
	controller.NewIndexController(g, paths, auth, s.audit, s.loginLimiter())
	controller.NewAdminController(g, paths, provision, s.audit)
	controller.NewMAController(g, paths, campus)

	api := engine.Group(basePath+"panel/api", authenticate)
	controller.NewCampusController(api, campus, s.audit)
	controller.NewAuditController(api, s.audit)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// startTask schedules the maintenance jobs.
func (s *Server) startTask() {
	if _, err := s.cron.AddJob("@daily", job.NewAuditCleanupJob(s.audit, s.cfg.AuditRetentionDays)); err != nil {
		logger.Warning("Add AuditCleanupJob error", err)
	}
	if s.limiter != nil {
		if _, err := s.cron.AddJob("@every 10m", job.NewLimiterSweepJob(s.limiter, 10*time.Minute)); err != nil {
			logger.Warning("Add LimiterSweepJob error", err)
		}
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New(cron.WithLocation(s.cfg.Location()))
	s.cron.Start()

	engine, err := s.Router()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(s.cfg.Listen, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if s.cfg.CertFile != "" || s.cfg.KeyFile != "" {
		if cert, err := tls.LoadX509KeyPair(s.cfg.CertFile, s.cfg.KeyFile); err == nil {
			tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
			listener = network.NewRedirectListener(listener)
			listener = tls.NewListener(listener, tlsCfg)
			logger.Info("Web server running HTTPS on", listener.Addr())
		} else {
			logger.Error("Error loading certificates:", err)
			logger.Info("Web server running HTTP on", listener.Addr())
		}
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer common.Recover("web server")
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("web server stopped:", err)
		}
	}()

	s.startTask()
	return nil
}

// Stop gracefully shuts down the web server, cron jobs and redis.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var errs []error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, s.httpServer.Shutdown(ctx))
	} else if s.listener != nil {
		errs = append(errs, s.listener.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	return common.Combine(errs...)
}
