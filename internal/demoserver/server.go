// Package demoserver is a development fixture that speaks the dashboard's
// HTTP contract: a login check, a fake login page that flips the session to
// logged in, the KPI payload and logout. It computes nothing; the payload is
// a fixed inventory with random jitter.
package demoserver

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/rileyhilliard/kpiwatch/internal/logger"
)

// Options configures a Server.
type Options struct {
	// LoggedIn starts the server with an authenticated session.
	LoggedIn bool
	// Jitter scales random variation in the payload. Zero makes every
	// response identical.
	Jitter float64
	// Seed for the jitter source. Zero seeds from the clock.
	Seed int64
	// LoginURL overrides the login_url reported by /api/check-login.
	// Empty means <request host>/login.
	LoginURL string
	Logger   logger.Logger
}

// Server holds the fake session state behind a gin engine.
type Server struct {
	engine *gin.Engine
	opts   Options
	log    logger.Logger

	mu       sync.Mutex
	loggedIn bool
	rng      *rand.Rand
	requests map[string]int
}

// New builds the engine and registers routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Server{
		opts:     opts,
		log:      opts.Logger,
		loggedIn: opts.LoggedIn,
		rng:      rand.New(rand.NewSource(seed)),
		requests: make(map[string]int),
	}
	s.engine = s.newEngine()
	return s
}

func (s *Server) newEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/login", s.login)
	api := r.Group("/api")
	{
		api.GET("/check-login", s.checkLogin)
		api.GET("/kpi-data", s.kpiData)
		api.POST("/logout", s.logout)
	}
	return r
}

// Handler exposes the engine for http.Server and httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// LoggedIn reports the fake session state.
func (s *Server) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// SetLoggedIn forces the fake session state.
func (s *Server) SetLoggedIn(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = v
}

// Requests returns how many times path has been served.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("demo server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down demo server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.mu.Lock()
		s.requests[c.FullPath()]++
		s.mu.Unlock()

		s.log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
