package demoserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const loginPage = `<!doctype html>
<html><head><title>kpi demo login</title></head>
<body><h1>Signed in</h1><p>You can close this tab and return to the dashboard.</p></body>
</html>`

func (s *Server) checkLogin(c *gin.Context) {
	if s.LoggedIn() {
		c.JSON(http.StatusOK, gin.H{"status": "logged_in"})
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{
		"status":    "not_logged_in",
		"login_url": s.loginURL(c),
	})
}

func (s *Server) login(c *gin.Context) {
	s.SetLoggedIn(true)
	s.log.Info("demo session logged in")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(loginPage))
}

func (s *Server) logout(c *gin.Context) {
	s.SetLoggedIn(false)
	s.log.Info("demo session logged out")
	c.JSON(http.StatusOK, gin.H{"status": "not_logged_in"})
}

func (s *Server) kpiData(c *gin.Context) {
	if !s.LoggedIn() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}

	s.mu.Lock()
	p := generate(s.rng, s.opts.Jitter)
	s.mu.Unlock()

	c.JSON(http.StatusOK, p)
}

func (s *Server) loginURL(c *gin.Context) string {
	if s.opts.LoginURL != "" {
		return s.opts.LoginURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/login"
}
