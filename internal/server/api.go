// Package server provides the kintree Gin-based HTTP front end.
//
//	GET  /module.php?mod=NAME&mod_action=ACTION   module sub-routes
//	GET  /api/individuals/:xref/tabs              tabs available on a profile
//	GET  /api/individuals/:xref/tabs/:module      one tab's HTML (ajax)
//	GET  /api/individuals/:xref/charts            chart menu entries
//	POST /api/login, /api/logout                  viewer sessions
//	GET  /api/admin/status                        host status (admin JWT)
//	GET  <modules_dir>*                           module CSS/JS (default /modules/)
package server

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vesaa/kintree/internal/config"
	"github.com/vesaa/kintree/internal/models"
	"github.com/vesaa/kintree/internal/module"
	"github.com/vesaa/kintree/internal/store"
	"github.com/vesaa/kintree/internal/sysinfo"
)

const individualKey = "individual"

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	registry *module.Registry
	auth     *Auth
}

// New returns a Server over st serving the modules in reg.
func New(cfg *config.Config, st *store.Store, reg *module.Registry) *Server {
	return &Server{cfg: cfg, store: st, registry: reg, auth: NewAuth(cfg.JWTSecret)}
}

// Handler builds the complete Gin engine.
func (s *Server) Handler() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s.RegisterRoutes(r)
	if err := RegisterStaticFiles(r, s.cfg.ModulesDir); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterRoutes wires up the module dispatcher and the JSON API.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	viewer := s.auth.ViewerMiddleware()

	r.GET("/module.php", viewer, s.treeMiddleware(false), s.handleModule)

	api := r.Group("/api")

	// ── Public endpoints ──────────────────────────────────────────────────────
	api.POST("/login", s.handleLogin)
	api.POST("/logout", s.handleLogout)
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	// ── Individual pages ──────────────────────────────────────────────────────
	ind := api.Group("/individuals/:xref", viewer, s.treeMiddleware(true), s.individualMiddleware())
	{
		ind.GET("/tabs", s.handleTabs)
		ind.GET("/tabs/:module", s.handleTab)
		ind.GET("/charts", s.handleCharts)
	}

	// ── Admin endpoints ───────────────────────────────────────────────────────
	admin := api.Group("/admin", s.auth.AdminMiddleware())
	{
		admin.GET("/status", s.handleStatus)
	}
}

// ── Middleware ────────────────────────────────────────────────────────────────

// treeMiddleware resolves the tree from ged=, then the configured default,
// then the first tree, and stores the module Env on the context.
func (s *Server) treeMiddleware(jsonErrors bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		name := c.Query("ged")
		if name == "" {
			name = s.cfg.DefaultTree
		}

		var (
			tree *models.Tree
			err  error
		)
		if name != "" {
			tree, err = s.store.TreeByName(ctx, name)
		} else {
			tree, err = s.store.FirstTree(ctx)
		}
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
			} else {
				log.Printf("[server] resolving tree %q: %v", name, err)
			}
			if jsonErrors {
				c.AbortWithStatusJSON(status, gin.H{"error": "tree not found"})
			} else {
				c.AbortWithStatus(status)
			}
			return
		}

		module.SetEnv(c, module.Env{Tree: tree, Viewer: viewerFrom(c)})
		c.Next()
	}
}

// individualMiddleware loads :xref from the request's tree.
func (s *Server) individualMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		env, _ := module.EnvFrom(c)
		xref := c.Param("xref")
		if !models.ValidXref(xref) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid xref"})
			return
		}
		ind, err := s.store.Individual(c.Request.Context(), env.Tree.ID, xref)
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "individual not found"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Set(individualKey, ind)
		c.Next()
	}
}

func individualFrom(c *gin.Context) *models.Individual {
	return c.MustGet(individualKey).(*models.Individual)
}

// ── Handlers ──────────────────────────────────────────────────────────────────

// handleModule forwards module.php requests to the named module.
func (s *Server) handleModule(c *gin.Context) {
	m, ok := s.registry.Lookup(c.Query("mod"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	h, ok := m.(module.ActionHandler)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	h.ModAction(c, c.Query("mod_action"))
}

type tabInfo struct {
	Module    string `json:"module"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	GrayedOut bool   `json:"grayed_out"`
	Ajax      bool   `json:"ajax"`
	URL       string `json:"url"`
}

// handleTabs lists the tabs that have content for the individual.
//
//	GET /api/individuals/:xref/tabs?ged=NAME
func (s *Server) handleTabs(c *gin.Context) {
	env, _ := module.EnvFrom(c)
	ind := individualFrom(c)

	tabs := []tabInfo{}
	for _, t := range s.registry.Tabs() {
		if !t.HasTabContent(ind) {
			continue
		}
		tabs = append(tabs, tabInfo{
			Module:    t.Name(),
			Title:     t.Title(),
			Order:     t.DefaultTabOrder(),
			GrayedOut: t.IsGrayedOut(ind),
			Ajax:      t.CanLoadAjax(),
			URL:       "/api/individuals/" + url.PathEscape(ind.Xref) + "/tabs/" + url.PathEscape(t.Name()) + "?ged=" + url.QueryEscape(env.Tree.Name),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": tabs})
}

// handleTab renders one tab.
//
//	GET /api/individuals/:xref/tabs/:module?ged=NAME
func (s *Server) handleTab(c *gin.Context) {
	env, _ := module.EnvFrom(c)
	ind := individualFrom(c)

	m, _ := s.registry.Lookup(c.Param("module"))
	tab, ok := m.(module.TabProvider)
	if !ok || !tab.HasTabContent(ind) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such tab"})
		return
	}

	html, err := tab.TabContent(c.Request.Context(), env, ind)
	if err != nil {
		log.Printf("[server] tab %s for %s: %v", tab.Name(), ind.Xref, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rendering tab failed"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=UTF-8", []byte(html))
}

// handleCharts returns the chart menu for the individual.
//
//	GET /api/individuals/:xref/charts?ged=NAME
func (s *Server) handleCharts(c *gin.Context) {
	ind := individualFrom(c)

	menus := []module.Menu{}
	for _, ch := range s.registry.Charts() {
		menus = append(menus, ch.ChartMenu(ind))
	}
	c.JSON(http.StatusOK, gin.H{"data": menus})
}

// handleLogin accepts username + password and returns a signed JWT, also set
// as a cookie so page loads carry it.
//
//	POST /api/login
//	Body: { "username": "admin", "password": "admin" }
func (s *Server) handleLogin(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	u, err := s.store.Authenticate(c.Request.Context(), body.Username, body.Password)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := s.auth.GenerateJWT(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, token, int(tokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(tokenTTL.Seconds()),
		"type":       "Bearer",
	})
}

// handleLogout clears the token cookie.
func (s *Server) handleLogout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleStatus reports host health to administrators.
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": sysinfo.Collect(c.Request.Context(), s.cfg.DBPath)})
}
