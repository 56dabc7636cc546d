package module

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vesaa/kintree/internal/models"
	"github.com/vesaa/kintree/internal/store"
	"github.com/vesaa/kintree/internal/treeview"
)

const htmlContentType = "text/html; charset=UTF-8"

// Generations drawn before the browser has to ask for more.
const (
	pageGenerations = 4
	tabGenerations  = 3
)

// Finder looks up individuals by identifier.
type Finder interface {
	Individual(ctx context.Context, treeID uint, xref string) (*models.Individual, error)
	FirstIndividual(ctx context.Context, treeID uint) (*models.Individual, error)
}

// Store is everything the interactive tree needs from the database.
type Store interface {
	Finder
	treeview.Repository
}

// Renderer is the tree-drawing collaborator for one widget instance.
type Renderer interface {
	DrawViewport(ctx context.Context, ind *models.Individual, generations int) (template.HTML, template.JS, error)
	Details(ctx context.Context, ind *models.Individual) (template.HTML, error)
	Persons(ctx context.Context, q string) (template.HTML, error)
}

// RendererFunc builds the renderer for an instance name.
type RendererFunc func(instance string, env Env) Renderer

// InteractiveTree shows all the ancestors and descendants of an individual,
// as a profile tab and as a stand-alone chart.
type InteractiveTree struct {
	finder     Finder
	newView    RendererFunc
	pages      *template.Template
	modulesDir string
}

// NewInteractiveTree wires the module to s. pages must define the
// "interactive-tree-page" and "tabs/treeview" templates; modulesDir is the
// URL prefix of module assets.
func NewInteractiveTree(s Store, pages *template.Template, modulesDir string) *InteractiveTree {
	return &InteractiveTree{
		finder: s,
		newView: func(instance string, env Env) Renderer {
			return treeview.New(instance, s, env.Tree, env.Viewer)
		},
		pages:      pages,
		modulesDir: modulesDir,
	}
}

func (m *InteractiveTree) Name() string { return "tree" }

func (m *InteractiveTree) Title() string { return "Interactive tree" }

func (m *InteractiveTree) Description() string {
	return "An interactive tree, showing all the ancestors and descendants of an individual."
}

func (m *InteractiveTree) DefaultTabOrder() int { return 68 }

func (m *InteractiveTree) HasTabContent(*models.Individual) bool { return true }

func (m *InteractiveTree) IsGrayedOut(*models.Individual) bool { return false }

func (m *InteractiveTree) CanLoadAjax() bool { return true }

// CSS is the URL of the module's style sheet.
func (m *InteractiveTree) CSS() string { return m.modulesDir + m.Name() + "/css/treeview.css" }

// JS is the URL of the module's script.
func (m *InteractiveTree) JS() string { return m.modulesDir + m.Name() + "/js/treeview.js" }

// ChartMenu links to the interactive tree page of ind.
func (m *InteractiveTree) ChartMenu(ind *models.Individual) Menu {
	var ged string
	if ind.Tree != nil {
		ged = ind.Tree.Name
	}
	return Menu{
		Label: m.Title(),
		URL:   treeview.ChartURL(ged, ind.Xref),
		Class: "menu-chart-tree",
		Attrs: map[string]string{"rel": "nofollow"},
	}
}

func (m *InteractiveTree) BoxChartMenu(ind *models.Individual) Menu { return m.ChartMenu(ind) }

type viewportData struct {
	Title      string
	Tree       string
	Individual string
	HTML       template.HTML
	InlineJS   template.JS
	CSS        string
	JS         string
}

// TabContent renders the tab shown on ind's profile page.
func (m *InteractiveTree) TabContent(ctx context.Context, env Env, ind *models.Individual) (template.HTML, error) {
	html, js, err := m.newView("tvTab", env).DrawViewport(ctx, ind, tabGenerations)
	if err != nil {
		return "", err
	}
	return m.render("tabs/treeview", viewportData{
		HTML:     html,
		InlineJS: js,
		CSS:      m.CSS(),
		JS:       m.JS(),
	})
}

// ModAction dispatches module.php?mod=tree&mod_action=ACTION.
// The request's Env must have been set with SetEnv.
func (m *InteractiveTree) ModAction(c *gin.Context, action string) {
	env, ok := EnvFrom(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	switch action {
	case "treeview":
		m.renderPage(c, env)
	case "getDetails":
		m.getDetails(c, env)
	case "getPersons":
		m.getPersons(c, env)
	default:
		c.Status(http.StatusNotFound)
	}
}

func (m *InteractiveTree) renderPage(c *gin.Context, env Env) {
	ind, err := m.significantIndividual(c.Request.Context(), env.Tree, c.Query("rootid"))
	if errors.Is(err, store.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		m.fail(c, err)
		return
	}

	html, js, err := m.newView("tv", env).DrawViewport(c.Request.Context(), ind, pageGenerations)
	if err != nil {
		m.fail(c, err)
		return
	}

	name := ind.FullName()
	if ind.Private && !env.Viewer.CanSeePrivate() {
		name = "Private"
	}
	page, err := m.render("interactive-tree-page", viewportData{
		Title:      "Interactive tree of " + name,
		Tree:       env.Tree.Name,
		Individual: ind.Xref,
		HTML:       html,
		InlineJS:   js,
		CSS:        m.CSS(),
		JS:         m.JS(),
	})
	if err != nil {
		m.fail(c, err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(page))
}

// significantIndividual picks the chart root: rootid when it names an
// individual, then the tree's default individual, then its first.
func (m *InteractiveTree) significantIndividual(ctx context.Context, tree *models.Tree, rootid string) (*models.Individual, error) {
	for _, xref := range []string{rootid, tree.DefaultXref} {
		if !models.ValidXref(xref) {
			continue
		}
		ind, err := m.finder.Individual(ctx, tree.ID, xref)
		if err == nil {
			return ind, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	return m.finder.FirstIndividual(ctx, tree.ID)
}

func (m *InteractiveTree) getDetails(c *gin.Context, env Env) {
	c.Header("Content-Type", htmlContentType)
	pid := c.Query("pid")
	if !models.ValidXref(pid) {
		c.Status(http.StatusOK)
		return
	}

	ind, err := m.finder.Individual(c.Request.Context(), env.Tree.ID, pid)
	if errors.Is(err, store.ErrNotFound) {
		c.Status(http.StatusOK)
		return
	}
	if err != nil {
		m.fail(c, err)
		return
	}

	html, err := m.newView(c.Query("instance"), env).Details(c.Request.Context(), ind)
	if err != nil {
		m.fail(c, err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(html))
}

func (m *InteractiveTree) getPersons(c *gin.Context, env Env) {
	c.Header("Content-Type", htmlContentType)
	html, err := m.newView(c.Query("instance"), env).Persons(c.Request.Context(), c.Query("q"))
	if err != nil {
		m.fail(c, err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(html))
}

func (m *InteractiveTree) render(name string, data viewportData) (template.HTML, error) {
	var buf bytes.Buffer
	if err := m.pages.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func (m *InteractiveTree) fail(c *gin.Context, err error) {
	log.Printf("[tree] %s %s: %v", c.Request.Method, c.Request.URL.RequestURI(), err)
	c.Status(http.StatusInternalServerError)
}
