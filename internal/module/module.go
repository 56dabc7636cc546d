// Package module defines the capabilities a genealogy module can offer
// (profile tabs, chart menu entries, sub-route actions) and the registry
// the HTTP layer consults to find them.
package module

import (
	"context"
	"html/template"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/vesaa/kintree/internal/models"
	"github.com/vesaa/kintree/internal/treeview"
)

// Module is implemented by every module.
type Module interface {
	// Name is the key used in mod= parameters.
	Name() string
	Title() string
	Description() string
}

// TabProvider is a module that contributes a tab to individual pages.
type TabProvider interface {
	Module
	DefaultTabOrder() int
	HasTabContent(ind *models.Individual) bool
	IsGrayedOut(ind *models.Individual) bool
	CanLoadAjax() bool
	TabContent(ctx context.Context, env Env, ind *models.Individual) (template.HTML, error)
}

// ChartProvider is a module that contributes an entry to the chart menu.
type ChartProvider interface {
	Module
	ChartMenu(ind *models.Individual) Menu
	// BoxChartMenu is the entry shown inside individual boxes on other charts.
	BoxChartMenu(ind *models.Individual) Menu
}

// ActionHandler is a module that answers module.php?mod=NAME&mod_action=ACTION.
type ActionHandler interface {
	Module
	ModAction(c *gin.Context, action string)
}

// Menu is a link in a menu.
type Menu struct {
	Label string            `json:"label"`
	URL   string            `json:"url"`
	Class string            `json:"class"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Env is the per-request state a module renders against.
type Env struct {
	Tree   *models.Tree
	Viewer treeview.Viewer
}

const envKey = "module.env"

// SetEnv stores env on the gin context for module handlers.
func SetEnv(c *gin.Context, env Env) { c.Set(envKey, env) }

// EnvFrom returns the Env stored by SetEnv, and whether one was set.
func EnvFrom(c *gin.Context) (Env, bool) {
	v, ok := c.Get(envKey)
	if !ok {
		return Env{}, false
	}
	env, ok := v.(Env)
	return env, ok && env.Tree != nil
}

// ── Registry ─────────────────────────────────────────────────────────────────

// Registry holds the installed modules by name.
type Registry struct {
	modules map[string]Module
}

// NewRegistry returns a registry holding mods.
func NewRegistry(mods ...Module) *Registry {
	r := &Registry{modules: make(map[string]Module, len(mods))}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register adds m, replacing any module with the same name.
func (r *Registry) Register(m Module) {
	r.modules[m.Name()] = m
}

// Lookup returns the module called name.
func (r *Registry) Lookup(name string) (Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// Tabs returns every tab provider ordered by DefaultTabOrder, then name.
func (r *Registry) Tabs() []TabProvider {
	var tabs []TabProvider
	for _, m := range r.modules {
		if t, ok := m.(TabProvider); ok {
			tabs = append(tabs, t)
		}
	}
	sort.Slice(tabs, func(i, j int) bool {
		if tabs[i].DefaultTabOrder() != tabs[j].DefaultTabOrder() {
			return tabs[i].DefaultTabOrder() < tabs[j].DefaultTabOrder()
		}
		return tabs[i].Name() < tabs[j].Name()
	})
	return tabs
}

// Charts returns every chart provider ordered by title.
func (r *Registry) Charts() []ChartProvider {
	var charts []ChartProvider
	for _, m := range r.modules {
		if c, ok := m.(ChartProvider); ok {
			charts = append(charts, c)
		}
	}
	sort.Slice(charts, func(i, j int) bool { return charts[i].Title() < charts[j].Title() })
	return charts
}
