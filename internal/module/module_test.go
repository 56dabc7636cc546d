package module

import (
	"context"
	"html/template"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/vesaa/kintree/internal/models"
)

type fakeTab struct {
	name  string
	order int
}

func (f fakeTab) Name() string { return f.name }
func (f fakeTab) Title() string { return f.name }
func (f fakeTab) Description() string { return "" }
func (f fakeTab) DefaultTabOrder() int { return f.order }
func (f fakeTab) HasTabContent(*models.Individual) bool { return true }
func (f fakeTab) IsGrayedOut(*models.Individual) bool { return false }
func (f fakeTab) CanLoadAjax() bool { return false }
func (f fakeTab) TabContent(context.Context, Env, *models.Individual) (template.HTML, error) {
	return "", nil
}

type plainModule struct{}

func (plainModule) Name() string { return "plain" }
func (plainModule) Title() string { return "Plain" }
func (plainModule) Description() string { return "" }

func TestRegistryTabsOrder(t *testing.T) {
	r := NewRegistry(
		fakeTab{"notes", 40},
		fakeTab{"facts", 10},
		plainModule{},
		fakeTab{"album", 40},
		&InteractiveTree{},
	)

	var names []string
	for _, tab := range r.Tabs() {
		names = append(names, tab.Name())
	}
	assert.Equal(t, []string{"facts", "album", "notes", "tree"}, names)
}

func TestRegistryCharts(t *testing.T) {
	r := NewRegistry(plainModule{}, &InteractiveTree{}, fakeTab{"facts", 10})

	charts := r.Charts()
	if assert.Len(t, charts, 1) {
		assert.Equal(t, "tree", charts[0].Name())
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(plainModule{})

	m, ok := r.Lookup("plain")
	assert.True(t, ok)
	assert.Equal(t, "Plain", m.Title())

	_, ok = r.Lookup("tree")
	assert.False(t, ok)

	r.Register(&InteractiveTree{})
	m, ok = r.Lookup("tree")
	assert.True(t, ok)
	_, isAction := m.(ActionHandler)
	assert.True(t, isAction)
}

func TestEnvFrom(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := EnvFrom(c)
	assert.False(t, ok)

	SetEnv(c, Env{})
	_, ok = EnvFrom(c)
	assert.False(t, ok, "an env without a tree is unusable")

	tree := &models.Tree{Name: "lovelace"}
	SetEnv(c, Env{Tree: tree})
	env, ok := EnvFrom(c)
	assert.True(t, ok)
	assert.Same(t, tree, env.Tree)
}
