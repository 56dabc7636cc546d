package treeview_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vesaa/kintree/internal/importer"
	"github.com/vesaa/kintree/internal/models"
	"github.com/vesaa/kintree/internal/testutil"
	"github.com/vesaa/kintree/internal/treeview"
)

var (
	anonymous = treeview.Viewer{}
	signedIn  = treeview.Viewer{Username: "admin"}
)

func TestNewSanitizesInstance(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"tvTab", "tvTab"},
		{"tv2_left", "tv2_left"},
		{"", "tv"},
		{"1abc", "tv"},
		{"x;alert(1)", "tv"},
		{"</script>", "tv"},
	}
	for _, tt := range tests {
		tv := treeview.New(tt.input, nil, nil, anonymous)
		assert.Equal(t, tt.expected, tv.Name(), "input %q", tt.input)
	}
}

func TestChartURL(t *testing.T) {
	assert.Equal(t,
		"module.php?mod=tree&mod_action=treeview&rootid=I1&ged=lovelace",
		treeview.ChartURL("lovelace", "I1"))
	assert.Equal(t,
		"module.php?mod=tree&mod_action=treeview&rootid=I1&ged=my%20family%26co",
		treeview.ChartURL("my family&co", "I1"))
}

func TestDrawViewport(t *testing.T) {
	s, tree := testutil.Seed(t)
	ctx := context.Background()
	ada := testutil.Individual(t, s, tree, "I1")

	tv := treeview.New("tv", s, tree, anonymous)
	html, js, err := tv.DrawViewport(ctx, ada, 4)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `id="tv_out"`)
	assert.Contains(t, out, "Ada Lovelace")
	// parents
	assert.Contains(t, out, `data-pid="I2"`)
	assert.Contains(t, out, `data-pid="I3"`)
	// spouse, children, grandchild
	assert.Contains(t, out, "William King")
	for _, xref := range []string{"I5", "I6", "I7", "I8", "I9"} {
		assert.Contains(t, out, `data-pid="`+xref+`"`)
	}
	// private grandchild is masked for anonymous viewers
	assert.NotContains(t, out, "Secret")
	assert.Contains(t, out, "tv_private")
	assert.NotContains(t, out, "rootid=I8", "masked boxes do not link to their chart")

	assert.Equal(t, `var tvHandler = new TreeViewHandler("tv", "lovelace");`, string(js))
}

func TestDrawViewportDepth(t *testing.T) {
	s, tree := testutil.Seed(t)
	ctx := context.Background()
	ada := testutil.Individual(t, s, tree, "I1")

	html, _, err := treeview.New("tv", s, tree, anonymous).DrawViewport(ctx, ada, 1)
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, `data-pid="I2"`, "one generation of ancestors")
	assert.Contains(t, out, `data-pid="I5"`, "one generation of descendants")
	assert.NotContains(t, out, `data-pid="I8"`, "grandchildren are beyond depth")

	html, _, err = treeview.New("tv", s, tree, anonymous).DrawViewport(ctx, ada, 0)
	require.NoError(t, err)
	out = string(html)
	assert.NotContains(t, out, `data-pid="I2"`)
	assert.Contains(t, out, `class="tv_more" data-pid="I1"`)
}

func TestDrawViewportPartnerlessParents(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()
	res, err := importer.Import(ctx, s, strings.NewReader(`
tree: {name: doe}
individuals:
  - {xref: I1, given: Foundling, surname: Doe}
  - {xref: I2, given: Jane, surname: Doe}
families:
  - {xref: F1, children: [I1]}
  - {xref: F2, husband: I1, children: [I2]}
`), "")
	require.NoError(t, err)
	jane := testutil.Individual(t, s, res.Tree, "I2")

	html, _, err := treeview.New("tv", s, res.Tree, anonymous).DrawViewport(ctx, jane, 1)
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, `data-pid="I1"`)
	assert.NotContains(t, out, "tv_more", "a parent family without partners has nothing more to show")
}

func TestDrawViewportSignedIn(t *testing.T) {
	s, tree := testutil.Seed(t)
	ada := testutil.Individual(t, s, tree, "I1")

	html, _, err := treeview.New("tv", s, tree, signedIn).DrawViewport(context.Background(), ada, 4)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Secret Blunt")
}

func TestDetails(t *testing.T) {
	s, tree := testutil.Seed(t)
	ctx := context.Background()

	ada := testutil.Individual(t, s, tree, "I1")
	html, err := treeview.New("tvTab", s, tree, anonymous).Details(ctx, ada)
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "I1")
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "10 DEC 1815, London")
	assert.Contains(t, out, "27 NOV 1852, Marylebone")
	assert.Contains(t, out, "William King")
	assert.Contains(t, out, "8 JUL 1835")
	assert.Contains(t, out, "Ralph King")
	// only one hop
	assert.NotContains(t, out, "I8")
}

func TestDetailsPrivate(t *testing.T) {
	s, tree := testutil.Seed(t)
	secret := testutil.Individual(t, s, tree, "I8")

	html, err := treeview.New("tv", s, tree, anonymous).Details(context.Background(), secret)
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, `data-pid="I8"`)
	assert.Contains(t, out, "Private")
	assert.NotContains(t, out, "Secret")
	assert.NotContains(t, out, "(I8)")
	assert.NotContains(t, out, "rootid=I8")

	html, err = treeview.New("tv", s, tree, signedIn).Details(context.Background(), secret)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Secret Blunt")
}

func TestPersons(t *testing.T) {
	s, tree := testutil.Seed(t)
	ctx := context.Background()
	tv := treeview.New("tv", s, tree, anonymous)

	html, err := tv.Persons(ctx, "blunt")
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "Anne Blunt")
	assert.Contains(t, out, "Wilfrid Blunt")
	assert.NotContains(t, out, "Secret", "private individuals are not searchable anonymously")

	html, err = tv.Persons(ctx, "ralph")
	require.NoError(t, err)
	assert.Contains(t, string(html), `data-pid="I7"`)

	html, err = tv.Persons(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, html)

	html, err = tv.Persons(ctx, "nobody-here")
	require.NoError(t, err)
	assert.Empty(t, html)
}

// searchRepo returns canned search results in store order.
type searchRepo struct {
	treeview.Repository
	found []models.Individual
}

func (r searchRepo) SearchIndividuals(context.Context, uint, string, bool, int) ([]models.Individual, error) {
	return r.found, nil
}

func TestPersonsRanking(t *testing.T) {
	repo := searchRepo{found: []models.Individual{
		{Xref: "X1", GivenName: "Annabel", Surname: "Smith"},
		{Xref: "X2", GivenName: "Ann", Surname: "Smith"},
	}}
	tree := &models.Tree{Name: "smith"}

	html, err := treeview.New("tv", repo, tree, anonymous).Persons(context.Background(), "ann")
	require.NoError(t, err)
	out := string(html)

	x1 := strings.Index(out, `data-pid="X1"`)
	x2 := strings.Index(out, `data-pid="X2"`)
	require.True(t, x1 >= 0 && x2 >= 0, out)
	assert.Less(t, x2, x1, "exact given-name match ranks first")
}

func TestPersonsCap(t *testing.T) {
	var found []models.Individual
	for i := 0; i < treeview.MaxPersons+10; i++ {
		found = append(found, models.Individual{Xref: fmt.Sprintf("I%d", i), Surname: "Smith"})
	}
	repo := searchRepo{found: found}

	html, err := treeview.New("tv", repo, &models.Tree{Name: "smith"}, anonymous).Persons(context.Background(), "smith")
	require.NoError(t, err)
	assert.Equal(t, treeview.MaxPersons, strings.Count(string(html), "<li>"))
}

func TestPersonsCrowdedPool(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	tree := &models.Tree{Name: "crowded"}
	require.NoError(t, s.CreateTree(ctx, tree))
	for i := 0; i < 120; i++ {
		require.NoError(t, s.CreateIndividual(ctx, &models.Individual{
			TreeID: tree.ID, Xref: fmt.Sprintf("A%d", i), GivenName: "Annabelle", Surname: "Aaronson",
		}))
	}
	require.NoError(t, s.CreateIndividual(ctx, &models.Individual{
		TreeID: tree.ID, Xref: "Z1", GivenName: "Ann", Surname: "Zed",
	}))

	html, err := treeview.New("tv", s, tree, anonymous).Persons(ctx, "ann")
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, `data-pid="Z1"`)
	assert.Equal(t, treeview.MaxPersons, strings.Count(out, "<li>"))
	assert.Less(t, strings.Index(out, `data-pid="Z1"`), strings.Index(out, `data-pid="A0"`))
}
