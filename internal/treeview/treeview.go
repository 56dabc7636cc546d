// Package treeview draws the interactive ancestor/descendant tree of an
// individual as HTML fragments plus the script that drives them in the browser.
//
// The markup is a set of nested lists; the visual tree shape is left to
// treeview.css. Several widgets may share one page, each identified by its
// instance name, which prefixes DOM ids and the JavaScript handler variable.
package treeview

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"regexp"
	"strings"

	"github.com/vesaa/kintree/internal/models"
	"github.com/vesaa/kintree/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// DefaultInstance is used when the requested instance name is empty or unsafe.
const DefaultInstance = "tv"

// Repository is the genealogy lookup the tree view walks.
type Repository interface {
	ParentFamily(ctx context.Context, ind *models.Individual) (*models.Family, error)
	SpouseFamilies(ctx context.Context, ind *models.Individual) ([]models.Family, error)
	SearchIndividuals(ctx context.Context, treeID uint, q string, includePrivate bool, limit int) ([]models.Individual, error)
}

// Viewer describes who is looking at the tree.
type Viewer struct {
	Username string
	IsAdmin  bool
}

// CanSeePrivate reports whether private individuals are shown in full.
func (v Viewer) CanSeePrivate() bool { return v.Username != "" }

// TreeView renders one widget instance over one tree.
type TreeView struct {
	name   string
	repo   Repository
	tree   *models.Tree
	viewer Viewer
}

var instancePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,31}$`)

// New returns a tree view named name. Names that are not safe JavaScript
// identifiers fall back to DefaultInstance.
func New(name string, repo Repository, tree *models.Tree, viewer Viewer) *TreeView {
	if !instancePattern.MatchString(name) {
		name = DefaultInstance
	}
	return &TreeView{name: name, repo: repo, tree: tree, viewer: viewer}
}

// Name returns the instance name.
func (tv *TreeView) Name() string { return tv.name }

// ChartURL links to the interactive tree page centred on xref in the named tree.
func ChartURL(treeName, xref string) string {
	return "module.php?mod=tree&mod_action=treeview&rootid=" + rawURLEncode(xref) + "&ged=" + rawURLEncode(treeName)
}

// rawURLEncode escapes s for a query value, encoding spaces as %20.
func rawURLEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// ── view model ────────────────────────────────────────────────────────────────

type person struct {
	Pid      string
	Name     string
	Lifespan string
	Sex      models.Sex
	Private  bool
	URL      string

	// Parents holds father then mother when recorded and within depth.
	Parents []*person
	// MoreAncestors marks a box whose parents exist beyond the drawn depth.
	MoreAncestors bool
	Families      []*family
}

type family struct {
	Fid      string
	Marriage string
	Spouse   *person
	Children []*person
}

func (tv *TreeView) visible(ind *models.Individual) bool {
	return !ind.Private || tv.viewer.CanSeePrivate()
}

func (tv *TreeView) box(ind *models.Individual) *person {
	p := &person{
		Pid: ind.Xref,
		Sex: ind.Sex,
	}
	if p.Sex == "" {
		p.Sex = models.SexUnknown
	}
	// masked boxes keep only data-pid; no link, no visible xref
	if !tv.visible(ind) {
		p.Name = "Private"
		p.Private = true
		return p
	}
	p.URL = ChartURL(tv.tree.Name, ind.Xref)
	p.Name = ind.FullName()
	p.Lifespan = ind.Lifespan()
	return p
}

// ancestors fills p.Parents for up to gen generations.
func (tv *TreeView) ancestors(ctx context.Context, ind *models.Individual, p *person, gen int) error {
	if p.Private || ind.ChildOfFamilyID == nil {
		return nil
	}
	fam, err := tv.repo.ParentFamily(ctx, ind)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if gen <= 0 {
		p.MoreAncestors = fam.Husband != nil || fam.Wife != nil
		return nil
	}
	for _, parent := range []*models.Individual{fam.Husband, fam.Wife} {
		if parent == nil {
			continue
		}
		pb := tv.box(parent)
		if err := tv.ancestors(ctx, parent, pb, gen-1); err != nil {
			return err
		}
		p.Parents = append(p.Parents, pb)
	}
	return nil
}

// descendants fills p.Families for up to gen generations.
func (tv *TreeView) descendants(ctx context.Context, ind *models.Individual, p *person, gen int) error {
	if p.Private || gen <= 0 {
		return nil
	}
	fams, err := tv.repo.SpouseFamilies(ctx, ind)
	if err != nil {
		return err
	}
	for i := range fams {
		fam := &fams[i]
		fb := &family{Fid: fam.Xref, Marriage: fam.MarriageDate}
		if sp := fam.Spouse(ind); sp != nil {
			fb.Spouse = tv.box(sp)
		}
		for j := range fam.Children {
			child := &fam.Children[j]
			cb := tv.box(child)
			if err := tv.descendants(ctx, child, cb, gen-1); err != nil {
				return err
			}
			fb.Children = append(fb.Children, cb)
		}
		p.Families = append(p.Families, fb)
	}
	return nil
}

// ── operations ────────────────────────────────────────────────────────────────

// DrawViewport renders the tree around ind, generations deep on each side,
// and returns the markup together with the script that activates it.
func (tv *TreeView) DrawViewport(ctx context.Context, ind *models.Individual, generations int) (template.HTML, template.JS, error) {
	root := tv.box(ind)
	if err := tv.ancestors(ctx, ind, root, generations); err != nil {
		return "", "", fmt.Errorf("drawing ancestors of %s: %w", ind.Xref, err)
	}
	if err := tv.descendants(ctx, ind, root, generations); err != nil {
		return "", "", fmt.Errorf("drawing descendants of %s: %w", ind.Xref, err)
	}

	html, err := tv.execute("viewport", struct {
		Name string
		Root *person
	}{tv.name, root})
	if err != nil {
		return "", "", err
	}
	return html, tv.script(), nil
}

// script instantiates the browser-side handler for this instance.
func (tv *TreeView) script() template.JS {
	ged, _ := json.Marshal(tv.tree.Name)
	return template.JS(fmt.Sprintf("var %sHandler = new TreeViewHandler(%q, %s);", tv.name, tv.name, ged))
}

type details struct {
	*person
	Birth string
	Death string
}

// Details renders the information panel of a single individual, with links
// to spouses and children one step away.
func (tv *TreeView) Details(ctx context.Context, ind *models.Individual) (template.HTML, error) {
	d := details{person: tv.box(ind)}
	if !d.Private {
		d.Birth = event(ind.BirthDate, ind.BirthPlace)
		d.Death = event(ind.DeathDate, ind.DeathPlace)
		if err := tv.descendants(ctx, ind, d.person, 1); err != nil {
			return "", fmt.Errorf("details of %s: %w", ind.Xref, err)
		}
	}
	return tv.execute("details", struct {
		Name string
		D    details
	}{tv.name, d})
}

func event(date, place string) string {
	switch {
	case date != "" && place != "":
		return date + ", " + place
	case date != "":
		return date
	}
	return place
}

func (tv *TreeView) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
