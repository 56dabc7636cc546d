package treeview

import (
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/vesaa/kintree/internal/models"
)

const (
	// MaxPersons caps the search widget's result list.
	MaxPersons = 20
	// candidates fetched from the store, closest first, before ranking
	searchPool = 100
)

// Persons renders the search widget's result list for q. Matches are ranked
// by edit distance between q and the name or xref; private individuals are
// left out for anonymous viewers. A blank query renders nothing.
func (tv *TreeView) Persons(ctx context.Context, q string) (template.HTML, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", nil
	}
	found, err := tv.repo.SearchIndividuals(ctx, tv.tree.ID, q, tv.viewer.CanSeePrivate(), searchPool)
	if err != nil {
		return "", fmt.Errorf("persons matching %q: %w", q, err)
	}

	type ranked struct {
		p     *person
		score int
	}
	var hits []ranked
	for i := range found {
		ind := &found[i]
		if !tv.visible(ind) {
			continue
		}
		hits = append(hits, ranked{tv.box(ind), distance(q, ind)})
	}
	if len(hits) == 0 {
		return "", nil
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score < hits[j].score })
	if len(hits) > MaxPersons {
		hits = hits[:MaxPersons]
	}

	people := make([]*person, len(hits))
	for i, h := range hits {
		people[i] = h.p
	}
	return tv.execute("persons", struct {
		Name    string
		Persons []*person
	}{tv.name, people})
}

// distance is the smallest edit distance between q and any searchable field.
func distance(q string, ind *models.Individual) int {
	q = strings.ToLower(q)
	best := -1
	for _, field := range []string{ind.FullName(), ind.Surname, ind.GivenName, ind.Xref} {
		if field == "" {
			continue
		}
		d := levenshtein.ComputeDistance(q, strings.ToLower(field))
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}
