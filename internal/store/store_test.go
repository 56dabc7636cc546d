package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vesaa/kintree/internal/models"
	"github.com/vesaa/kintree/internal/store"
	"github.com/vesaa/kintree/internal/testutil"
)

func TestTreeLookup(t *testing.T) {
	s, tree := testutil.Seed(t)
	ctx := context.Background()

	got, err := s.TreeByName(ctx, "lovelace")
	require.NoError(t, err)
	assert.Equal(t, tree.ID, got.ID)
	assert.Equal(t, "I1", got.DefaultXref)

	first, err := s.FirstTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, tree.ID, first.ID)

	_, err = s.TreeByName(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIndividualLookup(t *testing.T) {
	s, tree := testutil.Seed(t)
	ctx := context.Background()

	ind, err := s.Individual(ctx, tree.ID, "I4")
	require.NoError(t, err)
	assert.Equal(t, "William King", ind.FullName())

	_, err = s.Individual(ctx, tree.ID, "I404")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Individual(ctx, tree.ID+1, "I4")
	assert.ErrorIs(t, err, store.ErrNotFound, "xrefs are scoped to a tree")

	first, err := s.FirstIndividual(ctx, tree.ID)
	require.NoError(t, err)
	assert.Equal(t, "I1", first.Xref)
}

func TestParentFamily(t *testing.T) {
	s, tree := testutil.Seed(t)
	ctx := context.Background()

	ada := testutil.Individual(t, s, tree, "I1")
	fam, err := s.ParentFamily(ctx, ada)
	require.NoError(t, err)
	assert.Equal(t, "F1", fam.Xref)
	require.NotNil(t, fam.Husband)
	require.NotNil(t, fam.Wife)
	assert.Equal(t, "I2", fam.Husband.Xref)
	assert.Equal(t, "I3", fam.Wife.Xref)

	byron := testutil.Individual(t, s, tree, "I2")
	_, err = s.ParentFamily(ctx, byron)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSpouseFamilies(t *testing.T) {
	s, tree := testutil.Seed(t)
	ctx := context.Background()

	ada := testutil.Individual(t, s, tree, "I1")
	fams, err := s.SpouseFamilies(ctx, ada)
	require.NoError(t, err)
	require.Len(t, fams, 1)

	fam := fams[0]
	assert.Equal(t, "F2", fam.Xref)
	assert.Equal(t, "I4", fam.Spouse(ada).Xref)

	var kids []string
	for _, c := range fam.Children {
		kids = append(kids, c.Xref)
	}
	assert.Equal(t, []string{"I5", "I6", "I7"}, kids)
}

func TestSearchIndividuals(t *testing.T) {
	s, tree := testutil.Seed(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"surname", "king", []string{"I5", "I7", "I4"}},
		{"full name", "ada lovelace", []string{"I1"}},
		{"xref", "I9", []string{"I9"}},
		{"blank", "   ", nil},
		{"like wildcard is literal", "%", nil},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchIndividuals(ctx, tree.ID, tt.query, true, 20)
			require.NoError(t, err)
			var xrefs []string
			for _, ind := range got {
				xrefs = append(xrefs, ind.Xref)
			}
			assert.Equal(t, tt.expected, xrefs)
		})
	}
}

func TestSearchClosestFirst(t *testing.T) {
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

	got, err := s.SearchIndividuals(ctx, tree.ID, "ann", false, 100)
	require.NoError(t, err)
	require.Len(t, got, 100)
	assert.Equal(t, "Z1", got[0].Xref, "exact given name sorts ahead of alphabetically earlier names")
}

func TestSearchPrivate(t *testing.T) {
	s, tree := testutil.Seed(t)
	ctx := context.Background()

	xrefs := func(inds []models.Individual) []string {
		var out []string
		for _, ind := range inds {
			out = append(out, ind.Xref)
		}
		return out
	}

	got, err := s.SearchIndividuals(ctx, tree.ID, "blunt", false, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"I6", "I9"}, xrefs(got))

	got, err = s.SearchIndividuals(ctx, tree.ID, "blunt", true, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"I6", "I8", "I9"}, xrefs(got))
}

func TestUsers(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureAdmin(ctx, "admin", "secret"))
	require.NoError(t, s.EnsureAdmin(ctx, "admin", "other"), "second call is a no-op")

	u, err := s.Authenticate(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.NotEqual(t, "secret", u.PasswordHash)

	_, err = s.Authenticate(ctx, "admin", "other")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Authenticate(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
