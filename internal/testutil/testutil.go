// Package testutil provides a seeded database for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vesaa/kintree/internal/config"
	"github.com/vesaa/kintree/internal/importer"
	"github.com/vesaa/kintree/internal/models"
	"github.com/vesaa/kintree/internal/store"
)

// LovelaceYAML is a small three-generation tree. I8 is private.
const LovelaceYAML = `
tree:
  name: lovelace
  title: The Lovelace family
  default: I1
individuals:
  - {xref: I1, given: Ada, surname: Lovelace, sex: F, birth: {date: 10 DEC 1815, place: London}, death: {date: 27 NOV 1852, place: Marylebone}}
  - {xref: I2, given: George Gordon, surname: Byron, sex: M, birth: {date: 22 JAN 1788}}
  - {xref: I3, given: Anne Isabella, surname: Milbanke, sex: F, birth: {date: 17 MAY 1792}}
  - {xref: I4, given: William, surname: King, sex: M, birth: {date: 21 FEB 1805}}
  - {xref: I5, given: Byron, surname: King, sex: M, birth: {date: 12 MAY 1836}}
  - {xref: I6, given: Anne, surname: Blunt, sex: F, birth: {date: 22 SEP 1837}}
  - {xref: I7, given: Ralph, surname: King, sex: M, birth: {date: 2 JUL 1839}}
  - {xref: I8, given: Secret, surname: Blunt, sex: F, private: true}
  - {xref: I9, given: Wilfrid, surname: Blunt, sex: M}
families:
  - {xref: F1, husband: I2, wife: I3, children: [I1]}
  - {xref: F2, husband: I4, wife: I1, marriage: {date: 8 JUL 1835}, children: [I5, I6, I7]}
  - {xref: F3, husband: I9, wife: I6, children: [I8]}
`

// OpenStore opens an empty database in a temporary directory.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(&config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "kintree.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Seed opens a database loaded with LovelaceYAML and returns it with its tree.
func Seed(t *testing.T) (*store.Store, *models.Tree) {
	t.Helper()
	s := OpenStore(t)
	res, err := importer.Import(context.Background(), s, strings.NewReader(LovelaceYAML), "")
	require.NoError(t, err)
	return s, res.Tree
}

// Individual fetches xref from tree or fails the test.
func Individual(t *testing.T, s *store.Store, tree *models.Tree, xref string) *models.Individual {
	t.Helper()
	ind, err := s.Individual(context.Background(), tree.ID, xref)
	require.NoError(t, err)
	return ind
}
