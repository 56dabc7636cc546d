package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/vesaa/kintree/internal/models"
	"gorm.io/gorm/clause"
)

// CreateIndividual inserts ind.
func (s *Store) CreateIndividual(ctx context.Context, ind *models.Individual) error {
	if err := s.db.WithContext(ctx).Create(ind).Error; err != nil {
		return fmt.Errorf("creating individual %s: %w", ind.Xref, err)
	}
	return nil
}

// SetChildOf links the individual to the family of their parents.
func (s *Store) SetChildOf(ctx context.Context, ind *models.Individual, familyID uint) error {
	err := s.db.WithContext(ctx).Model(ind).Update("child_of_family_id", familyID).Error
	if err != nil {
		return fmt.Errorf("linking %s to family: %w", ind.Xref, err)
	}
	ind.ChildOfFamilyID = &familyID
	return nil
}

// Individual returns the individual with the given xref in tree treeID, with its Tree loaded.
func (s *Store) Individual(ctx context.Context, treeID uint, xref string) (*models.Individual, error) {
	var ind models.Individual
	err := s.db.WithContext(ctx).Preload("Tree").Where("tree_id = ? AND xref = ?", treeID, xref).First(&ind).Error
	if err != nil {
		return nil, notFound(err, "individual "+xref)
	}
	return &ind, nil
}

// FirstIndividual returns the oldest individual in a tree.
func (s *Store) FirstIndividual(ctx context.Context, treeID uint) (*models.Individual, error) {
	var ind models.Individual
	err := s.db.WithContext(ctx).Preload("Tree").Where("tree_id = ?", treeID).Order("id").First(&ind).Error
	if err != nil {
		return nil, notFound(err, "first individual")
	}
	return &ind, nil
}

// SearchIndividuals returns up to limit individuals whose xref, given name or
// surname contains q (case-insensitive). Rows whose shortest matching field is
// closest in length to q come first, so an exact match is never crowded out
// by longer names. Private individuals are left out unless includePrivate.
func (s *Store) SearchIndividuals(ctx context.Context, treeID uint, q string, includePrivate bool, limit int) ([]models.Individual, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	like := "%" + escapeLike(strings.ToLower(q)) + "%"
	tx := s.db.WithContext(ctx).
		Where("tree_id = ?", treeID).
		Where(`LOWER(xref) LIKE ? ESCAPE '\' OR LOWER(given_name) LIKE ? ESCAPE '\' OR LOWER(surname) LIKE ? ESCAPE '\' OR LOWER(given_name || ' ' || surname) LIKE ? ESCAPE '\'`,
			like, like, like, like)
	if !includePrivate {
		tx = tx.Where("private = ?", false)
	}

	// a substring match of q in a field of length n is n-len(q) edits away
	var out []models.Individual
	err := tx.Clauses(clause.OrderBy{Expression: clause.Expr{
		SQL: `MIN(` + matchLength("xref") + `, ` + matchLength("given_name") + `, ` +
			matchLength("surname") + `, ` + matchLength("TRIM(given_name || ' ' || surname)") +
			`), surname, given_name, id`,
		Vars:               []any{like, like, like, like},
		WithoutParentheses: true,
	}}).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("searching individuals: %w", err)
	}
	return out, nil
}

// matchLength is the length of expr when it matches the bound LIKE pattern.
func matchLength(expr string) string {
	return `CASE WHEN LOWER(` + expr + `) LIKE ? ESCAPE '\' THEN LENGTH(` + expr + `) ELSE 1000000 END`
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
