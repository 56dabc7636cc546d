package store

import (
	"context"
	"fmt"

	"github.com/vesaa/kintree/internal/models"
	"gorm.io/gorm"
)

// CreateFamily inserts fam.
func (s *Store) CreateFamily(ctx context.Context, fam *models.Family) error {
	if err := s.db.WithContext(ctx).Omit("Husband", "Wife", "Children").Create(fam).Error; err != nil {
		return fmt.Errorf("creating family %s: %w", fam.Xref, err)
	}
	return nil
}

// ParentFamily returns the family ind is a child of, with both partners loaded.
// It returns ErrNotFound when the parents are unrecorded.
func (s *Store) ParentFamily(ctx context.Context, ind *models.Individual) (*models.Family, error) {
	if ind.ChildOfFamilyID == nil {
		return nil, fmt.Errorf("parents of %s: %w", ind.Xref, ErrNotFound)
	}
	var fam models.Family
	err := s.db.WithContext(ctx).
		Preload("Husband").
		Preload("Wife").
		First(&fam, *ind.ChildOfFamilyID).Error
	if err != nil {
		return nil, notFound(err, "parents of "+ind.Xref)
	}
	return &fam, nil
}

// SpouseFamilies returns the families in which ind is a partner, with partners
// and children loaded, in insertion order.
func (s *Store) SpouseFamilies(ctx context.Context, ind *models.Individual) ([]models.Family, error) {
	var fams []models.Family
	err := s.db.WithContext(ctx).
		Preload("Husband").
		Preload("Wife").
		Preload("Children", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("husband_id = ? OR wife_id = ?", ind.ID, ind.ID).
		Order("id").
		Find(&fams).Error
	if err != nil {
		return nil, fmt.Errorf("families of %s: %w", ind.Xref, err)
	}
	return fams, nil
}
