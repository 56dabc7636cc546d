package models

import "gorm.io/gorm"

// Family joins two partners and their children.
// Either partner may be missing (single-parent or unknown-parent families).
type Family struct {
	gorm.Model

	TreeID uint   `gorm:"uniqueIndex:idx_family_xref;not null" json:"tree_id"`
	Xref   string `gorm:"uniqueIndex:idx_family_xref;not null" json:"xref"`

	HusbandID *uint       `gorm:"index" json:"husband_id,omitempty"`
	Husband   *Individual `gorm:"foreignKey:HusbandID" json:"husband,omitempty"`
	WifeID    *uint       `gorm:"index" json:"wife_id,omitempty"`
	Wife      *Individual `gorm:"foreignKey:WifeID" json:"wife,omitempty"`

	MarriageDate  string `json:"marriage_date,omitempty"`
	MarriagePlace string `json:"marriage_place,omitempty"`

	Children []Individual `gorm:"foreignKey:ChildOfFamilyID" json:"children,omitempty"`
}

// Spouse returns the partner of ind in this family, or nil.
func (f *Family) Spouse(ind *Individual) *Individual {
	switch {
	case f.HusbandID != nil && *f.HusbandID == ind.ID:
		return f.Wife
	case f.WifeID != nil && *f.WifeID == ind.ID:
		return f.Husband
	}
	return nil
}

// User is an account that may view private records.
type User struct {
	gorm.Model

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsAdmin      bool   `gorm:"default:false" json:"is_admin"`
}
