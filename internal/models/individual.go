// Package models defines GORM data models for kintree.
package models

import (
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// Sex is the recorded sex of an individual.
type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexUnknown Sex = "U"
)

// xrefPattern is the accepted syntax of a record identifier (I1, F23, @X:1@ without the @).
var xrefPattern = regexp.MustCompile(`^[A-Za-z0-9:_.-]+$`)

// ValidXref reports whether s is a well-formed record identifier.
func ValidXref(s string) bool {
	return xrefPattern.MatchString(s)
}

// Tree is one family tree (a GEDCOM file, in genealogy terms).
// Name is the URL-safe key used in ged= parameters.
type Tree struct {
	gorm.Model

	Name  string `gorm:"uniqueIndex;not null" json:"name"`
	Title string `json:"title"`
	// DefaultXref is the individual shown when a chart is opened without rootid.
	DefaultXref string `json:"default_xref"`
}

// Individual is a person record in a tree.
type Individual struct {
	gorm.Model

	TreeID uint   `gorm:"uniqueIndex:idx_individual_xref;not null" json:"tree_id"`
	Tree   *Tree  `gorm:"foreignKey:TreeID" json:"-"`
	Xref   string `gorm:"uniqueIndex:idx_individual_xref;not null" json:"xref"`

	GivenName string `gorm:"index" json:"given_name"`
	Surname   string `gorm:"index" json:"surname"`
	Sex       Sex    `gorm:"default:'U'" json:"sex"`

	BirthDate  string `json:"birth_date,omitempty"`
	BirthPlace string `json:"birth_place,omitempty"`
	DeathDate  string `json:"death_date,omitempty"`
	DeathPlace string `json:"death_place,omitempty"`

	// Private records are only shown to signed-in users.
	Private bool `gorm:"default:false" json:"private"`

	// ChildOfFamilyID links the individual to the family of their parents.
	ChildOfFamilyID *uint   `gorm:"index" json:"child_of_family_id,omitempty"`
	ChildOf         *Family `gorm:"foreignKey:ChildOfFamilyID" json:"-"`
}

// FullName returns "Given Surname", or "(unknown)" when neither is recorded.
func (i *Individual) FullName() string {
	name := strings.TrimSpace(i.GivenName + " " + i.Surname)
	if name == "" {
		return "(unknown)"
	}
	return name
}

// Lifespan returns a short "birth – death" summary, "b. date" or "d. date" when
// only one end is known, and "" when neither is.
func (i *Individual) Lifespan() string {
	switch {
	case i.BirthDate != "" && i.DeathDate != "":
		return i.BirthDate + " – " + i.DeathDate
	case i.BirthDate != "":
		return "b. " + i.BirthDate
	case i.DeathDate != "":
		return "d. " + i.DeathDate
	}
	return ""
}
