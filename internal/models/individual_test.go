package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidXref(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"I1", true},
		{"F23", true},
		{"X:ab_c-1.2", true},
		{"", false},
		{"I1 OR 1=1", false},
		{"<script>", false},
		{"@I1@", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ValidXref(tt.input), "input %q", tt.input)
	}
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&Individual{GivenName: "Ada", Surname: "Lovelace"}).FullName())
	assert.Equal(t, "Lovelace", (&Individual{Surname: "Lovelace"}).FullName())
	assert.Equal(t, "(unknown)", (&Individual{}).FullName())
}

func TestLifespan(t *testing.T) {
	tests := []struct {
		birth, death string
		expected     string
	}{
		{"10 DEC 1815", "27 NOV 1852", "10 DEC 1815 – 27 NOV 1852"},
		{"12 MAY 1836", "", "b. 12 MAY 1836"},
		{"", "1852", "d. 1852"},
		{"", "", ""},
	}
	for _, tt := range tests {
		ind := &Individual{BirthDate: tt.birth, DeathDate: tt.death}
		assert.Equal(t, tt.expected, ind.Lifespan())
	}
}

func TestFamilySpouse(t *testing.T) {
	h := &Individual{GivenName: "William"}
	h.ID = 1
	w := &Individual{GivenName: "Ada"}
	w.ID = 2
	other := &Individual{}
	other.ID = 3

	fam := &Family{HusbandID: &h.ID, Husband: h, WifeID: &w.ID, Wife: w}

	assert.Same(t, w, fam.Spouse(h))
	assert.Same(t, h, fam.Spouse(w))
	assert.Nil(t, fam.Spouse(other))
}
