// Package importer loads family trees from YAML documents into the store.
//
// A document looks like:
//
//	tree:
//	  name: lovelace
//	  title: The Lovelace family
//	  default: I1
//	individuals:
//	  - xref: I1
//	    given: Ada
//	    surname: Lovelace
//	    sex: F
//	    birth: {date: 10 DEC 1815, place: London}
//	families:
//	  - xref: F1
//	    husband: I2
//	    wife: I1
//	    children: [I3]
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/vesaa/kintree/internal/models"
	"github.com/vesaa/kintree/internal/store"
	"gopkg.in/yaml.v3"
)

// Document is the YAML layout of an import file.
type Document struct {
	Tree        TreeDoc         `yaml:"tree"`
	Individuals []IndividualDoc `yaml:"individuals"`
	Families    []FamilyDoc     `yaml:"families"`
}

// TreeDoc names the tree. Default is the xref shown when a chart has no root.
type TreeDoc struct {
	Name    string `yaml:"name"`
	Title   string `yaml:"title"`
	Default string `yaml:"default"`
}

// EventDoc is a dated, placed event such as a birth or marriage.
type EventDoc struct {
	Date  string `yaml:"date"`
	Place string `yaml:"place"`
}

// IndividualDoc is one person. Sex is M, F or anything else for unknown.
type IndividualDoc struct {
	Xref    string   `yaml:"xref"`
	Given   string   `yaml:"given"`
	Surname string   `yaml:"surname"`
	Sex     string   `yaml:"sex"`
	Birth   EventDoc `yaml:"birth"`
	Death   EventDoc `yaml:"death"`
	Private bool     `yaml:"private"`
}

// FamilyDoc joins partners and children by xref; either partner may be omitted.
type FamilyDoc struct {
	Xref     string   `yaml:"xref"`
	Husband  string   `yaml:"husband"`
	Wife     string   `yaml:"wife"`
	Marriage EventDoc `yaml:"marriage"`
	Children []string `yaml:"children"`
}

// ErrUnknownXref is returned when a family references an individual that is not in the document.
var ErrUnknownXref = errors.New("unknown individual")

// Result summarizes an import.
type Result struct {
	Tree        *models.Tree
	Individuals int
	Families    int
}

// ImportFile reads path and imports it. treeName, when non-empty, overrides tree.name.
func ImportFile(ctx context.Context, s *store.Store, path, treeName string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Import(ctx, s, f, treeName)
}

// Import decodes a YAML document from r and stores it in a single transaction.
func Import(ctx context.Context, s *store.Store, r io.Reader, treeName string) (*Result, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if treeName != "" {
		doc.Tree.Name = treeName
	}
	if doc.Tree.Name == "" {
		return nil, errors.New("tree name is required (tree.name or --tree)")
	}

	res := &Result{}
	err := s.Transaction(ctx, func(tx *store.Store) error {
		tree := &models.Tree{Name: doc.Tree.Name, Title: doc.Tree.Title, DefaultXref: doc.Tree.Default}
		if err := tx.CreateTree(ctx, tree); err != nil {
			return err
		}
		res.Tree = tree

		byXref := make(map[string]*models.Individual, len(doc.Individuals))
		for _, d := range doc.Individuals {
			if !models.ValidXref(d.Xref) {
				return fmt.Errorf("individual %q: invalid xref", d.Xref)
			}
			ind := &models.Individual{
				TreeID:     tree.ID,
				Xref:       d.Xref,
				GivenName:  d.Given,
				Surname:    d.Surname,
				Sex:        parseSex(d.Sex),
				BirthDate:  d.Birth.Date,
				BirthPlace: d.Birth.Place,
				DeathDate:  d.Death.Date,
				DeathPlace: d.Death.Place,
				Private:    d.Private,
			}
			if err := tx.CreateIndividual(ctx, ind); err != nil {
				return err
			}
			byXref[d.Xref] = ind
		}
		res.Individuals = len(byXref)

		lookup := func(fam, xref string) (*uint, error) {
			if xref == "" {
				return nil, nil
			}
			ind, ok := byXref[xref]
			if !ok {
				return nil, fmt.Errorf("family %s: %w %s", fam, ErrUnknownXref, xref)
			}
			return &ind.ID, nil
		}

		for _, d := range doc.Families {
			if !models.ValidXref(d.Xref) {
				return fmt.Errorf("family %q: invalid xref", d.Xref)
			}
			husband, err := lookup(d.Xref, d.Husband)
			if err != nil {
				return err
			}
			wife, err := lookup(d.Xref, d.Wife)
			if err != nil {
				return err
			}
			fam := &models.Family{
				TreeID:        tree.ID,
				Xref:          d.Xref,
				HusbandID:     husband,
				WifeID:        wife,
				MarriageDate:  d.Marriage.Date,
				MarriagePlace: d.Marriage.Place,
			}
			if err := tx.CreateFamily(ctx, fam); err != nil {
				return err
			}
			for _, c := range d.Children {
				child, ok := byXref[c]
				if !ok {
					return fmt.Errorf("family %s: %w %s", d.Xref, ErrUnknownXref, c)
				}
				if err := tx.SetChildOf(ctx, child, fam.ID); err != nil {
					return err
				}
			}
			res.Families++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[import] tree %q: %d individuals, %d families", res.Tree.Name, res.Individuals, res.Families)
	return res, nil
}

func parseSex(s string) models.Sex {
	switch models.Sex(s) {
	case models.SexMale, models.SexFemale:
		return models.Sex(s)
	}
	return models.SexUnknown
}
