// Package catalog holds the fixed label tables the mock analysis draws from.
package catalog

import (
	"slices"

	"aeye-server/internal/domain/entity"
)

// Catalogs is read-only after construction and shared by all requests.
type Catalogs struct {
	Faces    []entity.DetectionItem
	Objects  []entity.DetectionItem
	Contexts []string
}

// Default returns the catalogs the glasses firmware was developed against.
func Default() Catalogs {
	return Catalogs{
		Faces: []entity.DetectionItem{
			{Name: "Alice", Confidence: 0.95},
			{Name: "Bob", Confidence: 0.87},
			{Name: "Charlie", Confidence: 0.92},
			{Name: "Diana", Confidence: 0.89},
		},
		Objects: []entity.DetectionItem{
			{Name: "coffee cup", Confidence: 0.85},
			{Name: "laptop", Confidence: 0.78},
			{Name: "phone", Confidence: 0.92},
			{Name: "book", Confidence: 0.76},
			{Name: "water bottle", Confidence: 0.83},
			{Name: "pen", Confidence: 0.71},
			{Name: "chair", Confidence: 0.89},
			{Name: "table", Confidence: 0.94},
		},
		Contexts: []string{
			"You're in an office environment",
			"Looks like a coffee break",
			"Study session in progress",
			"Meeting room setting",
			"Working from home setup",
			"Outdoor environment detected",
			"Kitchen area identified",
			"Living room space",
		},
	}
}

// HasFace reports whether name is one of the face labels.
func (c Catalogs) HasFace(name string) bool {
	return containsItem(c.Faces, name)
}

// HasObject reports whether name is one of the object labels.
func (c Catalogs) HasObject(name string) bool {
	return containsItem(c.Objects, name)
}

func (c Catalogs) HasContext(s string) bool {
	return slices.Contains(c.Contexts, s)
}

func containsItem(items []entity.DetectionItem, name string) bool {
	return slices.ContainsFunc(items, func(it entity.DetectionItem) bool {
		return it.Name == name
	})
}
