// Package library stores named label layouts.
//
// The library is the durable side of the engine: sessions come and go,
// saved layouts stay. A document carries the item list plus the media
// profile it was designed for, keyed by a caller-chosen name.
//
// # Backends
//
//   - file: one JSON document per layout under a directory, for the CLI
//     and single-instance servers
//   - mongo: a collection of documents for shared deployments
//
// Names double as file basenames and document ids, so they go through
// the same validation everywhere.
package library

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/labelsmith/labelsmith/pkg/errors"
	"github.com/labelsmith/labelsmith/pkg/item"
)

// ErrNotFound is returned when no layout exists under the given name.
var ErrNotFound = stderrors.New("layout not found")

// Document is one saved layout.
type Document struct {
	Name      string    `json:"name" bson:"_id"`
	Media     string    `json:"media" bson:"media"`
	Items     item.List `json:"items" bson:"items"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	c := *d
	c.Items = d.Items.Clone()
	return &c
}

// Info is a listing entry: everything but the items.
type Info struct {
	Name      string    `json:"name"`
	Media     string    `json:"media"`
	ItemCount int       `json:"itemCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is the layout storage contract.
//
// Save inserts or overwrites by name and stamps UpdatedAt. Load and
// Delete return ErrNotFound for unknown names. List returns summaries
// sorted by name.
type Store interface {
	Save(ctx context.Context, doc *Document) error
	Load(ctx context.Context, name string) (*Document, error)
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// validateName guards every store operation; names become file paths and
// document ids.
func validateName(name string) error {
	return errors.ValidateLayoutName(name)
}
