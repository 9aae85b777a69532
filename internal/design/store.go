package design

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrDesignNotFound is returned when a design cannot be found
var ErrDesignNotFound = errors.New("design not found")

// Store provides read-only access to designs and their products.
// The render pipeline never mutates source designs.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new Store instance
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// GetDesign loads a design together with its product. It is called fresh on
// every render attempt so a retry always sees the design's current state.
func (s *Store) GetDesign(ctx context.Context, designID int64) (*Design, error) {
	query := `
		SELECT
			d.id, d.user_id, d.product_id, d.name, d.elements, d.updated_at,
			p.id AS "product.id",
			p.name AS "product.name",
			p.finished_width AS "product.finished_width",
			p.finished_length AS "product.finished_length",
			p.bleed AS "product.bleed"
		FROM designs d
		JOIN products p ON p.id = d.product_id
		WHERE d.id = $1
	`

	var d Design
	err := s.db.GetContext(ctx, &d, query, designID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDesignNotFound
		}
		return nil, fmt.Errorf("failed to get design: %w", err)
	}

	return &d, nil
}

// DesignExists reports whether a design exists and who owns it
func (s *Store) DesignExists(ctx context.Context, designID int64) (ownerID int64, ok bool, err error) {
	err = s.db.GetContext(ctx, &ownerID, `SELECT user_id FROM designs WHERE id = $1`, designID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to check design: %w", err)
	}
	return ownerID, true, nil
}
