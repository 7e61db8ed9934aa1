// Package provencase looks up historical treatment projects used to
// sanity-check generated proposals.
package provencase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"proposal-workers/internal/engine/catalog"
	"proposal-workers/internal/models"
)

var (
	ErrCaseNotFound = errors.New("PROVEN_CASE_NOT_FOUND")
)

// Store reads proven cases from PostgreSQL. It is the system of record;
// the Elasticsearch index is a projection of this table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindBySector returns proven cases for a sector ordered by how close
// their design flow is to the requested one.
func (s *Store) FindBySector(ctx context.Context, sector catalog.Sector, designFlow float64, limit int) ([]models.ProvenCase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, sector, design_flow, capex_usd
		FROM proven_cases
		WHERE sector = $1
		ORDER BY ABS(design_flow - $2) ASC
		LIMIT $3`, string(sector), designFlow, limit)
	if err != nil {
		return nil, fmt.Errorf("query proven cases: %w", err)
	}
	defer rows.Close()

	var results []models.ProvenCase
	for rows.Next() {
		var pc models.ProvenCase
		var sectorStr string
		if err := rows.Scan(&pc.ID, &pc.Name, &sectorStr, &pc.DesignFlow, &pc.CapexUSD); err != nil {
			return nil, fmt.Errorf("scan proven case: %w", err)
		}
		pc.Sector = catalog.Sector(sectorStr)
		pc.Similarity = flowSimilarity(designFlow, pc.DesignFlow)
		results = append(results, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// GetByID returns a single proven case.
func (s *Store) GetByID(ctx context.Context, id string) (*models.ProvenCase, error) {
	var pc models.ProvenCase
	var sectorStr string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, sector, design_flow, capex_usd
		FROM proven_cases
		WHERE id = $1`, id).Scan(
		&pc.ID, &pc.Name, &sectorStr, &pc.DesignFlow, &pc.CapexUSD,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query proven case: %w", err)
	}

	pc.Sector = catalog.Sector(sectorStr)
	return &pc, nil
}

// flowSimilarity scores how close two design flows are on a 0..1 scale.
// Identical flows score 1; a flow twice or half the reference scores 0.5.
func flowSimilarity(reference, candidate float64) float64 {
	if reference <= 0 || candidate <= 0 {
		return 0
	}
	ratio := candidate / reference
	if ratio > 1 {
		ratio = 1 / ratio
	}
	return ratio
}
