package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/sales-dashboard/internal/database"
	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/stores"
)

var _ stores.Repo = (*StoreRepository)(nil)

// StoreRepository reads the lojas table.
type StoreRepository struct {
	db database.DB
}

func NewStoreRepository(db database.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) List(ctx context.Context) ([]*stores.Store, error) {
	rows, err := r.db.Query(ctx, `SELECT id, numero, nome, regiao FROM lojas ORDER BY numero`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	var list []*stores.Store
	for rows.Next() {
		var s stores.Store
		if err := rows.Scan(&s.ID, &s.Number, &s.Name, &s.Region); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return list, nil
}

func (r *StoreRepository) Get(ctx context.Context, id int) (*stores.Store, error) {
	var s stores.Store
	err := r.db.QueryRow(ctx, `SELECT id, numero, nome, regiao FROM lojas WHERE id = $1`, id).
		Scan(&s.ID, &s.Number, &s.Name, &s.Region)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dasherrors.Wrapf(dasherrors.ErrNotFound, "store %d", id)
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return &s, nil
}
