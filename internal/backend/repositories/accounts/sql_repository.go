package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/backend/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/dmitrijs2005/cloudkeeper/internal/dbx"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Ensure(ctx context.Context, a *models.Account) (*models.Account, error) {
	query := `INSERT INTO accounts (id, name, limit_bytes, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), a.ID, a.Name, a.LimitBytes, a.CreatedAt.UTC().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	return r.Get(ctx, a.ID)
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT id, name, limit_bytes, created_at FROM accounts WHERE id = ?`

	var (
		a       models.Account
		created int64
	)
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id).Scan(&a.ID, &a.Name, &a.LimitBytes, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select account: %w", err)
	}
	a.CreatedAt = time.Unix(0, created).UTC()

	return &a, nil
}

func (r *SQLRepository) SetLimit(ctx context.Context, id string, limitBytes int64) error {
	query := `UPDATE accounts SET limit_bytes = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), limitBytes, id)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}

	return nil
}
