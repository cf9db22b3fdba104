package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/backend/models"
	cm "github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/sortfilter"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/dmitrijs2005/cloudkeeper/internal/dbx"
)

const fileColumns = `id, account_id, owner_id, owner_name, name, mime_type, category, extension, size_bytes, digest, storage_key, created_at`

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Insert(ctx context.Context, f *models.File) error {

	query := `INSERT INTO files (` + fileColumns + `, name_lower)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		f.ID, f.AccountID, f.OwnerID, f.OwnerName, f.Name, f.MIMEType, string(f.Category), f.Extension,
		f.SizeBytes, f.Digest, f.StorageKey, f.CreatedAt.UTC().UnixNano(), strings.ToLower(f.Name))
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}

	return nil
}

func (r *SQLRepository) Get(ctx context.Context, accountID, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE account_id = ? AND id = ?`

	f, err := scanFile(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), accountID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select file: %w", err)
	}

	return f, nil
}

func (r *SQLRepository) Rename(ctx context.Context, f *models.File) error {
	query := `UPDATE files SET name = ?, name_lower = ?, category = ?, extension = ?
		WHERE account_id = ? AND id = ?`

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		f.Name, strings.ToLower(f.Name), string(f.Category), f.Extension, f.AccountID, f.ID)
	if err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return expectOne(res)
}

func (r *SQLRepository) Delete(ctx context.Context, accountID, id string) error {
	query := `DELETE FROM files WHERE account_id = ? AND id = ?`

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), accountID, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context, filter Filter) ([]*models.File, int, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return nil, 0, nil
	}

	where, args := whereClause(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM files` + where
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(countQuery), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	query := `SELECT ` + fileColumns + ` FROM files` + where + orderBy(filter.Sort)
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, f)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

func (r *SQLRepository) Totals(ctx context.Context, accountID string) ([]models.CategoryTotal, error) {
	query := `SELECT category, COALESCE(SUM(size_bytes), 0), COALESCE(MAX(created_at), 0)
		FROM files WHERE account_id = ? GROUP BY category ORDER BY category`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate files: %w", err)
	}
	defer rows.Close()

	var result []models.CategoryTotal
	for rows.Next() {
		var (
			category string
			latest   int64
			item     models.CategoryTotal
		)
		if err := rows.Scan(&category, &item.Bytes, &latest); err != nil {
			return nil, err
		}
		item.Category = cm.Category(category)
		if latest > 0 {
			item.Latest = time.Unix(0, latest).UTC()
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *SQLRepository) All(ctx context.Context) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+fileColumns+` FROM files ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (*models.File, error) {
	var (
		f        models.File
		category string
		created  int64
	)
	err := row.Scan(&f.ID, &f.AccountID, &f.OwnerID, &f.OwnerName, &f.Name, &f.MIMEType, &category,
		&f.Extension, &f.SizeBytes, &f.Digest, &f.StorageKey, &created)
	if err != nil {
		return nil, err
	}
	f.Category = cm.Category(category)
	f.CreatedAt = time.Unix(0, created).UTC()
	return &f, nil
}

func whereClause(filter Filter) (string, []any) {
	conds := []string{"account_id = ?"}
	args := []any{filter.AccountID}

	if len(filter.Categories) > 0 {
		conds = append(conds, "category IN ("+placeholders(len(filter.Categories))+")")
		for _, c := range filter.Categories {
			args = append(args, string(c))
		}
	}
	if len(filter.IDs) > 0 {
		conds = append(conds, "id IN ("+placeholders(len(filter.IDs))+")")
		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(spec sortfilter.SortSpec) string {
	column := "created_at"
	switch spec.Field {
	case sortfilter.FieldName:
		column = "name_lower"
	case sortfilter.FieldSize:
		column = "size_bytes"
	}

	dir := "DESC"
	if spec.Direction == sortfilter.Asc {
		dir = "ASC"
	}

	return " ORDER BY " + column + " " + dir + ", id " + dir
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
