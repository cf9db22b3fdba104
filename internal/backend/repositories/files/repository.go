// Package files persists file metadata of the embedded backend.
package files

import (
	"context"

	"github.com/dmitrijs2005/cloudkeeper/internal/backend/models"
	cm "github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/sortfilter"
)

// Filter selects the files of one account.
type Filter struct {
	AccountID  string
	Categories []cm.Category
	// IDs, when non-nil, restricts the result to these identifiers. An empty
	// non-nil slice matches nothing.
	IDs   []string
	Sort  sortfilter.SortSpec
	Limit int
}

type Repository interface {
	Insert(ctx context.Context, f *models.File) error
	Get(ctx context.Context, accountID, id string) (*models.File, error)
	// Rename stores the name, category and extension of f.
	Rename(ctx context.Context, f *models.File) error
	Delete(ctx context.Context, accountID, id string) error
	// List returns the page selected by filter and the number of files
	// matching it before the limit.
	List(ctx context.Context, filter Filter) ([]*models.File, int, error)
	Totals(ctx context.Context, accountID string) ([]models.CategoryTotal, error)
	// All returns every stored file across accounts, for index rebuilds.
	All(ctx context.Context) ([]*models.File, error)
}
