// Package accounts persists storage accounts and their quotas.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/cloudkeeper/internal/backend/models"
)

type Repository interface {
	// Ensure creates the account when it does not exist yet and returns
	// the stored row. An existing account keeps its quota.
	Ensure(ctx context.Context, a *models.Account) (*models.Account, error)
	Get(ctx context.Context, id string) (*models.Account, error)
	SetLimit(ctx context.Context, id string, limitBytes int64) error
}
