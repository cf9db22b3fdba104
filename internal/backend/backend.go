// Package backend is an in-process backend-as-a-service. It stores file
// metadata in SQL, names in a bluge index and contents in a blob store, and
// hands out account-scoped RemoteStore views to session holders.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/auth"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend/blobs"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend/database"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend/index"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend/repositories/accounts"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend/repositories/files"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/dmitrijs2005/cloudkeeper/internal/dbx"
	"github.com/dmitrijs2005/cloudkeeper/internal/logging"
)

type Backend struct {
	cfg     Config
	db      *sql.DB
	dialect dbx.Dialect
	index   *index.NameIndex
	blobs   blobs.Store
	log     logging.Logger
	now     func() time.Time
}

type Option func(*Backend)

func WithLogger(l logging.Logger) Option {
	return func(b *Backend) { b.log = logging.OrDiscard(l) }
}

// WithBlobStore replaces the configured blob store.
func WithBlobStore(s blobs.Store) Option {
	return func(b *Backend) { b.blobs = s }
}

func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

func New(ctx context.Context, cfg Config, opts ...Option) (b *Backend, err error) {
	b = &Backend{cfg: cfg, log: logging.Discard(), now: time.Now}
	for _, o := range opts {
		o(b)
	}
	b.log = b.log.With("module", "backend")

	if b.dialect, err = dbx.ParseDialect(cfg.Driver); err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = b.Close()
			b = nil
		}
	}()

	if b.db, err = database.Open(ctx, b.dialect, cfg.DSN); err != nil {
		return b, fmt.Errorf("db init error: %w", err)
	}

	if b.index, err = index.Open(cfg.IndexPath); err != nil {
		return b, err
	}
	if cfg.IndexPath == "" {
		if err = b.reindex(ctx); err != nil {
			return b, err
		}
	}

	if b.blobs == nil {
		if b.blobs, err = openBlobs(ctx, cfg); err != nil {
			return b, err
		}
	}

	b.log.Info(ctx, "backend ready", "driver", b.dialect, "blobs", cfg.BlobStore)
	return b, nil
}

func openBlobs(ctx context.Context, cfg Config) (blobs.Store, error) {
	switch strings.ToLower(cfg.BlobStore) {
	case "", BlobStoreBadger:
		return blobs.OpenBadger(cfg.BadgerDir, cfg.PublicURL)
	case BlobStoreS3:
		s, err := blobs.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		if cfg.CreateBucket {
			if err := s.EnsureBucket(ctx); err != nil {
				return nil, err
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown blob store %q", cfg.BlobStore)
	}
}

func (b *Backend) reindex(ctx context.Context) error {
	all, err := b.files(b.db).All(ctx)
	if err != nil {
		return err
	}
	for _, f := range all {
		if err := b.index.Put(f.AccountID, f.ID, f.Name); err != nil {
			return err
		}
	}
	if len(all) > 0 {
		b.log.Info(ctx, "name index rebuilt", "files", len(all))
	}
	return nil
}

func (b *Backend) files(db dbx.DBTX) files.Repository {
	return files.NewSQLRepository(db, b.dialect)
}

func (b *Backend) accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLRepository(db, b.dialect)
}

// IssueSession registers the session's account on first sight and returns
// a signed session token.
func (b *Backend) IssueSession(ctx context.Context, s auth.Session) (string, error) {
	if s.AccountID == "" || s.OwnerID == "" {
		return "", fmt.Errorf("%w: account and owner are required", common.ErrInvalidRecord)
	}

	if _, err := b.ensureAccount(ctx, b.db, s.AccountID, s.OwnerName); err != nil {
		return "", err
	}

	return auth.GenerateToken(s, []byte(b.cfg.SecretKey), b.cfg.SessionTTL)
}

func (b *Backend) ensureAccount(ctx context.Context, db dbx.DBTX, id, name string) (*models.Account, error) {
	return b.accounts(db).Ensure(ctx, &models.Account{
		ID:         id,
		Name:       name,
		LimitBytes: b.cfg.AccountLimitBytes,
		CreatedAt:  b.now(),
	})
}

// Authenticate verifies token and returns the session it carries.
func (b *Backend) Authenticate(token string) (auth.Session, error) {
	s, err := auth.ParseToken(token, []byte(b.cfg.SecretKey))
	if err != nil {
		return auth.Session{}, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}
	return s, nil
}

// ForSession returns the RemoteStore of the account named by token.
func (b *Backend) ForSession(token string) (*AccountStore, error) {
	s, err := b.Authenticate(token)
	if err != nil {
		return nil, err
	}
	return &AccountStore{b: b, session: s}, nil
}

func (b *Backend) SetAccountLimit(ctx context.Context, accountID string, limitBytes int64) error {
	return b.accounts(b.db).SetLimit(ctx, accountID, limitBytes)
}

// Blob opens the stored content under key.
func (b *Backend) Blob(ctx context.Context, key string) (*blobs.Object, error) {
	return b.blobs.Get(ctx, key)
}

func (b *Backend) Health(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	return nil
}

func (b *Backend) Close() error {
	var errs []error
	if b.blobs != nil {
		errs = append(errs, b.blobs.Close())
	}
	if b.index != nil {
		errs = append(errs, b.index.Close())
	}
	if b.db != nil {
		errs = append(errs, b.db.Close())
	}
	return errors.Join(errs...)
}
