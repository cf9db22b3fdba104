package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/auth"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend/blobs"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend/repositories/files"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/classify"
	cm "github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/remote"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/sortfilter"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/dmitrijs2005/cloudkeeper/internal/cryptox"
	"github.com/dmitrijs2005/cloudkeeper/internal/dbx"
	"github.com/dmitrijs2005/cloudkeeper/internal/netx"
	"github.com/google/uuid"
)

const defaultContentType = "application/octet-stream"

// AccountStore is the RemoteStore of a single session. Every operation is
// confined to the session's account.
type AccountStore struct {
	b       *Backend
	session auth.Session
}

var _ remote.RemoteStore = (*AccountStore)(nil)

func (s *AccountStore) Session() auth.Session { return s.session }

func (s *AccountStore) list(ctx context.Context, q remote.ListQuery) ([]*models.File, int, error) {
	filter := files.Filter{
		AccountID:  s.session.AccountID,
		Categories: q.Categories,
		Sort:       sortfilter.ParseSortSpec(q.Sort),
		Limit:      q.Limit,
	}

	if text := strings.TrimSpace(q.SearchText); text != "" {
		ids, err := s.b.index.Search(ctx, s.session.AccountID, text)
		if err != nil {
			return nil, 0, err
		}
		filter.IDs = append([]string{}, ids...)
	}

	return s.b.files(s.b.db).List(ctx, filter)
}

func (s *AccountStore) ListFiles(ctx context.Context, q remote.ListQuery) (remote.FileList, error) {
	found, total, err := s.list(ctx, q)
	if err != nil {
		return remote.FileList{}, err
	}

	out := remote.FileList{Total: total, Files: make([]cm.FileRecord, 0, len(found))}
	for _, f := range found {
		out.Files = append(out.Files, f.Record(s.url(ctx, f)))
	}
	return out, nil
}

// Documents is ListFiles in the wire shape of the gateway.
func (s *AccountStore) Documents(ctx context.Context, q remote.ListQuery) (remote.ListResponse, error) {
	found, total, err := s.list(ctx, q)
	if err != nil {
		return remote.ListResponse{}, err
	}

	out := remote.ListResponse{Total: total, Documents: make([]remote.Document, 0, len(found))}
	for _, f := range found {
		out.Documents = append(out.Documents, s.document(ctx, f))
	}
	return out, nil
}

func (s *AccountStore) document(ctx context.Context, f *models.File) remote.Document {
	d := remote.EncodeRecord(f.Record(s.url(ctx, f)), f.MIMEType)
	d["digest"] = f.Digest
	return d
}

func (s *AccountStore) url(ctx context.Context, f *models.File) string {
	u, err := s.b.blobs.URL(ctx, f.StorageKey)
	if err != nil {
		s.b.log.Warn(ctx, "blob url", "id", f.ID, "error", err)
		return ""
	}
	return u
}

func (s *AccountStore) UsageTotals(ctx context.Context) (remote.UsageTotals, error) {
	account, err := s.b.ensureAccount(ctx, s.b.db, s.session.AccountID, s.session.OwnerName)
	if err != nil {
		return remote.UsageTotals{}, err
	}

	totals, err := s.b.files(s.b.db).Totals(ctx, s.session.AccountID)
	if err != nil {
		return remote.UsageTotals{}, err
	}

	out := remote.UsageTotals{
		ByCategory:        make(map[cm.Category]int64, len(cm.Categories)),
		LatestByCategory:  make(map[cm.Category]time.Time, len(totals)),
		AccountLimitBytes: account.LimitBytes,
	}
	for _, t := range totals {
		c := t.Category
		if !c.Valid() {
			c = cm.CategoryOther
		}
		out.ByCategory[c] += t.Bytes
		out.TotalBytes += t.Bytes
		if t.Latest.After(out.LatestByCategory[c]) {
			out.LatestByCategory[c] = t.Latest
		}
	}
	return out, nil
}

// UploadFile stores the payload, records it and indexes its name. The
// category is derived from the name and declared content type.
func (s *AccountStore) UploadFile(ctx context.Context, req remote.UploadRequest) (cm.FileRecord, error) {
	f, err := s.store(ctx, req)
	if err != nil {
		return cm.FileRecord{}, err
	}
	return f.Record(s.url(ctx, f)), nil
}

func (s *AccountStore) store(ctx context.Context, req remote.UploadRequest) (*models.File, error) {
	f, err := s.upload(ctx, req)
	if err != nil {
		return nil, remote.AsUploadError(req.File.Name(), err)
	}

	if err := s.b.index.Put(f.AccountID, f.ID, f.Name); err != nil {
		s.b.log.Warn(ctx, "index name", "id", f.ID, "error", err)
	}

	s.b.log.Info(ctx, "file stored", "id", f.ID, "account", f.AccountID, "size", f.SizeBytes, "category", f.Category)
	return f, nil
}

func (s *AccountStore) upload(ctx context.Context, req remote.UploadRequest) (*models.File, error) {
	name := strings.TrimSpace(req.File.Name())
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", common.ErrInvalidRecord)
	}
	if req.AccountID != "" && req.AccountID != s.session.AccountID {
		return nil, fmt.Errorf("%w: account %s", common.ErrUnauthorized, req.AccountID)
	}
	if limit := s.b.cfg.MaxUploadBytes; limit > 0 && req.File.Size() > limit {
		return nil, fmt.Errorf("%w: %d > %d bytes", common.ErrOversize, req.File.Size(), limit)
	}

	owner := req.OwnerID
	if owner == "" {
		owner = s.session.OwnerID
	}
	contentType := req.File.ContentType()
	if contentType == "" {
		contentType = defaultContentType
	}

	body, err := req.File.Open()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer body.Close()

	now := s.b.now().UTC()
	key := blobs.NewKey(s.session.AccountID, now)
	dr := cryptox.NewDigestReader(netx.NewProgressReader(body, req.Progress))

	if err := s.b.blobs.Put(ctx, key, dr, req.File.Size(), contentType); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	cls := classify.ClassifyWithMIME(name, contentType)
	f := &models.File{
		ID:         uuid.NewString(),
		AccountID:  s.session.AccountID,
		OwnerID:    owner,
		OwnerName:  s.session.OwnerName,
		Name:       name,
		MIMEType:   contentType,
		Category:   cls.Category,
		Extension:  cls.Extension,
		SizeBytes:  dr.Count(),
		Digest:     dr.Sum(),
		StorageKey: key,
		CreatedAt:  now,
	}

	err = dbx.WithTx(ctx, s.b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.b.ensureAccount(ctx, tx, f.AccountID, f.OwnerName); err != nil {
			return err
		}
		return s.b.files(tx).Insert(ctx, f)
	})
	if err != nil {
		if derr := s.b.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.b.log.Warn(ctx, "orphaned blob", "key", key, "error", derr)
		}
		return nil, fmt.Errorf("record file: %w", err)
	}

	return f, nil
}

// Get returns one file of the account.
func (s *AccountStore) Get(ctx context.Context, id string) (cm.FileRecord, error) {
	f, err := s.b.files(s.b.db).Get(ctx, s.session.AccountID, id)
	if err != nil {
		return cm.FileRecord{}, err
	}
	return f.Record(s.url(ctx, f)), nil
}

// RenameFile renames one file of the account and reclassifies it. A new
// name without an extension keeps the current one.
func (s *AccountStore) RenameFile(ctx context.Context, id, name string) (cm.FileRecord, error) {
	f, err := s.rename(ctx, id, name)
	if err != nil {
		return cm.FileRecord{}, err
	}
	return f.Record(s.url(ctx, f)), nil
}

func (s *AccountStore) rename(ctx context.Context, id, name string) (*models.File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", common.ErrInvalidRecord)
	}

	repo := s.b.files(s.b.db)
	f, err := repo.Get(ctx, s.session.AccountID, id)
	if err != nil {
		return nil, err
	}

	if classify.Extension(name) == "" && f.Extension != "" {
		name += "." + f.Extension
	}
	cls := classify.ClassifyWithMIME(name, f.MIMEType)
	f.Name, f.Category, f.Extension = name, cls.Category, cls.Extension

	if err := repo.Rename(ctx, f); err != nil {
		return nil, err
	}
	if err := s.b.index.Put(f.AccountID, f.ID, f.Name); err != nil {
		s.b.log.Warn(ctx, "index name", "id", f.ID, "error", err)
	}

	s.b.log.Info(ctx, "file renamed", "id", f.ID, "account", f.AccountID, "category", f.Category)
	return f, nil
}

// DeleteFile removes the record, its index entry and its content. Once the
// record is gone a failure to drop the blob is logged, not returned.
func (s *AccountStore) DeleteFile(ctx context.Context, id string) error {
	repo := s.b.files(s.b.db)
	f, err := repo.Get(ctx, s.session.AccountID, id)
	if err != nil {
		return err
	}

	if err := repo.Delete(ctx, f.AccountID, f.ID); err != nil {
		return err
	}
	if err := s.b.index.Delete(f.ID); err != nil {
		s.b.log.Warn(ctx, "unindex name", "id", f.ID, "error", err)
	}
	if err := s.b.blobs.Delete(context.WithoutCancel(ctx), f.StorageKey); err != nil {
		s.b.log.Warn(ctx, "orphaned blob", "key", f.StorageKey, "error", err)
	}

	s.b.log.Info(ctx, "file deleted", "id", f.ID, "account", f.AccountID)
	return nil
}

// OpenFile opens the stored content of one file of the account.
func (s *AccountStore) OpenFile(ctx context.Context, id string) (remote.Content, error) {
	f, err := s.b.files(s.b.db).Get(ctx, s.session.AccountID, id)
	if err != nil {
		return remote.Content{}, err
	}

	obj, err := s.b.blobs.Get(ctx, f.StorageKey)
	if err != nil {
		return remote.Content{}, fmt.Errorf("open blob: %w", err)
	}
	return remote.Content{Name: f.Name, Body: obj.Body, Size: obj.Size, ContentType: obj.ContentType}, nil
}
