package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/backend/models"
	cm "github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/remote"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/dmitrijs2005/cloudkeeper/internal/logging"
	"github.com/google/uuid"
)

// PendingUploadTTL bounds how long an upload session waits for its content.
const PendingUploadTTL = time.Hour

// Gateway exposes a Backend over the REST protocol spoken by
// remote.HTTPStore.
type Gateway struct {
	b   *Backend
	log logging.Logger

	mu      sync.Mutex
	pending map[string]*pendingUpload
}

// pendingUpload accepts one body; receiving guards concurrent PUTs.
type pendingUpload struct {
	store     *AccountStore
	req       remote.CreateUploadRequest
	file      *models.File
	receiving bool
	created   time.Time
}

func NewGateway(b *Backend) *Gateway {
	return &Gateway{
		b:       b,
		log:     b.log.With("module", "gateway"),
		pending: make(map[string]*pendingUpload),
	}
}

func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", g.health)
	mux.HandleFunc("GET /v1/files", g.authed(g.listFiles))
	mux.HandleFunc("GET /v1/files/{id}", g.authed(g.getFile))
	mux.HandleFunc("PATCH /v1/files/{id}", g.authed(g.renameFile))
	mux.HandleFunc("DELETE /v1/files/{id}", g.authed(g.deleteFile))
	mux.HandleFunc("GET /v1/files/{id}/content", g.authed(g.fileContent))
	mux.HandleFunc("GET /v1/usage", g.authed(g.usage))
	mux.HandleFunc("POST /v1/uploads", g.authed(g.createUpload))
	mux.HandleFunc("PUT /v1/uploads/{id}/content", g.putContent)
	mux.HandleFunc("POST /v1/uploads/{id}/complete", g.authed(g.completeUpload))
	mux.HandleFunc("GET /v1/blobs/{key...}", g.blob)

	return g.logging(mux)
}

type wrappedWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *wrappedWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.statusCode = statusCode
}

func (g *Gateway) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &wrappedWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		g.log.Debug(r.Context(), "request", "status", wrapped.statusCode, "method", r.Method,
			"path", r.URL.Path, "duration", time.Since(start))
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, s *AccountStore)

func (g *Gateway) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			g.writeError(w, r, fmt.Errorf("%w: missing bearer token", common.ErrUnauthorized))
			return
		}

		s, err := g.b.ForSession(token)
		if err != nil {
			g.writeError(w, r, err)
			return
		}
		next(w, r, s)
	}
}

func (g *Gateway) health(w http.ResponseWriter, r *http.Request) {
	if err := g.b.Health(r.Context()); err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseListQuery(r *http.Request) remote.ListQuery {
	v := r.URL.Query()
	q := remote.ListQuery{
		SearchText: v.Get("search"),
		Sort:       v.Get("sort"),
	}
	for _, raw := range v["category"] {
		if c := cm.Category(raw); c.Valid() {
			q.Categories = append(q.Categories, c)
		}
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil && n > 0 {
		q.Limit = n
	}
	return q
}

func (g *Gateway) listFiles(w http.ResponseWriter, r *http.Request, s *AccountStore) {
	resp, err := s.Documents(r.Context(), parseListQuery(r))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) getFile(w http.ResponseWriter, r *http.Request, s *AccountStore) {
	f, err := g.b.files(g.b.db).Get(r.Context(), s.session.AccountID, r.PathValue("id"))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.document(r.Context(), f))
}

func (g *Gateway) renameFile(w http.ResponseWriter, r *http.Request, s *AccountStore) {
	var req remote.RenameRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		g.writeError(w, r, fmt.Errorf("%w: %v", common.ErrInvalidRecord, err))
		return
	}

	f, err := s.rename(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.document(r.Context(), f))
}

func (g *Gateway) deleteFile(w http.ResponseWriter, r *http.Request, s *AccountStore) {
	if err := s.DeleteFile(r.Context(), r.PathValue("id")); err != nil {
		g.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) fileContent(w http.ResponseWriter, r *http.Request, s *AccountStore) {
	c, err := s.OpenFile(r.Context(), r.PathValue("id"))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	defer c.Body.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": c.Name}))
	g.copyBlob(w, r, c.Body, c.Size, c.ContentType)
}

func (g *Gateway) usage(w http.ResponseWriter, r *http.Request, s *AccountStore) {
	u, err := s.UsageTotals(r.Context())
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	resp := remote.UsageResponse{
		ByCategory:       make(map[string]int64, len(u.ByCategory)),
		LatestByCategory: make(map[string]time.Time, len(u.LatestByCategory)),
		TotalBytes:       u.TotalBytes,
		LimitBytes:       u.AccountLimitBytes,
	}
	for c, n := range u.ByCategory {
		resp.ByCategory[string(c)] = n
	}
	for c, t := range u.LatestByCategory {
		resp.LatestByCategory[string(c)] = t
	}
	writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) createUpload(w http.ResponseWriter, r *http.Request, s *AccountStore) {
	var req remote.CreateUploadRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		g.writeError(w, r, fmt.Errorf("%w: %v", common.ErrInvalidRecord, err))
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Size < 0 {
		g.writeError(w, r, fmt.Errorf("%w: name and size are required", common.ErrInvalidRecord))
		return
	}
	if req.AccountID != "" && req.AccountID != s.session.AccountID {
		g.writeError(w, r, fmt.Errorf("%w: account %s", common.ErrUnauthorized, req.AccountID))
		return
	}
	if limit := g.b.cfg.MaxUploadBytes; limit > 0 && req.Size > limit {
		g.writeError(w, r, fmt.Errorf("%w: %d > %d bytes", common.ErrOversize, req.Size, limit))
		return
	}

	id := uuid.NewString()
	now := g.b.now()

	g.mu.Lock()
	for k, p := range g.pending {
		if now.Sub(p.created) > PendingUploadTTL {
			delete(g.pending, k)
		}
	}
	g.pending[id] = &pendingUpload{store: s, req: req, created: now}
	g.mu.Unlock()

	writeJSON(w, http.StatusCreated, remote.CreateUploadResponse{
		UploadID: id,
		URL:      "/v1/uploads/" + id + "/content",
	})
}

// requestFile adapts an upload request body to remote.LocalFile.
type requestFile struct {
	name        string
	size        int64
	contentType string
	body        io.ReadCloser
}

func (f *requestFile) Name() string                 { return f.name }
func (f *requestFile) Size() int64                  { return f.size }
func (f *requestFile) ContentType() string          { return f.contentType }
func (f *requestFile) Open() (io.ReadCloser, error) { return f.body, nil }

// putContent receives the bytes of an upload session. The unguessable
// session id authorizes the request, as a presigned URL would.
func (g *Gateway) putContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	g.mu.Lock()
	p, ok := g.pending[id]
	busy := ok && (p.file != nil || p.receiving)
	if ok && !busy {
		p.receiving = true
	}
	g.mu.Unlock()
	switch {
	case !ok:
		g.writeError(w, r, fmt.Errorf("%w: upload %s", common.ErrNotFound, id))
		return
	case busy:
		writeJSON(w, http.StatusConflict, remote.ErrorResponse{Error: "upload already has content"})
		return
	}

	body := r.Body
	if limit := g.b.cfg.MaxUploadBytes; limit > 0 {
		body = http.MaxBytesReader(w, body, limit)
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = p.req.ContentType
	}

	f, err := p.store.store(r.Context(), remote.UploadRequest{
		File: &requestFile{
			name:        p.req.Name,
			size:        r.ContentLength,
			contentType: contentType,
			body:        body,
		},
		OwnerID:   p.req.OwnerID,
		AccountID: p.req.AccountID,
	})
	g.mu.Lock()
	p.receiving = false
	if err == nil {
		p.file = f
	}
	g.mu.Unlock()
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (g *Gateway) completeUpload(w http.ResponseWriter, r *http.Request, s *AccountStore) {
	id := r.PathValue("id")

	g.mu.Lock()
	p, ok := g.pending[id]
	if ok && p.store.session.AccountID != s.session.AccountID {
		ok = false
	}
	var f *models.File
	if ok {
		f = p.file
		if f != nil {
			delete(g.pending, id)
		}
	}
	g.mu.Unlock()

	switch {
	case !ok:
		g.writeError(w, r, fmt.Errorf("%w: upload %s", common.ErrNotFound, id))
	case f == nil:
		writeJSON(w, http.StatusConflict, remote.ErrorResponse{Error: "upload has no content yet"})
	default:
		writeJSON(w, http.StatusOK, s.document(r.Context(), f))
	}
}

func (g *Gateway) blob(w http.ResponseWriter, r *http.Request) {
	obj, err := g.b.Blob(r.Context(), r.PathValue("key"))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	defer obj.Body.Close()

	g.copyBlob(w, r, obj.Body, obj.Size, obj.ContentType)
}

func (g *Gateway) copyBlob(w http.ResponseWriter, r *http.Request, body io.Reader, size int64, contentType string) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		g.log.Warn(r.Context(), "blob copy", "error", err)
	}
}

func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrOversize), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrInvalidRecord):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, common.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= 500 {
		g.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, code, remote.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
