package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/dmitrijs2005/cloudkeeper/internal/logging"
	"github.com/dmitrijs2005/cloudkeeper/internal/netx"
	"github.com/samber/lo"
)

// Wire shapes of the gateway protocol.
type (
	ListResponse struct {
		Total     int        `json:"total"`
		Documents []Document `json:"documents"`
	}

	UsageResponse struct {
		ByCategory       map[string]int64     `json:"byCategory"`
		LatestByCategory map[string]time.Time `json:"latestByCategory,omitempty"`
		TotalBytes       int64                `json:"totalBytes"`
		LimitBytes       int64                `json:"limitBytes"`
	}

	CreateUploadRequest struct {
		Name        string `json:"name"`
		Size        int64  `json:"size"`
		ContentType string `json:"contentType"`
		OwnerID     string `json:"ownerId"`
		AccountID   string `json:"accountId"`
	}

	CreateUploadResponse struct {
		UploadID string `json:"uploadId"`
		URL      string `json:"url"`
	}

	RenameRequest struct {
		Name string `json:"name"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)

// HTTPStore is a RemoteStore backed by the REST gateway of the BaaS.
type HTTPStore struct {
	baseURL string
	token   string
	hc      *http.Client
	log     logging.Logger
}

type HTTPOption func(*HTTPStore)

func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(s *HTTPStore) { s.hc = hc }
}

func WithLogger(l logging.Logger) HTTPOption {
	return func(s *HTTPStore) { s.log = logging.OrDiscard(l) }
}

func NewHTTPStore(baseURL, token string, opts ...HTTPOption) *HTTPStore {
	s := &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		hc:      &http.Client{Timeout: 60 * time.Second},
		log:     logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetToken replaces the bearer session token.
func (s *HTTPStore) SetToken(token string) { s.token = token }

func (s *HTTPStore) ListFiles(ctx context.Context, q ListQuery) (FileList, error) {
	v := url.Values{}
	for _, c := range q.Categories {
		v.Add("category", string(c))
	}
	if q.SearchText != "" {
		v.Set("search", q.SearchText)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}

	var resp ListResponse
	if err := s.do(ctx, http.MethodGet, "/v1/files?"+v.Encode(), nil, &resp); err != nil {
		return FileList{}, err
	}

	files := make([]models.FileRecord, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		f, err := DecodeDocument(d)
		if err != nil {
			s.log.Warn(ctx, "skipping invalid document", "id", d.str("$id", "id"), "error", err)
			continue
		}
		files = append(files, f)
	}
	return FileList{Total: resp.Total, Files: files}, nil
}

func (s *HTTPStore) UsageTotals(ctx context.Context) (UsageTotals, error) {
	var resp UsageResponse
	if err := s.do(ctx, http.MethodGet, "/v1/usage", nil, &resp); err != nil {
		return UsageTotals{}, err
	}

	out := UsageTotals{
		ByCategory:        make(map[models.Category]int64, len(resp.ByCategory)),
		LatestByCategory:  make(map[models.Category]time.Time, len(resp.LatestByCategory)),
		TotalBytes:        resp.TotalBytes,
		AccountLimitBytes: resp.LimitBytes,
	}
	for k, b := range resp.ByCategory {
		if c := models.Category(k); c.Valid() {
			out.ByCategory[c] = b
		}
	}
	for k, t := range resp.LatestByCategory {
		if c := models.Category(k); c.Valid() {
			out.LatestByCategory[c] = t
		}
	}
	return out, nil
}

// UploadFile opens an upload session, streams the payload to the returned
// presigned URL and confirms the upload. Every failure is an *UploadError.
func (s *HTTPStore) UploadFile(ctx context.Context, req UploadRequest) (models.FileRecord, error) {
	name := req.File.Name()

	var session CreateUploadResponse
	err := s.do(ctx, http.MethodPost, "/v1/uploads", CreateUploadRequest{
		Name:        name,
		Size:        req.File.Size(),
		ContentType: req.File.ContentType(),
		OwnerID:     req.OwnerID,
		AccountID:   req.AccountID,
	}, &session)
	if err != nil {
		return models.FileRecord{}, AsUploadError(name, fmt.Errorf("create session: %w", err))
	}

	body, err := req.File.Open()
	if err != nil {
		return models.FileRecord{}, AsUploadError(name, fmt.Errorf("open: %w", err))
	}
	defer body.Close()

	if err := netx.UploadToPresignedURL(ctx, s.hc, s.resolve(session.URL), body, req.File.Size(), req.File.ContentType(), req.Progress); err != nil {
		return models.FileRecord{}, AsUploadError(name, fmt.Errorf("transfer: %w", err))
	}

	var doc Document
	if err := s.do(ctx, http.MethodPost, "/v1/uploads/"+url.PathEscape(session.UploadID)+"/complete", nil, &doc); err != nil {
		return models.FileRecord{}, AsUploadError(name, fmt.Errorf("complete: %w", err))
	}

	rec, err := DecodeDocument(doc)
	if err != nil {
		return models.FileRecord{}, AsUploadError(name, err)
	}
	return rec, nil
}

// Health checks that the gateway answers.
func (s *HTTPStore) Health(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, "/v1/health", nil, nil)
}

func (s *HTTPStore) resolve(u string) string {
	if strings.HasPrefix(u, "/") {
		return s.baseURL + u
	}
	return u
}

// RenameFile renames a file through the gateway.
func (s *HTTPStore) RenameFile(ctx context.Context, id, name string) (models.FileRecord, error) {
	var doc Document
	if err := s.do(ctx, http.MethodPatch, "/v1/files/"+url.PathEscape(id), RenameRequest{Name: name}, &doc); err != nil {
		return models.FileRecord{}, err
	}
	return DecodeDocument(doc)
}

func (s *HTTPStore) DeleteFile(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/v1/files/"+url.PathEscape(id), nil, nil)
}

// OpenFile streams the content of a file. Callers close the body.
func (s *HTTPStore) OpenFile(ctx context.Context, id string) (Content, error) {
	resp, err := s.send(ctx, http.MethodGet, "/v1/files/"+url.PathEscape(id)+"/content", nil)
	if err != nil {
		return Content{}, err
	}

	c := Content{
		Body:        resp.Body,
		Size:        resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		c.Name = params["filename"]
	}
	return c, nil
}

// send performs a request and returns the response of a 2xx status; any
// other status is mapped to an error and the body is closed.
func (s *HTTPStore) send(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+s.token)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		var e ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)
		return nil, mapStatus(resp.StatusCode, e.Error)
	}
	return resp, nil
}

func (s *HTTPStore) do(ctx context.Context, method, path string, in, out any) error {
	resp, err := s.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func mapStatus(code int, msg string) error {
	detail := lo.Ternary(msg == "", http.StatusText(code), msg)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, detail)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, detail)
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", common.ErrInvalidRecord, detail)
	case code >= 500:
		return fmt.Errorf("%w: %s", common.ErrUnavailable, detail)
	default:
		return fmt.Errorf("http %d: %s", code, detail)
	}
}

func mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
}
