package remote

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cloudkeeper/internal/common"
)

// UploadError reports a transfer the remote store rejected or failed to
// complete.
type UploadError struct {
	Name string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q: %v", e.Name, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

func (e *UploadError) Is(target error) bool { return target == common.ErrUpload }

// AsUploadError wraps err unless it already is an UploadError.
func AsUploadError(name string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UploadError
	if errors.As(err, &ue) {
		return err
	}
	return &UploadError{Name: name, Err: err}
}

// QueryError reports a failed search request.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Is(target error) bool { return target == common.ErrQuery }
