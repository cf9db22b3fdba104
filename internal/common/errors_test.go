package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinels_AreDistinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidRecord, ErrUnauthorized, ErrUnavailable,
		ErrInvalidToken, ErrTokenExpired, ErrOversize, ErrUpload, ErrQuery,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				require.False(t, errors.Is(a, b), "%v must not match %v", a, b)
			}
		}
	}
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	err := fmt.Errorf("list files: %w", ErrUnavailable)
	require.ErrorIs(t, err, ErrUnavailable)
}
