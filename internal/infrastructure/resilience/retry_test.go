package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoonledger/lagoon/internal/shared/errs"
)

func TestDoRetriesVersionConflicts(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		errs     []error // per-attempt result, nil = success
		wantErr  error
		wantRuns int
	}{
		{
			name:     "first attempt succeeds",
			policy:   DefaultPolicy(),
			errs:     []error{nil},
			wantRuns: 1,
		},
		{
			name:     "conflict then success",
			policy:   Policy{MaxAttempts: 3, BaseDelay: time.Microsecond},
			errs:     []error{errs.VersionConflict("0x01", 1, 2), nil},
			wantRuns: 2,
		},
		{
			name:     "non-retryable error returns immediately",
			policy:   Policy{MaxAttempts: 5, BaseDelay: time.Microsecond},
			errs:     []error{errs.NotFound("0x01")},
			wantErr:  errs.ErrNotFound,
			wantRuns: 1,
		},
		{
			name:   "exhausted attempts",
			policy: Policy{MaxAttempts: 3, BaseDelay: time.Microsecond},
			errs: []error{
				errs.VersionConflict("0x01", 1, 2),
				errs.VersionConflict("0x01", 2, 3),
				errs.VersionConflict("0x01", 3, 4),
			},
			wantErr:  ErrAttemptsExhausted,
			wantRuns: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := 0
			err := Do(context.Background(), tt.policy, func() error {
				result := tt.errs[runs]
				runs++
				return result
			})
			assert.Equal(t, tt.wantRuns, runs)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestDoExhaustedKeepsLastError(t *testing.T) {
	err := Do(context.Background(), Policy{MaxAttempts: 2, BaseDelay: time.Microsecond}, func() error {
		return errs.VersionConflict("0x01", 1, 2)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.ErrorIs(t, err, errs.ErrVersionConflict)
}

func TestDoRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, Policy{MaxAttempts: 3, BaseDelay: time.Minute}, func() error {
		return errs.VersionConflict("0x01", 1, 2)
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoCustomRetryable(t *testing.T) {
	sentinel := errors.New("flaky")
	runs := 0
	err := Do(context.Background(), Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Microsecond,
		Retryable:   func(err error) bool { return errors.Is(err, sentinel) },
	}, func() error {
		runs++
		if runs < 3 {
			return sentinel
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, runs)
}
