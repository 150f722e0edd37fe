package ucassist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFetchFailures(t *testing.T) {
	f := &Fetcher{cfg: testConfig()}
	subject := "https://ucassist.org/details?RecordID=1"

	tests := []struct {
		name string
		in   error
		want error
	}{
		{
			name: "deadline exceeded means the page never became ready",
			in:   context.DeadlineExceeded,
			want: ErrFetchTimeout,
		},
		{
			name: "wrapped deadline is still a timeout",
			in:   fmt.Errorf("run: %w", context.DeadlineExceeded),
			want: ErrFetchTimeout,
		},
		{
			name: "anything else is a navigation failure",
			in:   errors.New("net::ERR_NAME_NOT_RESOLVED"),
			want: ErrNavigationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.classify(tt.in, subject)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), subject)
		})
	}
}

func TestClassifyPassesCancellationThrough(t *testing.T) {
	f := &Fetcher{cfg: testConfig()}

	got := f.classify(context.Canceled, "https://ucassist.org/details?RecordID=1")
	assert.Equal(t, context.Canceled, got)
	assert.NotErrorIs(t, got, ErrFetchTimeout)
	assert.NotErrorIs(t, got, ErrNavigationFailed)
}
