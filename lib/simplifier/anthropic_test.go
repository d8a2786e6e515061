package simplifier

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

// wrapErr hides the wrapped error from formatting. A zero value
// anthropic.Error panics when its message is rendered, so the chain must be
// walkable without calling Error on it.
type wrapErr struct{ inner error }

func (w wrapErr) Error() string { return "call failed" }
func (w wrapErr) Unwrap() error { return w.inner }

func TestRetryableAPIError(t *testing.T) {
	type args struct {
		err error
	}
	tests := []struct {
		name string
		args args
		want bool
	}{
		{
			name: "nil",
			args: args{err: nil},
			want: false,
		},
		{
			name: "rate limited",
			args: args{err: &anthropic.Error{StatusCode: 429}},
			want: true,
		},
		{
			name: "server error",
			args: args{err: &anthropic.Error{StatusCode: 500}},
			want: true,
		},
		{
			name: "service unavailable",
			args: args{err: &anthropic.Error{StatusCode: 503}},
			want: true,
		},
		{
			name: "bad request",
			args: args{err: &anthropic.Error{StatusCode: 400}},
			want: false,
		},
		{
			name: "unauthorized",
			args: args{err: &anthropic.Error{StatusCode: 401}},
			want: false,
		},
		{
			name: "wrapped api error",
			args: args{err: wrapErr{inner: &anthropic.Error{StatusCode: 529}}},
			want: true,
		},
		{
			name: "network timeout",
			args: args{err: timeoutErr{}},
			want: true,
		},
		{
			name: "context canceled",
			args: args{err: context.Canceled},
			want: false,
		},
		{
			name: "context deadline exceeded",
			args: args{err: context.DeadlineExceeded},
			want: false,
		},
		{
			name: "unclassified",
			args: args{err: errors.New("boom")},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryableAPIError(tt.args.err))
		})
	}
}

func TestNewAnthropicEnvKeySuffices(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key-from-env")

	client, err := NewAnthropic("", "")
	assert.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, defaultAnthropicModel, string(client.model))
}

func TestNewAnthropicModelOverride(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	client, err := NewAnthropic("claude-sonnet-4-5", "test-key")
	assert.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", string(client.model))
}
