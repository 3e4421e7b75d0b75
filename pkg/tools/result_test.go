package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/shipyard/pkg/poll"
)

func runOnce(obs poll.Observation[string]) poll.Outcome[string] {
	cfg := poll.MustConfig(0, time.Millisecond, 0)
	return poll.Run(context.Background(), cfg, func(context.Context) poll.Observation[string] {
		return obs
	})
}

func TestFromOutcome(t *testing.T) {
	tests := []struct {
		name      string
		obs       poll.Observation[string]
		status    Status
		wantError bool
	}{
		{"done maps to success", poll.Done("https://x"), StatusSuccess, false},
		{"pending at deadline maps to timeout", poll.Pending[string](), StatusTimeout, true},
		{"probe failure maps to error", poll.ProbeFailed[string](errors.New("page closed")), StatusError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromOutcome(runOnce(tt.obs))
			assert.Equal(t, tt.status, r.Status)
			if tt.wantError {
				assert.NotEmpty(t, r.Error)
			} else {
				assert.Empty(t, r.Error)
			}
		})
	}
}

func TestEnvelopeWireShape(t *testing.T) {
	r := Success(1500 * time.Millisecond).With("app_url", "https://aistudio.google.com/apps/drive/1")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(r.JSON()), &decoded))

	assert.Equal(t, "success", decoded["status"])
	assert.Equal(t, 1.5, decoded["duration_seconds"])
	assert.Equal(t, "https://aistudio.google.com/apps/drive/1", decoded["app_url"])
	_, hasError := decoded["error"]
	assert.False(t, hasError, "error key must be omitted on success")
}

func TestEnvelopeKeysWinOverFields(t *testing.T) {
	r := Errorf(time.Second, "boom").With("status", "success").With("error", "")

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "error", decoded["status"])
	assert.Equal(t, "boom", decoded["error"])
}

func TestResultRoundTripKeepsFields(t *testing.T) {
	in := Success(2*time.Second).With("repo_name", "demo")
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Result
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, StatusSuccess, out.Status)
	assert.Equal(t, 2.0, out.DurationSeconds)
	assert.Equal(t, "demo", out.StringField("repo_name"))
}

func TestFromError(t *testing.T) {
	timeout := FromError(fmt.Errorf("publish: %w", poll.ErrTimeout), time.Minute)
	assert.Equal(t, StatusTimeout, timeout.Status)

	failure := FromError(errors.New("not authenticated"), 0)
	assert.Equal(t, StatusError, failure.Status)
	assert.Equal(t, "not authenticated", failure.Error)

	assert.True(t, FromError(nil, time.Second).OK())
}

func TestUnmarshalArgs(t *testing.T) {
	var args struct {
		AppURL string `json:"app_url"`
	}
	require.NoError(t, UnmarshalArgs(nil, &args))
	require.NoError(t, UnmarshalArgs([]byte(`{"app_url":"u"}`), &args))
	assert.Equal(t, "u", args.AppURL)
	assert.Error(t, UnmarshalArgs([]byte(`{`), &args))
}

func TestResultKeepsURLCharacters(t *testing.T) {
	nested := Success(0).With("deployed_url", "https://app.a.run.app/?a=1&b=<2>")
	r := Success(time.Second).
		With("app_url", "https://aistudio.google.com/apps/drive/1?a=b&c=d").
		With("deployment", nested)

	data, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"app_url":"https://aistudio.google.com/apps/drive/1?a=b&c=d"`)
	assert.NotEqual(t, byte('\n'), data[len(data)-1])

	text := r.JSON()
	assert.Contains(t, text, "?a=b&c=d")
	assert.Contains(t, text, "?a=1&b=<2>")
	assert.NotContains(t, text, `\u0026`)
	assert.NotContains(t, text, `\u003c`)
}
