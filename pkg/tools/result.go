package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/entrhq/shipyard/pkg/poll"
)

// Status is the wire value of the envelope's status field.
type Status string

const (
	StatusSuccess Status = "success"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// Envelope is the uniform shape of every tool response.
type Envelope struct {
	Status          Status  `json:"status"`
	DurationSeconds float64 `json:"duration_seconds"`
	Error           string  `json:"error,omitempty"`
}

// Result is an Envelope plus workflow-specific fields (app_url, repo_name,
// deployed_url, ...). Fields are flattened next to the envelope keys when
// marshalled; envelope keys always win.
type Result struct {
	Envelope
	Fields map[string]interface{}
}

// Success builds a success result.
func Success(elapsed time.Duration) *Result {
	return &Result{Envelope: Envelope{Status: StatusSuccess, DurationSeconds: seconds(elapsed)}}
}

// Errorf builds an error result with a formatted message.
func Errorf(elapsed time.Duration, format string, args ...interface{}) *Result {
	return &Result{Envelope: Envelope{
		Status:          StatusError,
		DurationSeconds: seconds(elapsed),
		Error:           fmt.Sprintf(format, args...),
	}}
}

// FromError maps an error to a result. poll.ErrTimeout maps to timeout,
// everything else to error.
func FromError(err error, elapsed time.Duration) *Result {
	if err == nil {
		return Success(elapsed)
	}
	status := StatusError
	if errors.Is(err, poll.ErrTimeout) {
		status = StatusTimeout
	}
	return &Result{Envelope: Envelope{
		Status:          status,
		DurationSeconds: seconds(elapsed),
		Error:           err.Error(),
	}}
}

// FromOutcome maps a poll outcome onto the envelope:
// Success -> success, Timeout -> timeout, Failed -> error.
func FromOutcome[T any](o poll.Outcome[T]) *Result {
	r := &Result{Envelope: Envelope{DurationSeconds: seconds(o.Elapsed())}}
	switch o.Kind() {
	case poll.KindSuccess:
		r.Status = StatusSuccess
	case poll.KindTimeout:
		r.Status = StatusTimeout
		r.Error = o.Err().Error()
	default:
		r.Status = StatusError
		if err := o.Err(); err != nil {
			r.Error = err.Error()
		}
	}
	return r
}

// With sets a workflow field and returns r for chaining.
func (r *Result) With(key string, value interface{}) *Result {
	if r.Fields == nil {
		r.Fields = make(map[string]interface{})
	}
	r.Fields[key] = value
	return r
}

// Field returns a workflow field, nil when unset.
func (r *Result) Field(key string) interface{} {
	return r.Fields[key]
}

// StringField returns a workflow field as a string, empty when unset or not a string.
func (r *Result) StringField(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// OK reports whether the status is success.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// WithDuration replaces the duration with elapsed.
func (r *Result) WithDuration(elapsed time.Duration) *Result {
	r.DurationSeconds = seconds(elapsed)
	return r
}

// MarshalJSON flattens Fields next to the envelope keys.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["status"] = r.Status
	out["duration_seconds"] = r.DurationSeconds
	if r.Error != "" {
		out["error"] = r.Error
	} else {
		delete(out, "error")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON splits envelope keys from workflow fields.
func (r *Result) UnmarshalJSON(data []byte) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	delete(fields, "status")
	delete(fields, "duration_seconds")
	delete(fields, "error")
	r.Envelope = env
	r.Fields = nil
	if len(fields) > 0 {
		r.Fields = fields
	}
	return nil
}

// JSON renders the result indented with two spaces.
func (r *Result) JSON() string {
	if r == nil {
		return "null"
	}
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf(`{"status": "error", "duration_seconds": 0, "error": %q}`, err.Error())
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}

// seconds rounds to millisecond precision.
func seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
