package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformed is returned when an encoded token cannot be decoded back
// into a request context.
var ErrMalformed = errors.New("malformed request token")

type Permission string

const (
	ReadOnly  Permission = "read_only"
	ReadWrite Permission = "read_write"
)

func (p Permission) Valid() bool {
	return p == ReadOnly || p == ReadWrite
}

// GroupName derives the effective governance group for a tenant. Read-only
// access maps to a separate group with an "ro" suffix.
func (p Permission) GroupName(tenantName string) string {
	if p == ReadOnly {
		return tenantName + "ro"
	}
	return tenantName
}

// Display returns the human-readable form used in chat messages.
func (p Permission) Display() string {
	if p == ReadOnly {
		return "Read Only"
	}
	return "Read/Write"
}

// Context is the request state threaded through one approval cycle. It is
// never stored server-side; the encoded string is the record.
type Context struct {
	Requester  string
	TenantName string
	Permission Permission
	CreatedAt  int64
}

// New builds a context stamped with the current time.
func New(requester, tenantName string, perm Permission) Context {
	return Context{
		Requester:  requester,
		TenantName: tenantName,
		Permission: perm,
		CreatedAt:  time.Now().Unix(),
	}
}

// wire is the packed transport form. Short keys keep the encoded value well
// under Slack's ~2000 byte cap on interactive element values.
type wire struct {
	U  string `json:"u"`
	T  string `json:"t"`
	P  string `json:"p"`
	TS int64  `json:"ts"`
}

const (
	markerReadOnly  = "ro"
	markerReadWrite = "rw"
)

// Encode serializes a context to a URL-safe opaque string. The token is not
// encrypted: it carries only data already visible in the rendered message.
func Encode(c Context) (string, error) {
	w := wire{U: c.Requester, T: c.TenantName, TS: c.CreatedAt}
	switch c.Permission {
	case ReadOnly:
		w.P = markerReadOnly
	case ReadWrite:
		w.P = markerReadWrite
	default:
		return "", fmt.Errorf("unknown permission %q", c.Permission)
	}

	data, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("marshal token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode reverses Encode. All structural failures wrap ErrMalformed. The
// embedded timestamp is surfaced but never checked for freshness here; replay
// protection belongs to the webhook signature layer.
func Decode(encoded string) (Context, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return Context{}, fmt.Errorf("%w: invalid encoding", ErrMalformed)
	}

	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return Context{}, fmt.Errorf("%w: invalid payload", ErrMalformed)
	}
	if w.U == "" || w.T == "" || w.TS == 0 {
		return Context{}, fmt.Errorf("%w: missing required fields", ErrMalformed)
	}

	c := Context{Requester: w.U, TenantName: w.T, CreatedAt: w.TS}
	switch w.P {
	case markerReadOnly:
		c.Permission = ReadOnly
	case markerReadWrite:
		c.Permission = ReadWrite
	default:
		return Context{}, fmt.Errorf("%w: unknown permission marker %q", ErrMalformed, w.P)
	}
	return c, nil
}
