package token

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, perm := range []Permission{ReadOnly, ReadWrite} {
		c := New("testuser", "test-tenant", perm)
		require.NotZero(t, c.CreatedAt)

		encoded, err := Encode(c)
		require.NoError(t, err)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		require.Equal(t, "testuser", decoded.Requester)
		require.Equal(t, "test-tenant", decoded.TenantName)
		require.Equal(t, perm, decoded.Permission)
		require.Equal(t, c.CreatedAt, decoded.CreatedAt)
	}
}

func TestEncodeUnknownPermission(t *testing.T) {
	_, err := Encode(Context{Requester: "u", TenantName: "t", Permission: "admin", CreatedAt: 1})
	require.Error(t, err)
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"not base64":       "!!!not-base64!!!",
		"not json":         base64.URLEncoding.EncodeToString([]byte("not json")),
		"missing user":     base64.URLEncoding.EncodeToString([]byte(`{"t":"x","p":"ro","ts":1}`)),
		"missing tenant":   base64.URLEncoding.EncodeToString([]byte(`{"u":"x","p":"ro","ts":1}`)),
		"missing ts":       base64.URLEncoding.EncodeToString([]byte(`{"u":"x","t":"y","p":"ro"}`)),
		"unknown marker":   base64.URLEncoding.EncodeToString([]byte(`{"u":"x","t":"y","p":"rx","ts":1}`)),
		"empty string":     "",
		"json wrong shape": base64.URLEncoding.EncodeToString([]byte(`[1,2,3]`)),
	}

	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(encoded)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrMalformed), "expected ErrMalformed, got %v", err)
		})
	}
}

func TestGroupName(t *testing.T) {
	require.Equal(t, "my-tenantro", ReadOnly.GroupName("my-tenant"))
	require.Equal(t, "my-tenant", ReadWrite.GroupName("my-tenant"))
}

func TestPermissionValid(t *testing.T) {
	require.True(t, ReadOnly.Valid())
	require.True(t, ReadWrite.Valid())
	require.False(t, Permission("admin").Valid())
	require.False(t, Permission("").Valid())
}
