package slackbot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrSignatureInvalid = errors.New("invalid slack signature")
	ErrRequestStale     = errors.New("slack request timestamp outside allowed window")
)

const (
	signatureVersion = "v0"

	// maxTimestampSkew bounds replay exposure. The window is symmetric:
	// timestamps in the future are rejected too.
	maxTimestampSkew = 300 * time.Second
)

// VerifySignature checks that signature was produced by the holder of
// signingSecret over timestamp and the raw request body. The timestamp check
// runs first; both failures are rejected identically downstream.
func VerifySignature(signingSecret, signature, timestamp string, body []byte) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: unparseable timestamp %q", ErrRequestStale, timestamp)
	}

	skew := time.Since(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > maxTimestampSkew {
		return ErrRequestStale
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	fmt.Fprintf(mac, "%s:%s:%s", signatureVersion, timestamp, body)
	expected := signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureInvalid
	}
	return nil
}
