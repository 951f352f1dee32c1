package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// MaxTimestampSkew is the replay-defense window for interaction requests.
const MaxTimestampSkew = 5 * time.Minute

var (
	// ErrBadSignature means the computed digest did not match.
	ErrBadSignature = errors.New("signature mismatch")
	// ErrStaleTimestamp means the request timestamp is outside the
	// allowed skew and may be a replay.
	ErrStaleTimestamp = errors.New("stale request timestamp")
)

// VerifySignature checks a Slack request signature: an HMAC-SHA256 over
// "v0:<timestamp>:<raw body>" keyed by the signing secret, hex-encoded and
// prefixed with "v0=". now is injectable for tests.
func VerifySignature(secret, timestamp, signature string, body []byte, now time.Time) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", timestamp, err)
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > MaxTimestampSkew || age < -MaxTimestampSkew {
		return ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}
