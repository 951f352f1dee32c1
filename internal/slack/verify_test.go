package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"
)

func sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := []byte("payload=%7B%22type%22%3A%22block_actions%22%7D")

	if err := VerifySignature("secret", ts, sign("secret", ts, body), body, now); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}

	err := VerifySignature("secret", ts, sign("other-key", ts, body), body, now)
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("wrong-key signature: err = %v, want ErrBadSignature", err)
	}

	err = VerifySignature("secret", ts, sign("secret", ts, []byte("tampered")), body, now)
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("tampered body: err = %v, want ErrBadSignature", err)
	}
}

func TestVerifySignatureStaleTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	body := []byte("payload=x")

	for _, skew := range []time.Duration{6 * time.Minute, -6 * time.Minute} {
		ts := strconv.FormatInt(now.Add(skew).Unix(), 10)
		err := VerifySignature("secret", ts, sign("secret", ts, body), body, now)
		if !errors.Is(err, ErrStaleTimestamp) {
			t.Errorf("skew %v: err = %v, want ErrStaleTimestamp", skew, err)
		}
	}

	// Just inside the window is accepted.
	ts := strconv.FormatInt(now.Add(-4*time.Minute).Unix(), 10)
	if err := VerifySignature("secret", ts, sign("secret", ts, body), body, now); err != nil {
		t.Errorf("signature inside window rejected: %v", err)
	}
}

func TestVerifySignatureBadTimestamp(t *testing.T) {
	if err := VerifySignature("secret", "not-a-number", "v0=x", []byte("b"), time.Now()); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}
