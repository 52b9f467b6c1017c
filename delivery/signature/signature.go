package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// Prefix identifies the signature scheme in the header value.
const Prefix = "sha256="

/* Sign computes the X-Webhook-Signature header value for a payload.
 * It signs the literal outbound bytes with HMAC-SHA256: signing a
 * re-serialized form of a parsed payload can silently change byte
 * content (key ordering, whitespace) and break verification on the
 * receiver's side.
 *
 * An empty secret yields an empty string: no header is attached.
 */
func Sign(secret, payload []byte) string {
	if len(secret) == 0 {
		return ""
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a header value against the expected signature for the
// payload using constant-time comparison.
func Verify(secret, payload []byte, header string) (bool, error) {
	if !strings.HasPrefix(header, Prefix) {
		return false, fmt.Errorf("signature must start with %s prefix", Prefix)
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, Prefix))
	if err != nil {
		return false, fmt.Errorf("decoding hex signature: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	want := mac.Sum(nil)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
