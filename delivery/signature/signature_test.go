package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	secret := []byte("super-secret")
	payload := []byte(`{"event":"user.created","id":42}`)

	t.Run("success - creates prefixed hex signature", func(t *testing.T) {
		sig := Sign(secret, payload)
		assert.True(t, strings.HasPrefix(sig, Prefix))
		assert.Len(t, sig, len(Prefix)+64)
	})

	t.Run("deterministic - same inputs produce same signature", func(t *testing.T) {
		sig1 := Sign(secret, payload)
		sig2 := Sign(secret, payload)
		assert.Equal(t, sig1, sig2)
	})

	t.Run("changing one payload byte changes the signature", func(t *testing.T) {
		mutated := append([]byte(nil), payload...)
		mutated[0] = '['
		assert.NotEqual(t, Sign(secret, payload), Sign(secret, mutated))
	})

	t.Run("different secrets produce different signatures", func(t *testing.T) {
		assert.NotEqual(t, Sign(secret, payload), Sign([]byte("other"), payload))
	})

	t.Run("empty secret produces no signature", func(t *testing.T) {
		assert.Empty(t, Sign(nil, payload))
		assert.Empty(t, Sign([]byte{}, payload))
	})

	t.Run("signs the literal bytes, not a normalized form", func(t *testing.T) {
		// Same JSON value, different byte sequences
		compact := []byte(`{"a":1,"b":2}`)
		spaced := []byte(`{"a": 1, "b": 2}`)
		assert.NotEqual(t, Sign(secret, compact), Sign(secret, spaced))
	})
}

func TestVerify(t *testing.T) {
	secret := []byte("super-secret")
	payload := []byte(`{"event":"invoice.paid"}`)

	t.Run("success - valid signature", func(t *testing.T) {
		sig := Sign(secret, payload)
		valid, err := Verify(secret, payload, sig)
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("failure - wrong secret", func(t *testing.T) {
		sig := Sign(secret, payload)
		valid, err := Verify([]byte("wrong"), payload, sig)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("failure - tampered payload", func(t *testing.T) {
		sig := Sign(secret, payload)
		valid, err := Verify(secret, []byte(`{"event":"invoice.void"}`), sig)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("error - missing prefix", func(t *testing.T) {
		_, err := Verify(secret, payload, "deadbeef")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must start with")
	})

	t.Run("error - invalid hex", func(t *testing.T) {
		_, err := Verify(secret, payload, Prefix+"not-hex!")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding hex")
	})
}
