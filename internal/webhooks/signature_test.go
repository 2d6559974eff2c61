package webhooks

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecret(t *testing.T) string {
	t.Helper()
	key := make([]byte, 24)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "whsec_" + base64.StdEncoding.EncodeToString(key)
}

func TestVerifierRoundTrip(t *testing.T) {
	v, err := NewVerifier(testSecret(t), 5*time.Minute)
	require.NoError(t, err)

	payload := []byte(`{"type":"user.created","data":{"id":"user_abc"}}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := v.Sign(payload, "msg_1", ts)

	assert.NoError(t, v.Verify(payload, "msg_1", ts, sig))
}

func TestVerifierRejectsTamperedPayload(t *testing.T) {
	v, err := NewVerifier(testSecret(t), 5*time.Minute)
	require.NoError(t, err)

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := v.Sign([]byte(`{"role":"participant"}`), "msg_1", ts)

	err = v.Verify([]byte(`{"role":"admin"}`), "msg_1", ts, sig)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifierRejectsWrongMessageID(t *testing.T) {
	v, err := NewVerifier(testSecret(t), 5*time.Minute)
	require.NoError(t, err)

	payload := []byte(`{}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := v.Sign(payload, "msg_1", ts)

	assert.ErrorIs(t, v.Verify(payload, "msg_2", ts, sig), ErrBadSignature)
}

func TestVerifierRejectsStaleTimestamp(t *testing.T) {
	v, err := NewVerifier(testSecret(t), 5*time.Minute)
	require.NoError(t, err)

	payload := []byte(`{}`)
	stale := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
	sig := v.Sign(payload, "msg_1", stale)

	assert.ErrorIs(t, v.Verify(payload, "msg_1", stale, sig), ErrStaleTimestamp)
}

func TestVerifierRejectsMissingHeaders(t *testing.T) {
	v, err := NewVerifier(testSecret(t), 5*time.Minute)
	require.NoError(t, err)

	assert.ErrorIs(t, v.Verify([]byte(`{}`), "", "123", "v1,abc"), ErrMissingHeaders)
	assert.ErrorIs(t, v.Verify([]byte(`{}`), "msg_1", "", "v1,abc"), ErrMissingHeaders)
	assert.ErrorIs(t, v.Verify([]byte(`{}`), "msg_1", "123", ""), ErrMissingHeaders)
}

func TestVerifierAcceptsAnyListedSignature(t *testing.T) {
	v, err := NewVerifier(testSecret(t), 5*time.Minute)
	require.NoError(t, err)

	payload := []byte(`{}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	good := v.Sign(payload, "msg_1", ts)

	// Rotated secrets deliver multiple space-separated signatures.
	assert.NoError(t, v.Verify(payload, "msg_1", ts, "v1,bogus "+good))
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := NewVerifier("", time.Minute)
	assert.ErrorIs(t, err, ErrSecretNotConfig)
}
