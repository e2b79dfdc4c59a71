package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	i := NewIssuer("test-secret")

	tok, err := i.Generate("caisse_session_abc_20260115093000.csv", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, i.Verify(tok, "caisse_session_abc_20260115093000.csv"))
}

func TestVerifyWrongFilename(t *testing.T) {
	i := NewIssuer("test-secret")

	tok, err := i.Generate("report_a.csv", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, i.Verify(tok, "report_b.csv"))
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewIssuer("secret-one")
	verifier := NewIssuer("secret-two")

	tok, err := issuer.Generate("report.csv", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, verifier.Verify(tok, "report.csv"))
}

func TestVerifyTamperedPayload(t *testing.T) {
	i := NewIssuer("test-secret")

	tok, err := i.Generate("report.csv", 5*time.Minute)
	require.NoError(t, err)

	other, err := i.Generate("other.csv", 5*time.Minute)
	require.NoError(t, err)

	// Payload of one token with the signature of another.
	forged := strings.Split(other, ".")[0] + "." + strings.Split(tok, ".")[1]
	assert.False(t, i.Verify(forged, "other.csv"))
}

func TestVerifyMalformedTokens(t *testing.T) {
	i := NewIssuer("test-secret")

	for _, tok := range []string{
		"",
		"nodot",
		".",
		"!!!not-base64!!!.sig",
		"cGF5bG9hZA.c2ln", // valid b64 but payload has no colons
	} {
		assert.False(t, i.Verify(tok, "report.csv"), "token %q should not verify", tok)
	}
}

func TestTTLFloor(t *testing.T) {
	now := time.Now()
	i := NewIssuer("test-secret")

	// Requested 1s, but the floor raises it to 60s.
	tok, err := i.Generate("report.csv", time.Second)
	require.NoError(t, err)

	i.now = func() time.Time { return now.Add(55 * time.Second) }
	assert.True(t, i.Verify(tok, "report.csv"))

	i.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.False(t, i.Verify(tok, "report.csv"))
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	i := NewIssuer("test-secret")
	i.now = func() time.Time { return now }

	tok, err := i.Generate("report.csv", 2*time.Minute)
	require.NoError(t, err)

	i.now = func() time.Time { return now.Add(time.Minute) }
	assert.True(t, i.Verify(tok, "report.csv"))

	i.now = func() time.Time { return now.Add(3 * time.Minute) }
	assert.False(t, i.Verify(tok, "report.csv"))
}

func TestFilenameWithColons(t *testing.T) {
	i := NewIssuer("test-secret")

	// The payload splits from the right, so colons in the name survive.
	name := "backup:2026:01:15.csv"
	tok, err := i.Generate(name, 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, i.Verify(tok, name))
	assert.False(t, i.Verify(tok, "backup:2026:01"))
}

func TestTokensAreSingleUseShaped(t *testing.T) {
	i := NewIssuer("test-secret")

	// Two grants for the same file differ (random nonce) but both verify.
	a, err := i.Generate("report.csv", 5*time.Minute)
	require.NoError(t, err)
	b, err := i.Generate("report.csv", 5*time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, i.Verify(a, "report.csv"))
	assert.True(t, i.Verify(b, "report.csv"))
}
