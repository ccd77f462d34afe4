package credentials

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuePIN(t *testing.T) {
	issuer := NewIssuer("secret")
	pattern := regexp.MustCompile(`^\d{4}$`)

	for i := 0; i < 50; i++ {
		pin, err := issuer.IssuePIN()
		require.NoError(t, err)
		assert.Regexp(t, pattern, pin)
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer("secret")
	openedAt := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	token, err := issuer.IssueSessionToken(7, openedAt)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	assert.True(t, issuer.VerifySessionToken(token, 7, openedAt))
}

func TestSessionTokenRejectsWrongBinding(t *testing.T) {
	issuer := NewIssuer("secret")
	openedAt := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	token, err := issuer.IssueSessionToken(7, openedAt)
	require.NoError(t, err)

	// Wrong table.
	assert.False(t, issuer.VerifySessionToken(token, 8, openedAt))

	// A stale link from a previous session of the same table.
	assert.False(t, issuer.VerifySessionToken(token, 7, openedAt.Add(2*time.Hour)))

	// Tampered token.
	assert.False(t, issuer.VerifySessionToken(token+"x", 7, openedAt))

	// Different signing secret.
	other := NewIssuer("other-secret")
	assert.False(t, other.VerifySessionToken(token, 7, openedAt))
}

func TestVerifyPIN(t *testing.T) {
	assert.True(t, VerifyPIN("1234", "1234"))
	assert.False(t, VerifyPIN("1234", "4321"))
	assert.False(t, VerifyPIN("", "1234"))
	assert.False(t, VerifyPIN("1234", ""))
}
