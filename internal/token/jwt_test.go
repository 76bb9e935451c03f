package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestJWT_Issue_Parse_Roundtrip(t *testing.T) {
	j := NewJWT("secret", "passkeeper", "passkeeper-api")
	u := uuid.New()

	access, err := j.Issue(u, "alice@example.com")
	require.NoError(t, err)

	gotID, gotEmail, err := j.Parse(access)
	require.NoError(t, err)
	require.Equal(t, u, gotID)
	require.Equal(t, "alice@example.com", gotEmail)
}

func TestJWT_WrongKey(t *testing.T) {
	issuer := NewJWT("secret", "passkeeper", "passkeeper-api")
	verifier := NewJWT("other-secret", "passkeeper", "passkeeper-api")

	access, err := issuer.Issue(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, _, err = verifier.Parse(access)
	require.Error(t, err)
}

func TestJWT_WrongIssuerOrAudience(t *testing.T) {
	j := NewJWT("secret", "passkeeper", "passkeeper-api")
	u := uuid.New()

	access, err := j.Issue(u, "alice@example.com")
	require.NoError(t, err)

	_, _, err = NewJWT("secret", "someone-else", "passkeeper-api").Parse(access)
	require.Error(t, err)

	_, _, err = NewJWT("secret", "passkeeper", "other-api").Parse(access)
	require.Error(t, err)
}

func TestJWT_Expiry(t *testing.T) {
	j := NewJWT("secret", "passkeeper", "passkeeper-api")
	issued := time.Now()
	j.now = func() time.Time { return issued }

	access, err := j.Issue(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	// Still valid just before expiry.
	j.now = func() time.Time { return issued.Add(AccessTTL - time.Second) }
	_, _, err = j.Parse(access)
	require.NoError(t, err)

	// Rejected once the lifetime has passed.
	j.now = func() time.Time { return issued.Add(AccessTTL + time.Second) }
	_, _, err = j.Parse(access)
	require.Error(t, err)
}

func TestJWT_GarbageToken(t *testing.T) {
	j := NewJWT("secret", "passkeeper", "passkeeper-api")

	_, _, err := j.Parse("not.a.token")
	require.Error(t, err)

	_, _, err = j.Parse("")
	require.Error(t, err)
}
