package token_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvesttrail/harvesttrail/internal/token"
)

func TestIssuer_IssueAndVerify(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)
	id := uuid.New()

	signed, err := issuer.Issue(id)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	assert.NoError(t, issuer.Verify(signed, id))
}

func TestIssuer_Verify_WrongBatch(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)

	signed, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	assert.Error(t, issuer.Verify(signed, uuid.New()))
}

func TestIssuer_Verify_WrongSecret(t *testing.T) {
	id := uuid.New()

	signed, err := token.NewIssuer("test-secret", time.Hour).Issue(id)
	require.NoError(t, err)

	assert.Error(t, token.NewIssuer("other-secret", time.Hour).Verify(signed, id))
}

func TestIssuer_Verify_Expired(t *testing.T) {
	issuer := token.NewIssuer("test-secret", -time.Minute)
	id := uuid.New()

	signed, err := issuer.Issue(id)
	require.NoError(t, err)

	assert.Error(t, issuer.Verify(signed, id))
}

func TestIssuer_Verify_Garbage(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)

	assert.Error(t, issuer.Verify("not-a-jwt", uuid.New()))
}
