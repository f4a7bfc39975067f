package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("65f000000000000000000001", "normal")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "65f000000000000000000001", claims.UserID)
	assert.Equal(t, "normal", claims.Kind)
	assert.Equal(t, "Aviary", claims.Issuer)
}

func TestValidateTamperedToken(t *testing.T) {
	token, err := GenerateToken("65f000000000000000000001", "guest")
	require.NoError(t, err)

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)
	_, err = ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestExtractSignature(t *testing.T) {
	token, err := GenerateToken("65f000000000000000000001", "normal")
	require.NoError(t, err)

	sig, err := ExtractSignature(token)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)

	_, err = ExtractSignature("malformed")
	assert.Error(t, err)
}
