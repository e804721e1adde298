package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastParams = &Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashSecretRoundTrip(t *testing.T) {
	encoded, err := HashSecret("hunter2", fastParams)
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$")

	ok, err := VerifySecret("hunter2", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifySecret("hunter3", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashSecretSalted(t *testing.T) {
	a, err := HashSecret("same", fastParams)
	require.NoError(t, err)
	b, err := HashSecret("same", fastParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecodeHash(t *testing.T) {
	encoded, err := HashSecret("x", fastParams)
	require.NoError(t, err)

	p, salt, key, err := DecodeHash(encoded)
	require.NoError(t, err)
	assert.Equal(t, fastParams.Memory, p.Memory)
	assert.Equal(t, fastParams.Iterations, p.Iterations)
	assert.Len(t, salt, 16)
	assert.Len(t, key, 32)
}

func TestDecodeHashRejectsGarbage(t *testing.T) {
	_, _, _, err := DecodeHash("not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, _, _, err = DecodeHash("$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, _, _, err = DecodeHash("$argon2id$v=1$m=1,t=1,p=1$c2FsdA$a2V5")
	assert.ErrorIs(t, err, ErrIncompatibleVersion)

	_, err = VerifySecret("x", "garbage")
	assert.Error(t, err)
}
