package security

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)
	assert.NoError(t, hasher.Compare(hash, "correct-horse"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong-horse"), ErrPasswordMismatch)
}

func TestBcryptHasher_RejectsShortPassword(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	_, err := hasher.Hash("short")
	assert.ErrorIs(t, err, ErrPasswordShort)

	_, err = hasher.Hash(strings.Repeat("x", MaxPasswordLen+1))
	assert.ErrorIs(t, err, ErrPasswordLong)
}

func TestCodeGenerator_Deterministic(t *testing.T) {
	src := bytes.NewReader([]byte{0, 1, 2, 31, 32, 33})
	gen := NewCodeGenerator(src, 6)

	code, err := gen.Generate()
	require.NoError(t, err)
	assert.Equal(t, "ABC9AB", code)
}

func TestCodeGenerator_SourceExhausted(t *testing.T) {
	gen := NewCodeGenerator(bytes.NewReader([]byte{1, 2}), 8)

	_, err := gen.Generate()
	assert.Error(t, err)
}

func TestCodeGenerator_CryptoDefault(t *testing.T) {
	gen := NewCodeGenerator(nil, 0)

	code, err := gen.Generate()
	require.NoError(t, err)
	assert.Len(t, code, 8)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q", r)
	}
}
