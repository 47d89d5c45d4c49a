package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	password := "corporate horse battery staple 1!"
	hashed := HashPassword(password)

	assert.Equal(t, Argon2id, hashed.Algorithm)
	assert.False(t, hashed.IsOutdated())

	t.Run("correct password checks out", func(t *testing.T) {
		ok, err := CheckPassword(password, hashed)
		assert.Nil(t, err)
		assert.True(t, ok)
	})
	t.Run("wrong password does not", func(t *testing.T) {
		ok, err := CheckPassword("something else entirely", hashed)
		assert.Nil(t, err)
		assert.False(t, ok)
	})
}

func TestParsePasswordString(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		original := HashPassword("corporate horse battery staple 1!")
		parsed, err := ParsePasswordString(original.String())
		assert.Nil(t, err)
		assert.Equal(t, original, parsed)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := ParsePasswordString("ceci n'est pas un hash")
		assert.NotNil(t, err)
	})
}

func TestCheckPasswordUnknownAlgorithm(t *testing.T) {
	_, err := CheckPassword("whatever", HashedPassword{
		Algorithm:  "md5",
		AlgoConfig: "",
		Salt:       "",
		Hash:       "",
	})
	assert.NotNil(t, err)
}
