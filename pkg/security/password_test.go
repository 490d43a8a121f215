package security_test

import (
	"strings"
	"testing"

	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/angelmondragon/gocart-backend/pkg/security"
	"github.com/stretchr/testify/require"
)

var fastArgon = config.PasswordConfig{
	ArgonMemoryKB:    64,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := security.HashPassword("Correct1Horse", fastArgon)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=64,t=1,p=1$"), hash)

	ok, err := security.VerifyPassword("Correct1Horse", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = security.VerifyPassword("correct1horse", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	a, err := security.HashPassword("Correct1Horse", fastArgon)
	require.NoError(t, err)
	b, err := security.HashPassword("Correct1Horse", fastArgon)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := security.HashPassword("", fastArgon)
	require.Error(t, err)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	for _, encoded := range []string{
		"not-a-hash",
		"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$!!$a2V5",
	} {
		_, err := security.VerifyPassword("whatever", encoded)
		require.ErrorIs(t, err, security.ErrInvalidHash, encoded)
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	cases := map[string]bool{
		"Passw0rd":      true,
		"short1A":       false,
		"alllowercase1": false,
		"ALLUPPERCASE1": false,
		"NoDigitsHere":  false,
	}
	for password, ok := range cases {
		err := security.CheckPasswordStrength(password)
		if ok {
			require.NoError(t, err, password)
		} else {
			require.ErrorIs(t, err, security.ErrWeakPassword, password)
		}
	}
}
