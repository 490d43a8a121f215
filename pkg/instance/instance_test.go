package instance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetIDPrefersEnv(t *testing.T) {
	t.Setenv("GOCART_INSTANCE_ID", "api-7")
	require.Equal(t, "api-7", GetID())
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv("GOCART_INSTANCE_ID", "")
	require.NotEmpty(t, GetID())
}
