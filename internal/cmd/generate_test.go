package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectedSet(t *testing.T) {
	require.Nil(t, selectedSet(nil))
	require.Nil(t, selectedSet([]string{"", "  "}))

	set := selectedSet([]string{"fct_orders", "dim_hosts.sql", " stg_users "})
	require.Len(t, set, 3)
	require.Contains(t, set, "fct_orders")
	require.Contains(t, set, "dim_hosts")
	require.Contains(t, set, "stg_users")
}

func TestFallbackProvider(t *testing.T) {
	require.Equal(t, "anthropic", fallbackProvider("anthropic", "openai"))
	require.Equal(t, "openai", fallbackProvider("", "openai"))
}
