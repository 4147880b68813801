package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderDefaults(t *testing.T) {
	reg, err := NewRegistry("")
	require.NoError(t, err)

	system, user, err := reg.Render(Data{
		ModelName:   "fct_orders",
		Sector:      "finance",
		SQL:         "select order_id from {{ ref('stg_orders') }}",
		Columns:     []string{"order_id", "amount"},
		ColumnHints: map[string]string{"order_id": "primary key"},
		Refs:        []string{"stg_orders"},
		SourcesYAML: "sources:\n  - name: raw",
	})
	require.NoError(t, err)

	require.Contains(t, system, "ONLY valid YAML")
	require.Contains(t, user, "fct_orders")
	require.Contains(t, user, "order_id, amount")
	require.Contains(t, user, "order_id: primary key")
	require.Contains(t, user, "stg_orders")
	require.Contains(t, user, "finance_sources.yml")
	require.Contains(t, user, "sources:")
}

func TestRenderWithoutColumnsFallsBack(t *testing.T) {
	reg, err := NewRegistry("")
	require.NoError(t, err)

	_, user, err := reg.Render(Data{ModelName: "dim_users", SQL: "select * from users"})
	require.NoError(t, err)
	require.Contains(t, user, "parser did not find columns")
	require.Contains(t, user, "no sources file found")
	require.Contains(t, user, "unknown_sources.yml")
}

func TestRegistryOverridesFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.tmpl"), []byte("document {{ .ModelName }} tersely"), 0o644))

	reg, err := NewRegistry(dir)
	require.NoError(t, err)

	system, user, err := reg.Render(Data{ModelName: "dim_users"})
	require.NoError(t, err)
	require.Equal(t, "document dim_users tersely", user)
	require.Contains(t, system, "analytics engineer")
}

func TestRegistryRejectsBrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.tmpl"), []byte("{{ .Broken"), 0o644))

	_, err := NewRegistry(dir)
	require.Error(t, err)
}
