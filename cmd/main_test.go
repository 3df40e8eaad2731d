package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "database_url: "+filepath.Join(dir, "drq.db")+"\nmetrics:\n  enabled: false\n")
	catalog := writeFile(t, dir, "catalog.yaml", `
products:
  - sku: bread
    name: Bread
    stock: 1
    attributes:
      - name: default_reset_quantity
        value: "5"
  - sku: gift-card
    name: Gift card
    stock: 10
    attributes:
      - name: do_not_reset_quantity
        value: "yes"
  - sku: pie
    name: Pie
    stock: 7
`)

	assert.Contains(t, run(t, "--config", cfg, "import", catalog), "imported 3 products")
	assert.Contains(t, run(t, "--config", cfg, "check"), "outcome=disabled should_run=no completed=no")
	assert.Contains(t, run(t, "--config", cfg, "reset"), "manual: 2 updated (1 custom, 1 zeroed, 0 fixed)")
	assert.Contains(t, run(t, "--config", cfg, "set-test-quantities"), "debug: 3 updated (0 custom, 0 zeroed, 3 fixed)")
}
