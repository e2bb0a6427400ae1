package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ordersPattern   = "mapgen/examples/orders"
	shippingPattern = "mapgen/examples/shipping"
	brokenPattern   = "mapgen/examples/broken"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := newRootCmd()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())

	return out.String(), errOut.String(), err
}

func TestCheck_Clean(t *testing.T) {
	_, stderr, err := execute(t, "check", "--color", "off", ordersPattern, shippingPattern)
	require.NoError(t, err)
	assert.Contains(t, stderr, "ok mappings=4")
}

func TestCheck_GeneratedFilesUpToDate(t *testing.T) {
	_, stderr, err := execute(t, "check", "--stale", "--color", "off", ordersPattern, shippingPattern)
	require.NoError(t, err, stderr)
}

func TestCheck_Broken(t *testing.T) {
	_, stderr, err := execute(t, "check", "--color", "off", "--format", "short", brokenPattern)
	require.ErrorIs(t, err, errDiagnostics)

	assert.Contains(t, stderr,
		"broken.go:15:2: MAP001: Property 'Note' on destination type 'MissingNote' has no matching readable property on source type 'Order'\n")
	assert.Contains(t, stderr,
		"broken.go:23:2: MAP002: Cannot assign source 'Order.Status' (type 'string') to destination 'WrongStatus.Status' (type 'int')\n")
}

func TestCheck_JSON(t *testing.T) {
	stdout, _, err := execute(t, "check", "--format", "json", "--quiet", brokenPattern)
	require.ErrorIs(t, err, errDiagnostics)

	var diags []struct {
		Code string   `json:"code"`
		Line uint32   `json:"line"`
		Args []string `json:"args"`
	}

	require.NoError(t, json.Unmarshal([]byte(stdout), &diags))
	require.Len(t, diags, 2)
	assert.Equal(t, "MAP001", diags[0].Code)
	assert.Equal(t, uint32(15), diags[0].Line)
	assert.Equal(t, []string{"Note", "MissingNote", "Order"}, diags[0].Args)
	assert.Equal(t, "MAP002", diags[1].Code)
}

func TestGen_WritesCleanModelsOnly(t *testing.T) {
	out := t.TempDir()

	_, stderr, err := execute(t, "gen", "--color", "off", "--out", out, brokenPattern)
	require.ErrorIs(t, err, errDiagnostics)
	assert.Contains(t, stderr, "mappings not generated diagnostics=2")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fine_mapping_gen.go", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(out, "fine_mapping_gen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "func ToFine(src Order, hooks ...FineMapHook) Fine {")
}

func TestGen_DryRun(t *testing.T) {
	stdout, _, err := execute(t, "gen", "--dry-run", "--color", "off", ordersPattern)
	require.NoError(t, err)

	assert.Contains(t, stdout, "func ToOrderDto(src Order, hooks ...OrderDtoMapHook) OrderDto {")
	assert.Contains(t, stdout, "func ToOrderSummary(src Order, hooks ...OrderSummaryMapHook) OrderSummary {")
	assert.NotContains(t, stdout, "orderRow")
}

func TestGen_Cache(t *testing.T) {
	cacheDir := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "mapgen.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("cache = true\ncache_dir = \""+cacheDir+"\"\n"), 0o644))

	for range 2 {
		_, stderr, err := execute(t, "gen", "--config", cfg, "--dry-run", "--verbose", "--color", "off", ordersPattern)
		require.NoError(t, err, stderr)
	}

	entries, err := os.ReadDir(filepath.Join(cacheDir, "models"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCache_DirAndClean(t *testing.T) {
	cacheDir := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "mapgen.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("cache_dir = \""+cacheDir+"\"\n"), 0o644))

	stdout, _, err := execute(t, "cache", "dir", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, cacheDir+"\n", stdout)

	_, stderr, err := execute(t, "gen", "--config", cfg, "--cache", "--dry-run", "--color", "off", ordersPattern)
	require.NoError(t, err, stderr)

	entries, err := os.ReadDir(filepath.Join(cacheDir, "models"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, stderr, err = execute(t, "cache", "clean", "--config", cfg, "--color", "off")
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "cache cleared")

	_, err = os.Stat(filepath.Join(cacheDir, "models"))
	assert.True(t, os.IsNotExist(err))
}

func TestGen_OutDirRejectsMixedPackages(t *testing.T) {
	out := t.TempDir()

	_, _, err := execute(t, "gen", "--out", out, "--color", "off", ordersPattern, shippingPattern)
	require.ErrorContains(t, err, "output directory requires destinations in a single package")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScan(t *testing.T) {
	stdout, _, err := execute(t, "scan", ordersPattern, shippingPattern)
	require.NoError(t, err)

	assert.Contains(t, stdout, "orders.Order -> orders.OrderDto\t3 properties\n")
	assert.Contains(t, stdout, "orders.Order -> orders.OrderSummary\t4 properties\n")
	assert.Contains(t, stdout, "orders.Order -> shipping.ShipmentLine\t3 properties\n")
	assert.Contains(t, stdout, "orders.Order -> shipping.ShipmentLabel\t1 properties\n")
	assert.NotContains(t, stdout, "Page")
}

func TestScan_Dump(t *testing.T) {
	stdout, _, err := execute(t, "scan", "--dump", ordersPattern)
	require.NoError(t, err)

	assert.Contains(t, stdout, "DestProps")
	assert.Contains(t, stdout, "SrcProps")
	assert.Contains(t, stdout, "OrderSummary")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "mapgen dev (go")
}

func TestFlagErrors(t *testing.T) {
	_, _, err := execute(t, "check", "--color", "sometimes", ordersPattern)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--color")

	_, _, err = execute(t, "check", "--quiet", "--verbose", ordersPattern)
	require.Error(t, err)

	_, _, err = execute(t, "check", "--format", "xml", ordersPattern)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")

	_, _, err = execute(t, "check", "--config", "mapgen.ini", ordersPattern)
	require.Error(t, err)
}
