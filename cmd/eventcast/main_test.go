package main

import (
	"bytes"
	"context"
	"github.com/saylorsolutions/eventcast/cli"
	"github.com/saylorsolutions/eventcast/multicast"
	"github.com/saylorsolutions/eventcast/typeinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const round1 = `round 1
  *main.OrderPlaced <- audit, orders, billing, storefront, analytics
  *main.ExpressOrderPlaced <- audit, express, orders, billing, analytics
  *main.InventoryLow <- audit, inventory, restock, proxy, alerts
  *listener.PayloadEvent[string] <- audit, messages
`

// cacheKey formats the key line printed for events of type E from sources of type S.
func cacheKey[E, S any]() string {
	key := multicast.CacheKey{EventType: typeinfo.For[E](), SourceType: typeinfo.For[S]()}
	return "  " + key.String() + "\n"
}

func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	err := run(context.Background(), args, &out, io.Discard)
	return out.String(), err
}

func TestRun_Trace(t *testing.T) {
	out, err := execute(t, "trace")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, round1), "Unexpected delivery order:\n%s", out)
	assert.Contains(t, out, strings.Replace(round1, "round 1", "round 2", 1), "Cached deliveries should match")
	assert.Contains(t, out, "named listeners\n  billing (created 1)\n  restock (created 1)\n")
	assert.Contains(t, out, "cache keys\n")
	assert.Contains(t, out, cacheKey[*OrderPlaced, *Storefront]())
	assert.Contains(t, out, cacheKey[*InventoryLow, *Warehouse]())
}

func TestRun_TraceNoCache(t *testing.T) {
	out, err := execute(t, "t", "--no-cache", "--rounds", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, round1), "Unexpected delivery order:\n%s", out)
	assert.NotContains(t, out, "round 2")
	assert.True(t, strings.HasSuffix(out, "cache keys\n  (none)\n"))
}

func TestRun_TraceIsolated(t *testing.T) {
	out, err := execute(t, "trace", "--isolate", "--rounds=1")
	require.NoError(t, err)
	assert.Contains(t, out, "  *main.InventoryLow <- audit, inventory, restock, flaky, proxy, alerts\n")
	assert.Contains(t, out, "unable to restock sku-1")
}

func TestRun_Keys(t *testing.T) {
	out, err := execute(t, "keys")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cache keys\n"))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 7, "Lifecycle, sample, and payload keys should be cached:\n%s", out)
}

func TestRun_Config(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventcast.yaml")
	require.NoError(t, os.WriteFile(path, []byte("caching: false\n"), 0600))
	out, err := execute(t, "keys", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "cache keys\n  (none)\n", out)

	_, err = execute(t, "keys", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRun_Usage(t *testing.T) {
	out, err := execute(t, "trace", "extra")
	assert.ErrorIs(t, err, &cli.UsageError{})
	assert.Contains(t, out, "eventcast trace [FLAGS]")

	_, err = execute(t, "trace", "--rounds", "0")
	assert.ErrorIs(t, err, &cli.UsageError{})

	_, err = execute(t)
	assert.ErrorIs(t, err, cli.ErrUnknownCommand)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := run(ctx, []string{"trace"}, io.Discard, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}
