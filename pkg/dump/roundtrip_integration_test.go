// SPDX-License-Identifier: Apache-2.0

package dump_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pgmask/pgmask/pkg/dump"
)

// This test shells out to a real pg_dump against a disposable container,
// one per test rather than one shared across the package. It asserts
// that the codec reproduces a
// pg_dump custom-format archive byte-for-byte when no directives are
// registered (the pass-through property). Skipped unless explicitly
// opted into: it needs docker, pg_dump, and psql on PATH.
func TestRoundTrip_CustomFormatPassThrough(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed integration test in -short mode")
	}
	if os.Getenv("PGMASK_INTEGRATION_TESTS") == "" {
		t.Skip("set PGMASK_INTEGRATION_TESTS=1 to run this test")
	}
	for _, bin := range []string{"pg_dump", "psql"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not found on PATH", bin)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgVersion := os.Getenv("POSTGRES_VERSION")
	if pgVersion == "" {
		pgVersion = "16.3"
	}

	ctr, err := postgres.Run(ctx, "postgres:"+pgVersion,
		postgres.WithDatabase("roundtrip"),
		postgres.WithUsername("roundtrip"),
		postgres.WithPassword("roundtrip"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, ctr.Terminate(context.Background()))
	})

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	runPsql(t, ctx, connStr, `
		CREATE TABLE widgets (id integer, name text);
		INSERT INTO widgets (id, name) VALUES (1, 'sprocket'), (2, 'cog'), (3, 'gear');
	`)

	dumpPath := filepath.Join(t.TempDir(), "widgets.dump")
	cmd := exec.CommandContext(ctx, "pg_dump", connStr, "-Fc", "-f", dumpPath)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "pg_dump failed: %s", out)

	original, err := os.ReadFile(dumpPath)
	require.NoError(t, err)

	var transformed bytes.Buffer
	require.NoError(t, dump.Process(bytes.NewReader(original), &transformed, newTestObfuscator(), dump.Options{}))

	require.Equal(t, original, transformed.Bytes())
}

func runPsql(t *testing.T, ctx context.Context, connStr, sql string) {
	t.Helper()
	cmd := exec.CommandContext(ctx, "psql", connStr, "-v", "ON_ERROR_STOP=1", "-c", sql)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "psql failed: %s", out)
}
