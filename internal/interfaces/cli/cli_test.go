package cli

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapkiduki/apnacart/internal/infrastructure/seed"
)

type testEnv struct {
	dir       string
	config    string
	imagesDir string
}

func newTestEnv(t *testing.T, extra string) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		dir:       dir,
		config:    filepath.Join(dir, "config.yaml"),
		imagesDir: filepath.Join(dir, "images"),
	}
	require.NoError(t, os.MkdirAll(env.imagesDir, 0o755))
	env.writeConfig(t, extra)
	return env
}

func (e testEnv) writeConfig(t *testing.T, extra string) {
	t.Helper()
	// extra is appended under catalog unless it opens a new section.
	cfg := fmt.Sprintf(`
log:
  level: error
database:
  driver: sqlite
  dsn: %q
rate_limit:
  enabled: false
catalog:
  images_dir: %q
  cache_dir: ""
%s`, "file:"+filepath.Join(e.dir, "apnacart.db"), e.imagesDir, extra)
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o644))
}

func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := run(t, context.Background(), "migrate", "--config", env.config)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema up to date (sqlite)")
}

func TestSeedAndDBCheck(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	defaults, err := seed.Default()
	require.NoError(t, err)

	out, err := run(t, ctx, "seed", "--config", env.config)
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Database setup complete with %d vegetables", len(defaults)))

	out, err = run(t, ctx, "db-check", "--config", env.config, "--limit", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected (sqlite)")
	assert.Contains(t, out, fmt.Sprintf("Database has %d vegetables", len(defaults)))
	assert.Equal(t, 3, strings.Count(out, "- #"))
}

func TestDBCheckEmpty(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := run(t, context.Background(), "db-check", "--config", env.config)
	require.NoError(t, err)
	assert.Contains(t, out, "Database has 0 vegetables")
	assert.Contains(t, out, "apnacart seed")
}

func TestSeedFromFileAndLinkImages(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	seedFile := filepath.Join(env.dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(`
vegetables:
  - name: Tomato
    weight: 500g
  - name: Potato
    weight: 1kg
`), 0o644))

	out, err := run(t, ctx, "seed", "--config", env.config, "--file", seedFile)
	require.NoError(t, err)
	assert.Contains(t, out, "with 2 vegetables")

	out, err = run(t, ctx, "link-images", "--config", env.config)
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 0 of 2 vegetables")

	// With file checks on and an empty images directory every mapping
	// falls back to the default image.
	env.writeConfig(t, "  check_image_files: true\n")

	out, err = run(t, ctx, "link-images", "--config", env.config, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Tomato: /images/Tomato.jpeg -> /images/default.jpeg")
	assert.Contains(t, out, "Would update 2 of 2 vegetables")

	out, err = run(t, ctx, "link-images", "--config", env.config)
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 2 of 2 vegetables")

	out, err = run(t, ctx, "db-check", "--config", env.config)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "/images/default.jpeg"))
}

func TestSeedRejectsBadFile(t *testing.T) {
	env := newTestEnv(t, "")

	seedFile := filepath.Join(env.dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte("vegetables: []\n"), 0o644))

	_, err := run(t, context.Background(), "seed", "--config", env.config, "--file", seedFile)
	assert.ErrorIs(t, err, seed.ErrEmptyCatalog)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := run(t, context.Background(), "migrate", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestServeStartsAndStops(t *testing.T) {
	port := freePort(t)
	env := newTestEnv(t, fmt.Sprintf("server:\n  host: 127.0.0.1\n  port: %d\n  shutdown_timeout: 5s\n", port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := run(t, ctx, "serve", "--config", env.config, "--seed-if-empty")
		done <- err
	}()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/ready")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond)

	resp, err := http.Get(base + "/api/setup-database")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
