// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/encountr/enctr/genesis"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range []cli.Flag{genesisFlag, dataDirFlag, dbEngineFlag, cacheFlag} {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestLoadGenesis(t *testing.T) {
	gen, err := loadGenesis(newContext(t))
	require.NoError(t, err)
	assert.Equal(t, genesis.NewDevnet().ID(), gen.ID())

	cfg := genesis.DevConfig()
	cfg.Warmup = 3
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	gen, err = loadGenesis(newContext(t, "--genesis", path))
	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", gen.Name())
	assert.NotEqual(t, genesis.NewDevnet().ID(), gen.ID())
}

func TestOpenDB(t *testing.T) {
	dir := t.TempDir()
	gen := genesis.NewDevnet()

	for _, engine := range []string{"leveldb", "pebble"} {
		ctx := newContext(t, "--data-dir", dir, "--db-engine", engine)
		instanceDir, err := makeInstanceDir(ctx, gen)
		require.NoError(t, err)

		db, err := openDB(ctx, instanceDir)
		require.NoError(t, err, engine)
		require.NoError(t, db.Put([]byte("k"), []byte(engine)))
		v, err := db.Get([]byte("k"))
		require.NoError(t, err)
		assert.Equal(t, engine, string(v))
		require.NoError(t, db.Close())
	}

	_, err := openDB(newContext(t, "--db-engine", "sqlite"), dir)
	assert.EqualError(t, err, `unknown db engine "sqlite"`)
}

func TestWrapAPIHandler(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	h := wrapAPIHandler(echo, time.Second)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", maxRequestBodySize+1))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	slow := wrapAPIHandler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}), 10*time.Millisecond)
	rr = httptest.NewRecorder()
	slow.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)

	url, err := serve(groupCtx, group, "127.0.0.1:0", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	require.NoError(t, err)

	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	assert.NoError(t, group.Wait())
}
