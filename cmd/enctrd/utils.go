// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/encountr/enctr/genesis"
	"github.com/encountr/enctr/kv"
	"github.com/encountr/enctr/log"
	"github.com/encountr/enctr/lvldb"
	"github.com/encountr/enctr/metrics"
	"github.com/encountr/enctr/pebbledb"
)

// requests with a larger body are rejected
const maxRequestBodySize = 200 * 1024

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// initLogger installs the root logger. The returned level can be changed at runtime.
func initLogger(ctx *cli.Context) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromVerbosity(ctx.Int(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.NewJSONHandler(os.Stdout, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandler(os.Stdout, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func loadGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	cfg, err := genesis.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return genesis.New(filepath.Base(path), cfg)
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "io.encountr.enctrd")
		}
		return filepath.Join(home, ".io.encountr.enctrd")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// makeInstanceDir creates the directory holding the state of gen.
func makeInstanceDir(ctx *cli.Context, gen *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}
	id := gen.ID()
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", id[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

type database interface {
	kv.Store
	Close() error
}

func openDB(ctx *cli.Context, instanceDir string) (database, error) {
	cacheMB := ctx.Int(cacheFlag.Name)
	switch engine := ctx.String(dbEngineFlag.Name); engine {
	case "leveldb":
		dir := filepath.Join(instanceDir, "main.db")
		db, err := lvldb.New(dir, lvldb.Options{
			CacheSize:              cacheMB,
			OpenFilesCacheCapacity: 256,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "open leveldb at [%v]", dir)
		}
		return db, nil
	case "pebble":
		dir := filepath.Join(instanceDir, "main.pebble")
		db, err := pebbledb.New(dir, pebbledb.Options{
			CacheSize:    cacheMB,
			MemTableSize: 64,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "open pebble at [%v]", dir)
		}
		return db, nil
	default:
		return nil, errors.Errorf("unknown db engine %q", engine)
	}
}

// wrapAPIHandler bounds the request body size and the handling time.
func wrapAPIHandler(h http.Handler, timeout time.Duration) http.Handler {
	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		h.ServeHTTP(w, r)
	})
	if timeout <= 0 {
		return limited
	}
	return http.TimeoutHandler(limited, timeout, "request timed out")
}

func metricsHandler() http.Handler {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return handlers.CompressHandler(router)
}

// serve listens on addr and serves handler in group until ctx is done.
// It returns the base url.
func serve(ctx context.Context, group *errgroup.Group, addr string, handler http.Handler) (string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrapf(err, "listen addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	group.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(context.Background())
	})
	group.Go(func() error {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return "http://" + listener.Addr().String() + "/", nil
}

func printStartupMessage(gen *genesis.Genesis, instanceDir, apiURL string) {
	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
`,
		fullVersion(),
		gen.ID(), gen.Name(),
		instanceDir,
		apiURL)
}
