// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/encountr/enctr/api"
	"github.com/encountr/enctr/api/admin"
	"github.com/encountr/enctr/genesis"
	"github.com/encountr/enctr/log"
	"github.com/encountr/enctr/metrics"
	"github.com/encountr/enctr/node"
)

const defaultKeeperInterval = 10 * time.Second

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "enctrd")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "enctrd",
		Usage:     "Node of the ENCTR token protocol",
		Copyright: "2025 Encountr <https://encountr.io/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			dbEngineFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiEventsLimitFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			keeperIntervalFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:   "dump-genesis",
				Usage:  "print the dev network genesis as YAML, a starting point for custom networks",
				Action: dumpGenesisAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	gen, err := loadGenesis(ctx)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(ctx, gen)
	if err != nil {
		return err
	}
	db, err := openDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing database..."); db.Close() }()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	n, err := node.Open(db, gen, node.SystemClock)
	if err != nil {
		return err
	}

	var apiLogs atomic.Bool
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	handler := api.New(n, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EventsLimit:          ctx.Int(apiEventsLimitFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      &apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
	})
	handler = wrapAPIHandler(handler, time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond)

	group, groupCtx := errgroup.WithContext(exitSignal)

	apiURL, err := serve(groupCtx, group, ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return errors.WithMessage(err, "API")
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		url, err := serve(groupCtx, group, ctx.String(metricsAddrFlag.Name), metricsHandler())
		if err != nil {
			return errors.WithMessage(err, "metrics")
		}
		logger.Info("metrics server started", "url", url+"metrics")
	}
	if ctx.Bool(enableAdminFlag.Name) {
		url, err := serve(groupCtx, group, ctx.String(adminAddrFlag.Name), admin.HTTPHandler(logLevel, &apiLogs))
		if err != nil {
			return errors.WithMessage(err, "admin")
		}
		logger.Info("admin server started", "url", url+"admin")
	}
	if interval := ctx.Duration(keeperIntervalFlag.Name); interval > 0 {
		group.Go(func() error {
			return n.RunKeeper(groupCtx, interval)
		})
	}

	printStartupMessage(gen, instanceDir, apiURL)

	return group.Wait()
}

func dumpGenesisAction(*cli.Context) error {
	data, err := yaml.Marshal(genesis.DevConfig())
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
