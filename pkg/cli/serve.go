/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/patch-inventory/pkg/api"
	"github.com/NVIDIA/patch-inventory/pkg/defaults"
	"github.com/NVIDIA/patch-inventory/pkg/logging"
	"github.com/NVIDIA/patch-inventory/pkg/server"
)

func (d *deps) serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the inventory over HTTP",
		Description: `Runs an HTTP service answering inventory requests from a cached build.

Routes:
  GET /v1/inventory               inventory document (?format=yaml, ?refresh=true)
  GET /v1/inventory/hosts/{name}  host variables (always {})
  GET /v1/inventory/stats         counters of the last build
  GET /health, /ready, /metrics

The inventory flags of the root command (--config, --limit, --domain, ...)
apply to every build.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "listen address",
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   defaults.ServerPort,
				Usage:   "listen port",
				Sources: cli.EnvVars(server.EnvPort),
			},
			&cli.DurationFlag{
				Name:  "cache-ttl",
				Value: defaults.InventoryCacheTTL,
				Usage: "how long a built inventory is served before rebuilding",
			},
			&cli.DurationFlag{
				Name:  "build-timeout",
				Value: defaults.InventoryBuildTimeout,
				Usage: "timeout of one inventory build",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.SetDefault(logging.Options{
				Level:   logLevel(cmd, slog.LevelInfo),
				JSON:    cmd.Bool("log-json"),
				Name:    name,
				Version: version,
			})

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			pipeline, err := d.newPipeline(ctx, cmd, cfg)
			if err != nil {
				return err
			}

			srvCfg := server.DefaultConfig()
			srvCfg.Address = cmd.String("address")
			srvCfg.Port = cmd.Int("port")

			slog.Info("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
			)

			return api.Serve(ctx, version, pipeline, srvCfg,
				api.WithCacheTTL(cmd.Duration("cache-ttl")),
				api.WithBuildTimeout(cmd.Duration("build-timeout")),
			)
		},
	}
}
