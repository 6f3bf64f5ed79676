/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/patch-inventory/pkg/cmdb"
	"github.com/NVIDIA/patch-inventory/pkg/config"
	"github.com/NVIDIA/patch-inventory/pkg/defaults"
	"github.com/NVIDIA/patch-inventory/pkg/inventory"
	"github.com/NVIDIA/patch-inventory/pkg/logging"
	"github.com/NVIDIA/patch-inventory/pkg/serializer"
)

const (
	name           = "patchinv"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/patch-inventory/pkg/cli.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Option customizes the root command's collaborators. Production use needs
// none; tests substitute the CMDB, the resolver, and stdout.
type Option func(*deps)

type deps struct {
	stdout   io.Writer
	fetcher  cmdb.Fetcher
	resolver inventory.HostResolver
	kube     kubernetes.Interface
}

// WithStdout redirects the inventory document.
func WithStdout(w io.Writer) Option {
	return func(d *deps) {
		d.stdout = w
	}
}

// WithFetcher replaces the CMDB client.
func WithFetcher(f cmdb.Fetcher) Option {
	return func(d *deps) {
		d.fetcher = f
	}
}

// WithResolver replaces the DNS resolver.
func WithResolver(r inventory.HostResolver) Option {
	return func(d *deps) {
		d.resolver = r
	}
}

// WithKubeClient replaces the Kubernetes client used for credential secrets.
func WithKubeClient(k kubernetes.Interface) Option {
	return func(d *deps) {
		d.kube = k
	}
}

var (
	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatJSON),
		Usage:   fmt.Sprintf("output format (%v)", serializer.SupportedFormats()),
	}

	kubeconfigFlag = &cli.StringFlag{
		Name:    "kubeconfig",
		Usage:   "path to kubeconfig used with --credentials-secret (default: $KUBECONFIG, ~/.kube/config, in-cluster)",
		Sources: cli.EnvVars("KUBECONFIG"),
	}
)

// Execute runs the patchinv command with the process arguments and exits
// with the code for its result. SIGINT and SIGTERM cancel the run.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := NewRootCommand().Run(ctx, os.Args)
	stop()
	if err != nil {
		slog.Error("inventory generation failed", slog.String("error", err.Error()))
	}
	os.Exit(ExitCode(err))
}

// NewRootCommand returns the patchinv command.
func NewRootCommand(opts ...Option) *cli.Command {
	d := &deps{stdout: os.Stdout}
	for _, opt := range opts {
		opt(d)
	}

	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		EnableShellCompletion: true,
		Usage:                 "Dynamic patching inventory built from CMDB patch groups",
		Description: `Queries the CMDB for live, installed servers of one OS and prints an
orchestrator inventory grouped by each server's patch group.

Hosts are left out when:
  - the hostname or patch group is on an ignore list (case-insensitive)
  - the record has no patch group
  - the hostname does not resolve (short names are qualified with --domain)

The inventory is written to stdout; diagnostics go to stderr and only with --debug.

# Examples

Print the inventory:
  patchinv --list

Show what is dropped and why:
  patchinv --debug --limit 200

Read credentials from a Kubernetes Secret:
  patchinv --credentials-secret ops/snow-creds

Serve the inventory over HTTP:
  patchinv --config /etc/patchinv.yaml serve --port 8080`,
		Commands: []*cli.Command{
			d.serveCmd(),
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable diagnostic logging on stderr",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "print the full inventory (default behavior)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "print variables of a single host (always empty for this inventory)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Value: defaults.MaxHosts,
				Usage: "maximum number of CMDB records to retrieve",
			},
			&cli.StringFlag{
				Name:  "os-filter",
				Value: defaults.OSFilter,
				Usage: "CMDB OS value to query",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				Sources: cli.EnvVars("PATCHINV_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before reading the environment",
			},
			&cli.StringFlag{
				Name:  "domain",
				Value: defaults.Domain,
				Usage: "domain appended to hostnames without a dot before lookup",
			},
			&cli.StringFlag{
				Name:  "group-field",
				Value: defaults.GroupField,
				Usage: "CMDB attribute used for grouping",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: defaults.LookupConcurrency,
				Usage: "number of concurrent hostname lookups",
			},
			&cli.DurationFlag{
				Name:  "lookup-timeout",
				Value: defaults.LookupTimeout,
				Usage: "timeout of a single hostname lookup",
			},
			&cli.StringFlag{
				Name:  "credentials-secret",
				Usage: "Kubernetes Secret (namespace/name) with username and password keys",
			},
			kubeconfigFlag,
			&cli.StringFlag{
				Name:  "metrics-textfile",
				Usage: "write run metrics to this file for the node_exporter textfile collector",
			},
			formatFlag,
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "output logs in JSON format",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging(cmd)
			return d.run(ctx, cmd)
		},
	}
}

// setupLogging installs the stderr logger. Without --debug or LOG_LEVEL
// only warnings and errors are shown.
func setupLogging(cmd *cli.Command) {
	logging.SetDefault(logging.Options{
		Level: logLevel(cmd, slog.LevelWarn),
		JSON:  cmd.Bool("log-json"),
	})
	slog.SetDefault(slog.Default().With(slog.String("run_id", uuid.New().String())))
}

// loadConfig layers the env file, config file, environment, and flags.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if err := config.LoadEnvFile(cmd.String("env-file")); err != nil {
		return nil, err
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("limit") {
		cfg.Limit = cmd.Int("limit")
	}
	if cmd.IsSet("os-filter") {
		cfg.OSFilter = cmd.String("os-filter")
	}
	if cmd.IsSet("domain") {
		cfg.Domain = cmd.String("domain")
	}
	if cmd.IsSet("group-field") {
		cfg.GroupField = cmd.String("group-field")
	}
	if cmd.IsSet("workers") {
		cfg.Workers = cmd.Int("workers")
	}
	if cmd.IsSet("lookup-timeout") {
		cfg.LookupTimeout = cmd.Duration("lookup-timeout")
	}
	if cmd.IsSet("credentials-secret") {
		cfg.CredentialsSecret = cmd.String("credentials-secret")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
