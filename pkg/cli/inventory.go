/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/patch-inventory/pkg/cmdb"
	"github.com/NVIDIA/patch-inventory/pkg/config"
	cmderrors "github.com/NVIDIA/patch-inventory/pkg/errors"
	"github.com/NVIDIA/patch-inventory/pkg/inventory"
	k8sclient "github.com/NVIDIA/patch-inventory/pkg/k8s/client"
	"github.com/NVIDIA/patch-inventory/pkg/metrics"
	"github.com/NVIDIA/patch-inventory/pkg/serializer"
)

// emptyHostVars is the answer to --host; per-host variables are never
// populated, they ride on the --list output instead.
const emptyHostVars = "{}\n"

func (d *deps) run(ctx context.Context, cmd *cli.Command) (err error) {
	if cmd.IsSet("host") {
		slog.Debug("host variables requested", slog.String("host", cmd.String("host")))
		_, err = fmt.Fprint(d.stdout, emptyHostVars)
		return err
	}

	if path := cmd.String("metrics-textfile"); path != "" {
		defer func() {
			if werr := metrics.WriteTextfile(path); werr != nil {
				slog.Warn("failed to write metrics textfile", slog.String("path", path), slog.String("error", werr.Error()))
			}
		}()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return cmderrors.Wrap(cmderrors.ErrCodeInvalidRequest, "invalid output format", err)
	}

	pipeline, err := d.newPipeline(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	inv, _, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	w := serializer.NewWriter(outFormat, d.stdout)
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := w.Serialize(ctx, inv); err != nil {
		return cmderrors.Wrap(cmderrors.ErrCodeInternal, "failed to write inventory", err)
	}
	return nil
}

// newPipeline wires the CMDB client, filter, and resolver described by cfg.
func (d *deps) newPipeline(ctx context.Context, cmd *cli.Command, cfg *config.Config) (*inventory.Pipeline, error) {
	fetcher, err := d.newFetcher(ctx, cmd, cfg)
	if err != nil {
		return nil, err
	}

	resolver := d.resolver
	if resolver == nil {
		resolver = inventory.NewResolver(cfg.Domain, cfg.LookupTimeout)
	}

	builder := inventory.NewBuilder(
		inventory.NewFilter(cfg.FilterConfig()),
		resolver,
		inventory.WithWorkers(cfg.Workers),
		inventory.WithRateLimiter(cfg.LookupLimiter()),
	)

	return inventory.NewPipeline(fetcher, builder, cfg.OSFilter, cfg.Limit), nil
}

// newFetcher returns the injected fetcher or a CMDB client configured from
// cfg. Credentials come from the Kubernetes Secret when one is configured,
// otherwise from the environment.
func (d *deps) newFetcher(ctx context.Context, cmd *cli.Command, cfg *config.Config) (cmdb.Fetcher, error) {
	if d.fetcher != nil {
		return d.fetcher, nil
	}

	baseURL, err := cfg.CMDBURL()
	if err != nil {
		return nil, err
	}

	creds, err := d.credentials(ctx, cmd, cfg)
	if err != nil {
		return nil, err
	}

	return cmdb.NewClient(baseURL,
		cmdb.WithCredentials(creds),
		cmdb.WithTable(cfg.Table),
		cmdb.WithGroupField(cfg.GroupField),
		cmdb.WithTimeout(cfg.RequestTimeout),
	), nil
}

func (d *deps) credentials(ctx context.Context, cmd *cli.Command, cfg *config.Config) (cmdb.Credentials, error) {
	if cfg.CredentialsSecret == "" {
		return cmdb.CredentialsFromEnv()
	}

	kube := d.kube
	if kube == nil {
		var err error
		kube, err = k8sclient.NewClientset(cmd.String(kubeconfigFlag.Name))
		if err != nil {
			return cmdb.Credentials{}, cmderrors.Wrap(cmderrors.ErrCodeUnavailable, "failed to create kubernetes client", err)
		}
	}

	slog.Debug("reading cmdb credentials from secret", slog.String("secret", cfg.CredentialsSecret))
	return cmdb.CredentialsFromSecret(ctx, kube, cfg.CredentialsSecret)
}
