package inventory

import (
	"context"
	"log/slog"

	"github.com/NVIDIA/patch-inventory/pkg/cmdb"
)

// Pipeline retrieves records from the CMDB and builds the inventory from
// them. Retrieval failures are returned unchanged and nothing is built.
type Pipeline struct {
	fetcher  cmdb.Fetcher
	builder  *Builder
	osFilter string
	limit    int
}

// NewPipeline returns a pipeline querying fetcher for osFilter, bounded by
// limit records.
func NewPipeline(fetcher cmdb.Fetcher, builder *Builder, osFilter string, limit int) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		builder:  builder,
		osFilter: osFilter,
		limit:    limit,
	}
}

// Run fetches and builds one inventory.
func (p *Pipeline) Run(ctx context.Context) (*Inventory, Stats, error) {
	slog.Debug("retrieving hosts from cmdb",
		slog.String("os", p.osFilter),
		slog.Int("limit", p.limit),
	)

	records, err := p.fetcher.Fetch(ctx, p.osFilter, p.limit)
	if err != nil {
		return nil, Stats{}, err
	}

	slog.Debug("retrieved hosts", slog.Int("count", len(records)))

	inv, stats, err := p.builder.Build(ctx, records)
	if err != nil {
		return nil, stats, err
	}

	slog.Debug("inventory built",
		slog.Int("retrieved", stats.Retrieved),
		slog.Int("ignored", stats.Ignored),
		slog.Int("unresolvable", stats.Unresolvable),
		slog.Int("included", stats.Included),
		slog.Int("groups", stats.Groups),
	)
	return inv, stats, nil
}
