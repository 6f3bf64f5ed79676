package inventory

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/patch-inventory/pkg/cmdb"
	"github.com/NVIDIA/patch-inventory/pkg/defaults"
	cmderrors "github.com/NVIDIA/patch-inventory/pkg/errors"
)

// reasonUnresolvable labels records dropped by a failed lookup.
const reasonUnresolvable Reason = "unresolvable"

// Stats summarizes a Build.
type Stats struct {
	Retrieved    int `json:"retrieved" yaml:"retrieved"`
	Ignored      int `json:"ignored" yaml:"ignored"`
	Unresolvable int `json:"unresolvable" yaml:"unresolvable"`
	Included     int `json:"included" yaml:"included"`
	Groups       int `json:"groups" yaml:"groups"`
}

// Builder runs the filter, resolve, group, and assemble pipeline.
type Builder struct {
	filter   *Filter
	resolver HostResolver
	workers  int
	limiter  *rate.Limiter
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithWorkers bounds the number of lookups in flight.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithRateLimiter paces lookups. A nil limiter disables pacing.
func WithRateLimiter(l *rate.Limiter) BuilderOption {
	return func(b *Builder) {
		b.limiter = l
	}
}

// NewBuilder returns a Builder using filter and resolver.
func NewBuilder(filter *Filter, resolver HostResolver, opts ...BuilderOption) *Builder {
	b := &Builder{
		filter:   filter,
		resolver: resolver,
		workers:  defaults.LookupConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build turns records into an inventory. Ineligible and unresolvable
// records are dropped; the only error is cancellation of ctx.
func (b *Builder) Build(ctx context.Context, records []cmdb.HostRecord) (*Inventory, Stats, error) {
	start := time.Now()
	defer func() {
		buildDuration.Observe(time.Since(start).Seconds())
	}()

	stats := Stats{Retrieved: len(records)}

	eligible := b.eligible(records, &stats)

	results, err := b.resolveAll(ctx, eligible)
	if err != nil {
		return nil, stats, err
	}

	survivors := make([]cmdb.HostRecord, 0, len(eligible))
	for i, rec := range eligible {
		if !results[i].Valid {
			stats.Unresolvable++
			recordsDroppedTotal.WithLabelValues(string(reasonUnresolvable)).Inc()
			slog.Debug("dropping host due to dns failure",
				slog.String("host", rec.Name),
				slog.String("lookup", results[i].Hostname),
			)
			continue
		}
		survivors = append(survivors, rec)
	}
	stats.Included = len(survivors)

	slog.Debug("total hosts after filtering", slog.Int("count", stats.Included))

	grouped := Group(survivors)
	slog.Debug("hosts grouped", slog.Any("groups", grouped.Names()))

	inv := Assemble(grouped)
	stats.Groups = len(inv.groups)

	inventoryHosts.Set(float64(len(inv.all)))
	inventoryGroups.Set(float64(stats.Groups))

	return inv, stats, nil
}

// eligible applies the filter in input order.
func (b *Builder) eligible(records []cmdb.HostRecord, stats *Stats) []cmdb.HostRecord {
	out := make([]cmdb.HostRecord, 0, len(records))
	for _, rec := range records {
		if ignore, reason := b.filter.Ignore(rec); ignore {
			stats.Ignored++
			recordsDroppedTotal.WithLabelValues(string(reason)).Inc()
			slog.Debug("ignoring host",
				slog.String("host", rec.Name),
				slog.String("group", rec.Group),
				slog.String("reason", string(reason)),
			)
			continue
		}
		if near, ok := b.filter.NearMiss(rec.Group); ok {
			slog.Debug("group resembles an ignored group",
				slog.String("host", rec.Name),
				slog.String("group", rec.Group),
				slog.String("ignored_group", near),
			)
		}
		out = append(out, rec)
	}
	return out
}

// resolveAll looks up every record concurrently. results[i] belongs to
// records[i]; workers never share anything else.
func (b *Builder) resolveAll(ctx context.Context, records []cmdb.HostRecord) ([]ResolutionResult, error) {
	results := make([]ResolutionResult, len(records))
	if len(records) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if b.limiter != nil {
				if err := b.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			results[i] = b.resolver.Resolve(gctx, records[i].Name)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, cmderrors.Wrap(cmderrors.ErrCodeTimeout, "hostname resolution interrupted", err)
	}
	return results, nil
}
