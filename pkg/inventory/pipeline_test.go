package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/patch-inventory/pkg/cmdb"
	cmderrors "github.com/NVIDIA/patch-inventory/pkg/errors"
)

type fetchFunc func(ctx context.Context, osFilter string, limit int) ([]cmdb.HostRecord, error)

func (f fetchFunc) Fetch(ctx context.Context, osFilter string, limit int) ([]cmdb.HostRecord, error) {
	return f(ctx, osFilter, limit)
}

func TestPipeline_Run(t *testing.T) {
	var gotOS string
	var gotLimit int
	fetcher := fetchFunc(func(_ context.Context, osFilter string, limit int) ([]cmdb.HostRecord, error) {
		gotOS, gotLimit = osFilter, limit
		return []cmdb.HostRecord{
			{Name: "web01", Group: "webservers"},
			{Name: "drhost01", Group: "webservers"},
			{Name: "db01", Group: "dbteam"},
		}, nil
	})

	resolver := NewResolver("example.com", time.Second, WithLookupFunc(stubLookup(map[string]string{
		"web01.example.com":    "10.0.0.1",
		"drhost01.example.com": "10.0.0.2",
		"db01.example.com":     "10.0.0.3",
	})))
	builder := NewBuilder(NewFilter(FilterConfig{IgnoreHosts: []string{"drhost01"}}), resolver)

	inv, stats, err := NewPipeline(fetcher, builder, "Linux Red Hat", 100).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Linux Red Hat", gotOS)
	assert.Equal(t, 100, gotLimit)
	assert.Equal(t, []string{"web01", "db01"}, inv.All())
	assert.Equal(t, []string{"webservers", "dbteam"}, inv.Groups())
	assert.Equal(t, Stats{Retrieved: 3, Ignored: 1, Included: 2, Groups: 2}, stats)
}

func TestPipeline_RunFetchError(t *testing.T) {
	want := cmderrors.New(cmderrors.ErrCodeUnavailable, "cmdb unreachable")
	fetcher := fetchFunc(func(context.Context, string, int) ([]cmdb.HostRecord, error) {
		return nil, want
	})

	builder := NewBuilder(NewFilter(FilterConfig{}), NewResolver("", time.Second, WithLookupFunc(stubLookup(nil))))

	inv, _, err := NewPipeline(fetcher, builder, "Linux Red Hat", 10).Run(context.Background())
	require.ErrorIs(t, err, want)
	assert.Nil(t, inv)
}
