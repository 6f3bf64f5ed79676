package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfileFrom(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "patchinv_test_total",
		Help: "Test counter",
	})
	reg.MustRegister(c)
	c.Add(3)

	path := filepath.Join(t.TempDir(), "patchinv.prom")
	require.NoError(t, WriteTextfileFrom(path, reg))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "patchinv_test_total 3")
}

func TestWriteTextfile_EmptyPathIsNoop(t *testing.T) {
	assert.NoError(t, WriteTextfile(""))
}

func TestWriteTextfileFrom_BadDirectory(t *testing.T) {
	err := WriteTextfileFrom(filepath.Join(t.TempDir(), "missing", "x.prom"), prometheus.NewRegistry())
	assert.Error(t, err)
}
