// Package metrics exports run metrics for the node_exporter textfile collector.
//
// patchinv runs as a short-lived process, so there is no endpoint to
// scrape. Instead the default registry can be written to a .prom file that
// node_exporter picks up from its --collector.textfile.directory.
package metrics

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes the default registry to path. An empty path is a no-op.
func WriteTextfile(path string) error {
	return WriteTextfileFrom(path, prometheus.DefaultGatherer)
}

// WriteTextfileFrom writes the metrics gathered from g to path atomically.
func WriteTextfileFrom(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile %q: %w", path, err)
	}
	slog.Debug("wrote metrics textfile", slog.String("path", path))
	return nil
}
