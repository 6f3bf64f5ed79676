package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Serializer writes a value in some encoding.
type Serializer interface {
	Serialize(ctx context.Context, v any) error
}

// Closer is implemented by serializers holding a resource.
type Closer interface {
	Close() error
}

// Writer encodes values to an io.Writer. Each value is rendered in full
// before anything is written, so a failed encoding never leaves a partial
// document on the output.
type Writer struct {
	format Format
	output io.Writer

	closeOnce sync.Once
	closeErr  error
}

// NewWriter returns a Writer for format writing to output.
// Unknown formats fall back to JSON; a nil output selects stdout.
func NewWriter(format Format, output io.Writer) *Writer {
	if format.IsUnknown() {
		slog.Warn("unknown output format, falling back to json", slog.String("format", string(format)))
		format = FormatJSON
	}
	if output == nil {
		output = os.Stdout
	}
	return &Writer{format: format, output: output}
}

// NewStdoutWriter returns a Writer writing to stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// Format returns the format the Writer produces.
func (w *Writer) Format() Format {
	return w.format
}

// Serialize encodes v and writes it.
func (w *Writer) Serialize(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(w.format, v)
	if err != nil {
		return err
	}

	if _, err := w.output.Write(data); err != nil {
		return fmt.Errorf("failed to write %s output: %w", w.format, err)
	}
	return nil
}

// Close closes the output unless it is stdout or stderr. It is safe to
// call more than once.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		if w.output == os.Stdout || w.output == os.Stderr {
			return
		}
		if c, ok := w.output.(io.Closer); ok {
			w.closeErr = c.Close()
		}
	})
	return w.closeErr
}

// Encode renders v in format. JSON is indented by two spaces; both
// encodings end with a newline.
func Encode(format Format, v any) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		j, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize to json: %w", err)
		}
		return append(j, '\n'), nil
	}
}
