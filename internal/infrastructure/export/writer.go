package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/logging"
)

const (
	featuresName  = "features"
	labelsName    = "labels"
	splitsName    = "splits"
	splitRowsName = "split_rows"
	snapshotName  = "snapshot"
)

// Writer stores run outputs under <dir>/<season>/ as CSV or JSON files.
type Writer struct {
	dir    string
	format string
	logger *logging.Logger
}

func NewWriter(dir, format string, logger *logging.Logger) (*Writer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatCSV && format != FormatJSON {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{dir: dir, format: format, logger: logger}, nil
}

// WriteRun writes every output of the run and returns the file paths.
func (w *Writer) WriteRun(ctx context.Context, run dataset.Run) ([]string, error) {
	steps := []func(context.Context, dataset.Run) (string, error){
		w.WriteFeatures,
		w.WriteLabels,
		w.WriteSplits,
		w.WriteSplitRows,
		w.WriteSnapshot,
	}

	paths := make([]string, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path, err := step(ctx, run)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (w *Writer) WriteFeatures(ctx context.Context, run dataset.Run) (string, error) {
	return w.writeTable(ctx, run.Season, featuresName, dataset.FeatureTable(run.Features.Rows))
}

func (w *Writer) WriteLabels(ctx context.Context, run dataset.Run) (string, error) {
	return w.writeTable(ctx, run.Season, labelsName, dataset.LabelTable(run.Labels.Rows))
}

func (w *Writer) WriteSnapshot(ctx context.Context, run dataset.Run) (string, error) {
	return w.writeTable(ctx, run.Season, snapshotName, dataset.FeatureTable(run.Snapshot.Rows))
}

// WriteSplits keeps the nested plan shape in JSON and flattens it for CSV.
func (w *Writer) WriteSplits(ctx context.Context, run dataset.Run) (string, error) {
	if w.format == FormatJSON {
		plans := run.Plans
		if plans == nil {
			plans = []split.Plan{}
		}
		body, err := jsonAPI.MarshalIndent(plans, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", splitsName, err)
		}
		return w.write(ctx, run.Season, splitsName, body, len(plans))
	}
	return w.writeTable(ctx, run.Season, splitsName, SplitTable(run.Plans))
}

// WriteSplitRows writes the label row membership of every fold.
func (w *Writer) WriteSplitRows(ctx context.Context, run dataset.Run) (string, error) {
	return w.writeTable(ctx, run.Season, splitRowsName, SplitRowTable(run.Plans))
}

func (w *Writer) writeTable(ctx context.Context, season, name string, table dataset.Table) (string, error) {
	body, err := encodeTable(table, w.format)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	return w.write(ctx, season, name, body, len(table.Rows))
}

// write replaces the target file atomically.
func (w *Writer) write(ctx context.Context, season, name string, body []byte, rows int) (string, error) {
	dir := filepath.Join(w.dir, season)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, name+"."+w.format)
	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return "", fmt.Errorf("create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename %s: %w", path, err)
	}

	w.logger.InfoContext(ctx, "export written", "path", path, "rows", rows, "format", w.format)
	return path, nil
}
