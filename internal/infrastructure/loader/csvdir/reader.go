package csvdir

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/fantasy-forecast/internal/usecase"
)

const byGameweekDir = "By Gameweek"

type gameweekDir struct {
	gameweek int
	path     string
}

// listGameweekDirs returns the GW<n> directories of a season in gameweek order.
func listGameweekDirs(seasonDir string) ([]gameweekDir, error) {
	root := filepath.Join(seasonDir, byGameweekDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}

	out := make([]gameweekDir, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || len(name) < 3 || !strings.EqualFold(name[:2], "gw") {
			continue
		}
		gw, err := strconv.Atoi(name[2:])
		if err != nil || gw <= 0 {
			continue
		}
		out = append(out, gameweekDir{gameweek: gw, path: filepath.Join(root, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].gameweek < out[j].gameweek })
	return out, nil
}

// csvTable is one CSV file with its header indexed by column name.
type csvTable struct {
	name     string
	gameweek int
	columns  map[string]int
	records  [][]string
}

// readTable loads path and checks that every required column is present.
// A missing file yields (nil, nil) so callers can fall back or skip.
func readTable(path, name string, gameweek int, required []string) (*csvTable, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = false

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &usecase.SchemaError{Table: name, Field: "header", Key: gwKey(gameweek), Reason: "empty file"}
	}
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}

	t := &csvTable{name: name, gameweek: gameweek, columns: make(map[string]int, len(header))}
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, dup := t.columns[col]; !dup {
			t.columns[col] = i
		}
	}
	for _, col := range required {
		if !t.has(col) {
			return nil, &usecase.SchemaError{Table: name, Field: col, Key: gwKey(gameweek), Reason: "required column missing"}
		}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		t.records = append(t.records, rec)
	}
	return t, nil
}

func (t *csvTable) has(col string) bool {
	_, ok := t.columns[col]
	return ok
}

func (t *csvTable) str(rec []string, col string) string {
	idx, ok := t.columns[col]
	if !ok || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func isBlank(v string) bool {
	switch strings.ToLower(v) {
	case "", "nan", "none", "null":
		return true
	default:
		return false
	}
}

// float parses an optional numeric column; blanks read as zero.
func (t *csvTable) float(rec []string, col, key string) (float64, error) {
	raw := t.str(rec, col)
	if isBlank(raw) {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &usecase.SchemaError{Table: t.name, Field: col, Key: key, Reason: fmt.Sprintf("not a number: %q", raw)}
	}
	return v, nil
}

// optInt parses a nullable integer column. Values like "63.0" are accepted.
func (t *csvTable) optInt(rec []string, col, key string) (*int, error) {
	raw := t.str(rec, col)
	if isBlank(raw) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &usecase.SchemaError{Table: t.name, Field: col, Key: key, Reason: fmt.Sprintf("not an integer: %q", raw)}
	}
	n := int(v)
	return &n, nil
}

// gameweekOf reads the row's gw column and falls back to the directory gameweek.
func (t *csvTable) gameweekOf(rec []string, key string, cols ...string) (int, error) {
	for _, col := range cols {
		if !t.has(col) || isBlank(t.str(rec, col)) {
			continue
		}
		v, err := t.float(rec, col, key)
		if err != nil {
			return 0, err
		}
		return int(v), nil
	}
	return t.gameweek, nil
}

func gwKey(gameweek int) string {
	return fmt.Sprintf("GW%d", gameweek)
}
