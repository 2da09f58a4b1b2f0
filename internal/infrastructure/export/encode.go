package export

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// jsonAPI sorts map keys so repeated runs produce identical files.
var jsonAPI = sonic.ConfigStd

func encodeTable(table dataset.Table, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return encodeCSV(table)
	case FormatJSON:
		return jsonAPI.MarshalIndent(table.Records(), "", "  ")
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func encodeCSV(table dataset.Table) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	w := csv.NewWriter(buf)
	if err := w.Write(table.Header); err != nil {
		return nil, err
	}
	record := make([]string, len(table.Header))
	for _, row := range table.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = formatCell(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// SplitTable flattens plans to one row per train/validation pair. The
// holdout pair is the last row of its horizon with holdout=true.
func SplitTable(plans []split.Plan) dataset.Table {
	table := dataset.Table{
		Header: []string{"horizon", "fold", "train_start", "train_end", "validation_start", "validation_end", "holdout", "max_finished_gw"},
	}
	for _, plan := range plans {
		for i, s := range plan.Splits {
			table.Rows = append(table.Rows, splitValues(plan, i, s))
		}
		if plan.Holdout != nil {
			table.Rows = append(table.Rows, splitValues(plan, len(plan.Splits), *plan.Holdout))
		}
	}
	return table
}

func splitValues(plan split.Plan, fold int, s split.Split) []any {
	return []any{
		plan.Horizon,
		fold,
		s.Train.Start,
		s.Train.End,
		s.Validation.Start,
		s.Validation.End,
		s.Holdout,
		plan.MaxFinishedGW,
	}
}

// SplitRowTable lists the label rows each fold trains and validates on,
// numbered the same way as SplitTable.
func SplitRowTable(plans []split.Plan) dataset.Table {
	table := dataset.Table{
		Header: []string{"horizon", "fold", "holdout", "set", "label_row"},
	}
	for _, plan := range plans {
		folds := plan.Splits
		if plan.Holdout != nil {
			folds = append(folds[:len(folds):len(folds)], *plan.Holdout)
		}
		for fold, s := range folds {
			for _, row := range s.TrainRows {
				table.Rows = append(table.Rows, []any{plan.Horizon, fold, s.Holdout, "train", row})
			}
			for _, row := range s.ValidationRows {
				table.Rows = append(table.Rows, []any{plan.Horizon, fold, s.Holdout, "validation", row})
			}
		}
	}
	return table
}
