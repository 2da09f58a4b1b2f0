package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
	qb "github.com/riskibarqy/fantasy-forecast/internal/platform/querybuilder"
)

// DatasetRepository is the feature store. Rows are kept as JSON payloads
// keyed by run, player and gameweek so the column set can grow with the
// configured windows and horizons without schema changes.
type DatasetRepository struct {
	db *sqlx.DB
}

func NewDatasetRepository(db *sqlx.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

func (r *DatasetRepository) SaveRun(ctx context.Context, run dataset.Run) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save dataset run: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	summary := run.Summary()
	query, args, err := qb.InsertModel("dataset_runs", datasetRunTableModel{
		ID:            summary.ID,
		Season:        summary.Season,
		MaxFinishedGW: summary.MaxFinishedGW,
		FeatureRows:   summary.FeatureRows,
		LabelRows:     summary.LabelRows,
		SnapshotRows:  summary.SnapshotRows,
		CreatedAt:     summary.CreatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert dataset run query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert dataset run id=%s: %w", run.ID, err)
	}

	featureRows, err := featurePayloadRows(run.ID, featureKindHistory, run.Features.Rows)
	if err != nil {
		return err
	}
	snapshotRows, err := featurePayloadRows(run.ID, featureKindSnapshot, run.Snapshot.Rows)
	if err != nil {
		return err
	}
	labelRows := make([][]any, 0, len(run.Labels.Rows))
	for _, row := range run.Labels.Rows {
		payload, err := sonic.MarshalString(row)
		if err != nil {
			return fmt.Errorf("encode label row player=%s gw=%d: %w", row.PlayerID, row.Gameweek, err)
		}
		labelRows = append(labelRows, []any{run.ID, row.PlayerID, row.Gameweek, row.Horizon, payload})
	}
	planRows := make([][]any, 0, len(run.Plans))
	for _, plan := range run.Plans {
		payload, err := sonic.MarshalString(plan)
		if err != nil {
			return fmt.Errorf("encode split plan horizon=%d: %w", plan.Horizon, err)
		}
		planRows = append(planRows, []any{run.ID, plan.Horizon, payload})
	}

	featureColumns := []string{"run_id", "kind", "player_id", "gameweek", "payload"}
	if err := insertRows(ctx, tx, "dataset_feature_rows", featureColumns, featureRows); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, "dataset_feature_rows", featureColumns, snapshotRows); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, "dataset_label_rows", []string{"run_id", "player_id", "gameweek", "horizon", "payload"}, labelRows); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, "dataset_split_plans", []string{"run_id", "horizon", "payload"}, planRows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save dataset run tx: %w", err)
	}
	return nil
}

func (r *DatasetRepository) GetLatestRun(ctx context.Context, season string) (dataset.RunSummary, bool, error) {
	query, args, err := qb.Select(
		"id",
		"season",
		"max_finished_gw",
		"feature_rows",
		"label_rows",
		"snapshot_rows",
		"created_at",
	).From("dataset_runs").
		Where(qb.Eq("season", season)).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return dataset.RunSummary{}, false, fmt.Errorf("build get latest dataset run query: %w", err)
	}

	var row datasetRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return dataset.RunSummary{}, false, nil
		}
		return dataset.RunSummary{}, false, fmt.Errorf("get latest dataset run season=%s: %w", season, err)
	}

	return dataset.RunSummary{
		ID:            row.ID,
		Season:        row.Season,
		MaxFinishedGW: row.MaxFinishedGW,
		FeatureRows:   row.FeatureRows,
		LabelRows:     row.LabelRows,
		SnapshotRows:  row.SnapshotRows,
		CreatedAt:     row.CreatedAt,
	}, true, nil
}

func (r *DatasetRepository) ListSnapshot(ctx context.Context, runID string) ([]dataset.FeatureRow, error) {
	query, args, err := qb.Select("payload::text AS payload").From("dataset_feature_rows").
		Where(qb.Eq("run_id", runID), qb.Eq("kind", featureKindSnapshot)).
		OrderBy("player_id", "gameweek").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list snapshot query: %w", err)
	}

	var rows []datasetPayloadRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list snapshot run=%s: %w", runID, err)
	}

	out := make([]dataset.FeatureRow, 0, len(rows))
	for _, row := range rows {
		var item dataset.FeatureRow
		if err := sonic.UnmarshalString(row.Payload, &item); err != nil {
			return nil, fmt.Errorf("decode snapshot row run=%s: %w", runID, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *DatasetRepository) ListPlans(ctx context.Context, runID string) ([]split.Plan, error) {
	query, args, err := qb.Select("payload::text AS payload").From("dataset_split_plans").
		Where(qb.Eq("run_id", runID)).
		OrderBy("horizon").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list split plans query: %w", err)
	}

	var rows []datasetPayloadRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list split plans run=%s: %w", runID, err)
	}

	out := make([]split.Plan, 0, len(rows))
	for _, row := range rows {
		var plan split.Plan
		if err := sonic.UnmarshalString(row.Payload, &plan); err != nil {
			return nil, fmt.Errorf("decode split plan run=%s: %w", runID, err)
		}
		out = append(out, plan)
	}
	return out, nil
}

func featurePayloadRows(runID, kind string, rows []dataset.FeatureRow) ([][]any, error) {
	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		payload, err := sonic.MarshalString(row)
		if err != nil {
			return nil, fmt.Errorf("encode %s row player=%s gw=%d: %w", kind, row.PlayerID, row.Gameweek, err)
		}
		out = append(out, []any{runID, kind, row.PlayerID, row.Gameweek, payload})
	}
	return out, nil
}
