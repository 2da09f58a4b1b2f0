package postgres

import "time"

const (
	featureKindHistory  = "feature"
	featureKindSnapshot = "snapshot"
)

type datasetRunTableModel struct {
	ID            string    `db:"id"`
	Season        string    `db:"season"`
	MaxFinishedGW int       `db:"max_finished_gw"`
	FeatureRows   int       `db:"feature_rows"`
	LabelRows     int       `db:"label_rows"`
	SnapshotRows  int       `db:"snapshot_rows"`
	CreatedAt     time.Time `db:"created_at"`
}

type datasetPayloadRow struct {
	Payload string `db:"payload"`
}
