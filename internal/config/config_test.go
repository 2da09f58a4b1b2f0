package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn=\"https://token@api.uptrace.dev\"")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PipelineDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PIPELINE_CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	want := DefaultPipelineConfig()
	if !reflect.DeepEqual(cfg.Pipeline, want) {
		t.Fatalf("unexpected pipeline config: got=%+v want=%+v", cfg.Pipeline, want)
	}
	if cfg.Pipeline.SubEarlyRateThreshold != 0.4 || cfg.Pipeline.AvgMinutesThreshold != 60 {
		t.Fatalf("unexpected substitution thresholds: %+v", cfg.Pipeline)
	}
	if cfg.OutputFormat != OutputCSV {
		t.Fatalf("unexpected output format: %q", cfg.OutputFormat)
	}
}

func TestLoad_PipelineEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("ROLLING_WINDOWS", "2, 4,8")
	t.Setenv("HORIZONS", "1,3")
	t.Setenv("HOLDOUT_GWS", "5")
	t.Setenv("SUB_EARLY_RATE_THRESHOLD", "0.25")
	t.Setenv("AVG_MINUTES_THRESHOLD", "45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(cfg.Pipeline.RollingWindows, []int{2, 4, 8}) {
		t.Fatalf("unexpected windows: %v", cfg.Pipeline.RollingWindows)
	}
	if !reflect.DeepEqual(cfg.Pipeline.Horizons, []int{1, 3}) {
		t.Fatalf("unexpected horizons: %v", cfg.Pipeline.Horizons)
	}
	if cfg.Pipeline.HoldoutGameweeks != 5 {
		t.Fatalf("unexpected holdout: got=%d want=5", cfg.Pipeline.HoldoutGameweeks)
	}
	if cfg.Pipeline.SubEarlyRateThreshold != 0.25 || cfg.Pipeline.AvgMinutesThreshold != 45 {
		t.Fatalf("unexpected thresholds: %+v", cfg.Pipeline)
	}
}

func TestLoad_PipelineValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "holdout below range", key: "HOLDOUT_GWS", value: "2"},
		{name: "holdout above range", key: "HOLDOUT_GWS", value: "6"},
		{name: "zero window", key: "ROLLING_WINDOWS", value: "3,0"},
		{name: "rate above one", key: "SUB_EARLY_RATE_THRESHOLD", value: "1.5"},
		{name: "sub on after early sub", key: "SUB_ON_MINUTE", value: "80"},
		{name: "not a number", key: "MAX_WORKERS", value: "many"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv("UPTRACE_ENABLED", "false")
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_PipelineConfigFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	content := []byte("pipeline:\n  rolling_windows: [4, 8]\n  max_workers: 2\n  avg_minutes_threshold: 55\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PIPELINE_CONFIG_FILE", path)
	t.Setenv("MAX_WORKERS", "6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(cfg.Pipeline.RollingWindows, []int{4, 8}) {
		t.Fatalf("unexpected windows from file: %v", cfg.Pipeline.RollingWindows)
	}
	if cfg.Pipeline.AvgMinutesThreshold != 55 {
		t.Fatalf("unexpected avg minutes threshold: %v", cfg.Pipeline.AvgMinutesThreshold)
	}
	if cfg.Pipeline.MaxWorkers != 6 {
		t.Fatalf("env must win over file: got=%d want=6", cfg.Pipeline.MaxWorkers)
	}
	if cfg.Pipeline.SubEarlyRateThreshold != 0.4 {
		t.Fatalf("unset file keys keep defaults, got=%v", cfg.Pipeline.SubEarlyRateThreshold)
	}
}

func TestLoad_MissingPipelineConfigFile(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PIPELINE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing pipeline config file")
	}
}

func TestLoad_OutputFormatValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("OUTPUT_FORMAT", "parquet")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported OUTPUT_FORMAT")
	}

	t.Setenv("OUTPUT_FORMAT", "JSON")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.OutputFormat != OutputJSON {
		t.Fatalf("unexpected output format: %q", cfg.OutputFormat)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "fantasy-forecast-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "fantasy-forecast-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_StoreRequiresDBURL(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("STORE_ENABLED", "true")
	t.Setenv("DB_URL", "postgres://u:p@db:5432/forecast?sslmode=disable")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.StoreEnabled || cfg.DBURL != "postgres://u:p@db:5432/forecast?sslmode=disable" {
		t.Fatalf("unexpected store config: enabled=%v url=%q", cfg.StoreEnabled, cfg.DBURL)
	}
}

func TestLoad_DataSourceAndStoreSettings(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DataSource != SourceCSV {
		t.Fatalf("unexpected data source: got=%q want=%q", cfg.DataSource, SourceCSV)
	}
	if !cfg.StoreCircuitBreaker.Enabled || cfg.StoreCircuitBreaker.FailureThreshold != 5 {
		t.Fatalf("unexpected breaker defaults: %+v", cfg.StoreCircuitBreaker)
	}

	t.Setenv("DATA_SOURCE", "Postgres")
	t.Setenv("STORE_CACHE_TTL", "1m")
	t.Setenv("STORE_CB_ENABLED", "false")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DataSource != SourcePostgres {
		t.Fatalf("unexpected data source: got=%q want=%q", cfg.DataSource, SourcePostgres)
	}
	if cfg.StoreCacheTTL.Minutes() != 1 {
		t.Fatalf("unexpected store cache ttl: %v", cfg.StoreCacheTTL)
	}
	if cfg.StoreCircuitBreaker.Enabled {
		t.Fatalf("expected breaker to be disabled")
	}

	t.Setenv("DATA_SOURCE", "ftp")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported DATA_SOURCE")
	}
}
