package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"seraphis-core/internal/testutil"
)

func TestLoadConfigDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")
	if AppConfig.Scan.MaxChunkSize != 1000 {
		t.Fatalf("unexpected max chunk size: %d", AppConfig.Scan.MaxChunkSize)
	}
	if AppConfig.TaskPool.NumWorkers != 4 {
		t.Fatalf("unexpected num workers: %d", AppConfig.TaskPool.NumWorkers)
	}
}

func TestLoadConfigOverride(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("aggressive-scan")
	if AppConfig.Scan.MaxChunkSize != 5000 {
		t.Fatalf("expected MaxChunkSize 5000, got %d", AppConfig.Scan.MaxChunkSize)
	}
	if AppConfig.TaskPool.NumWorkers != 16 {
		t.Fatalf("expected overridden NumWorkers 16, got %d", AppConfig.TaskPool.NumWorkers)
	}
	if AppConfig.Scan.ReorgAvoidanceDepth != 10 {
		t.Fatalf("expected unmerged field to keep default, got %d", AppConfig.Scan.ReorgAvoidanceDepth)
	}
}

func TestLoadConfigSandbox(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	data := []byte("scan:\n  max_chunk_size: 7\n  reorg_avoidance_depth: 3\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.Scan.MaxChunkSize != 7 {
		t.Fatalf("expected max chunk size 7, got %d", AppConfig.Scan.MaxChunkSize)
	}
	if AppConfig.Scan.ReorgAvoidanceDepth != 3 {
		t.Fatalf("expected reorg avoidance depth 3, got %d", AppConfig.Scan.ReorgAvoidanceDepth)
	}
}
