package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRun_AtMostOnceKeepsExactlyOneDepositPerCall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LossReq = 0
	cfg.LossRep = 0
	cfg.Retries = 2
	cfg.Timeout = 100 * time.Millisecond
	cfg.Retransmits = 3
	cfg.Concurrency = 2

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := Run(ctx, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	for _, r := range results {
		if r.SuccessfulCalls != cfg.Retransmits {
			t.Fatalf("%s: successful calls = %d, want %d (no loss configured)", r.Semantic, r.SuccessfulCalls, cfg.Retransmits)
		}
		wantFinal := r.StartingBalance + float64(cfg.Retransmits)*cfg.DepositAmount
		if r.FinalBalance != wantFinal {
			t.Fatalf("%s: final balance = %v, want %v", r.Semantic, r.FinalBalance, wantFinal)
		}
	}
}

func TestWriteReport_ProducesReadableFile(t *testing.T) {
	results := []Result{
		{Semantic: "atmost", AccountNo: 10001, StartingBalance: 100, FinalBalance: 110, SuccessfulCalls: 1},
		{Semantic: "atleast", AccountNo: 10002, StartingBalance: 100, FinalBalance: 130, SuccessfulCalls: 3},
	}

	path := filepath.Join(t.TempDir(), "report.txt")
	if err := WriteReport(path, results); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected a non-empty report")
	}
}
