package advisorypdf

import (
	"os"
	"testing"
	"time"

	"mac-advisor/internal/domain/model"
	"mac-advisor/internal/services/diagnosis"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestGenerate_WritesFileAndHash(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := model.ScanRecord{
		MacModel:        "iMac15,1",
		TotalRAM:        fptr(8),
		BatteryCapacity: iptr(60),
		LastBackupDate:  "Never",
	}
	a := diagnosis.NewEngine(model.DefaultPricing()).Evaluate(rec, now)

	res, err := Generate(Options{
		ReportDir:  t.TempDir(),
		DispatchID: "disp_abc123def456",
		Record:     rec,
		Analysis:   a,
		Now:        now,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	info, err := os.Stat(res.PDFPath)
	if err != nil {
		t.Fatalf("stat pdf: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("pdf is empty")
	}
	if len(res.PDFSHA256) != 64 {
		t.Fatalf("sha256=%q", res.PDFSHA256)
	}
	if res.GeneratedAt != now.Unix() {
		t.Fatalf("generated_at=%d", res.GeneratedAt)
	}
}

func TestGenerate_RequiresDirAndID(t *testing.T) {
	if _, err := Generate(Options{DispatchID: "disp_x"}); err == nil {
		t.Fatal("missing report dir should fail")
	}
	if _, err := Generate(Options{ReportDir: t.TempDir()}); err == nil {
		t.Fatal("missing dispatch id should fail")
	}
}
