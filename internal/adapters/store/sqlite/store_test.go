package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"mac-advisor/internal/domain/model"

	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "advisor.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		t.Fatalf("set busy_timeout: %v", err)
	}

	if err := NewMigrator(db).Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db)
}

func sampleDispatch(id string, createdAt int64) model.DispatchInfo {
	return model.DispatchInfo{
		DispatchID:    id,
		CustomerEmail: "jane@example.com",
		MacModel:      "MacBookPro11,4",
		PriorityLevel: "HOT",
		SystemHealth:  "CRITICAL",
		LetterGrade:   "D-",
		PriorityScore: 10,
		CriticalCount: 3,
		ModerateCount: 1,
		FlagCount:     4,
		Opportunity:   737,
		CustomerSent:  true,
		SalesSent:     true,
		CreatedAt:     createdAt,
	}
}

func TestStore_SaveAndGetDispatch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	want := sampleDispatch("disp_abc123def456", 1700000000)
	if err := s.SaveDispatch(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetDispatch(ctx, want.DispatchID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("dispatch not found")
	}
	if *got != want {
		t.Fatalf("roundtrip mismatch:\n got=%+v\nwant=%+v", *got, want)
	}

	missing, err := s.GetDispatch(ctx, "disp_nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing dispatch should be nil, got %+v", missing)
	}
}

func TestStore_SaveDispatchRequiresID(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveDispatch(context.Background(), model.DispatchInfo{}); err == nil {
		t.Fatal("empty dispatch_id should fail")
	}
}

func TestStore_ListDispatchesOrdersAndPages(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i, id := range []string{"disp_a", "disp_b", "disp_c"} {
		d := sampleDispatch(id, int64(1700000000+i))
		if err := s.SaveDispatch(ctx, d); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	list, err := s.ListDispatches(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].DispatchID != "disp_c" || list[1].DispatchID != "disp_b" {
		t.Fatalf("newest first expected, got %+v", list)
	}

	page2, err := s.ListDispatches(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2) != 1 || page2[0].DispatchID != "disp_a" {
		t.Fatalf("page 2 mismatch: %+v", page2)
	}

	n, err := s.CountDispatches(ctx)
	if err != nil || n != 3 {
		t.Fatalf("count=%d err=%v", n, err)
	}
}

func TestMigrator_SetsSchemaVersionAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	v, err := s.GetSchemaMetaValue(ctx, "schema_version")
	if err != nil {
		t.Fatalf("schema_meta: %v", err)
	}
	if v != "1" {
		t.Fatalf("schema_version=%q, want 1", v)
	}

	// 重复迁移不应报错。
	if err := NewMigrator(s.db).Up(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
