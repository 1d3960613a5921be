package service

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/liftlog/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupWorkoutTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.WorkoutSession{}, &db.Completion{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func testSlot(week, day string) SlotKey {
	return SlotKey{UserID: 1, PlanID: 10, WeekID: week, DayID: day}
}

func TestWorkoutSessionSaveOverwrites(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	svc := NewWorkoutSessionService(gdb)
	key := testSlot("w1", "d1")

	if err := svc.Save(key, json.RawMessage(`{"sets":3}`)); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := svc.Save(key, json.RawMessage(`{"sets":5}`)); err != nil {
		t.Fatalf("second Save returned error: %v", err)
	}

	var count int64
	if err := gdb.Model(&db.WorkoutSession{}).Count(&count).Error; err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 session row, got %d", count)
	}

	doc, err := svc.GetLast(key)
	if err != nil {
		t.Fatalf("GetLast returned error: %v", err)
	}
	if !reflect.DeepEqual(doc, map[string]any{"sets": float64(5)}) {
		t.Fatalf("expected last payload to win, got %v", doc)
	}

	// 未保存过的格位返回 nil
	empty, err := svc.GetLast(testSlot("w1", "d2"))
	if err != nil {
		t.Fatalf("GetLast returned error: %v", err)
	}
	if empty != nil {
		t.Fatalf("expected nil for unsaved slot, got %v", empty)
	}
}

func TestWorkoutSessionValidation(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	svc := NewWorkoutSessionService(gdb)

	if err := svc.Save(SlotKey{UserID: 1, PlanID: 10, WeekID: "", DayID: "d1"}, nil); !errors.Is(err, ErrSlotIncomplete) {
		t.Fatalf("expected ErrSlotIncomplete, got %v", err)
	}
	if _, err := svc.GetLast(SlotKey{UserID: 1, PlanID: 0, WeekID: "w1", DayID: "d1"}); !errors.Is(err, ErrSlotIncomplete) {
		t.Fatalf("expected ErrSlotIncomplete, got %v", err)
	}
	if err := svc.Save(testSlot("w1", "d1"), json.RawMessage(`not json`)); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestWorkoutSessionCorruptedRowFailsClosed(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	svc := NewWorkoutSessionService(gdb)
	key := testSlot("w1", "d1")

	if err := svc.Save(key, json.RawMessage(`{"sets":3}`)); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := gdb.Model(&db.WorkoutSession{}).
		Where("week_id = ?", "w1").
		Update("data", "{corrupted").Error; err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	if _, err := svc.GetLast(key); err == nil {
		t.Fatal("expected error for corrupted stored document")
	}
}

func TestCompletionSetAndStatus(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	svc := NewCompletionService(gdb)
	key := testSlot("w1", "d1")

	if err := svc.SetCompleted(key, true); err != nil {
		t.Fatalf("SetCompleted returned error: %v", err)
	}
	completed, err := svc.GetStatus(key)
	if err != nil {
		t.Fatalf("GetStatus returned error: %v", err)
	}
	if !completed {
		t.Fatal("expected slot to be completed")
	}

	if err := svc.SetCompleted(key, false); err != nil {
		t.Fatalf("SetCompleted(false) returned error: %v", err)
	}
	completed, err = svc.GetStatus(key)
	if err != nil {
		t.Fatalf("GetStatus returned error: %v", err)
	}
	if completed {
		t.Fatal("expected slot to be incomplete after unmark")
	}

	// 清除不存在的标记同样成功
	if err := svc.SetCompleted(key, false); err != nil {
		t.Fatalf("second SetCompleted(false) returned error: %v", err)
	}

	// 取消后可再次标记（不被历史行阻塞）
	if err := svc.SetCompleted(key, true); err != nil {
		t.Fatalf("re-mark returned error: %v", err)
	}
}

func TestCompletionUpsertKeepsSingleRow(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	svc := NewCompletionService(gdb)
	key := testSlot("w1", "d1")

	if err := svc.SetCompleted(key, true); err != nil {
		t.Fatalf("SetCompleted returned error: %v", err)
	}
	if err := svc.SetCompleted(key, true); err != nil {
		t.Fatalf("second SetCompleted returned error: %v", err)
	}

	var count int64
	if err := gdb.Model(&db.Completion{}).Count(&count).Error; err != nil {
		t.Fatalf("count completions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 completion row, got %d", count)
	}
}

func seedCompletionAt(t *testing.T, gdb *gorm.DB, svc *CompletionService, key SlotKey, at time.Time) {
	t.Helper()
	if err := svc.SetCompleted(key, true); err != nil {
		t.Fatalf("SetCompleted returned error: %v", err)
	}
	if err := gdb.Model(&db.Completion{}).
		Where("user_id = ? AND plan_id = ? AND week_id = ? AND day_id = ?",
			key.UserID, key.PlanID, key.WeekID, key.DayID).
		Update("completed_at", at).Error; err != nil {
		t.Fatalf("seed completed_at: %v", err)
	}
}

func TestCompletionTimelineQueries(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	svc := NewCompletionService(gdb)
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	seedCompletionAt(t, gdb, svc, testSlot("w1", "d1"), base)
	seedCompletionAt(t, gdb, svc, testSlot("w1", "d2"), base.Add(2*time.Hour))
	seedCompletionAt(t, gdb, svc, testSlot("w2", "d1"), base.Add(time.Hour))

	all, err := svc.GetAll(1, 10)
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 completions, got %d", len(all))
	}

	// 从旧到新：w1/d1 → w2/d1 → w1/d2
	order := []struct{ week, day string }{
		{"w1", "d1"},
		{"w2", "d1"},
		{"w1", "d2"},
	}
	for i, want := range order {
		if all[i].WeekID != want.week || all[i].DayID != want.day {
			t.Fatalf("unexpected order at %d: %s/%s", i, all[i].WeekID, all[i].DayID)
		}
	}

	last, err := svc.GetLast(1, 10)
	if err != nil {
		t.Fatalf("GetLast returned error: %v", err)
	}
	if last == nil {
		t.Fatal("expected a last completion")
	}
	if last.WeekID != "w1" || last.DayID != "d2" {
		t.Fatalf("unexpected last completion: %s/%s", last.WeekID, last.DayID)
	}

	// 其他计划下没有任何完成标记
	none, err := svc.GetLast(1, 99)
	if err != nil {
		t.Fatalf("GetLast returned error: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil for empty plan, got %v", none)
	}

	empty, err := svc.GetAll(1, 99)
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no completions, got %d", len(empty))
	}
}
