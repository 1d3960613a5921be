package service

import (
	"errors"
	"testing"

	"github.com/liftlog/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPreferenceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.UserPreference{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestPreferenceSetUpsertsWholeRow(t *testing.T) {
	gdb, cleanup := setupPreferenceTestDB(t)
	defer cleanup()

	svc := NewPreferenceService(gdb)

	if err := svc.Set(1, PreferenceInput{LastPlanID: 3, LastWeekID: "w1", LastDayID: "d1"}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := svc.Set(1, PreferenceInput{LastPlanID: 4, LastWeekID: "w2", LastDayID: "d3"}); err != nil {
		t.Fatalf("second Set returned error: %v", err)
	}

	var count int64
	if err := gdb.Model(&db.UserPreference{}).Count(&count).Error; err != nil {
		t.Fatalf("count preferences: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 preference row, got %d", count)
	}

	pref, err := svc.Get(1)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if pref == nil {
		t.Fatal("expected preferences to exist")
	}
	if pref.LastPlanID != 4 || pref.LastWeekID != "w2" || pref.LastDayID != "d3" {
		t.Fatalf("expected whole-row replace, got %+v", pref)
	}
}

func TestPreferenceGetMissingReturnsNil(t *testing.T) {
	gdb, cleanup := setupPreferenceTestDB(t)
	defer cleanup()

	svc := NewPreferenceService(gdb)
	pref, err := svc.Get(42)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if pref != nil {
		t.Fatalf("expected nil preferences, got %+v", pref)
	}
}

func TestPreferenceSetValidation(t *testing.T) {
	gdb, cleanup := setupPreferenceTestDB(t)
	defer cleanup()

	svc := NewPreferenceService(gdb)
	if err := svc.Set(1, PreferenceInput{LastPlanID: 0, LastWeekID: "w1", LastDayID: "d1"}); !errors.Is(err, ErrSlotIncomplete) {
		t.Fatalf("expected ErrSlotIncomplete, got %v", err)
	}
	if err := svc.Set(1, PreferenceInput{LastPlanID: 2, LastWeekID: " ", LastDayID: "d1"}); !errors.Is(err, ErrSlotIncomplete) {
		t.Fatalf("expected ErrSlotIncomplete, got %v", err)
	}
}
