// Package testdb opens isolated in-memory SQLite databases for tests.
//
// Every call gets its own shared-cache database named after the test, so
// parallel tests never see each other's rows:
//
//	db := testdb.New(t)
//	f := testdb.Fixtures(t, db)
//	app := f.Application("user-1", model.StatusSaved, nil)
package testdb

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pathakanu/jobMemo/internal/database"
	"github.com/pathakanu/jobMemo/internal/model"
)

// New returns a migrated in-memory database that is closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite memory: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection keeps concurrent test goroutines from tripping over SQLite table locks.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Factory inserts users, applications and reminders with sensible defaults.
type Factory struct {
	t  testing.TB
	db *gorm.DB
	n  int
}

func Fixtures(t testing.TB, db *gorm.DB) *Factory {
	return &Factory{t: t, db: db}
}

func (f *Factory) next(prefix string) string {
	f.n++
	return fmt.Sprintf("%s-%d", prefix, f.n)
}

// User inserts a user with the given id.
func (f *Factory) User(id string) model.User {
	f.t.Helper()
	f.n++
	user := model.User{ID: id, Name: "User " + id, Contact: fmt.Sprintf("+1555%07d", f.n)}
	if err := f.db.Create(&user).Error; err != nil {
		f.t.Fatalf("seed user: %v", err)
	}
	return user
}

// Application inserts an application owned by ownerID.
func (f *Factory) Application(ownerID string, status model.ApplicationStatus, interviewDate *time.Time) model.Application {
	f.t.Helper()
	app := model.Application{
		ID:            f.next("app"),
		OwnerID:       ownerID,
		Title:         "Backend Engineer",
		Company:       "Acme",
		Status:        status,
		InterviewDate: interviewDate,
	}
	if err := f.db.Create(&app).Error; err != nil {
		f.t.Fatalf("seed application: %v", err)
	}
	return app
}

// Reminder inserts r as is, bypassing creation validation so past-dated rows can be seeded.
func (f *Factory) Reminder(r model.Reminder) model.Reminder {
	f.t.Helper()
	if r.Category == "" {
		r.Category = model.CategoryFollowUp
	}
	r.TriggerAt = r.TriggerAt.UTC()
	if err := f.db.Create(&r).Error; err != nil {
		f.t.Fatalf("seed reminder: %v", err)
	}
	return r
}
