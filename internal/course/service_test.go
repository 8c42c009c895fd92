package course_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/course"
	"github.com/saulo-duarte/luma-lambda/internal/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) course.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&user.User{}, &course.Course{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return course.NewService(course.NewRepository(db))
}

func TestCourseCRUD(t *testing.T) {
	svc := newTestService(t)
	owner := uuid.New()
	stranger := uuid.New()

	created, err := svc.Create(owner, course.CreateCourseDTO{Title: "Linear Algebra", Color: "#6C5CE7"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}

	t.Run("EmptyTitleRejected", func(t *testing.T) {
		_, err := svc.Create(owner, course.CreateCourseDTO{Title: ""})
		if !errors.Is(err, course.ErrTitleRequired) {
			t.Fatalf("expected ErrTitleRequired, got %v", err)
		}
	})

	t.Run("ListScopedToOwner", func(t *testing.T) {
		courses, err := svc.List(owner)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(courses) != 1 {
			t.Fatalf("owner courses = %d, want 1", len(courses))
		}

		other, err := svc.List(stranger)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(other) != 0 {
			t.Fatalf("stranger courses = %d, want 0", len(other))
		}
	})

	t.Run("GetByStrangerIsNotFound", func(t *testing.T) {
		_, err := svc.Get(created.ID, stranger)
		if !errors.Is(err, course.ErrCourseNotFound) {
			t.Fatalf("expected ErrCourseNotFound, got %v", err)
		}
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		desc := "Vector spaces and matrices"
		updated, err := svc.Update(created.ID, owner, course.UpdateCourseDTO{Description: &desc})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Description != desc {
			t.Errorf("description = %q, want %q", updated.Description, desc)
		}
		if updated.Title != "Linear Algebra" {
			t.Errorf("title changed to %q, want untouched", updated.Title)
		}
	})

	t.Run("DeleteByStrangerIsNotFound", func(t *testing.T) {
		err := svc.Delete(created.ID, stranger)
		if !errors.Is(err, course.ErrCourseNotFound) {
			t.Fatalf("expected ErrCourseNotFound, got %v", err)
		}
	})

	t.Run("DeleteByOwner", func(t *testing.T) {
		if err := svc.Delete(created.ID, owner); err != nil {
			t.Fatalf("delete: %v", err)
		}
		_, err := svc.Get(created.ID, owner)
		if !errors.Is(err, course.ErrCourseNotFound) {
			t.Fatalf("expected ErrCourseNotFound after delete, got %v", err)
		}
	})
}
