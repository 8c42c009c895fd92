package util_test

import (
	"testing"
	"time"

	util "github.com/saulo-duarte/luma-lambda/internal/utils"
)

func TestStartOfNextDay(t *testing.T) {
	t.Run("MiddleOfDay", func(t *testing.T) {
		now := time.Date(2025, 3, 10, 15, 30, 0, 0, util.Location())
		next := util.StartOfNextDay(now)

		want := time.Date(2025, 3, 11, 0, 0, 0, 0, util.Location())
		if !next.Equal(want) {
			t.Errorf("StartOfNextDay = %v, want %v", next, want)
		}
	})

	t.Run("CrossesMonth", func(t *testing.T) {
		now := time.Date(2025, 1, 31, 23, 59, 59, 0, util.Location())
		next := util.StartOfNextDay(now)

		want := time.Date(2025, 2, 1, 0, 0, 0, 0, util.Location())
		if !next.Equal(want) {
			t.Errorf("StartOfNextDay = %v, want %v", next, want)
		}
	})

	t.Run("UTCInputConvertsToLocal", func(t *testing.T) {
		// 01:00 UTC is still the previous day in Sao Paulo (UTC-3).
		now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
		next := util.StartOfNextDay(now)

		want := time.Date(2025, 3, 10, 0, 0, 0, 0, util.Location())
		if !next.Equal(want) {
			t.Errorf("StartOfNextDay = %v, want %v", next, want)
		}
	})
}

func TestStartOfMonth(t *testing.T) {
	now := time.Date(2025, 7, 19, 10, 0, 0, 0, util.Location())
	got := util.StartOfMonth(now)

	want := time.Date(2025, 7, 1, 0, 0, 0, 0, util.Location())
	if !got.Equal(want) {
		t.Errorf("StartOfMonth = %v, want %v", got, want)
	}
}
