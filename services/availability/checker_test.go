package availability

import (
	"context"
	"testing"
	"time"

	"homeease/database/repository/memory"
	"homeease/models"

	"go.uber.org/zap"
)

// 2026-01-12 is a Monday.
var mondayTen = time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC)

func newChecker(t *testing.T) (*DefaultChecker, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddProvider(models.Provider{ID: "p1", Name: "Clean Co", Active: true})
	store.AddSlot(models.AvailabilitySlot{ID: "s1", ProviderID: "p1", IsRecurring: true, DayOfWeek: time.Monday, Start: 9 * 60, End: 12 * 60})
	store.AddSlot(models.AvailabilitySlot{ID: "s2", ProviderID: "p1", SpecificDate: "2026-01-14", Start: 13 * 60, End: 15 * 60})
	repos := store.Repositories()
	return NewChecker(repos.Providers, repos.Bookings, zap.NewNop()), store
}

func addBooking(t *testing.T, store *memory.Store, id string, start time.Time, minutes int, status models.BookingStatus) {
	t.Helper()
	b := &models.Booking{ID: id, SerialNumber: "B-" + id, ProviderID: "p1", UserID: "u1", Status: status}
	b.SetSchedule(start, minutes)
	if err := store.Create(context.Background(), b); err != nil {
		t.Fatalf("seed booking %s: %v", id, err)
	}
}

func TestExplainSlotMatching(t *testing.T) {
	checker, _ := newChecker(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		start   time.Time
		minutes int
		want    Reason
	}{
		{"inside recurring slot", mondayTen, 60, ReasonNone},
		{"touches slot end", time.Date(2026, 1, 12, 11, 0, 0, 0, time.UTC), 60, ReasonNone},
		{"runs past slot end", time.Date(2026, 1, 12, 11, 30, 0, 0, time.UTC), 60, ReasonNoSlot},
		{"starts before slot", time.Date(2026, 1, 12, 8, 30, 0, 0, time.UTC), 60, ReasonNoSlot},
		{"wrong weekday", time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC), 60, ReasonNoSlot},
		{"one-off date", time.Date(2026, 1, 14, 13, 30, 0, 0, time.UTC), 90, ReasonNone},
		{"one-off date other day", time.Date(2026, 1, 21, 13, 30, 0, 0, time.UTC), 30, ReasonNoSlot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := checker.Explain(ctx, "p1", tc.start, tc.minutes, "")
			if err != nil {
				t.Fatalf("Explain: %v", err)
			}
			if res.Reason != tc.want {
				t.Fatalf("reason = %q, want %q", res.Reason, tc.want)
			}
			if res.Available != (tc.want == ReasonNone) {
				t.Fatalf("available = %v for reason %q", res.Available, res.Reason)
			}
		})
	}
}

func TestNoSlotWinsOverConflicts(t *testing.T) {
	checker, store := newChecker(t)
	start := time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC)
	addBooking(t, store, "b1", start, 60, models.BookingConfirmed)

	res, err := checker.Explain(context.Background(), "p1", start, 60, "")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if res.Reason != ReasonNoSlot {
		t.Fatalf("reason = %q, want %q", res.Reason, ReasonNoSlot)
	}
}

func TestConflictsUseHalfOpenIntervals(t *testing.T) {
	checker, store := newChecker(t)
	ctx := context.Background()
	addBooking(t, store, "b1", mondayTen, 60, models.BookingPending)

	ok, err := checker.IsAvailable(ctx, "p1", mondayTen.Add(30*time.Minute), 60, "")
	if err != nil || ok {
		t.Fatalf("overlapping request: available=%v err=%v", ok, err)
	}
	ok, err = checker.IsAvailable(ctx, "p1", mondayTen.Add(time.Hour), 60, "")
	if err != nil || !ok {
		t.Fatalf("back-to-back request: available=%v err=%v", ok, err)
	}
	ok, err = checker.IsAvailable(ctx, "p1", mondayTen.Add(-time.Hour), 60, "")
	if err != nil || !ok {
		t.Fatalf("request ending at booking start: available=%v err=%v", ok, err)
	}
}

func TestReleasedBookingsDoNotConflict(t *testing.T) {
	checker, store := newChecker(t)
	addBooking(t, store, "cancelled", mondayTen, 60, models.BookingCancelled)
	addBooking(t, store, "rejected", mondayTen, 60, models.BookingRejected)

	ok, err := checker.IsAvailable(context.Background(), "p1", mondayTen, 60, "")
	if err != nil || !ok {
		t.Fatalf("available=%v err=%v, want slot free", ok, err)
	}
}

func TestExcludedBookingIsIgnored(t *testing.T) {
	checker, store := newChecker(t)
	addBooking(t, store, "b1", mondayTen, 60, models.BookingConfirmed)

	ok, err := checker.IsAvailable(context.Background(), "p1", mondayTen.Add(30*time.Minute), 60, "b1")
	if err != nil || !ok {
		t.Fatalf("available=%v err=%v, want own booking excluded", ok, err)
	}
}

func TestUnknownProvider(t *testing.T) {
	checker, _ := newChecker(t)
	res, err := checker.Explain(context.Background(), "nobody", mondayTen, 60, "")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if res.Available || res.Reason != ReasonProviderNotFound {
		t.Fatalf("got %+v, want provider_not_found", res)
	}
}

func TestMidnightSpanIsNeverCovered(t *testing.T) {
	start := time.Date(2026, 1, 12, 23, 30, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	slots := []models.AvailabilitySlot{{IsRecurring: true, DayOfWeek: time.Monday, Start: 0, End: 24 * 60}}
	if slotCovers(slots, start, end) {
		t.Fatal("appointment crossing midnight must not be covered")
	}
}

func TestRejectsNonPositiveDuration(t *testing.T) {
	checker, _ := newChecker(t)
	if _, err := checker.Explain(context.Background(), "p1", mondayTen, 0, ""); err == nil {
		t.Fatal("expected an error for zero duration")
	}
}
