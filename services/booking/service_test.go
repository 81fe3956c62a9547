package booking

import (
	"context"
	"testing"
	"time"

	"homeease/database/repository/memory"
	"homeease/errs"
	"homeease/models"
	"homeease/services/availability"
	"homeease/services/notification"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// Monday 2026-01-05, one week before the appointments used below.
	testNow  = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	customer = models.Actor{ID: "u1", Role: models.RoleUser}
	provider = models.Actor{ID: "p1", Role: models.RoleProvider}
)

type fixture struct {
	svc   *Service
	store *memory.Store
	sent  *notification.Recorder
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddUser(models.User{ID: "u1", Name: "Ada"})
	store.AddUser(models.User{ID: "u2", Name: "Grace"})
	store.AddProvider(models.Provider{ID: "p1", Name: "Clean Co", Active: true})
	store.AddProvider(models.Provider{ID: "p2", Name: "Closed Co", Active: false})
	store.AddSlot(models.AvailabilitySlot{ID: "s1", ProviderID: "p1", IsRecurring: true, DayOfWeek: time.Monday, Start: 9 * 60, End: 12 * 60})
	store.AddService(models.Service{
		ID: "svc1", ProviderID: "p1", Name: "Deep clean",
		Price: decimal.RequireFromString("80.00"), HomeServiceFee: decimal.RequireFromString("15.50"),
		Currency: "USD", DurationMinutes: 60, HomeAvailable: true,
	})
	store.AddService(models.Service{ID: "svc2", ProviderID: "p2", Name: "Ironing", Price: decimal.NewFromInt(20), Currency: "USD", DurationMinutes: 30})

	repos := store.Repositories()
	sent := &notification.Recorder{}
	logger := zap.NewNop()
	svc := NewService(repos, availability.NewChecker(repos.Providers, repos.Bookings, logger), sent, NewLocalLocker(), logger)

	f := &fixture{svc: svc, store: store, sent: sent, now: testNow}
	svc.Now = func() time.Time { return f.now }
	return f
}

func request(date, clock string, minutes int) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		ProviderID:      "p1",
		ServiceID:       "svc1",
		AppointmentDate: date,
		AppointmentTime: clock,
		DurationMinutes: minutes,
	}
}

func (f *fixture) create(t *testing.T) *models.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), customer, request("2026-01-12", "10:00", 60))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return b
}

func wantKind(t *testing.T, err error, kind errs.Kind, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	appErr := errs.As(err)
	if appErr.Kind != kind {
		t.Fatalf("kind = %s (%v), want %s", appErr.Kind, err, kind)
	}
	if code != "" && appErr.Code != code {
		t.Fatalf("code = %q, want %q", appErr.Code, code)
	}
}

func TestCreateFirstBookingOfTheDay(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)

	if b.Status != models.BookingPending {
		t.Fatalf("status = %s, want Pending", b.Status)
	}
	if b.SerialNumber != "B202601050001" {
		t.Fatalf("serial = %s, want B202601050001", b.SerialNumber)
	}
	if !b.AppointmentEnd.Equal(time.Date(2026, 1, 12, 11, 0, 0, 0, time.UTC)) {
		t.Fatalf("appointment end = %s", b.AppointmentEnd)
	}
	if !b.Price.TotalPrice.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("total = %s, want 80 without home fee", b.Price.TotalPrice)
	}
	if f.sent.Count(notification.TypeBookingRequest) != 1 {
		t.Fatalf("provider was not told about the request: %+v", f.sent.Calls())
	}

	second, err := f.svc.Create(context.Background(), customer, request("2026-01-12", "11:00", 60))
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if second.SerialNumber != "B202601050002" {
		t.Fatalf("second serial = %s", second.SerialNumber)
	}
}

func TestCreateOverlappingBookingFails(t *testing.T) {
	f := newFixture(t)
	f.create(t)

	_, err := f.svc.Create(context.Background(), models.Actor{ID: "u2", Role: models.RoleUser}, request("2026-01-12", "10:30", 60))
	wantKind(t, err, errs.KindBusinessRule, "provider_unavailable")
	if f.store.Len() != 1 {
		t.Fatalf("stored bookings = %d, want 1", f.store.Len())
	}
}

func TestCreateRejectsPastAppointment(t *testing.T) {
	f := newFixture(t)
	f.now = time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), customer, request("2026-01-12", "10:00", 60))
	wantKind(t, err, errs.KindBusinessRule, "appointment_in_past")
	if f.store.Len() != 0 {
		t.Fatal("a past-dated request must not create a row")
	}
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name  string
		actor models.Actor
		edit  func(*models.CreateBookingRequest)
		kind  errs.Kind
		code  string
	}{
		{"provider cannot book", provider, nil, errs.KindUnauthorized, "forbidden"},
		{"unknown user", models.Actor{ID: "ghost", Role: models.RoleUser}, nil, errs.KindNotFound, "user_not_found"},
		{"unknown service", customer, func(r *models.CreateBookingRequest) { r.ServiceID = "nope" }, errs.KindNotFound, "service_not_found"},
		{"unknown provider", customer, func(r *models.CreateBookingRequest) { r.ProviderID = "nope" }, errs.KindNotFound, "provider_not_found"},
		{"service of another provider", customer, func(r *models.CreateBookingRequest) { r.ServiceID = "svc2" }, errs.KindBusinessRule, "service_provider_mismatch"},
		{"inactive provider", customer, func(r *models.CreateBookingRequest) { r.ProviderID, r.ServiceID = "p2", "svc2" }, errs.KindBusinessRule, "provider_inactive"},
		{"home service without address", customer, func(r *models.CreateBookingRequest) { r.IsHomeService = true }, errs.KindBusinessRule, "address_required"},
		{"outside slot", customer, func(r *models.CreateBookingRequest) { r.AppointmentTime = "13:00" }, errs.KindBusinessRule, "provider_unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := request("2026-01-12", "10:00", 60)
			if tc.edit != nil {
				tc.edit(&req)
			}
			_, err := f.svc.Create(context.Background(), tc.actor, req)
			wantKind(t, err, tc.kind, tc.code)
		})
	}
}

func TestCreateHomeServiceAddsFee(t *testing.T) {
	f := newFixture(t)
	req := request("2026-01-12", "09:00", 0)
	req.IsHomeService = true
	req.CustomerAddress = "  12 Elm Street "

	b, err := f.svc.Create(context.Background(), customer, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.DurationMinutes != 60 {
		t.Fatalf("duration = %d, want service default 60", b.DurationMinutes)
	}
	if b.CustomerAddress != "12 Elm Street" {
		t.Fatalf("address = %q", b.CustomerAddress)
	}
	if !b.Price.TotalPrice.Equal(decimal.RequireFromString("95.50")) {
		t.Fatalf("total = %s, want 95.50", b.Price.TotalPrice)
	}
}

func TestCreateWhileProviderLocked(t *testing.T) {
	f := newFixture(t)
	release, err := f.svc.Locker.Acquire(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()

	_, err = f.svc.Create(context.Background(), customer, request("2026-01-12", "10:00", 60))
	wantKind(t, err, errs.KindBusinessRule, "booking_in_progress")
}

func TestConfirmAccept(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)

	got, err := f.svc.Confirm(context.Background(), provider, models.ConfirmBookingRequest{BookingID: b.ID, IsConfirmed: true})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got.Status != models.BookingConfirmed || got.ConfirmedAt == nil {
		t.Fatalf("status = %s confirmedAt = %v", got.Status, got.ConfirmedAt)
	}
	if n := f.sent.Count(notification.TypeBookingConfirmed); n != 1 {
		t.Fatalf("confirmation notifications = %d, want 1", n)
	}
	if n := f.sent.Count(notification.TypeAppointmentReminder); n != 1 {
		t.Fatalf("reminders = %d, want 1", n)
	}

	_, err = f.svc.Confirm(context.Background(), provider, models.ConfirmBookingRequest{BookingID: b.ID, IsConfirmed: true})
	wantKind(t, err, errs.KindBusinessRule, "invalid_transition")
	if n := f.sent.Count(notification.TypeBookingConfirmed); n != 1 {
		t.Fatalf("confirmation notifications after retry = %d, want 1", n)
	}
}

func TestConfirmDeclineRejects(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)

	got, err := f.svc.Confirm(context.Background(), provider, models.ConfirmBookingRequest{BookingID: b.ID, IsConfirmed: false, Reason: "fully booked"})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got.Status != models.BookingRejected || got.CancelledAt == nil || got.ConfirmedAt != nil {
		t.Fatalf("got status %s cancelledAt %v confirmedAt %v", got.Status, got.CancelledAt, got.ConfirmedAt)
	}
	if f.sent.Count(notification.TypeBookingRejected) != 1 {
		t.Fatal("rejection notification not sent")
	}

	// the rejected booking no longer holds its slot
	if _, err := f.svc.Create(context.Background(), models.Actor{ID: "u2", Role: models.RoleUser}, request("2026-01-12", "10:00", 60)); err != nil {
		t.Fatalf("rebooking the released slot: %v", err)
	}
}

func TestConfirmRequiresOwningProvider(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)

	_, err := f.svc.Confirm(context.Background(), models.Actor{ID: "p2", Role: models.RoleProvider}, models.ConfirmBookingRequest{BookingID: b.ID, IsConfirmed: true})
	wantKind(t, err, errs.KindUnauthorized, "forbidden")
	_, err = f.svc.Confirm(context.Background(), customer, models.ConfirmBookingRequest{BookingID: b.ID, IsConfirmed: true})
	wantKind(t, err, errs.KindUnauthorized, "forbidden")
	_, err = f.svc.Confirm(context.Background(), provider, models.ConfirmBookingRequest{BookingID: "missing", IsConfirmed: true})
	wantKind(t, err, errs.KindNotFound, "booking_not_found")
}

func TestConfirmDeclineMarksCapturedPaymentForRefund(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)
	markPaid(t, f, b.ID)

	got, err := f.svc.Confirm(context.Background(), provider, models.ConfirmBookingRequest{BookingID: b.ID, IsConfirmed: false})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got.Payment.Status != models.PaymentRefunded {
		t.Fatalf("payment status = %q, want Refunded", got.Payment.Status)
	}
}

func TestCompleteConfirmedBooking(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)
	if _, err := f.svc.Confirm(context.Background(), provider, models.ConfirmBookingRequest{BookingID: b.ID, IsConfirmed: true}); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	_, err := f.svc.Complete(context.Background(), provider, b.ID)
	wantKind(t, err, errs.KindBusinessRule, "appointment_not_started")

	f.now = b.AppointmentEnd
	got, err := f.svc.Complete(context.Background(), provider, b.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Status != models.BookingCompleted || got.CompletedAt == nil || !got.CompletedAt.Equal(b.AppointmentEnd) {
		t.Fatalf("status = %s completedAt = %v", got.Status, got.CompletedAt)
	}
	stored, _ := f.store.GetByID(context.Background(), b.ID)
	if stored.Status != models.BookingCompleted {
		t.Fatalf("stored status = %s", stored.Status)
	}

	_, err = f.svc.Complete(context.Background(), provider, b.ID)
	wantKind(t, err, errs.KindBusinessRule, "invalid_transition")
	_, err = f.svc.Cancel(context.Background(), customer, models.CancelBookingRequest{BookingID: b.ID})
	wantKind(t, err, errs.KindBusinessRule, "invalid_transition")
}

func TestCompleteRules(t *testing.T) {
	f := newFixture(t)
	pending := f.create(t)
	f.now = pending.AppointmentEnd

	_, err := f.svc.Complete(context.Background(), provider, pending.ID)
	wantKind(t, err, errs.KindBusinessRule, "invalid_transition")
	_, err = f.svc.Complete(context.Background(), customer, pending.ID)
	wantKind(t, err, errs.KindUnauthorized, "forbidden")
	_, err = f.svc.Complete(context.Background(), models.Actor{ID: "p2", Role: models.RoleProvider}, pending.ID)
	wantKind(t, err, errs.KindUnauthorized, "forbidden")
	_, err = f.svc.Complete(context.Background(), provider, "missing")
	wantKind(t, err, errs.KindNotFound, "booking_not_found")

	if _, err := f.svc.Cancel(context.Background(), customer, models.CancelBookingRequest{BookingID: pending.ID}); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	_, err = f.svc.Complete(context.Background(), provider, pending.ID)
	wantKind(t, err, errs.KindBusinessRule, "invalid_transition")
}

func TestCancelInsideFeeWindowMarksPartialRefund(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)
	if _, err := f.svc.Confirm(context.Background(), provider, models.ConfirmBookingRequest{BookingID: b.ID, IsConfirmed: true}); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	markPaid(t, f, b.ID)

	f.now = b.AppointmentAt.Add(-2 * time.Hour)
	out, err := f.svc.Cancel(context.Background(), customer, models.CancelBookingRequest{BookingID: b.ID, Reason: "sick"})
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !out.FeeApplies {
		t.Fatal("feeApplies = false, want true two hours before the appointment")
	}
	if out.Booking.Status != models.BookingCancelled || out.Booking.CancelledAt == nil {
		t.Fatalf("status = %s cancelledAt = %v", out.Booking.Status, out.Booking.CancelledAt)
	}
	if out.Booking.Payment.Status != models.PaymentPartialRefund {
		t.Fatalf("payment status = %q, want %q", out.Booking.Payment.Status, models.PaymentPartialRefund)
	}
	if out.Booking.CancelledBy != models.RoleUser || f.sent.Count(notification.TypeCancelledByUser) != 1 {
		t.Fatalf("cancelledBy = %s, calls = %+v", out.Booking.CancelledBy, f.sent.Calls())
	}
}

func TestCancelOutsideFeeWindowMarksRefunded(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)
	markPaid(t, f, b.ID)

	out, err := f.svc.Cancel(context.Background(), provider, models.CancelBookingRequest{BookingID: b.ID})
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if out.FeeApplies {
		t.Fatal("feeApplies = true a week ahead")
	}
	if out.Booking.Payment.Status != models.PaymentRefunded {
		t.Fatalf("payment status = %q, want Refunded", out.Booking.Payment.Status)
	}
	if f.sent.Count(notification.TypeCancelledByProvider) != 1 {
		t.Fatal("provider cancellation notification not sent")
	}
}

func TestCancelTerminalBookingsFails(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)
	if _, err := f.svc.Cancel(context.Background(), customer, models.CancelBookingRequest{BookingID: b.ID}); err != nil {
		t.Fatalf("first Cancel: %v", err)
	}
	_, err := f.svc.Cancel(context.Background(), customer, models.CancelBookingRequest{BookingID: b.ID})
	wantKind(t, err, errs.KindBusinessRule, "invalid_transition")

	done := f.create(t)
	stored, _ := f.store.GetByID(context.Background(), done.ID)
	stored.Status = models.BookingCompleted
	if err := f.store.Update(context.Background(), stored); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	_, err = f.svc.Cancel(context.Background(), customer, models.CancelBookingRequest{BookingID: done.ID})
	wantKind(t, err, errs.KindBusinessRule, "invalid_transition")
}

func TestCancelByStrangerFails(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)
	_, err := f.svc.Cancel(context.Background(), models.Actor{ID: "u2", Role: models.RoleUser}, models.CancelBookingRequest{BookingID: b.ID})
	wantKind(t, err, errs.KindUnauthorized, "forbidden")
}

func TestUpdateRescheduleOntoOwnWindow(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)

	clock := "10:30"
	got, err := f.svc.Update(context.Background(), customer, b.ID, models.UpdateBookingRequest{AppointmentTime: &clock})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := time.Date(2026, 1, 12, 10, 30, 0, 0, time.UTC)
	if !got.AppointmentAt.Equal(want) || !got.AppointmentEnd.Equal(want.Add(time.Hour)) {
		t.Fatalf("schedule = %s..%s", got.AppointmentAt, got.AppointmentEnd)
	}
}

func TestUpdateRescheduleConflictsWithOthers(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)
	if _, err := f.svc.Create(context.Background(), models.Actor{ID: "u2", Role: models.RoleUser}, request("2026-01-12", "11:00", 60)); err != nil {
		t.Fatalf("second Create: %v", err)
	}

	clock := "10:30"
	_, err := f.svc.Update(context.Background(), customer, b.ID, models.UpdateBookingRequest{AppointmentTime: &clock})
	wantKind(t, err, errs.KindBusinessRule, "provider_unavailable")

	stored, _ := f.store.GetByID(context.Background(), b.ID)
	if !stored.AppointmentAt.Equal(b.AppointmentAt) {
		t.Fatal("a failed reschedule must leave the booking untouched")
	}
}

func TestUpdateNotesAndRules(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)

	notes := " ring twice "
	got, err := f.svc.Update(context.Background(), customer, b.ID, models.UpdateBookingRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Notes != "ring twice" {
		t.Fatalf("notes = %q", got.Notes)
	}

	past := "2026-01-01"
	_, err = f.svc.Update(context.Background(), customer, b.ID, models.UpdateBookingRequest{AppointmentDate: &past})
	wantKind(t, err, errs.KindBusinessRule, "appointment_in_past")

	_, err = f.svc.Update(context.Background(), provider, b.ID, models.UpdateBookingRequest{Notes: &notes})
	wantKind(t, err, errs.KindUnauthorized, "forbidden")
}

func TestUpdateConfirmedRescheduleQueuesReminder(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)
	if _, err := f.svc.Confirm(context.Background(), provider, models.ConfirmBookingRequest{BookingID: b.ID, IsConfirmed: true}); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	date := "2026-01-19"
	if _, err := f.svc.Update(context.Background(), customer, b.ID, models.UpdateBookingRequest{AppointmentDate: &date}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n := f.sent.Count(notification.TypeAppointmentReminder); n != 2 {
		t.Fatalf("reminders = %d, want 2", n)
	}
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)
	if _, err := f.svc.Create(context.Background(), models.Actor{ID: "u2", Role: models.RoleUser}, request("2026-01-12", "11:00", 60)); err != nil {
		t.Fatalf("second Create: %v", err)
	}

	if _, err := f.svc.Get(context.Background(), provider, b.ID); err != nil {
		t.Fatalf("provider Get: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), models.Actor{ID: "admin", Role: models.RoleAdmin}, b.ID); err != nil {
		t.Fatalf("admin Get: %v", err)
	}
	_, err := f.svc.Get(context.Background(), models.Actor{ID: "u2", Role: models.RoleUser}, b.ID)
	wantKind(t, err, errs.KindUnauthorized, "forbidden")

	mine, err := f.svc.List(context.Background(), customer, 0, 0, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if mine.Total != 1 || len(mine.Items) != 1 || mine.PageSize != 20 || mine.Page != 1 {
		t.Fatalf("customer page = %+v", mine)
	}
	theirs, err := f.svc.List(context.Background(), provider, 1, 10, models.BookingPending)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if theirs.Total != 2 {
		t.Fatalf("provider total = %d, want 2", theirs.Total)
	}
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	f.create(t)
	ctx := context.Background()

	free, err := f.svc.CheckAvailability(ctx, "p1", "2026-01-12", "11:00", 60)
	if err != nil || !free.Available {
		t.Fatalf("free slot: %+v %v", free, err)
	}
	busy, err := f.svc.CheckAvailability(ctx, "p1", "2026-01-12", "10:30", 30)
	if err != nil || busy.Available || busy.Reason != string(availability.ReasonConflict) {
		t.Fatalf("busy slot: %+v %v", busy, err)
	}
	past, err := f.svc.CheckAvailability(ctx, "p1", "2026-01-01", "10:00", 30)
	if err != nil || past.Available || past.Reason != "appointment_in_past" {
		t.Fatalf("past slot: %+v %v", past, err)
	}
	_, err = f.svc.CheckAvailability(ctx, "ghost", "2026-01-12", "10:00", 30)
	wantKind(t, err, errs.KindNotFound, "provider_not_found")
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]models.BookingStatus{
		{models.BookingPending, models.BookingConfirmed},
		{models.BookingPending, models.BookingRejected},
		{models.BookingPending, models.BookingCancelled},
		{models.BookingConfirmed, models.BookingCancelled},
		{models.BookingConfirmed, models.BookingCompleted},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Errorf("%s -> %s should be allowed", pair[0], pair[1])
		}
	}
	for _, from := range []models.BookingStatus{models.BookingCompleted, models.BookingCancelled, models.BookingRejected} {
		for _, to := range []models.BookingStatus{models.BookingPending, models.BookingConfirmed, models.BookingCancelled, models.BookingCompleted} {
			if CanTransition(from, to) {
				t.Errorf("%s -> %s should be refused", from, to)
			}
		}
	}
	if CanTransition(models.BookingPending, models.BookingCompleted) {
		t.Error("pending bookings cannot complete directly")
	}
}

func TestFormatSerial(t *testing.T) {
	day := time.Date(2026, 3, 9, 23, 59, 0, 0, time.FixedZone("UTC-2", -2*3600))
	if got := FormatSerial(day, 42); got != "B202603100042" {
		t.Fatalf("FormatSerial = %s", got)
	}
}

func markPaid(t *testing.T, f *fixture, bookingID string) {
	t.Helper()
	b, err := f.store.GetByID(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	processed := f.now
	b.Payment = &models.Payment{
		Amount:    b.Price.TotalPrice,
		Currency:  b.Price.Currency,
		Status:    models.PaymentCompleted,
		ChargeID:  "pi_1",
		Attempts:  1,
		CreatedAt: f.now,
		UpdatedAt: f.now,
	}
	b.Payment.ProcessedAt = &processed
	if err := f.store.Update(context.Background(), b); err != nil {
		t.Fatalf("store payment: %v", err)
	}
}
