package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/infrastructure/metrics"
	"clinic-booking/pkg/validator"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomorrow = "2026-03-11"

type bookingFixture struct {
	store     *memStore
	mock      sqlmock.Sqlmock
	uc        *bookingUsecase
	ana       entity.User
	marta     entity.User
	admin     entity.User
	physician entity.Physician
	other     entity.Physician
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	db, mock := newMockDB(t)
	store := newMemStore()

	ana := store.addUser(entity.User{Role: entity.RolePatient, GivenNames: "Ana", FamilyNames: "Torres", Email: "ana@example.com", NationalID: "1234567890"})
	marta := store.addUser(entity.User{Role: entity.RolePatient, GivenNames: "Marta", FamilyNames: "Ruiz", Email: "marta@example.com", NationalID: "1234567891"})
	admin := store.addUser(entity.User{Role: entity.RoleAdministrator, GivenNames: "Luis", FamilyNames: "Pérez", Email: "luis@example.com", NationalID: "1234567892"})
	physician := store.addPhysician(entity.Physician{GivenNames: "Luis", FamilyNames: "Pérez", SpecialtyID: 3, Email: "luis@example.com", LinkedUserID: &admin.ID})
	other := store.addPhysician(entity.Physician{GivenNames: "Sara", FamilyNames: "Gómez", SpecialtyID: 1, Email: "sara@example.com"})

	uc := NewBookingUsecase(
		db, quietLogger(), validator.NewValidator(),
		metrics.NewBookingMetrics(prometheus.NewRegistry()),
		fakeUserRepo{store}, fakePhysicianRepo{store}, fakeSlotRepo{store}, fakeAppointmentRepo{store},
	).(*bookingUsecase)
	uc.now = func() time.Time { return fixedNow }

	return &bookingFixture{store: store, mock: mock, uc: uc, ana: ana, marta: marta, admin: admin, physician: physician, other: other}
}

func (f *bookingFixture) patient(u entity.User) Actor {
	return Actor{UserID: u.ID, Role: entity.RolePatient}
}

func (f *bookingFixture) administrator() Actor {
	return Actor{UserID: f.admin.ID, Role: entity.RoleAdministrator}
}

func (f *bookingFixture) expectCommit() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

func (f *bookingFixture) expectRollback() {
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
}

func (f *bookingFixture) book(t *testing.T, who entity.User, physicianID int, date, clock string) *dto.AppointmentResponse {
	t.Helper()
	f.expectCommit()
	resp, err := f.uc.Book(context.Background(), f.patient(who), &dto.BookAppointmentRequest{
		PhysicianID: physicianID, Date: date, Time: clock,
	})
	require.NoError(t, err)
	return resp
}

// assertLedgerConsistent checks that a slot is Reserved exactly when a live appointment holds it
func assertLedgerConsistent(t *testing.T, s *memStore) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	live := map[slotKey]int{}
	for _, a := range s.appointments {
		if !a.IsCancelled() {
			live[slotKey{a.PhysicianID, a.Date, a.Time}]++
		}
	}
	for k, n := range live {
		assert.Equal(t, 1, n, "slot %v held by %d live appointments", k, n)
		assert.Equal(t, entity.SlotStatusReserved, s.slots[k], "slot %v should be reserved", k)
	}
	for k, st := range s.slots {
		if st == entity.SlotStatusReserved {
			assert.Contains(t, live, k, "slot %v reserved without a live appointment", k)
		}
	}
}

func TestBookingUsecase_Book(t *testing.T) {
	f := newBookingFixture(t)

	resp := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")

	assert.Equal(t, string(entity.AppointmentStatusPending), resp.Status)
	assert.Equal(t, "Ana Torres", resp.PatientName)
	assert.Equal(t, "Luis Pérez", resp.PhysicianName)
	assert.Equal(t, "Odontología", resp.SpecialtyName)
	assert.Equal(t, 19, f.store.countSlots(f.physician.ID, tomorrow))

	status, ok := f.store.slotStatus(f.physician.ID, tomorrow, "10:00")
	require.True(t, ok)
	assert.Equal(t, entity.SlotStatusReserved, status)
	assertLedgerConsistent(t, f.store)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_BookConflicts(t *testing.T) {
	f := newBookingFixture(t)
	f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")

	t.Run("same patient same instant", func(t *testing.T) {
		f.expectRollback()
		_, err := f.uc.Book(context.Background(), f.patient(f.ana), &dto.BookAppointmentRequest{
			PhysicianID: f.physician.ID, Date: tomorrow, Time: "10:00",
		})
		assert.ErrorIs(t, err, ErrSlotConflict)
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("same patient other physician", func(t *testing.T) {
		f.expectRollback()
		_, err := f.uc.Book(context.Background(), f.patient(f.ana), &dto.BookAppointmentRequest{
			PhysicianID: f.other.ID, Date: tomorrow, Time: "10:00",
		})
		assert.ErrorIs(t, err, ErrSlotConflict)
		status, _ := f.store.slotStatus(f.other.ID, tomorrow, "10:00")
		assert.NotEqual(t, entity.SlotStatusReserved, status)
	})

	t.Run("slot taken by another patient", func(t *testing.T) {
		f.expectRollback()
		_, err := f.uc.Book(context.Background(), f.patient(f.marta), &dto.BookAppointmentRequest{
			PhysicianID: f.physician.ID, Date: tomorrow, Time: "10:00",
		})
		assert.ErrorIs(t, err, ErrSlotConflict)
	})

	f.store.mu.Lock()
	assert.Len(t, f.store.appointments, 1)
	f.store.mu.Unlock()
	assertLedgerConsistent(t, f.store)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_BookRejectsBadSchedules(t *testing.T) {
	f := newBookingFixture(t)

	tests := []struct {
		name    string
		date    string
		clock   string
		wantErr error
	}{
		{"yesterday", "2026-03-09", "10:00", ErrPastDateTime},
		{"earlier today", "2026-03-10", "08:30", ErrPastDateTime},
		{"exactly now", "2026-03-10", "09:00", ErrPastDateTime},
		{"off grid minutes", tomorrow, "10:15", ErrTimeOffGrid},
		{"after closing", tomorrow, "17:30", ErrTimeOffGrid},
		{"before opening", tomorrow, "07:30", ErrTimeOffGrid},
		{"impossible date", "2026-02-30", "10:00", ErrInvalidDate},
		{"wrong date layout", "11/03/2026", "10:00", ErrInvalidDate},
		{"impossible time", tomorrow, "25:00", ErrInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Book(context.Background(), f.patient(f.ana), &dto.BookAppointmentRequest{
				PhysicianID: f.physician.ID, Date: tt.date, Time: tt.clock,
			})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}

	assert.Empty(t, f.store.slots, "rejected requests must not touch storage")
	assert.Empty(t, f.store.appointments)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_BookLaterTodayIsAllowed(t *testing.T) {
	f := newBookingFixture(t)
	resp := f.book(t, f.ana, f.physician.ID, "2026-03-10", "09:30")
	assert.Equal(t, "09:30", resp.Time)
}

func TestBookingUsecase_BookUnknownReferences(t *testing.T) {
	f := newBookingFixture(t)

	f.expectRollback()
	_, err := f.uc.Book(context.Background(), f.patient(f.ana), &dto.BookAppointmentRequest{
		PhysicianID: 999, Date: tomorrow, Time: "10:00",
	})
	assert.ErrorIs(t, err, ErrPhysicianNotFound)

	f.expectRollback()
	_, err = f.uc.Book(context.Background(), Actor{UserID: uuid.New(), Role: entity.RolePatient}, &dto.BookAppointmentRequest{
		PhysicianID: f.physician.ID, Date: tomorrow, Time: "10:00",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_AdministratorBooksForPatient(t *testing.T) {
	f := newBookingFixture(t)

	f.expectCommit()
	resp, err := f.uc.Book(context.Background(), f.administrator(), &dto.BookAppointmentRequest{
		PatientID: f.ana.ID, PhysicianID: f.physician.ID, Date: tomorrow, Time: "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, f.ana.ID, resp.PatientID)

	_, err = f.uc.Book(context.Background(), f.administrator(), &dto.BookAppointmentRequest{
		PhysicianID: f.physician.ID, Date: tomorrow, Time: "11:30",
	})
	assert.Equal(t, KindValidation, KindOf(err))

	f.expectRollback()
	_, err = f.uc.Book(context.Background(), f.administrator(), &dto.BookAppointmentRequest{
		PatientID: f.admin.ID, PhysicianID: f.physician.ID, Date: tomorrow, Time: "11:30",
	})
	assert.ErrorIs(t, err, ErrNotPatient)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_BookStorageFailureRollsBack(t *testing.T) {
	f := newBookingFixture(t)
	f.store.createAppointmentErr = errors.New("connection reset")

	f.expectRollback()
	_, err := f.uc.Book(context.Background(), f.patient(f.ana), &dto.BookAppointmentRequest{
		PhysicianID: f.physician.ID, Date: tomorrow, Time: "10:00",
	})
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, KindStorage, KindOf(err))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_BookCommitFailure(t *testing.T) {
	f := newBookingFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit().WillReturnError(errors.New("commit failed"))
	_, err := f.uc.Book(context.Background(), f.patient(f.ana), &dto.BookAppointmentRequest{
		PhysicianID: f.physician.ID, Date: tomorrow, Time: "10:00",
	})
	assert.Equal(t, KindStorage, KindOf(err))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_Cancel(t *testing.T) {
	f := newBookingFixture(t)
	booked := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")

	f.expectCommit()
	resp, err := f.uc.Cancel(context.Background(), f.patient(f.ana), booked.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.AppointmentStatusCancelled), resp.Status)

	status, _ := f.store.slotStatus(f.physician.ID, tomorrow, "10:00")
	assert.Equal(t, entity.SlotStatusOpen, status)

	f.expectRollback()
	_, err = f.uc.Cancel(context.Background(), f.patient(f.ana), booked.ID)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Equal(t, KindState, KindOf(err))
	assert.Equal(t, entity.AppointmentStatusCancelled, f.store.appointment(booked.ID).Status)

	// The cancelled booking no longer blocks the same time
	again := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")
	assert.NotEqual(t, booked.ID, again.ID)
	assertLedgerConsistent(t, f.store)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_CancelGuards(t *testing.T) {
	f := newBookingFixture(t)
	booked := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")

	f.expectRollback()
	_, err := f.uc.Cancel(context.Background(), f.patient(f.marta), booked.ID)
	assert.ErrorIs(t, err, ErrNotOwned)
	assert.Equal(t, KindForbidden, KindOf(err))

	f.expectRollback()
	_, err = f.uc.Cancel(context.Background(), f.patient(f.ana), uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = f.uc.MarkAttendance(context.Background(), f.administrator(), booked.ID, &dto.AttendanceRequest{Outcome: "Attended"})
	require.NoError(t, err)

	f.expectRollback()
	_, err = f.uc.Cancel(context.Background(), f.administrator(), booked.ID)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Equal(t, entity.AppointmentStatusAttended, f.store.appointment(booked.ID).Status)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_CancelByKeys(t *testing.T) {
	f := newBookingFixture(t)
	booked := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")
	req := &dto.CancelByKeysRequest{PhysicianID: f.physician.ID, Date: tomorrow, Time: "10:00"}

	f.expectCommit()
	resp, err := f.uc.CancelByKeys(context.Background(), f.patient(f.ana), req)
	require.NoError(t, err)
	assert.Equal(t, booked.ID, resp.ID)

	f.expectRollback()
	_, err = f.uc.CancelByKeys(context.Background(), f.patient(f.ana), req)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	status, _ := f.store.slotStatus(f.physician.ID, tomorrow, "10:00")
	assert.Equal(t, entity.SlotStatusOpen, status)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_Reschedule(t *testing.T) {
	f := newBookingFixture(t)
	booked := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")

	f.expectCommit()
	resp, err := f.uc.Reschedule(context.Background(), f.patient(f.ana), booked.ID, &dto.RescheduleRequest{Date: "2026-03-12", Time: "14:30"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-12", resp.Date)
	assert.Equal(t, "14:30", resp.Time)

	oldStatus, _ := f.store.slotStatus(f.physician.ID, tomorrow, "10:00")
	newStatus, _ := f.store.slotStatus(f.physician.ID, "2026-03-12", "14:30")
	assert.Equal(t, entity.SlotStatusOpen, oldStatus)
	assert.Equal(t, entity.SlotStatusReserved, newStatus)

	stored := f.store.appointment(booked.ID)
	assert.Equal(t, entity.AppointmentStatusPending, stored.Status)
	assert.Equal(t, "2026-03-12", stored.Date)
	assertLedgerConsistent(t, f.store)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_RescheduleConflictChangesNothing(t *testing.T) {
	f := newBookingFixture(t)
	mine := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")
	f.book(t, f.marta, f.physician.ID, tomorrow, "11:00")

	f.expectRollback()
	_, err := f.uc.Reschedule(context.Background(), f.administrator(), mine.ID, &dto.RescheduleRequest{Date: tomorrow, Time: "11:00"})
	assert.ErrorIs(t, err, ErrSlotConflict)

	stored := f.store.appointment(mine.ID)
	assert.Equal(t, "10:00", stored.Time)
	status, _ := f.store.slotStatus(f.physician.ID, tomorrow, "10:00")
	assert.Equal(t, entity.SlotStatusReserved, status)
	assertLedgerConsistent(t, f.store)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_RescheduleGuards(t *testing.T) {
	f := newBookingFixture(t)
	booked := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")

	_, err := f.uc.Reschedule(context.Background(), f.administrator(), booked.ID, &dto.RescheduleRequest{Date: "2026-03-09", Time: "10:00"})
	assert.ErrorIs(t, err, ErrPastDateTime)

	f.expectRollback()
	_, err = f.uc.Reschedule(context.Background(), f.administrator(), uuid.New(), &dto.RescheduleRequest{Date: tomorrow, Time: "12:00"})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	f.expectRollback()
	same, err := f.uc.Reschedule(context.Background(), f.administrator(), booked.ID, &dto.RescheduleRequest{Date: tomorrow, Time: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, "10:00", same.Time)

	_, err = f.uc.MarkAttendance(context.Background(), f.administrator(), booked.ID, &dto.AttendanceRequest{Outcome: "Attended"})
	require.NoError(t, err)

	f.expectRollback()
	_, err = f.uc.Reschedule(context.Background(), f.administrator(), booked.ID, &dto.RescheduleRequest{Date: tomorrow, Time: "12:00"})
	assert.ErrorIs(t, err, ErrNotPending)

	stored := f.store.appointment(booked.ID)
	assert.Equal(t, entity.AppointmentStatusAttended, stored.Status)
	assert.Equal(t, "10:00", stored.Time)
	status, _ := f.store.slotStatus(f.physician.ID, tomorrow, "12:00")
	assert.Equal(t, entity.SlotStatusOpen, status)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_MarkAttendance(t *testing.T) {
	f := newBookingFixture(t)
	booked := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")

	_, err := f.uc.MarkAttendance(context.Background(), f.administrator(), booked.ID, &dto.AttendanceRequest{Outcome: "Cancelled"})
	assert.ErrorIs(t, err, ErrInvalidOutcome)

	resp, err := f.uc.MarkAttendance(context.Background(), f.administrator(), booked.ID, &dto.AttendanceRequest{Outcome: "NoShow"})
	require.NoError(t, err)
	assert.Equal(t, "NoShow", resp.Status)

	_, err = f.uc.MarkAttendance(context.Background(), f.administrator(), booked.ID, &dto.AttendanceRequest{Outcome: "Attended"})
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Equal(t, entity.AppointmentStatusNoShow, f.store.appointment(booked.ID).Status, "first outcome is kept")

	_, err = f.uc.MarkAttendance(context.Background(), f.administrator(), uuid.New(), &dto.AttendanceRequest{Outcome: "Attended"})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestBookingUsecase_Listings(t *testing.T) {
	f := newBookingFixture(t)
	f.book(t, f.ana, f.physician.ID, "2026-03-12", "09:00")
	f.book(t, f.ana, f.other.ID, tomorrow, "15:00")
	f.book(t, f.ana, f.physician.ID, tomorrow, "08:00")
	f.book(t, f.marta, f.physician.ID, tomorrow, "09:00")

	mine, err := f.uc.ListForPatient(context.Background(), f.ana.ID)
	require.NoError(t, err)
	require.Equal(t, 3, mine.Total)
	assert.Equal(t, "08:00", mine.Appointments[0].Time)
	assert.Equal(t, "15:00", mine.Appointments[1].Time)
	assert.Equal(t, "2026-03-12", mine.Appointments[2].Date)
	assert.Equal(t, "Medicina General", mine.Appointments[1].SpecialtyName)

	all, err := f.uc.ListAll(context.Background(), f.administrator(), &dto.AppointmentFilterRequest{Date: tomorrow, PhysicianID: &f.physician.ID})
	require.NoError(t, err)
	require.Equal(t, 2, all.Total)
	assert.Equal(t, "Ana Torres", all.Appointments[0].PatientName)
	assert.Equal(t, "Marta Ruiz", all.Appointments[1].PatientName)

	// Without a physician filter the administrator still sees only their own calendar
	everything, err := f.uc.ListAll(context.Background(), f.administrator(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, everything.Total)
	for _, a := range everything.Appointments {
		assert.Equal(t, f.physician.ID, a.PhysicianID)
	}

	_, err = f.uc.ListAll(context.Background(), f.administrator(), &dto.AppointmentFilterRequest{Date: "tomorrow"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.uc.ListAll(context.Background(), f.patient(f.ana), nil)
	assert.ErrorIs(t, err, ErrAdministratorsOnly)
}

func TestBookingUsecase_GetAppointment(t *testing.T) {
	f := newBookingFixture(t)
	booked := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")

	resp, err := f.uc.GetAppointment(context.Background(), f.patient(f.ana), booked.ID)
	require.NoError(t, err)
	assert.Equal(t, "Odontología", resp.SpecialtyName)

	_, err = f.uc.GetAppointment(context.Background(), f.patient(f.marta), booked.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = f.uc.GetAppointment(context.Background(), f.administrator(), booked.ID)
	assert.NoError(t, err)
}

func TestBookingUsecase_PatientReschedulesOwnBookingOnly(t *testing.T) {
	f := newBookingFixture(t)
	booked := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")

	f.expectRollback()
	_, err := f.uc.Reschedule(context.Background(), f.patient(f.marta), booked.ID, &dto.RescheduleRequest{Date: tomorrow, Time: "12:00"})
	assert.ErrorIs(t, err, ErrNotOwned)
	assert.Equal(t, KindForbidden, KindOf(err))

	stored := f.store.appointment(booked.ID)
	assert.Equal(t, "10:00", stored.Time)
	status, _ := f.store.slotStatus(f.physician.ID, tomorrow, "12:00")
	assert.Equal(t, entity.SlotStatusOpen, status)

	f.expectCommit()
	resp, err := f.uc.Reschedule(context.Background(), f.patient(f.ana), booked.ID, &dto.RescheduleRequest{Date: tomorrow, Time: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, "12:00", resp.Time)
	assertLedgerConsistent(t, f.store)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_AdministratorLimitedToLinkedPhysician(t *testing.T) {
	f := newBookingFixture(t)
	// Marta books with Sara, who is not linked to Luis
	booked := f.book(t, f.marta, f.other.ID, tomorrow, "10:00")
	admin := f.administrator()

	_, err := f.uc.MarkAttendance(context.Background(), admin, booked.ID, &dto.AttendanceRequest{Outcome: "NoShow"})
	assert.ErrorIs(t, err, ErrNotOwned)

	f.expectRollback()
	_, err = f.uc.Reschedule(context.Background(), admin, booked.ID, &dto.RescheduleRequest{Date: tomorrow, Time: "12:00"})
	assert.ErrorIs(t, err, ErrNotOwned)

	f.expectRollback()
	_, err = f.uc.Cancel(context.Background(), admin, booked.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = f.uc.GetAppointment(context.Background(), admin, booked.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	f.expectRollback()
	_, err = f.uc.CancelByKeys(context.Background(), admin, &dto.CancelByKeysRequest{
		PatientID: f.marta.ID, PhysicianID: f.other.ID, Date: tomorrow, Time: "10:00",
	})
	assert.ErrorIs(t, err, ErrForeignPhysician)

	f.expectRollback()
	_, err = f.uc.Book(context.Background(), admin, &dto.BookAppointmentRequest{
		PatientID: f.ana.ID, PhysicianID: f.other.ID, Date: "2026-03-12", Time: "10:00",
	})
	assert.ErrorIs(t, err, ErrForeignPhysician)
	assert.Zero(t, f.store.countSlots(f.other.ID, "2026-03-12"))

	_, err = f.uc.ListAll(context.Background(), admin, &dto.AppointmentFilterRequest{PhysicianID: &f.other.ID})
	assert.ErrorIs(t, err, ErrForeignPhysician)
	assert.Equal(t, KindForbidden, KindOf(err))

	stored := f.store.appointment(booked.ID)
	assert.Equal(t, entity.AppointmentStatusPending, stored.Status)
	assert.Equal(t, "10:00", stored.Time)
	assertLedgerConsistent(t, f.store)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookingUsecase_AttendanceNeedsLinkedAdministrator(t *testing.T) {
	f := newBookingFixture(t)
	booked := f.book(t, f.ana, f.physician.ID, tomorrow, "10:00")
	unlinked := f.store.addUser(entity.User{Role: entity.RoleAdministrator, GivenNames: "Rosa", FamilyNames: "Vega", Email: "rosa@example.com", NationalID: "1234567893"})

	_, err := f.uc.MarkAttendance(context.Background(), f.patient(f.ana), booked.ID, &dto.AttendanceRequest{Outcome: "Attended"})
	assert.ErrorIs(t, err, ErrAdministratorsOnly)

	rosa := Actor{UserID: unlinked.ID, Role: entity.RoleAdministrator}
	_, err = f.uc.MarkAttendance(context.Background(), rosa, booked.ID, &dto.AttendanceRequest{Outcome: "Attended"})
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = f.uc.ListAll(context.Background(), rosa, nil)
	assert.ErrorIs(t, err, ErrForeignPhysician)

	assert.Equal(t, entity.AppointmentStatusPending, f.store.appointment(booked.ID).Status)
}
