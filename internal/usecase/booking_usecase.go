package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/infrastructure/metrics"
	"clinic-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Actor is the authenticated caller of a ledger operation
type Actor struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

func (a Actor) isAdministrator() bool {
	return a.Role == entity.RoleAdministrator
}

type BookingUsecase interface {
	Book(ctx context.Context, actor Actor, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
	CancelByKeys(ctx context.Context, actor Actor, req *dto.CancelByKeysRequest) (*dto.AppointmentResponse, error)
	Reschedule(ctx context.Context, actor Actor, id uuid.UUID, req *dto.RescheduleRequest) (*dto.AppointmentResponse, error)
	MarkAttendance(ctx context.Context, actor Actor, id uuid.UUID, req *dto.AttendanceRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, actor Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) (*dto.AppointmentListResponse, error)
	ListAll(ctx context.Context, actor Actor, req *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error)
}

type bookingUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	validate        *validator.CustomValidator
	metrics         *metrics.BookingMetrics
	userRepo        repository.UserRepository
	physicianRepo   repository.PhysicianRepository
	slotRepo        repository.SlotRepository
	appointmentRepo repository.AppointmentRepository
	now             func() time.Time
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	validate *validator.CustomValidator,
	m *metrics.BookingMetrics,
	userRepo repository.UserRepository,
	physicianRepo repository.PhysicianRepository,
	slotRepo repository.SlotRepository,
	appointmentRepo repository.AppointmentRepository,
) BookingUsecase {
	return &bookingUsecase{
		db:              db,
		log:             log,
		validate:        validate,
		metrics:         m,
		userRepo:        userRepo,
		physicianRepo:   physicianRepo,
		slotRepo:        slotRepo,
		appointmentRepo: appointmentRepo,
		now:             time.Now,
	}
}

func (u *bookingUsecase) observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = string(KindOf(err))
	}
	u.metrics.ObserveOperation(operation, result)
}

// resolvePatient picks whose calendar an operation acts on.
// Patients always act for themselves; administrators must name the patient.
func resolvePatient(actor Actor, requested uuid.UUID) (uuid.UUID, error) {
	if !actor.isAdministrator() {
		return actor.UserID, nil
	}
	if requested == uuid.Nil {
		return uuid.Nil, ErrValidation.Wrap(errors.New("patient_id is required"))
	}
	return requested, nil
}

// actingPhysician returns the physician an administrator account is linked to
func (u *bookingUsecase) actingPhysician(ctx context.Context, db *gorm.DB, actor Actor) (*entity.Physician, error) {
	physician, err := u.physicianRepo.FindByLinkedUserID(ctx, db, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find linked physician: %+v", err)
		return nil, storageError(err)
	}
	if physician == nil {
		return nil, ErrForeignPhysician
	}
	return physician, nil
}

// checkPhysician rejects administrators working on another physician's calendar
func (u *bookingUsecase) checkPhysician(ctx context.Context, db *gorm.DB, actor Actor, physicianID int) error {
	if !actor.isAdministrator() {
		return nil
	}
	physician, err := u.actingPhysician(ctx, db, actor)
	if err != nil {
		return err
	}
	if physician.ID != physicianID {
		return ErrForeignPhysician
	}
	return nil
}

// authorize lets patients act on their own appointments and administrators
// on the appointments of their linked physician
func (u *bookingUsecase) authorize(ctx context.Context, db *gorm.DB, actor Actor, appointment *entity.Appointment) error {
	if !actor.isAdministrator() {
		if appointment.PatientID != actor.UserID {
			return ErrNotOwned
		}
		return nil
	}
	if err := u.checkPhysician(ctx, db, actor, appointment.PhysicianID); err != nil {
		if errors.Is(err, ErrForeignPhysician) {
			return ErrNotOwned
		}
		return err
	}
	return nil
}

// checkSchedule validates a target date and time and rejects instants not strictly in the future
func (u *bookingUsecase) checkSchedule(date, clock string) error {
	if _, err := entity.ParseDate(date); err != nil {
		return ErrInvalidDate
	}
	if _, err := entity.ParseClock(clock); err != nil {
		return ErrInvalidTime
	}
	if !entity.IsSlotTime(clock) {
		return ErrTimeOffGrid
	}

	now := u.now()
	at, err := entity.CombineDateClock(date, clock, now.Location())
	if err != nil {
		return ErrInvalidDate
	}
	if !at.After(now) {
		return ErrPastDateTime
	}
	return nil
}

func (u *bookingUsecase) Book(ctx context.Context, actor Actor, req *dto.BookAppointmentRequest) (resp *dto.AppointmentResponse, err error) {
	defer func() { u.observe("book", err) }()

	if err := u.checkSchedule(req.Date, req.Time); err != nil {
		return nil, err
	}
	if err := u.validate.Validate(req); err != nil {
		return nil, ErrValidation.Wrap(err)
	}
	patientID, err := resolvePatient(actor, req.PatientID)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.userRepo.FindByID(ctx, tx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient: %+v", err)
		return nil, storageError(err)
	}
	if patient == nil {
		return nil, ErrUserNotFound
	}
	if patient.Role != entity.RolePatient {
		return nil, ErrNotPatient
	}

	physician, err := u.physicianRepo.FindByID(ctx, tx, req.PhysicianID)
	if err != nil {
		u.log.Warnf("Failed to find physician: %+v", err)
		return nil, storageError(err)
	}
	if physician == nil {
		return nil, ErrPhysicianNotFound
	}
	if err := u.checkPhysician(ctx, tx, actor, physician.ID); err != nil {
		return nil, err
	}

	if err := ensureDaySlots(ctx, tx, u.slotRepo, physician.ID, req.Date); err != nil {
		u.log.Warnf("Failed to ensure slots: %+v", err)
		return nil, storageError(err)
	}

	// A patient cannot hold two live appointments at the same instant
	existing, err := u.appointmentRepo.FindActiveByPatientAt(ctx, tx, patientID, req.Date, req.Time)
	if err != nil {
		u.log.Warnf("Failed to check patient calendar: %+v", err)
		return nil, storageError(err)
	}
	if existing != nil {
		return nil, ErrSlotConflict
	}

	rows, err := u.slotRepo.Reserve(ctx, tx, physician.ID, req.Date, req.Time)
	if err != nil {
		u.log.Warnf("Failed to reserve slot: %+v", err)
		return nil, storageError(err)
	}
	if rows == 0 {
		return nil, ErrSlotConflict
	}

	appointment := &entity.Appointment{
		ID:          uuid.New(),
		PatientID:   patientID,
		PhysicianID: physician.ID,
		Date:        req.Date,
		Time:        req.Time,
		Status:      entity.AppointmentStatusPending,
	}
	if err := u.appointmentRepo.Create(ctx, tx, appointment); err != nil {
		if isDuplicateKeyError(err, "uq_appointments_") {
			return nil, ErrSlotConflict
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, storageError(err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, storageError(err)
	}

	appointment.Patient = *patient
	appointment.Physician = *physician
	u.log.Infof("Booked appointment %s: physician=%d %s %s", appointment.ID, physician.ID, req.Date, req.Time)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *bookingUsecase) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (resp *dto.AppointmentResponse, err error) {
	defer func() { u.observe("cancel", err) }()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, storageError(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if err := u.authorize(ctx, tx, actor, appointment); err != nil {
		return nil, err
	}

	if err := u.cancelInTx(ctx, tx, appointment); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, storageError(err)
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *bookingUsecase) CancelByKeys(ctx context.Context, actor Actor, req *dto.CancelByKeysRequest) (resp *dto.AppointmentResponse, err error) {
	defer func() { u.observe("cancel", err) }()

	if err := u.validate.Validate(req); err != nil {
		return nil, ErrValidation.Wrap(err)
	}
	patientID, err := resolvePatient(actor, req.PatientID)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.checkPhysician(ctx, tx, actor, req.PhysicianID); err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindActiveByKeys(ctx, tx, patientID, req.PhysicianID, req.Date, req.Time)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, storageError(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if err := u.cancelInTx(ctx, tx, appointment); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, storageError(err)
	}
	return converter.AppointmentToResponse(appointment), nil
}

// cancelInTx moves a pending appointment to Cancelled and reopens its slot
func (u *bookingUsecase) cancelInTx(ctx context.Context, tx *gorm.DB, appointment *entity.Appointment) error {
	if appointment.IsFinalized() {
		return ErrAlreadyFinalized
	}

	rows, err := u.appointmentRepo.UpdateStatus(ctx, tx, appointment.ID, entity.AppointmentStatusPending, entity.AppointmentStatusCancelled)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment: %+v", err)
		return storageError(err)
	}
	if rows == 0 {
		return ErrAlreadyFinalized
	}

	if _, err := u.slotRepo.Release(ctx, tx, appointment.PhysicianID, appointment.Date, appointment.Time); err != nil {
		u.log.Warnf("Failed to release slot: %+v", err)
		return storageError(err)
	}

	appointment.Status = entity.AppointmentStatusCancelled
	u.log.Infof("Cancelled appointment %s", appointment.ID)
	return nil
}

// Reschedule moves a pending appointment to another time of the same physician.
// The new slot is reserved before the old one is released so a conflict leaves everything as it was.
func (u *bookingUsecase) Reschedule(ctx context.Context, actor Actor, id uuid.UUID, req *dto.RescheduleRequest) (resp *dto.AppointmentResponse, err error) {
	defer func() { u.observe("reschedule", err) }()

	if err := u.checkSchedule(req.Date, req.Time); err != nil {
		return nil, err
	}
	if err := u.validate.Validate(req); err != nil {
		return nil, ErrValidation.Wrap(err)
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, storageError(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if err := u.authorize(ctx, tx, actor, appointment); err != nil {
		return nil, err
	}
	if !appointment.IsPending() {
		return nil, ErrNotPending
	}
	if appointment.Date == req.Date && appointment.Time == req.Time {
		return converter.AppointmentToResponse(appointment), nil
	}

	if err := ensureDaySlots(ctx, tx, u.slotRepo, appointment.PhysicianID, req.Date); err != nil {
		u.log.Warnf("Failed to ensure slots: %+v", err)
		return nil, storageError(err)
	}

	existing, err := u.appointmentRepo.FindActiveByPatientAt(ctx, tx, appointment.PatientID, req.Date, req.Time)
	if err != nil {
		u.log.Warnf("Failed to check patient calendar: %+v", err)
		return nil, storageError(err)
	}
	if existing != nil {
		return nil, ErrSlotConflict
	}

	rows, err := u.slotRepo.Reserve(ctx, tx, appointment.PhysicianID, req.Date, req.Time)
	if err != nil {
		u.log.Warnf("Failed to reserve slot: %+v", err)
		return nil, storageError(err)
	}
	if rows == 0 {
		return nil, ErrSlotConflict
	}

	if _, err := u.slotRepo.Release(ctx, tx, appointment.PhysicianID, appointment.Date, appointment.Time); err != nil {
		u.log.Warnf("Failed to release slot: %+v", err)
		return nil, storageError(err)
	}

	rows, err = u.appointmentRepo.UpdateSchedule(ctx, tx, appointment.ID, req.Date, req.Time)
	if err != nil {
		if isDuplicateKeyError(err, "uq_appointments_") {
			return nil, ErrSlotConflict
		}
		u.log.Warnf("Failed to move appointment: %+v", err)
		return nil, storageError(err)
	}
	if rows == 0 {
		return nil, ErrNotPending
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, storageError(err)
	}

	u.log.Infof("Rescheduled appointment %s from %s %s to %s %s",
		appointment.ID, appointment.Date, appointment.Time, req.Date, req.Time)
	appointment.Date = req.Date
	appointment.Time = req.Time
	return converter.AppointmentToResponse(appointment), nil
}

func (u *bookingUsecase) MarkAttendance(ctx context.Context, actor Actor, id uuid.UUID, req *dto.AttendanceRequest) (resp *dto.AppointmentResponse, err error) {
	defer func() { u.observe("attendance", err) }()

	if !actor.isAdministrator() {
		return nil, ErrAdministratorsOnly
	}

	outcome := entity.AppointmentStatus(req.Outcome)
	if !outcome.IsAttendanceOutcome() {
		return nil, ErrInvalidOutcome
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, storageError(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if err := u.authorize(ctx, u.db, actor, appointment); err != nil {
		return nil, err
	}
	if !appointment.IsPending() {
		return nil, ErrNotPending
	}

	rows, err := u.appointmentRepo.UpdateStatus(ctx, u.db, id, entity.AppointmentStatusPending, outcome)
	if err != nil {
		u.log.Warnf("Failed to mark attendance: %+v", err)
		return nil, storageError(err)
	}
	if rows == 0 {
		return nil, ErrNotPending
	}

	appointment.Status = outcome
	u.log.Infof("Marked appointment %s as %s", appointment.ID, outcome)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *bookingUsecase) GetAppointment(ctx context.Context, actor Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, storageError(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if err := u.authorize(ctx, u.db, actor, appointment); err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *bookingUsecase) ListForPatient(ctx context.Context, patientID uuid.UUID) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindByPatientID(ctx, u.db, patientID)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, storageError(err)
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// ListAll lists the calendar of the administrator's linked physician.
// A physician filter naming anyone else is rejected.
func (u *bookingUsecase) ListAll(ctx context.Context, actor Actor, req *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error) {
	if !actor.isAdministrator() {
		return nil, ErrAdministratorsOnly
	}

	filter := &entity.AppointmentFilter{}
	if req != nil {
		if err := u.validate.Validate(req); err != nil {
			return nil, ErrValidation.Wrap(err)
		}
		filter.Date = req.Date
	}

	physician, err := u.actingPhysician(ctx, u.db, actor)
	if err != nil {
		return nil, err
	}
	if req != nil && req.PhysicianID != nil && *req.PhysicianID != physician.ID {
		return nil, ErrForeignPhysician
	}
	filter.PhysicianID = &physician.ID

	appointments, err := u.appointmentRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, storageError(err)
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}
