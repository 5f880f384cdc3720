package usecase

import (
	"context"
	"time"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type NotificationUsecase interface {
	Refresh(ctx context.Context, patientID uuid.UUID) (int, error)
	PendingPatients(ctx context.Context) ([]uuid.UUID, error)
	List(ctx context.Context, patientID uuid.UUID) (*dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, patientID uuid.UUID, id int64) error
	Delete(ctx context.Context, patientID uuid.UUID, id int64) error
}

type notificationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	appointmentRepo  repository.AppointmentRepository
	notificationRepo repository.NotificationRepository
	now              func() time.Time
}

func NewNotificationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	notificationRepo repository.NotificationRepository,
) NotificationUsecase {
	return &notificationUsecase{
		db:               db,
		log:              log,
		appointmentRepo:  appointmentRepo,
		notificationRepo: notificationRepo,
		now:              time.Now,
	}
}

// reminderDates bounds the calendar days that can hold an instant in (now, now+window]
func reminderDates(now time.Time) (string, string) {
	return now.Format(entity.DateLayout), now.Add(entity.ReminderWindow).Format(entity.DateLayout)
}

// Refresh creates the missing reminders of a patient and returns how many were added.
// Re-running it never duplicates a reminder.
func (u *notificationUsecase) Refresh(ctx context.Context, patientID uuid.UUID) (int, error) {
	now := u.now()
	fromDate, toDate := reminderDates(now)

	appointments, err := u.appointmentRepo.FindPendingBetween(ctx, u.db, patientID, fromDate, toDate)
	if err != nil {
		u.log.Warnf("Failed to find upcoming appointments for patient %s: %+v", patientID, err)
		return 0, storageError(err)
	}

	created := 0
	for i := range appointments {
		appointment := &appointments[i]
		at, err := appointment.StartsAt(now.Location())
		if err != nil {
			u.log.Warnf("Skipping appointment %s with malformed schedule: %+v", appointment.ID, err)
			continue
		}
		if !entity.IsDueForReminder(now, at) {
			continue
		}

		notification := &entity.Notification{
			AppointmentID: appointment.ID,
			PatientID:     appointment.PatientID,
			Message: entity.ReminderMessage(
				appointment.Physician.Specialty.Name,
				appointment.Physician.FullName(),
				at,
			),
		}
		inserted, err := u.notificationRepo.CreateIfAbsent(ctx, u.db, notification)
		if err != nil {
			u.log.Warnf("Failed to create reminder for appointment %s: %+v", appointment.ID, err)
			return created, storageError(err)
		}
		if inserted {
			created++
		}
	}

	return created, nil
}

func (u *notificationUsecase) PendingPatients(ctx context.Context) ([]uuid.UUID, error) {
	fromDate, toDate := reminderDates(u.now())

	patientIDs, err := u.appointmentRepo.FindPatientIDsWithPendingBetween(ctx, u.db, fromDate, toDate)
	if err != nil {
		u.log.Warnf("Failed to find patients with upcoming appointments: %+v", err)
		return nil, storageError(err)
	}
	return patientIDs, nil
}

// List refreshes the feed first so due reminders appear without waiting for the worker
func (u *notificationUsecase) List(ctx context.Context, patientID uuid.UUID) (*dto.NotificationListResponse, error) {
	if _, err := u.Refresh(ctx, patientID); err != nil {
		return nil, err
	}

	notifications, err := u.notificationRepo.FindByPatientID(ctx, u.db, patientID)
	if err != nil {
		u.log.Warnf("Failed to list notifications: %+v", err)
		return nil, storageError(err)
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}

	return &dto.NotificationListResponse{
		Notifications: converter.NotificationsToResponses(notifications),
		Total:         len(notifications),
		Unread:        unread,
	}, nil
}

func (u *notificationUsecase) MarkRead(ctx context.Context, patientID uuid.UUID, id int64) error {
	rows, err := u.notificationRepo.MarkRead(ctx, u.db, patientID, id)
	if err != nil {
		u.log.Warnf("Failed to mark notification %d read: %+v", id, err)
		return storageError(err)
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (u *notificationUsecase) Delete(ctx context.Context, patientID uuid.UUID, id int64) error {
	rows, err := u.notificationRepo.Delete(ctx, u.db, patientID, id)
	if err != nil {
		u.log.Warnf("Failed to delete notification %d: %+v", id, err)
		return storageError(err)
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
