package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"clinic-booking/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixedNow is a Tuesday morning; every test clock starts here
var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func duplicateKey(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type slotKey struct {
	physicianID int
	date        string
	clock       string
}

// memStore backs every fake repository with shared in-memory tables
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]entity.User
	specialties   map[int]entity.Specialty
	physicians    map[int]entity.Physician
	slots         map[slotKey]entity.SlotStatus
	appointments  map[uuid.UUID]entity.Appointment
	notifications []entity.Notification

	nextPhysicianID    int
	nextNotificationID int64

	createAppointmentErr error
	reserveErr           error
}

func newMemStore() *memStore {
	s := &memStore{
		users:        map[uuid.UUID]entity.User{},
		specialties:  map[int]entity.Specialty{},
		physicians:   map[int]entity.Physician{},
		slots:        map[slotKey]entity.SlotStatus{},
		appointments: map[uuid.UUID]entity.Appointment{},
	}
	for i, name := range entity.DefaultSpecialties {
		s.specialties[i+1] = entity.Specialty{ID: i + 1, Name: name}
	}
	return s
}

func (s *memStore) addUser(user entity.User) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = user
	return user
}

func (s *memStore) addPhysician(p entity.Physician) entity.Physician {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPhysicianID++
	p.ID = s.nextPhysicianID
	s.physicians[p.ID] = p
	return p
}

func (s *memStore) slotStatus(physicianID int, date, clock string) (entity.SlotStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.slots[slotKey{physicianID, date, clock}]
	return st, ok
}

func (s *memStore) appointment(id uuid.UUID) entity.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appointments[id]
}

func (s *memStore) countSlots(physicianID int, date string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.slots {
		if k.physicianID == physicianID && k.date == date {
			n++
		}
	}
	return n
}

// hydrate fills the relationships the gorm repositories preload
func (s *memStore) hydrate(a entity.Appointment) entity.Appointment {
	a.Patient = s.users[a.PatientID]
	p := s.physicians[a.PhysicianID]
	p.Specialty = s.specialties[p.SpecialtyID]
	a.Physician = p
	return a
}

func sortAppointments(list []entity.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].Time < list[j].Time
	})
}

// users

type fakeUserRepo struct{ s *memStore }

func (r fakeUserRepo) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return duplicateKey("uq_users_email")
		}
		if u.NationalID == user.NationalID {
			return duplicateKey("uq_users_national_id")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt, user.UpdatedAt = fixedNow, fixedNow
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r fakeUserRepo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r fakeUserRepo) UpdateProfile(ctx context.Context, db *gorm.DB, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID != user.ID && u.Email == user.Email {
			return duplicateKey("uq_users_email")
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) UpdatePassword(ctx context.Context, db *gorm.DB, id uuid.UUID, passwordHash string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return 0, nil
	}
	u.PasswordHash = passwordHash
	r.s.users[id] = u
	return 1, nil
}

// specialties

type fakeSpecialtyRepo struct{ s *memStore }

func (r fakeSpecialtyRepo) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Specialty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]entity.Specialty, 0, len(r.s.specialties))
	for _, sp := range r.s.specialties {
		list = append(list, sp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r fakeSpecialtyRepo) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Specialty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.specialties[id]
	if !ok {
		return nil, nil
	}
	return &sp, nil
}

// physicians

type fakePhysicianRepo struct{ s *memStore }

func (r fakePhysicianRepo) Create(ctx context.Context, db *gorm.DB, physician *entity.Physician) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.physicians {
		if p.Email == physician.Email {
			return duplicateKey("uq_physicians_email")
		}
	}
	r.s.nextPhysicianID++
	physician.ID = r.s.nextPhysicianID
	r.s.physicians[physician.ID] = *physician
	return nil
}

func (r fakePhysicianRepo) withSpecialty(p entity.Physician) *entity.Physician {
	p.Specialty = r.s.specialties[p.SpecialtyID]
	return &p
}

func (r fakePhysicianRepo) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Physician, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.physicians[id]
	if !ok {
		return nil, nil
	}
	return r.withSpecialty(p), nil
}

func (r fakePhysicianRepo) FindByLinkedUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.Physician, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.physicians {
		if p.LinkedUserID != nil && *p.LinkedUserID == userID {
			return r.withSpecialty(p), nil
		}
	}
	return nil, nil
}

func (r fakePhysicianRepo) FindAll(ctx context.Context, db *gorm.DB, filter *entity.PhysicianFilter) ([]entity.Physician, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []entity.Physician
	for _, p := range r.s.physicians {
		if filter != nil && filter.SpecialtyID != nil && p.SpecialtyID != *filter.SpecialtyID {
			continue
		}
		if filter != nil && filter.LinkedUserID != nil && (p.LinkedUserID == nil || *p.LinkedUserID != *filter.LinkedUserID) {
			continue
		}
		list = append(list, *r.withSpecialty(p))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r fakePhysicianRepo) FindPatients(ctx context.Context, db *gorm.DB, physicianID int) ([]entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var list []entity.User
	for _, a := range r.s.appointments {
		if a.PhysicianID != physicianID || seen[a.PatientID] {
			continue
		}
		seen[a.PatientID] = true
		list = append(list, r.s.users[a.PatientID])
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].FamilyNames != list[j].FamilyNames {
			return list[i].FamilyNames < list[j].FamilyNames
		}
		return list[i].GivenNames < list[j].GivenNames
	})
	return list, nil
}

func (r fakePhysicianRepo) UpdateContact(ctx context.Context, db *gorm.DB, physician *entity.Physician) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.physicians {
		if p.ID != physician.ID && p.Email == physician.Email {
			return duplicateKey("uq_physicians_email")
		}
	}
	stored := *physician
	stored.Specialty = entity.Specialty{}
	r.s.physicians[physician.ID] = stored
	return nil
}

// slots

type fakeSlotRepo struct{ s *memStore }

func (r fakeSlotRepo) CountByPhysicianAndDate(ctx context.Context, db *gorm.DB, physicianID int, date string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k := range r.s.slots {
		if k.physicianID == physicianID && k.date == date {
			n++
		}
	}
	return n, nil
}

func (r fakeSlotRepo) CreateBatch(ctx context.Context, db *gorm.DB, slots []entity.Slot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sl := range slots {
		k := slotKey{sl.PhysicianID, sl.Date, sl.Time}
		if _, exists := r.s.slots[k]; !exists {
			r.s.slots[k] = sl.Status
		}
	}
	return nil
}

func (r fakeSlotRepo) FindOpen(ctx context.Context, db *gorm.DB, physicianID int, date string) ([]entity.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []entity.Slot
	for k, st := range r.s.slots {
		if k.physicianID == physicianID && k.date == date && st == entity.SlotStatusOpen {
			list = append(list, entity.Slot{PhysicianID: k.physicianID, Date: k.date, Time: k.clock, Status: st})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Time < list[j].Time })
	return list, nil
}

func (r fakeSlotRepo) flip(physicianID int, date, clock string, from, to entity.SlotStatus) int64 {
	k := slotKey{physicianID, date, clock}
	if st, ok := r.s.slots[k]; ok && st == from {
		r.s.slots[k] = to
		return 1
	}
	return 0
}

func (r fakeSlotRepo) Reserve(ctx context.Context, db *gorm.DB, physicianID int, date, clock string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.reserveErr != nil {
		return 0, r.s.reserveErr
	}
	return r.flip(physicianID, date, clock, entity.SlotStatusOpen, entity.SlotStatusReserved), nil
}

func (r fakeSlotRepo) Release(ctx context.Context, db *gorm.DB, physicianID int, date, clock string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.flip(physicianID, date, clock, entity.SlotStatusReserved, entity.SlotStatusOpen), nil
}

// appointments

type fakeAppointmentRepo struct{ s *memStore }

func (r fakeAppointmentRepo) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createAppointmentErr != nil {
		return r.s.createAppointmentErr
	}
	for _, a := range r.s.appointments {
		if a.IsCancelled() || a.Date != appointment.Date || a.Time != appointment.Time {
			continue
		}
		if a.PatientID == appointment.PatientID {
			return duplicateKey("uq_appointments_patient_active")
		}
		if a.PhysicianID == appointment.PhysicianID {
			return duplicateKey("uq_appointments_physician_active")
		}
	}
	appointment.CreatedAt, appointment.UpdatedAt = fixedNow, fixedNow
	stored := *appointment
	stored.Patient, stored.Physician = entity.User{}, entity.Physician{}
	r.s.appointments[appointment.ID] = stored
	return nil
}

func (r fakeAppointmentRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	a = r.s.hydrate(a)
	return &a, nil
}

func (r fakeAppointmentRepo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r fakeAppointmentRepo) FindActiveByKeys(ctx context.Context, db *gorm.DB, patientID uuid.UUID, physicianID int, date, clock string) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.appointments {
		if !a.IsCancelled() && a.PatientID == patientID && a.PhysicianID == physicianID && a.Date == date && a.Time == clock {
			return &a, nil
		}
	}
	return nil, nil
}

func (r fakeAppointmentRepo) FindActiveByPatientAt(ctx context.Context, db *gorm.DB, patientID uuid.UUID, date, clock string) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.appointments {
		if !a.IsCancelled() && a.PatientID == patientID && a.Date == date && a.Time == clock {
			return &a, nil
		}
	}
	return nil, nil
}

func (r fakeAppointmentRepo) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []entity.Appointment
	for _, a := range r.s.appointments {
		if a.PatientID == patientID {
			list = append(list, r.s.hydrate(a))
		}
	}
	sortAppointments(list)
	return list, nil
}

func (r fakeAppointmentRepo) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []entity.Appointment
	for _, a := range r.s.appointments {
		if filter != nil && filter.Date != "" && a.Date != filter.Date {
			continue
		}
		if filter != nil && filter.PhysicianID != nil && a.PhysicianID != *filter.PhysicianID {
			continue
		}
		list = append(list, r.s.hydrate(a))
	}
	sortAppointments(list)
	return list, nil
}

func (r fakeAppointmentRepo) FindPendingBetween(ctx context.Context, db *gorm.DB, patientID uuid.UUID, fromDate, toDate string) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []entity.Appointment
	for _, a := range r.s.appointments {
		if a.PatientID == patientID && a.IsPending() && a.Date >= fromDate && a.Date <= toDate {
			list = append(list, r.s.hydrate(a))
		}
	}
	sortAppointments(list)
	return list, nil
}

func (r fakeAppointmentRepo) FindPatientIDsWithPendingBetween(ctx context.Context, db *gorm.DB, fromDate, toDate string) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, a := range r.s.appointments {
		if a.IsPending() && a.Date >= fromDate && a.Date <= toDate && !seen[a.PatientID] {
			seen[a.PatientID] = true
			ids = append(ids, a.PatientID)
		}
	}
	return ids, nil
}

func (r fakeAppointmentRepo) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok || a.Status != from {
		return 0, nil
	}
	a.Status = to
	r.s.appointments[id] = a
	return 1, nil
}

func (r fakeAppointmentRepo) UpdateSchedule(ctx context.Context, db *gorm.DB, id uuid.UUID, date, clock string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok || !a.IsPending() {
		return 0, nil
	}
	a.Date, a.Time = date, clock
	r.s.appointments[id] = a
	return 1, nil
}

// notifications

type fakeNotificationRepo struct{ s *memStore }

func (r fakeNotificationRepo) CreateIfAbsent(ctx context.Context, db *gorm.DB, notification *entity.Notification) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.AppointmentID == notification.AppointmentID {
			return false, nil
		}
	}
	r.s.nextNotificationID++
	notification.ID = r.s.nextNotificationID
	notification.CreatedAt = fixedNow
	r.s.notifications = append(r.s.notifications, *notification)
	return true, nil
}

func (r fakeNotificationRepo) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []entity.Notification
	for _, n := range r.s.notifications {
		if n.PatientID == patientID {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r fakeNotificationRepo) MarkRead(ctx context.Context, db *gorm.DB, patientID uuid.UUID, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, n := range r.s.notifications {
		if n.ID == id && n.PatientID == patientID {
			r.s.notifications[i].IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

func (r fakeNotificationRepo) Delete(ctx context.Context, db *gorm.DB, patientID uuid.UUID, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, n := range r.s.notifications {
		if n.ID == id && n.PatientID == patientID {
			r.s.notifications = append(r.s.notifications[:i], r.s.notifications[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}
