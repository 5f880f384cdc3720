package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ReminderSweepLockKey guards a sweep so that only one instance runs it per interval
const ReminderSweepLockKey = "reminders:sweep:lock"

// ErrSweepInProgress is returned when another runner holds the sweep lock
var ErrSweepInProgress = errors.New("reminder sweep already in progress")

// releaseLockScript deletes the lock only when it still carries our token.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// ReminderRefresher is the part of the notification feed the worker drives
type ReminderRefresher interface {
	PendingPatients(ctx context.Context) ([]uuid.UUID, error)
	Refresh(ctx context.Context, patientID uuid.UUID) (int, error)
}

// ReminderService periodically refreshes the notification feed of every
// patient with an upcoming pending appointment.
type ReminderService struct {
	refresher   ReminderRefresher
	redisClient *redis.Client
	log         *logrus.Logger
	metrics     *metrics.BookingMetrics
	cfg         config.ReminderConfig

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

func NewReminderService(
	refresher ReminderRefresher,
	redisClient *redis.Client,
	log *logrus.Logger,
	m *metrics.BookingMetrics,
	cfg config.ReminderConfig,
) *ReminderService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}
	return &ReminderService{
		refresher:   refresher,
		redisClient: redisClient,
		log:         log,
		metrics:     m,
		cfg:         cfg,
		stopChan:    make(chan struct{}),
	}
}

// Start launches the sweep loop. Calling it more than once has no effect.
func (s *ReminderService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go s.loop()
	s.log.Infof("ReminderService started: interval=%v", s.cfg.Interval)
}

// Stop waits for an in-flight sweep to finish. Safe to call multiple times.
func (s *ReminderService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("ReminderService stopped")
	}
}

func (s *ReminderService) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stopChan
		cancel()
	}()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			created, err := s.Sweep(ctx)
			switch {
			case errors.Is(err, ErrSweepInProgress):
				s.log.Debug("Reminder sweep skipped, lock held elsewhere")
			case err != nil:
				s.log.Warnf("Reminder sweep failed: %+v", err)
			case created > 0:
				s.log.Infof("Reminder sweep created %d notifications", created)
			}
		}
	}
}

// Sweep refreshes every patient once and returns the number of notifications created.
// Per-patient failures are logged and do not stop the others.
func (s *ReminderService) Sweep(ctx context.Context) (int, error) {
	token := uuid.NewString()
	acquired, err := s.redisClient.SetNX(ctx, ReminderSweepLockKey, token, s.cfg.LockTTL).Result()
	if err != nil {
		return 0, err
	}
	if !acquired {
		return 0, ErrSweepInProgress
	}
	defer func() {
		if err := releaseLockScript.Run(context.WithoutCancel(ctx), s.redisClient, []string{ReminderSweepLockKey}, token).Err(); err != nil {
			s.log.Warnf("Failed to release reminder lock: %+v", err)
		}
	}()

	startTime := time.Now()
	defer func() {
		s.metrics.ObserveSweepDuration(time.Since(startTime).Seconds())
	}()

	patients, err := s.refresher.PendingPatients(ctx)
	if err != nil {
		return 0, err
	}

	var created atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, patientID := range patients {
		g.Go(func() error {
			n, err := s.refresher.Refresh(gctx, patientID)
			if err != nil {
				s.log.Warnf("Failed to refresh reminders for patient %s: %+v", patientID, err)
				return nil
			}
			created.Add(int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(created.Load()), err
	}

	total := int(created.Load())
	s.metrics.ObserveRemindersCreated(total)
	return total, nil
}
