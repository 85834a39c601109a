package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"timetable-api/models"
)

// GenerateOptions bounds a single run. Zero values fall back to the
// service defaults.
type GenerateOptions struct {
	Deadline   time.Duration
	StepBudget int
}

// TimetableService runs generation and serves the projected timetable.
type TimetableService struct {
	ledger    *Ledger
	generator *Generator
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time

	// running admits one generation at a time.
	running sync.Mutex
}

func NewTimetableService(ledger *Ledger, generator *Generator, timeout time.Duration, logger *slog.Logger) *TimetableService {
	return &TimetableService{
		ledger:    ledger,
		generator: generator,
		timeout:   timeout,
		logger:    logger.With("component", "timetable"),
		now:       time.Now,
	}
}

// Generate clears all generated lectures and places every outstanding one
// around the manual bookings. Manual bookings wait for the run to finish.
// A partial schedule is a normal result; check Schedule.Err.
func (s *TimetableService) Generate(ctx context.Context, opts GenerateOptions) (*models.Schedule, error) {
	if !s.running.TryLock() {
		return nil, models.ErrGenerationInProgress
	}
	defer s.running.Unlock()

	deadline := s.timeout
	if opts.Deadline > 0 {
		deadline = opts.Deadline
	}
	searchCtx := ctx
	if deadline > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	started := s.now()
	lectures, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load booked lectures: %w", err)
	}
	manual := make([]models.BookedLecture, 0, len(lectures))
	for _, lec := range lectures {
		if lec.Origin == models.OriginManual {
			manual = append(manual, lec)
		}
	}
	idx, err := BuildConflictIndex(l.snapshot, l.universe, manual)
	if err != nil {
		return nil, err
	}

	outcome := s.generator.Run(searchCtx, GenerationInput{
		Snapshot:   l.snapshot,
		Universe:   l.universe,
		Index:      idx,
		Fixed:      manual,
		StepBudget: opts.StepBudget,
	})

	generatedAt := s.now().UTC()
	for i := range outcome.Lectures {
		outcome.Lectures[i].CreatedAt = generatedAt
	}
	if err := l.store.ReplaceGenerated(ctx, outcome.Lectures); err != nil {
		s.logger.Error("failed to store generated lectures", "error", err)
		return nil, fmt.Errorf("store generated lectures: %w", err)
	}
	l.index = idx
	l.invalidate()

	all := append(manual, outcome.Lectures...)
	schedule := &models.Schedule{
		Status:      models.StatusComplete,
		Reason:      outcome.Reason,
		Timetable:   ProjectTimetable(l.universe, l.snapshot, all),
		Placed:      len(outcome.Lectures),
		Unplaced:    outcome.Unplaced,
		Steps:       outcome.Steps,
		GeneratedAt: generatedAt,
	}
	if !outcome.Complete() {
		schedule.Status = models.StatusPartial
	}
	if schedule.Unplaced == nil {
		schedule.Unplaced = []models.UnplacedUnit{}
	}
	if l.cache != nil {
		l.cache.SetTimetable(schedule.Timetable)
	}

	s.logger.Info("timetable generated",
		"status", schedule.Status, "reason", schedule.Reason,
		"manual", len(manual), "placed", schedule.Placed, "unplaced", len(schedule.Unplaced),
		"steps", schedule.Steps, "duration", s.now().Sub(started))
	return schedule, nil
}

// Current projects the booked lectures as they stand. The bool reports a
// cache hit.
func (s *TimetableService) Current(ctx context.Context) (models.Timetable, bool, error) {
	l := s.ledger
	if l.cache != nil {
		if tt, ok := l.cache.GetTimetable(); ok {
			return tt, true, nil
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	lectures, err := l.store.List(ctx)
	if err != nil {
		return models.Timetable{}, false, fmt.Errorf("load booked lectures: %w", err)
	}
	tt := ProjectTimetable(l.universe, l.snapshot, lectures)
	if l.cache != nil {
		l.cache.SetTimetable(tt)
	}
	return tt, false, nil
}

// ClearGenerated drops every generated lecture, keeping manual ones.
func (s *TimetableService) ClearGenerated(ctx context.Context) error {
	if !s.running.TryLock() {
		return models.ErrGenerationInProgress
	}
	defer s.running.Unlock()

	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	lectures, err := l.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load booked lectures: %w", err)
	}
	var manual []models.BookedLecture
	for _, lec := range lectures {
		if lec.Origin == models.OriginManual {
			manual = append(manual, lec)
		}
	}
	idx, err := BuildConflictIndex(l.snapshot, l.universe, manual)
	if err != nil {
		return err
	}
	if err := l.store.ReplaceGenerated(ctx, nil); err != nil {
		return fmt.Errorf("clear generated lectures: %w", err)
	}
	l.index = idx
	l.invalidate()

	s.logger.Info("generated lectures cleared", "removed", len(lectures)-len(manual))
	return nil
}
