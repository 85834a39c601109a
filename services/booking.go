package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"timetable-api/models"

	"github.com/google/uuid"
)

// BookingService places and cancels individual manual lectures.
type BookingService struct {
	ledger *Ledger
	logger *slog.Logger
	now    func() time.Time
}

func NewBookingService(ledger *Ledger, logger *slog.Logger) *BookingService {
	return &BookingService{
		ledger: ledger,
		logger: logger.With("component", "booking"),
		now:    time.Now,
	}
}

// Book validates req and, if the teacher and class are both free and the
// class-subject still needs a lecture, records a manual lecture. The check, the reservation and the store write happen under
// the ledger lock; on any error nothing is changed.
func (s *BookingService) Book(ctx context.Context, req models.BookingRequest) (*models.BookedLecture, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	teacher, ok := l.snapshot.Teacher(req.TeacherID)
	if !ok {
		return nil, models.Invalidf("teacher %d does not exist", req.TeacherID)
	}
	class, ok := l.snapshot.Class(req.ClassID)
	if !ok {
		return nil, models.Invalidf("class %d does not exist", req.ClassID)
	}
	subject, ok := l.snapshot.Subject(req.SubjectID)
	if !ok {
		return nil, models.Invalidf("subject %d does not exist", req.SubjectID)
	}
	demand, ok := l.snapshot.DemandFor(teacher.ID, class.ID, subject.ID)
	if !ok {
		return nil, models.Invalidf("teacher %q is not assigned to teach %q to class %q", teacher.Name, subject.Name, class.Name)
	}
	slot, ok := l.universe.Resolve(req.Day, req.Time)
	if !ok {
		return nil, models.Invalidf("%s %s is not a valid slot", req.Day, req.Time)
	}
	day, period := l.universe.Label(slot)

	if !l.index.TeacherFree(teacher.ID, slot) {
		s.logger.Debug("booking rejected", "side", models.ConflictTeacher, "teacher", teacher.ID, "day", day, "time", period)
		return nil, &models.BookingConflict{Side: models.ConflictTeacher, EntityID: teacher.ID, Name: teacher.Name, Day: day, Time: period}
	}
	if !l.index.ClassFree(class.ID, slot) {
		s.logger.Debug("booking rejected", "side", models.ConflictClass, "class", class.ID, "day", day, "time", period)
		return nil, &models.BookingConflict{Side: models.ConflictClass, EntityID: class.ID, Name: class.Name, Day: day, Time: period}
	}

	lectures, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load booked lectures: %w", err)
	}
	booked := 0
	for _, lec := range lectures {
		if lec.TeacherID == teacher.ID && lec.ClassID == class.ID && lec.SubjectID == subject.ID {
			booked++
		}
	}
	if booked >= demand.LecturesRequired {
		s.logger.Debug("booking rejected", "class_subject", demand.ID, "booked", booked, "required", demand.LecturesRequired)
		return nil, models.Invalidf("class-subject %d already has %d of %d lectures", demand.ID, booked, demand.LecturesRequired)
	}

	lecture := &models.BookedLecture{
		ID:        uuid.NewString(),
		DemandID:  demand.ID,
		TeacherID: teacher.ID,
		ClassID:   class.ID,
		SubjectID: subject.ID,
		Day:       day,
		Time:      period,
		Origin:    models.OriginManual,
		CreatedAt: s.now().UTC(),
	}

	l.index.Reserve(teacher.ID, class.ID, slot)
	if err := l.store.Create(ctx, lecture); err != nil {
		l.index.Release(teacher.ID, class.ID, slot)
		s.logger.Error("failed to persist booking", "error", err)
		return nil, fmt.Errorf("persist booking: %w", err)
	}
	l.invalidate()

	s.logger.Info("lecture booked",
		"id", lecture.ID, "teacher", teacher.Name, "class", class.Name, "subject", subject.Name,
		"day", day, "time", period)
	return lecture, nil
}

// Cancel removes a manual lecture. Generated lectures are only replaced by
// regeneration.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	lecture, err := l.store.Get(ctx, id)
	if errors.Is(err, ErrLectureNotFound) {
		return models.Invalidf("booked lecture %q does not exist", id)
	}
	if err != nil {
		return err
	}
	if lecture.Origin != models.OriginManual {
		return models.Invalidf("lecture %q was generated; regenerate the timetable instead of cancelling it", id)
	}
	slot, err := l.snapshot.CheckLecture(l.universe, *lecture)
	if err != nil {
		return err
	}

	if err := l.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	l.index.Release(lecture.TeacherID, lecture.ClassID, slot)
	l.invalidate()

	s.logger.Info("booking cancelled", "id", id, "day", lecture.Day, "time", lecture.Time)
	return nil
}
