package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"timetable-api/models"
)

var ErrLectureNotFound = errors.New("booked lecture not found")

// LectureStore persists the BookedLecture set. Entities are owned by the
// administration layer and never stored here.
type LectureStore interface {
	List(ctx context.Context) ([]models.BookedLecture, error)
	Get(ctx context.Context, id string) (*models.BookedLecture, error)
	Create(ctx context.Context, lecture *models.BookedLecture) error
	Delete(ctx context.Context, id string) error
	// ReplaceGenerated drops every generated lecture and inserts the given
	// ones in one step. Manual lectures are left alone.
	ReplaceGenerated(ctx context.Context, lectures []models.BookedLecture) error
	Close() error
}

// MemoryLectureStore keeps lectures in insertion order.
type MemoryLectureStore struct {
	mu       sync.RWMutex
	lectures []models.BookedLecture
}

func NewMemoryLectureStore(initial ...models.BookedLecture) *MemoryLectureStore {
	return &MemoryLectureStore{lectures: append([]models.BookedLecture(nil), initial...)}
}

func (s *MemoryLectureStore) List(ctx context.Context) ([]models.BookedLecture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.BookedLecture(nil), s.lectures...), nil
}

func (s *MemoryLectureStore) Get(ctx context.Context, id string) (*models.BookedLecture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lectures {
		if l.ID == id {
			found := l
			return &found, nil
		}
	}
	return nil, ErrLectureNotFound
}

func (s *MemoryLectureStore) Create(ctx context.Context, lecture *models.BookedLecture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lectures {
		if l.ID == lecture.ID {
			return fmt.Errorf("lecture %s already exists", lecture.ID)
		}
	}
	s.lectures = append(s.lectures, *lecture)
	return nil
}

func (s *MemoryLectureStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.lectures {
		if l.ID == id {
			s.lectures = append(s.lectures[:i], s.lectures[i+1:]...)
			return nil
		}
	}
	return ErrLectureNotFound
}

func (s *MemoryLectureStore) ReplaceGenerated(ctx context.Context, lectures []models.BookedLecture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]models.BookedLecture, 0, len(s.lectures)+len(lectures))
	for _, l := range s.lectures {
		if l.Origin != models.OriginGenerated {
			kept = append(kept, l)
		}
	}
	s.lectures = append(kept, lectures...)
	return nil
}

func (s *MemoryLectureStore) Close() error {
	return nil
}
