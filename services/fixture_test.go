package services

import (
	"context"
	"log/slog"
	"testing"

	"timetable-api/logging"
	"timetable-api/models"
)

// fixture: teachers X(1) Y(2), classes A(10) B(11) C(12), subjects Math(100)
// Eng(101); slots Mon/Tue x 09/10.
type fixture struct {
	t        *testing.T
	universe *models.SlotUniverse
	snapshot *models.Snapshot
	logger   *slog.Logger
}

func fixtureData() models.SnapshotData {
	return models.SnapshotData{
		Teachers: []models.Teacher{{ID: 1, Name: "TeacherX"}, {ID: 2, Name: "TeacherY"}},
		Classes:  []models.Class{{ID: 10, Name: "ClassA"}, {ID: 11, Name: "ClassB"}, {ID: 12, Name: "ClassC"}},
		Subjects: []models.Subject{{ID: 100, Name: "Math"}, {ID: 101, Name: "Eng"}},
		Demands: []models.Demand{
			{ID: 1000, ClassID: 10, SubjectID: 100, TeacherID: 1, LecturesRequired: 2},
			{ID: 1001, ClassID: 10, SubjectID: 101, TeacherID: 2, LecturesRequired: 1},
			{ID: 1002, ClassID: 11, SubjectID: 100, TeacherID: 1, LecturesRequired: 1},
			{ID: 1003, ClassID: 12, SubjectID: 101, TeacherID: 2, LecturesRequired: 1},
		},
	}
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, fixtureData(), []string{"Mon", "Tue"}, []string{"09", "10"})
}

func newFixtureWith(t *testing.T, data models.SnapshotData, days, periods []string) *fixture {
	t.Helper()
	universe, err := models.NewSlotUniverse(days, periods)
	if err != nil {
		t.Fatalf("NewSlotUniverse: %v", err)
	}
	snapshot, err := models.NewSnapshot(data)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return &fixture{
		t:        t,
		universe: universe,
		snapshot: snapshot,
		logger:   logging.Discard(),
	}
}

func (f *fixture) lecture(id string, teacher, class, subject int64, day, time string, origin models.Origin) models.BookedLecture {
	f.t.Helper()
	d, ok := f.snapshot.DemandFor(teacher, class, subject)
	if !ok {
		f.t.Fatalf("no class-subject for %d/%d/%d", teacher, class, subject)
	}
	return models.BookedLecture{
		ID: id, DemandID: d.ID, TeacherID: teacher, ClassID: class, SubjectID: subject,
		Day: day, Time: time, Origin: origin,
	}
}

// services builds a ledger over a memory store seeded with lectures.
func (f *fixture) services(budget int, lectures ...models.BookedLecture) (*Ledger, *BookingService, *TimetableService, *MemoryLectureStore) {
	f.t.Helper()
	store := NewMemoryLectureStore(lectures...)
	ledger, err := NewLedger(context.Background(), f.universe, f.snapshot, store, NewCacheService(0, 0))
	if err != nil {
		f.t.Fatalf("NewLedger: %v", err)
	}
	booking := NewBookingService(ledger, f.logger)
	timetables := NewTimetableService(ledger, NewGenerator(budget, f.logger), 0, f.logger)
	return ledger, booking, timetables, store
}

// assertNoDoubleBooking checks that no teacher and no class appears twice in a slot.
func assertNoDoubleBooking(t *testing.T, lectures []models.BookedLecture) {
	t.Helper()
	type key struct {
		id        int64
		day, time string
	}
	teachers := map[key]string{}
	classes := map[key]string{}
	for _, l := range lectures {
		tk := key{l.TeacherID, l.Day, l.Time}
		if other, dup := teachers[tk]; dup {
			t.Errorf("teacher %d double booked at %s %s (%s, %s)", l.TeacherID, l.Day, l.Time, other, l.ID)
		}
		teachers[tk] = l.ID
		ck := key{l.ClassID, l.Day, l.Time}
		if other, dup := classes[ck]; dup {
			t.Errorf("class %d double booked at %s %s (%s, %s)", l.ClassID, l.Day, l.Time, other, l.ID)
		}
		classes[ck] = l.ID
	}
}

func countByDemand(lectures []models.BookedLecture) map[int64]int {
	counts := map[int64]int{}
	for _, l := range lectures {
		counts[l.DemandID]++
	}
	return counts
}
