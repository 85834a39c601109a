package services

import (
	"context"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"timetable-api/models"
)

func runGenerator(t *testing.T, f *fixture, budget int, fixed ...models.BookedLecture) (GenerationOutcome, *ConflictIndex) {
	t.Helper()
	idx, err := BuildConflictIndex(f.snapshot, f.universe, fixed)
	if err != nil {
		t.Fatalf("BuildConflictIndex: %v", err)
	}
	out := NewGenerator(budget, f.logger).Run(context.Background(), GenerationInput{
		Snapshot: f.snapshot,
		Universe: f.universe,
		Index:    idx,
		Fixed:    fixed,
	})
	return out, idx
}

// Two Demands for ClassA over three usable slots: Mon-09, Mon-10, Tue-09.
// Tue-10 is taken for both teachers by bookings of ClassB and ClassC.
func TestGenerator_ThreeSlotScenario(t *testing.T) {
	f := newFixture(t)
	fixed := []models.BookedLecture{
		f.lecture("m1", 1, 11, 100, "Tue", "10", models.OriginManual),
		f.lecture("m2", 2, 12, 101, "Tue", "10", models.OriginManual),
	}

	out, idx := runGenerator(t, f, 1000, fixed...)

	if !out.Complete() || out.Reason != models.StopNone {
		t.Fatalf("outcome incomplete: %+v", out)
	}
	if len(out.Lectures) != 3 {
		t.Fatalf("placed %d lectures, want 3", len(out.Lectures))
	}
	counts := countByDemand(out.Lectures)
	if counts[1000] != 2 || counts[1001] != 1 {
		t.Errorf("per-demand counts = %v", counts)
	}

	used := map[string]bool{}
	for _, l := range out.Lectures {
		if l.Origin != models.OriginGenerated {
			t.Errorf("origin = %s", l.Origin)
		}
		used[l.Day+"-"+l.Time] = true
	}
	for _, s := range []string{"Mon-09", "Mon-10", "Tue-09"} {
		if !used[s] {
			t.Errorf("slot %s unused; lectures = %+v", s, out.Lectures)
		}
	}
	assertNoDoubleBooking(t, append(fixed, out.Lectures...))
	if idx.Len() != 5 {
		t.Errorf("index reservations = %d, want fixed + generated", idx.Len())
	}
}

func TestGenerator_ManualBookingCountsTowardDemand(t *testing.T) {
	f := newFixture(t)
	fixed := []models.BookedLecture{f.lecture("m1", 1, 10, 100, "Mon", "09", models.OriginManual)}

	out, _ := runGenerator(t, f, 1000, fixed...)

	if !out.Complete() {
		t.Fatalf("unplaced: %+v", out.Unplaced)
	}
	counts := countByDemand(out.Lectures)
	if counts[1000] != 1 {
		t.Errorf("generated %d Math lectures for ClassA, want 1 on top of the manual one", counts[1000])
	}
	for _, l := range out.Lectures {
		if l.Day == "Mon" && l.Time == "09" && (l.TeacherID == 1 || l.ClassID == 10) {
			t.Errorf("generated lecture collides with manual booking: %+v", l)
		}
	}
	assertNoDoubleBooking(t, append(fixed, out.Lectures...))
}

func TestGenerator_InfeasibleDemandIsPartial(t *testing.T) {
	data := fixtureData()
	data.Demands[0].LecturesRequired = 6 // only 4 slots exist
	f := newFixtureWith(t, data, []string{"Mon", "Tue"}, []string{"09", "10"})

	out, _ := runGenerator(t, f, 1000)

	if out.Complete() {
		t.Fatal("expected unplaced lectures")
	}
	if out.Reason != models.StopExhausted {
		t.Errorf("reason = %q, want exhausted", out.Reason)
	}
	var mathUnplaced int
	for _, u := range out.Unplaced {
		if u.DemandID == 1000 {
			mathUnplaced++
			if u.Class != "ClassA" || u.Subject != "Math" || u.Teacher != "TeacherX" {
				t.Errorf("unplaced unit names = %+v", u)
			}
		}
	}
	if mathUnplaced < 2 {
		t.Errorf("math unplaced = %d, want at least 2", mathUnplaced)
	}
	assertNoDoubleBooking(t, out.Lectures)
	if got := len(out.Lectures) + len(out.Unplaced); got != 6+1+1+1 {
		t.Errorf("placed + unplaced = %d, want every required lecture accounted for", got)
	}
}

// The conflict graph is a path D1-D3-D4-D2 over two slots. Taking Demands
// in insertion order puts D1 and D2 in the same slot, which leaves no room
// for D4, so the search must revise D2.
func TestGenerator_Backtracks(t *testing.T) {
	data := models.SnapshotData{
		Teachers: []models.Teacher{{ID: 1, Name: "X"}, {ID: 2, Name: "Y"}},
		Classes:  []models.Class{{ID: 10, Name: "A"}, {ID: 11, Name: "B"}, {ID: 12, Name: "C"}},
		Subjects: []models.Subject{{ID: 100, Name: "Math"}, {ID: 101, Name: "Eng"}},
		Demands: []models.Demand{
			{ID: 1, ClassID: 10, SubjectID: 100, TeacherID: 1, LecturesRequired: 1},
			{ID: 2, ClassID: 12, SubjectID: 101, TeacherID: 2, LecturesRequired: 1},
			{ID: 3, ClassID: 11, SubjectID: 100, TeacherID: 1, LecturesRequired: 1},
			{ID: 4, ClassID: 11, SubjectID: 101, TeacherID: 2, LecturesRequired: 1},
		},
	}
	f := newFixtureWith(t, data, []string{"Mon"}, []string{"1", "2"})

	out, _ := runGenerator(t, f, 1000)

	if !out.Complete() {
		t.Fatalf("unplaced = %+v", out.Unplaced)
	}
	assertNoDoubleBooking(t, out.Lectures)
	if len(out.Lectures) != 4 {
		t.Errorf("placed %d", len(out.Lectures))
	}
	if out.Steps != 2 {
		t.Errorf("steps = %d, want 2 backtracks", out.Steps)
	}
	slotOf := map[int64]string{}
	for _, l := range out.Lectures {
		slotOf[l.DemandID] = l.Time
	}
	if slotOf[1] == slotOf[2] {
		t.Errorf("D1 and D2 share a slot: %v", slotOf)
	}
}

func TestGenerator_StepBudget(t *testing.T) {
	// Six identical-capacity classes share one teacher over five slots: the
	// demand cannot fit, but no single Demand is over its own free slots, so
	// only the search can find that out.
	data := models.SnapshotData{
		Teachers: []models.Teacher{{ID: 1, Name: "X"}},
		Subjects: []models.Subject{{ID: 100, Name: "Math"}},
	}
	for i := int64(1); i <= 6; i++ {
		data.Classes = append(data.Classes, models.Class{ID: 10 + i, Name: fmt.Sprintf("C%d", i)})
		data.Demands = append(data.Demands, models.Demand{ID: i, ClassID: 10 + i, SubjectID: 100, TeacherID: 1, LecturesRequired: 1})
	}
	f := newFixtureWith(t, data, []string{"Mon"}, []string{"1", "2", "3", "4", "5"})

	out, _ := runGenerator(t, f, 3)

	if out.Reason != models.StopStepBudget {
		t.Fatalf("reason = %q, want step_budget", out.Reason)
	}
	if out.Steps != 3 {
		t.Errorf("steps = %d", out.Steps)
	}
	if len(out.Lectures) != 5 || len(out.Unplaced) != 1 {
		t.Errorf("placed %d, unplaced %d", len(out.Lectures), len(out.Unplaced))
	}
	assertNoDoubleBooking(t, out.Lectures)
}

func TestGenerator_DeadlineStopsSearch(t *testing.T) {
	data := fixtureData()
	data.Demands[0].LecturesRequired = 3
	data.Demands[1].LecturesRequired = 2 // ClassA needs 5 lectures in 4 slots
	f := newFixtureWith(t, data, []string{"Mon", "Tue"}, []string{"09", "10"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	idx, _ := BuildConflictIndex(f.snapshot, f.universe, nil)
	out := NewGenerator(1_000_000, f.logger).Run(ctx, GenerationInput{Snapshot: f.snapshot, Universe: f.universe, Index: idx})

	if out.Reason != models.StopDeadline {
		t.Errorf("reason = %q, want deadline", out.Reason)
	}
	if out.Complete() {
		t.Error("expected unplaced lectures")
	}
	assertNoDoubleBooking(t, out.Lectures)
}

func TestGenerator_Deterministic(t *testing.T) {
	f := newFixture(t)
	fixed := []models.BookedLecture{f.lecture("m1", 2, 12, 101, "Mon", "09", models.OriginManual)}

	first, _ := runGenerator(t, f, 1000, fixed...)
	second, _ := runGenerator(t, f, 1000, fixed...)

	if !reflect.DeepEqual(first.Lectures, second.Lectures) {
		t.Errorf("runs differ:\n%+v\n%+v", first.Lectures, second.Lectures)
	}
}

func TestGenerator_MostConstrainedFirst(t *testing.T) {
	// Demand 2 can only use Mon-1 (its teacher is busy elsewhere), so it must
	// be placed before Demand 1 even though Demand 1 comes first.
	data := models.SnapshotData{
		Teachers: []models.Teacher{{ID: 1, Name: "X"}, {ID: 2, Name: "Y"}},
		Classes:  []models.Class{{ID: 10, Name: "A"}, {ID: 11, Name: "B"}},
		Subjects: []models.Subject{{ID: 100, Name: "Math"}, {ID: 101, Name: "Eng"}},
		Demands: []models.Demand{
			{ID: 1, ClassID: 10, SubjectID: 100, TeacherID: 1, LecturesRequired: 1},
			{ID: 2, ClassID: 10, SubjectID: 101, TeacherID: 2, LecturesRequired: 1},
			{ID: 3, ClassID: 11, SubjectID: 101, TeacherID: 2, LecturesRequired: 1},
		},
	}
	f := newFixtureWith(t, data, []string{"Mon"}, []string{"1", "2"})
	fixed := []models.BookedLecture{f.lecture("m1", 2, 11, 101, "Mon", "2", models.OriginManual)}

	out, _ := runGenerator(t, f, 0, fixed...)

	if !out.Complete() {
		t.Fatalf("unplaced = %+v", out.Unplaced)
	}
	if out.Steps != 0 {
		t.Errorf("steps = %d, want a placement without backtracking", out.Steps)
	}
	for _, l := range out.Lectures {
		if l.DemandID == 2 && l.Time != "1" {
			t.Errorf("constrained demand placed at %s", l.Time)
		}
		if l.DemandID == 1 && l.Time != "2" {
			t.Errorf("free demand placed at %s", l.Time)
		}
	}
}

func TestGenerator_NothingToPlace(t *testing.T) {
	f := newFixture(t)
	fixed := []models.BookedLecture{
		f.lecture("m1", 1, 10, 100, "Mon", "09", models.OriginManual),
		f.lecture("m2", 1, 10, 100, "Mon", "10", models.OriginManual),
		f.lecture("m3", 2, 10, 101, "Tue", "09", models.OriginManual),
		f.lecture("m4", 1, 11, 100, "Tue", "09", models.OriginManual),
		f.lecture("m5", 2, 12, 101, "Tue", "10", models.OriginManual),
	}

	out, _ := runGenerator(t, f, 10, fixed...)

	if !out.Complete() || len(out.Lectures) != 0 {
		t.Errorf("outcome = %+v", out)
	}
}

// randomInstance builds a small school: up to 3 teachers and 3 classes, 2
// subjects, and a week of at most 2 days by 3 periods.
func randomInstance(rng *rand.Rand) (models.SnapshotData, []string, []string) {
	var data models.SnapshotData
	nTeachers, nClasses := 1+rng.Intn(3), 1+rng.Intn(3)
	for i := 1; i <= nTeachers; i++ {
		data.Teachers = append(data.Teachers, models.Teacher{ID: int64(i), Name: fmt.Sprintf("T%d", i)})
	}
	for i := 1; i <= nClasses; i++ {
		data.Classes = append(data.Classes, models.Class{ID: int64(10 + i), Name: fmt.Sprintf("C%d", i)})
	}
	data.Subjects = []models.Subject{{ID: 100, Name: "Math"}, {ID: 101, Name: "Eng"}}

	id := int64(1000)
	for _, c := range data.Classes {
		for _, s := range data.Subjects {
			if rng.Intn(10) < 3 {
				continue
			}
			data.Demands = append(data.Demands, models.Demand{
				ID:               id,
				ClassID:          c.ID,
				SubjectID:        s.ID,
				TeacherID:        data.Teachers[rng.Intn(nTeachers)].ID,
				LecturesRequired: 1 + rng.Intn(3),
			})
			id++
		}
	}

	days := []string{"Mon", "Tue"}[:1+rng.Intn(2)]
	periods := []string{"1", "2", "3"}[:1+rng.Intn(3)]
	return data, days, periods
}

// randomManual books a few lectures by hand without conflicts and without
// exceeding any requirement.
func randomManual(rng *rand.Rand, f *fixture) []models.BookedLecture {
	demands := f.snapshot.Demands()
	if len(demands) == 0 {
		return nil
	}
	slots := f.universe.Slots()
	idx := NewConflictIndex()
	booked := map[int64]int{}
	var manual []models.BookedLecture
	for k := rng.Intn(4); k > 0; k-- {
		d := demands[rng.Intn(len(demands))]
		slot := slots[rng.Intn(len(slots))]
		if booked[d.ID] >= d.LecturesRequired || !idx.IsFree(d.TeacherID, d.ClassID, slot) {
			continue
		}
		idx.Reserve(d.TeacherID, d.ClassID, slot)
		booked[d.ID]++
		day, period := f.universe.Label(slot)
		manual = append(manual, f.lecture(fmt.Sprintf("m%d", len(manual)), d.TeacherID, d.ClassID, d.SubjectID, day, period, models.OriginManual))
	}
	return manual
}

func TestGenerator_RandomInstances(t *testing.T) {
	for seed := int64(1); seed <= 300; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			data, days, periods := randomInstance(rng)
			f := newFixtureWith(t, data, days, periods)
			fixed := randomManual(rng, f)

			out, idx := runGenerator(t, f, 5000, fixed...)

			all := append(append([]models.BookedLecture(nil), fixed...), out.Lectures...)
			assertNoDoubleBooking(t, all)
			if idx.Len() != len(all) {
				t.Errorf("index holds %d reservations, want %d", idx.Len(), len(all))
			}

			counts := countByDemand(all)
			unplaced := map[int64]int{}
			for _, u := range out.Unplaced {
				unplaced[u.DemandID]++
			}
			for _, d := range f.snapshot.Demands() {
				if counts[d.ID]+unplaced[d.ID] != d.LecturesRequired {
					t.Errorf("demand %d: %d booked + %d unplaced, want %d",
						d.ID, counts[d.ID], unplaced[d.ID], d.LecturesRequired)
				}
			}
			if out.Complete() != (out.Reason == models.StopNone) {
				t.Errorf("complete=%v with reason %q", out.Complete(), out.Reason)
			}
		})
	}
}
