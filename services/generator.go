package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"timetable-api/models"

	"github.com/google/uuid"
)

// generatedNamespace seeds name-based IDs so a rerun over the same input
// yields the same lecture IDs.
var generatedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("timetable-api/generated-lecture"))

// ctxCheckInterval is how many search iterations pass between deadline checks.
const ctxCheckInterval = 128

// unit is one lecture still to be placed for a Demand.
type unit struct {
	demand  models.Demand
	ordinal int
}

// frame is a decision on the search stack: units[unit] sits in slots[slot].
type frame struct {
	unit int
	slot int
}

// GenerationInput is everything one run needs. Index must already hold the
// fixed (manual) lectures and is mutated in place: on return it holds fixed
// plus generated reservations.
type GenerationInput struct {
	Snapshot   *models.Snapshot
	Universe   *models.SlotUniverse
	Index      *ConflictIndex
	Fixed      []models.BookedLecture
	StepBudget int // overrides the generator default when > 0
}

// GenerationOutcome is the raw search result before projection.
type GenerationOutcome struct {
	Lectures []models.BookedLecture
	Unplaced []models.UnplacedUnit
	Reason   models.StopReason
	Steps    int
}

func (o GenerationOutcome) Complete() bool {
	return len(o.Unplaced) == 0
}

// Generator places outstanding lectures with a bounded backtracking search.
type Generator struct {
	stepBudget int
	logger     *slog.Logger
}

func NewGenerator(stepBudget int, logger *slog.Logger) *Generator {
	return &Generator{stepBudget: stepBudget, logger: logger.With("component", "generator")}
}

// Run places every lecture the Demands still need after the fixed bookings.
// Demands with the fewest free slots go first (ties keep snapshot order) and
// candidate slots are tried in (day, period) order, so identical input gives
// identical output. When the search proves the input infeasible, spends its
// step budget, or hits the context deadline, the longest partial assignment
// found is kept, extended greedily, and the rest is reported as unplaced.
func (g *Generator) Run(ctx context.Context, in GenerationInput) GenerationOutcome {
	budget := g.stepBudget
	if in.StepBudget > 0 {
		budget = in.StepBudget
	}

	units, capped := g.units(in)
	s := &search{
		units: units,
		slots: in.Universe.Slots(),
		idx:   in.Index,
	}
	reason := s.run(ctx, budget)
	if len(capped) > 0 && reason == models.StopNone {
		reason = models.StopExhausted
	}

	if len(s.stack) < len(units) {
		s.restoreBest()
		s.extendGreedily()
	}

	out := GenerationOutcome{Steps: s.steps}
	for _, u := range capped {
		out.Unplaced = append(out.Unplaced, unplacedUnit(in.Snapshot, u))
	}
	placedAt := make(map[int]models.Slot, len(s.stack))
	for _, f := range s.stack {
		placedAt[f.unit] = s.slots[f.slot]
	}
	for i, u := range units {
		slot, ok := placedAt[i]
		if !ok {
			out.Unplaced = append(out.Unplaced, unplacedUnit(in.Snapshot, u))
			continue
		}
		out.Lectures = append(out.Lectures, generatedLecture(in.Universe, u, slot))
	}
	if !out.Complete() {
		out.Reason = reason
	}

	g.logger.Debug("search finished",
		"units", len(units), "placed", len(out.Lectures), "unplaced", len(out.Unplaced),
		"steps", s.steps, "reason", out.Reason)
	return out
}

// units expands Demands into per-lecture units, most constrained Demand
// first. Lectures beyond a Demand's count of free slots can never be placed;
// they are returned separately and kept out of the search.
func (g *Generator) units(in GenerationInput) (units, capped []unit) {
	booked := make(map[int64]int)
	for _, l := range in.Fixed {
		if d, ok := in.Snapshot.DemandFor(l.TeacherID, l.ClassID, l.SubjectID); ok {
			booked[d.ID]++
		}
	}

	type ranked struct {
		demand models.Demand
		free   int
	}
	var order []ranked
	slots := in.Universe.Slots()
	for _, d := range in.Snapshot.Demands() {
		if booked[d.ID] >= d.LecturesRequired {
			continue
		}
		free := 0
		for _, s := range slots {
			if in.Index.IsFree(d.TeacherID, d.ClassID, s) {
				free++
			}
		}
		order = append(order, ranked{demand: d, free: free})
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].free < order[j].free
	})

	for _, r := range order {
		first := booked[r.demand.ID] + 1
		for n := first; n <= r.demand.LecturesRequired; n++ {
			u := unit{demand: r.demand, ordinal: n}
			if n-first < r.free {
				units = append(units, u)
			} else {
				capped = append(capped, u)
			}
		}
	}
	return units, capped
}

// search holds the explicit decision stack. Every push reserves in idx and
// every pop releases, so idx always equals fixed bookings plus the stack.
type search struct {
	units []unit
	slots []models.Slot
	idx   *ConflictIndex
	stack []frame
	best  []frame
	steps int
}

func (s *search) push(u, slot int) {
	d := s.units[u].demand
	s.idx.Reserve(d.TeacherID, d.ClassID, s.slots[slot])
	s.stack = append(s.stack, frame{unit: u, slot: slot})
}

func (s *search) pop() frame {
	top := s.stack[len(s.stack)-1]
	d := s.units[top.unit].demand
	s.idx.Release(d.TeacherID, d.ClassID, s.slots[top.slot])
	s.stack = s.stack[:len(s.stack)-1]
	return top
}

// lowerBound keeps lectures of one Demand in increasing slot order. They are
// interchangeable, so other orders would only repeat the same assignment.
func (s *search) lowerBound(u int) int {
	if u == 0 || len(s.stack) < u {
		return 0
	}
	prev := s.stack[u-1]
	if s.units[prev.unit].demand.ID != s.units[u].demand.ID {
		return 0
	}
	return prev.slot + 1
}

// firstFree returns the first slot index >= from where unit u fits, or -1.
func (s *search) firstFree(u, from int) int {
	d := s.units[u].demand
	for i := from; i < len(s.slots); i++ {
		if s.idx.IsFree(d.TeacherID, d.ClassID, s.slots[i]) {
			return i
		}
	}
	return -1
}

func (s *search) run(ctx context.Context, budget int) models.StopReason {
	next := 0
	for iter := 0; len(s.stack) < len(s.units); iter++ {
		if iter%ctxCheckInterval == 0 && ctx.Err() != nil {
			return models.StopDeadline
		}

		u := len(s.stack)
		from := max(next, s.lowerBound(u))
		if i := s.firstFree(u, from); i >= 0 {
			s.push(u, i)
			if len(s.stack) > len(s.best) {
				s.best = append(s.best[:0], s.stack...)
			}
			next = 0
			continue
		}

		// Dead end: undo the latest decision and move it to its next candidate.
		if len(s.stack) == 0 {
			return models.StopExhausted
		}
		if s.steps >= budget {
			return models.StopStepBudget
		}
		s.steps++
		next = s.pop().slot + 1
	}
	return models.StopNone
}

// restoreBest rewinds the stack and replays the longest prefix seen.
func (s *search) restoreBest() {
	for len(s.stack) > 0 {
		s.pop()
	}
	for _, f := range s.best {
		s.push(f.unit, f.slot)
	}
}

// extendGreedily places what it can of the units after the restored prefix,
// without backtracking. Units that do not fit stay off the stack.
func (s *search) extendGreedily() {
	for u := len(s.stack); u < len(s.units); u++ {
		if i := s.firstFree(u, 0); i >= 0 {
			s.push(u, i)
		}
	}
}

func generatedLecture(universe *models.SlotUniverse, u unit, slot models.Slot) models.BookedLecture {
	day, period := universe.Label(slot)
	d := u.demand
	key := fmt.Sprintf("%d/%d/%s/%s", d.ID, u.ordinal, day, period)
	return models.BookedLecture{
		ID:        uuid.NewSHA1(generatedNamespace, []byte(key)).String(),
		DemandID:  d.ID,
		TeacherID: d.TeacherID,
		ClassID:   d.ClassID,
		SubjectID: d.SubjectID,
		Day:       day,
		Time:      period,
		Origin:    models.OriginGenerated,
	}
}

func unplacedUnit(snapshot *models.Snapshot, u unit) models.UnplacedUnit {
	d := u.demand
	teacher, _ := snapshot.Teacher(d.TeacherID)
	class, _ := snapshot.Class(d.ClassID)
	subject, _ := snapshot.Subject(d.SubjectID)
	return models.UnplacedUnit{
		DemandID:  d.ID,
		TeacherID: d.TeacherID,
		ClassID:   d.ClassID,
		SubjectID: d.SubjectID,
		Teacher:   teacher.Name,
		Class:     class.Name,
		Subject:   subject.Name,
		Ordinal:   u.ordinal,
	}
}
