package services

import (
	"fmt"

	"timetable-api/models"
)

type occupant struct {
	id   int64
	slot models.Slot
}

// ConflictIndex tracks which (teacher, slot) and (class, slot) pairs are taken.
// It is not safe for concurrent use; the Ledger serializes access.
type ConflictIndex struct {
	teachers map[occupant]struct{}
	classes  map[occupant]struct{}
}

func NewConflictIndex() *ConflictIndex {
	return &ConflictIndex{
		teachers: make(map[occupant]struct{}),
		classes:  make(map[occupant]struct{}),
	}
}

// BuildConflictIndex seeds an index from already booked lectures. Lectures are
// checked against the snapshot and universe; overlapping lectures and a
// class-subject booked beyond lectures_required are errors.
func BuildConflictIndex(snapshot *models.Snapshot, universe *models.SlotUniverse, lectures []models.BookedLecture) (*ConflictIndex, error) {
	idx := NewConflictIndex()
	booked := make(map[int64]int)
	for _, l := range lectures {
		slot, err := snapshot.CheckLecture(universe, l)
		if err != nil {
			return nil, err
		}
		d, _ := snapshot.DemandFor(l.TeacherID, l.ClassID, l.SubjectID)
		if booked[d.ID]++; booked[d.ID] > d.LecturesRequired {
			return nil, models.Invalidf("class-subject %d has more than the %d lectures it requires", d.ID, d.LecturesRequired)
		}
		if !idx.IsFree(l.TeacherID, l.ClassID, slot) {
			return nil, fmt.Errorf("lecture %s overlaps another booking on %s %s", l.ID, l.Day, l.Time)
		}
		idx.Reserve(l.TeacherID, l.ClassID, slot)
	}
	return idx, nil
}

func (x *ConflictIndex) TeacherFree(teacherID int64, slot models.Slot) bool {
	_, taken := x.teachers[occupant{teacherID, slot}]
	return !taken
}

func (x *ConflictIndex) ClassFree(classID int64, slot models.Slot) bool {
	_, taken := x.classes[occupant{classID, slot}]
	return !taken
}

// IsFree reports whether neither the teacher nor the class is busy at slot.
func (x *ConflictIndex) IsFree(teacherID, classID int64, slot models.Slot) bool {
	return x.TeacherFree(teacherID, slot) && x.ClassFree(classID, slot)
}

// Reserve marks both pairs busy. Callers must check IsFree first; reserving
// a taken pair panics.
func (x *ConflictIndex) Reserve(teacherID, classID int64, slot models.Slot) {
	if !x.IsFree(teacherID, classID, slot) {
		panic(fmt.Sprintf("conflict index: reserve of busy slot %+v (teacher %d, class %d)", slot, teacherID, classID))
	}
	x.teachers[occupant{teacherID, slot}] = struct{}{}
	x.classes[occupant{classID, slot}] = struct{}{}
}

// Release undoes Reserve. Releasing a pair that is not reserved panics.
func (x *ConflictIndex) Release(teacherID, classID int64, slot models.Slot) {
	t := occupant{teacherID, slot}
	c := occupant{classID, slot}
	_, okT := x.teachers[t]
	_, okC := x.classes[c]
	if !okT || !okC {
		panic(fmt.Sprintf("conflict index: release of unreserved slot %+v (teacher %d, class %d)", slot, teacherID, classID))
	}
	delete(x.teachers, t)
	delete(x.classes, c)
}

// Len is the number of reservations held.
func (x *ConflictIndex) Len() int {
	return len(x.teachers)
}
