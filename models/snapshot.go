package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SnapshotData is the wire shape of the administration layer's entity export.
type SnapshotData struct {
	Teachers []Teacher `json:"teachers" yaml:"teachers" validate:"dive"`
	Classes  []Class   `json:"classes" yaml:"classes" validate:"dive"`
	Subjects []Subject `json:"subjects" yaml:"subjects" validate:"dive"`
	Demands  []Demand  `json:"class_subjects" yaml:"class_subjects" validate:"dive"`
}

type triple struct {
	teacher, class, subject int64
}

// Snapshot is a validated, read-only view of the entities. Every scheduling
// operation receives one explicitly.
type Snapshot struct {
	data     SnapshotData
	teachers map[int64]Teacher
	classes  map[int64]Class
	subjects map[int64]Subject
	demands  map[int64]Demand
	byTriple map[triple]Demand
}

// NewSnapshot validates data and indexes it. Field rules come from the
// validate tags; cross-record rules (unique ids, existing references, one
// Demand per triple) are checked here.
func NewSnapshot(data SnapshotData) (*Snapshot, error) {
	if err := validate.Struct(data); err != nil {
		return nil, &ValidationError{Detail: describeValidation(err)}
	}

	s := &Snapshot{
		data: SnapshotData{
			Teachers: append([]Teacher(nil), data.Teachers...),
			Classes:  append([]Class(nil), data.Classes...),
			Subjects: append([]Subject(nil), data.Subjects...),
			Demands:  append([]Demand(nil), data.Demands...),
		},
		teachers: make(map[int64]Teacher, len(data.Teachers)),
		classes:  make(map[int64]Class, len(data.Classes)),
		subjects: make(map[int64]Subject, len(data.Subjects)),
		demands:  make(map[int64]Demand, len(data.Demands)),
		byTriple: make(map[triple]Demand, len(data.Demands)),
	}

	// Teacher and class names key the timetable views, so they must be unique too.
	names := make(map[string]int64, len(data.Teachers))
	for _, t := range data.Teachers {
		if _, dup := s.teachers[t.ID]; dup {
			return nil, Invalidf("duplicate teacher id %d", t.ID)
		}
		if other, dup := names[t.Name]; dup {
			return nil, Invalidf("teachers %d and %d share the name %q", other, t.ID, t.Name)
		}
		names[t.Name] = t.ID
		s.teachers[t.ID] = t
	}
	names = make(map[string]int64, len(data.Classes))
	for _, c := range data.Classes {
		if _, dup := s.classes[c.ID]; dup {
			return nil, Invalidf("duplicate class id %d", c.ID)
		}
		if other, dup := names[c.Name]; dup {
			return nil, Invalidf("classes %d and %d share the name %q", other, c.ID, c.Name)
		}
		names[c.Name] = c.ID
		s.classes[c.ID] = c
	}
	for _, sub := range data.Subjects {
		if _, dup := s.subjects[sub.ID]; dup {
			return nil, Invalidf("duplicate subject id %d", sub.ID)
		}
		s.subjects[sub.ID] = sub
	}

	for _, d := range data.Demands {
		if _, dup := s.demands[d.ID]; dup {
			return nil, Invalidf("duplicate class-subject id %d", d.ID)
		}
		if _, ok := s.teachers[d.TeacherID]; !ok {
			return nil, Invalidf("class-subject %d references unknown teacher %d", d.ID, d.TeacherID)
		}
		if _, ok := s.classes[d.ClassID]; !ok {
			return nil, Invalidf("class-subject %d references unknown class %d", d.ID, d.ClassID)
		}
		if _, ok := s.subjects[d.SubjectID]; !ok {
			return nil, Invalidf("class-subject %d references unknown subject %d", d.ID, d.SubjectID)
		}
		key := triple{d.TeacherID, d.ClassID, d.SubjectID}
		if other, dup := s.byTriple[key]; dup {
			return nil, Invalidf("class-subjects %d and %d bind the same teacher, class and subject", other.ID, d.ID)
		}
		s.demands[d.ID] = d
		s.byTriple[key] = d
	}

	return s, nil
}

// EmptySnapshot is used before the administration layer has supplied data.
func EmptySnapshot() *Snapshot {
	s, _ := NewSnapshot(SnapshotData{})
	return s
}

func (s *Snapshot) Teacher(id int64) (Teacher, bool) {
	t, ok := s.teachers[id]
	return t, ok
}

func (s *Snapshot) Class(id int64) (Class, bool) {
	c, ok := s.classes[id]
	return c, ok
}

func (s *Snapshot) Subject(id int64) (Subject, bool) {
	sub, ok := s.subjects[id]
	return sub, ok
}

// DemandFor finds the Demand binding exactly this teacher, class and subject.
func (s *Snapshot) DemandFor(teacherID, classID, subjectID int64) (Demand, bool) {
	d, ok := s.byTriple[triple{teacherID, classID, subjectID}]
	return d, ok
}

// Demands returns demands in insertion order.
func (s *Snapshot) Demands() []Demand {
	return append([]Demand(nil), s.data.Demands...)
}

func (s *Snapshot) Teachers() []Teacher {
	return append([]Teacher(nil), s.data.Teachers...)
}

func (s *Snapshot) Classes() []Class {
	return append([]Class(nil), s.data.Classes...)
}

func (s *Snapshot) Subjects() []Subject {
	return append([]Subject(nil), s.data.Subjects...)
}

// CheckLecture verifies that a stored lecture still fits this snapshot and
// universe, returning its slot.
func (s *Snapshot) CheckLecture(u *SlotUniverse, l BookedLecture) (Slot, error) {
	d, ok := s.DemandFor(l.TeacherID, l.ClassID, l.SubjectID)
	if !ok {
		return Slot{}, Invalidf("lecture %s has no class-subject for teacher %d, class %d, subject %d",
			l.ID, l.TeacherID, l.ClassID, l.SubjectID)
	}
	if l.DemandID != 0 && l.DemandID != d.ID {
		return Slot{}, Invalidf("lecture %s points at class-subject %d, expected %d", l.ID, l.DemandID, d.ID)
	}
	slot, ok := u.Resolve(l.Day, l.Time)
	if !ok {
		return Slot{}, Invalidf("lecture %s is booked outside the configured slots (%s %s)", l.ID, l.Day, l.Time)
	}
	return slot, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
