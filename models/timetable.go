package models

import "time"

// TeacherEntry is one row of a teacher's timetable.
type TeacherEntry struct {
	Day     string `json:"day"`
	Time    string `json:"time"`
	Class   string `json:"class"`
	Subject string `json:"subject"`
	Origin  Origin `json:"origin"`
}

// ClassEntry is one row of a class timetable.
type ClassEntry struct {
	Day     string `json:"day"`
	Time    string `json:"time"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Origin  Origin `json:"origin"`
}

// Timetable groups booked lectures by teacher name and by class name,
// each list ordered by (day, period).
type Timetable struct {
	Teachers map[string][]TeacherEntry `json:"teachers"`
	Classes  map[string][]ClassEntry   `json:"classes"`
}

// UnplacedUnit is one required lecture the generator could not place.
// Ordinal counts from 1 within its Demand.
type UnplacedUnit struct {
	DemandID  int64  `json:"demand_id"`
	TeacherID int64  `json:"teacher_id"`
	ClassID   int64  `json:"class_id"`
	SubjectID int64  `json:"subject_id"`
	Teacher   string `json:"teacher"`
	Class     string `json:"class"`
	Subject   string `json:"subject"`
	Ordinal   int    `json:"ordinal"`
}

type GenerationStatus string

const (
	StatusComplete GenerationStatus = "complete"
	StatusPartial  GenerationStatus = "partial"
)

// Schedule is the outcome of a generation run. A partial schedule carries
// the same groupings plus the lectures that could not be placed.
type Schedule struct {
	Status      GenerationStatus `json:"status"`
	Reason      StopReason       `json:"reason,omitempty"`
	Timetable                    // teachers, classes
	Placed      int              `json:"placed"`
	Unplaced    []UnplacedUnit   `json:"unplaced"`
	Steps       int              `json:"steps"`
	GeneratedAt time.Time        `json:"generated_at"`
}

func (s *Schedule) Partial() bool {
	return s.Status == StatusPartial
}

// Err returns an *InfeasibleDemandError for partial schedules, nil otherwise.
func (s *Schedule) Err() error {
	if !s.Partial() {
		return nil
	}
	return &InfeasibleDemandError{Reason: s.Reason, Unplaced: len(s.Unplaced)}
}
