package models

import "time"

// Teacher, Class and Subject are identity-only records owned by the administration layer.
type Teacher struct {
	ID   int64  `json:"id" yaml:"id" validate:"gt=0"`
	Name string `json:"name" yaml:"name" validate:"required,max=200"`
}

type Class struct {
	ID   int64  `json:"id" yaml:"id" validate:"gt=0"`
	Name string `json:"name" yaml:"name" validate:"required,max=200"`
}

type Subject struct {
	ID   int64  `json:"id" yaml:"id" validate:"gt=0"`
	Name string `json:"name" yaml:"name" validate:"required,max=200"`
}

// Demand binds a teacher, a class and a subject: the teacher must teach the
// subject to the class LecturesRequired times per week.
type Demand struct {
	ID               int64 `json:"id" yaml:"id" validate:"gt=0"`
	ClassID          int64 `json:"class_id" yaml:"class_id" validate:"gt=0"`
	SubjectID        int64 `json:"subject_id" yaml:"subject_id" validate:"gt=0"`
	TeacherID        int64 `json:"teacher_id" yaml:"teacher_id" validate:"gt=0"`
	LecturesRequired int   `json:"lectures_required" yaml:"lectures_required" validate:"gt=0"`
}

type Origin string

const (
	OriginManual    Origin = "manual"
	OriginGenerated Origin = "generated"
)

// BookedLecture is one placed lecture. The unique indexes mirror the
// no-double-booking rules for teachers and classes.
type BookedLecture struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	DemandID  int64     `json:"demand_id" gorm:"not null;index"`
	TeacherID int64     `json:"teacher_id" gorm:"not null;uniqueIndex:idx_teacher_slot"`
	ClassID   int64     `json:"class_id" gorm:"not null;uniqueIndex:idx_class_slot"`
	SubjectID int64     `json:"subject_id" gorm:"not null"`
	Day       string    `json:"day" gorm:"size:32;not null;uniqueIndex:idx_teacher_slot;uniqueIndex:idx_class_slot"`
	Time      string    `json:"time" gorm:"size:32;not null;uniqueIndex:idx_teacher_slot;uniqueIndex:idx_class_slot"`
	Origin    Origin    `json:"origin" gorm:"size:16;not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (BookedLecture) TableName() string {
	return "booked_lectures"
}
