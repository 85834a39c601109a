package models

import "time"

// BookingRequest asks for one manual lecture.
type BookingRequest struct {
	TeacherID int64  `json:"teacher_id" binding:"required"`
	ClassID   int64  `json:"class_id" binding:"required"`
	SubjectID int64  `json:"subject_id" binding:"required"`
	Day       string `json:"day" binding:"required"`
	Time      string `json:"time" binding:"required"`
}

// GenerateRequest optionally bounds a generation run.
type GenerateRequest struct {
	DeadlineMS int64 `json:"deadline_ms" form:"deadline_ms" binding:"gte=0"`
	StepBudget int   `json:"step_budget" form:"step_budget" binding:"gte=0"`
}

type PresignedURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	FileName  string    `json:"fileName"`
}

type ErrorResponse struct {
	Error    string           `json:"error"`
	Detail   string           `json:"detail,omitempty"`
	Conflict *BookingConflict `json:"conflict,omitempty"`
}
