package calendar

import "time"

// Event is one dated entry on a course calendar.
type Event struct {
	EventNo    int64     `json:"event_no"`
	CourseCode string    `json:"course_code"`
	EventName  string    `json:"event_name"`
	Date       time.Time `json:"date"`
}
