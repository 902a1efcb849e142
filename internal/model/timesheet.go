package model

import (
	"fmt"
	"time"
)

// Quadrant is the Eisenhower urgency/importance class of a timesheet line.
type Quadrant int

const (
	QuadrantDo Quadrant = iota
	QuadrantPlan
	QuadrantDelegate
	QuadrantDelete
)

var quadrantNames = [...]string{"Do", "Plan", "Delegate", "Delete"}

// Valid reports whether q is one of the four quadrants.
func (q Quadrant) Valid() bool {
	return q >= QuadrantDo && q <= QuadrantDelete
}

func (q Quadrant) String() string {
	if !q.Valid() {
		return fmt.Sprintf("Quadrant(%d)", int(q))
	}
	return quadrantNames[q]
}

// TimerMark is the timer state recorded on a timesheet row.
type TimerMark string

const (
	TimerMarkNone    TimerMark = ""
	TimerMarkRunning TimerMark = "running"
	TimerMarkPaused  TimerMark = "paused"
	TimerMarkStopped TimerMark = "stopped"
)

// TimesheetEntry is one timesheet line. UnitAmount is in decimal hours.
type TimesheetEntry struct {
	Syncable
	Name         string    `json:"name"`
	ProjectID    Ref       `json:"project_id"`
	SubProjectID Ref       `json:"sub_project_id"`
	TaskID       Ref       `json:"task_id"`
	SubTaskID    Ref       `json:"sub_task_id"`
	UserID       Ref       `json:"user_id"`
	Quadrant     Quadrant  `json:"quadrant"`
	UnitAmount   float64   `json:"unit_amount"`
	RecordDate   time.Time `json:"record_date"`
	TimerMark    TimerMark `json:"timer_state,omitempty"`
	HasDraft     bool      `json:"has_draft"`
}

// HasProject reports whether a project is assigned.
func (t *TimesheetEntry) HasProject() bool {
	return t.ProjectID.IsSet() || t.SubProjectID.IsSet()
}

// TimerStatus is the state of the timer state machine.
type TimerStatus string

const (
	TimerIdle    TimerStatus = "idle"
	TimerRunning TimerStatus = "running"
	TimerPaused  TimerStatus = "paused"
)

// TimerState is the single active timer. It is kept in the runtime state store
// between command invocations.
type TimerState struct {
	Key               string      `json:"key"`
	Status            TimerStatus `json:"status"`
	TimesheetID       int64       `json:"timesheet_id,omitempty"`
	StartedAt         time.Time   `json:"started_at,omitzero"`
	PausedAt          time.Time   `json:"paused_at,omitzero"`
	PreviouslyTracked float64     `json:"previously_tracked_hours"`
	Label             string      `json:"label,omitempty"`
}

// NewTimerState returns an idle timer state.
func NewTimerState() *TimerState {
	return &TimerState{Key: KeyTimerState, Status: TimerIdle}
}

// SetKey sets the state store key.
func (s *TimerState) SetKey(key string) {
	s.Key = key
}

// GetKey returns the state store key.
func (s *TimerState) GetKey() string {
	return s.Key
}

// IsActive reports whether a timesheet is bound to the timer.
func (s *TimerState) IsActive() bool {
	return s.Status == TimerRunning || s.Status == TimerPaused
}
