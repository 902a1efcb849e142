package model

import "time"

// Task is a task or subtask row. Color and fold state are derived at read time.
type Task struct {
	Syncable
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status,omitempty"`
	Priority        string     `json:"priority,omitempty"`
	ProjectID       Ref        `json:"project_id"`
	SubProjectID    Ref        `json:"sub_project_id"`
	ParentID        Ref        `json:"parent_id"`
	AssigneeIDs     IDSet      `json:"assignee_ids"`
	StageID         Ref        `json:"stage_id"`
	PersonalStageID Ref        `json:"personal_stage_id"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	PlannedHours    float64    `json:"planned_hours"`
	HasDraft        bool       `json:"has_draft"`
}

// IsSubtask reports whether the task has a parent task.
func (t *Task) IsSubtask() bool {
	return t.ParentID.IsSet()
}
