package model

import "time"

// StageKind distinguishes project stages from task stages.
type StageKind string

const (
	StageKindProject StageKind = "project"
	StageKindTask    StageKind = "task"
)

// Stage is a workflow column. Folded stages are archived states.
type Stage struct {
	Syncable
	Kind     StageKind `json:"kind"`
	Name     string    `json:"name"`
	Fold     bool      `json:"fold"`
	Sequence int       `json:"sequence"`
}

// Project is a project or sub-project row.
type Project struct {
	Syncable
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	ParentID       Ref        `json:"parent_id"`
	PlannedStart   *time.Time `json:"planned_start,omitempty"`
	PlannedEnd     *time.Time `json:"planned_end,omitempty"`
	AllocatedHours float64    `json:"allocated_hours"`
	Color          string     `json:"color"`
	StageID        Ref        `json:"stage_id"`
	UserID         Ref        `json:"user_id"`
	HasDraft       bool       `json:"has_draft"`
}

// IsSubProject reports whether the project has a parent project.
func (p *Project) IsSubProject() bool {
	return p.ParentID.IsSet()
}

// ProjectUpdate is a status update posted on a project.
type ProjectUpdate struct {
	Syncable
	ProjectID   Ref        `json:"project_id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	HasDraft    bool       `json:"has_draft"`
}
