package model

import "time"

// Linked record models an activity can point at.
const (
	ResModelProject = "project.project"
	ResModelTask    = "project.task"
	ResModelUpdate  = "project.update"
)

// LinkedType classifies what an activity is attached to.
type LinkedType string

const (
	LinkedTask    LinkedType = "task"
	LinkedProject LinkedType = "project"
	LinkedUpdate  LinkedType = "update"
	LinkedOther   LinkedType = "other"
)

// ActivityType is a backend activity category such as "Call" or "To-Do".
type ActivityType struct {
	Syncable
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Activity is a reminder or to-do attached to a project, task or update.
type Activity struct {
	Syncable
	Summary        string     `json:"summary"`
	Note           string     `json:"note,omitempty"`
	ActivityTypeID Ref        `json:"activity_type_id"`
	UserID         Ref        `json:"user_id"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ResModel       string     `json:"res_model"`
	ResID          Ref        `json:"res_id"`
	ResName        string     `json:"res_name,omitempty"`
	Done           bool       `json:"done"`
	HasDraft       bool       `json:"has_draft"`
}

// Linkage is the hierarchy an activity resolves to. It is computed on every
// read and never stored.
type Linkage struct {
	ProjectID    Ref        `json:"project_id"`
	SubProjectID Ref        `json:"sub_project_id"`
	TaskID       Ref        `json:"task_id"`
	SubTaskID    Ref        `json:"sub_task_id"`
	UpdateID     Ref        `json:"update_id"`
	LinkedType   LinkedType `json:"linked_type"`
}

// UnresolvedLinkage is the best-effort default when resolution fails.
func UnresolvedLinkage() Linkage {
	return Linkage{
		ProjectID:    Unresolved,
		SubProjectID: Unresolved,
		TaskID:       Unresolved,
		SubTaskID:    Unresolved,
		UpdateID:     Unresolved,
		LinkedType:   LinkedOther,
	}
}
