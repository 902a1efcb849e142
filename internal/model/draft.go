package model

import (
	"fmt"
	"time"

	"github.com/timesheets-app/timesheets/internal/errors"
)

// FormType names the kind of form a draft belongs to.
type FormType string

const (
	FormTask          FormType = "task"
	FormProject       FormType = "project"
	FormTimesheet     FormType = "timesheet"
	FormProjectUpdate FormType = "project_update"
	FormActivity      FormType = "activity"
)

// FormTypes lists every form type in display order.
var FormTypes = []FormType{FormTask, FormProject, FormTimesheet, FormProjectUpdate, FormActivity}

var formTables = map[FormType]string{
	FormTask:          "tasks",
	FormProject:       "projects",
	FormTimesheet:     "timesheets",
	FormProjectUpdate: "project_updates",
	FormActivity:      "activities",
}

// ParseFormType validates a form type name.
func ParseFormType(s string) (FormType, error) {
	ft := FormType(s)
	if _, ok := formTables[ft]; !ok {
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidFormType, s)
	}
	return ft, nil
}

// Table returns the table owning the hasDraft flag for this form type.
func (f FormType) Table() string {
	return formTables[f]
}

// Draft is an in-progress form edit kept for crash recovery.
type Draft struct {
	ID             int64          `json:"id"`
	FormType       FormType       `json:"draft_type"`
	RecordID       *int64         `json:"record_id"`
	AccountID      int64          `json:"account_id"`
	PageIdentifier string         `json:"page_identifier"`
	FormData       map[string]any `json:"form_data"`
	OriginalData   map[string]any `json:"original_data"`
	ChangedFields  []string       `json:"field_changes"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// IsNewRecord reports whether the draft is for a record not yet saved.
func (d *Draft) IsNewRecord() bool {
	return d.RecordID == nil
}

// Notification is a local notice shown to the user.
type Notification struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	RecordID  *int64    `json:"record_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification kinds.
const (
	NotifyActivity  = "Activity"
	NotifyTask      = "Task"
	NotifyProject   = "Project"
	NotifyTimesheet = "Timesheet"
	NotifySync      = "Sync"
)
