package model

// TaskView is a task enriched with the attributes resolved at read time.
type TaskView struct {
	*Task
	Color       string  `json:"color"`
	StageName   string  `json:"stage_name,omitempty"`
	Folded      bool    `json:"folded"`
	ProjectName string  `json:"project_name,omitempty"`
	SpentHours  float64 `json:"spent_hours"`
	Linkage     Linkage `json:"linkage"`
}

// ProjectView is a project enriched with inherited color and rolled up hours.
type ProjectView struct {
	*Project
	InheritedColor string  `json:"inherited_color"`
	StageName      string  `json:"stage_name,omitempty"`
	Folded         bool    `json:"folded"`
	SpentHours     float64 `json:"spent_hours"`
	TopLevelID     Ref     `json:"top_level_id"`
}

// ActivityView is an activity with its resolved linkage.
type ActivityView struct {
	*Activity
	Linkage
	TypeName string `json:"type_name,omitempty"`
}

// TimesheetView is a timesheet line with display names resolved.
type TimesheetView struct {
	*TimesheetEntry
	ProjectName string `json:"project_name,omitempty"`
	TaskName    string `json:"task_name,omitempty"`
	Color       string `json:"color"`
	Duration    string `json:"duration"`
}
