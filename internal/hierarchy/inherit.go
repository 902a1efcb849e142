package hierarchy

import (
	"context"

	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
)

// ResolveColor returns the color tag of a project, inherited from the nearest
// ancestor with a real color. A repeated visit ends the walk with the default.
func (h *Resolver) ResolveColor(ctx context.Context, projectRemoteID model.Ref, accountID int64) string {
	visited := make(map[model.Ref]bool)
	for current := projectRemoteID; current.IsSet(); {
		if visited[current] {
			logging.LoggerFromContext(ctx).Warn("project parent cycle",
				logging.KeyOperation, "resolve_color", logging.KeyProject, current, logging.KeyAccount, accountID)
			return model.DefaultColor
		}
		visited[current] = true

		p, err := h.r.ProjectByRemoteID(ctx, current, accountID)
		if err != nil {
			h.miss(ctx, "resolve_color", err, logging.KeyProject, current, logging.KeyAccount, accountID)
			return model.DefaultColor
		}
		if model.HasColor(p.Color) {
			return p.Color
		}
		current = p.ParentID
	}
	return model.DefaultColor
}

// TaskColor returns the color a task displays, taken from the project chain it
// belongs to.
func (h *Resolver) TaskColor(ctx context.Context, t *model.Task) string {
	return h.ColorOf(ctx, h.LinkageOf(ctx, t), t.AccountID)
}

// ColorOf returns the color for an already resolved linkage.
func (h *Resolver) ColorOf(ctx context.Context, l model.Linkage, accountID int64) string {
	if l.SubProjectID.IsSet() {
		return h.ResolveColor(ctx, l.SubProjectID, accountID)
	}
	return h.ResolveColor(ctx, l.ProjectID, accountID)
}

// TaskStage returns the stage a task is in. A task without a stage of its own
// inherits the stage of its nearest ancestor task that has one.
func (h *Resolver) TaskStage(ctx context.Context, t *model.Task) *model.Stage {
	visited := make(map[model.Ref]bool)
	current := t
	for current != nil {
		if visited[current.RemoteID] {
			return nil
		}
		visited[current.RemoteID] = true

		stageID := current.StageID
		if !stageID.IsSet() {
			stageID = current.PersonalStageID
		}
		if stageID.IsSet() {
			s, err := h.r.StageByRemoteID(ctx, model.StageKindTask, stageID, current.AccountID)
			if err == nil {
				return s
			}
			h.miss(ctx, "task_stage", err, logging.KeyTask, current.RemoteID, "stage_id", stageID)
		}
		if !current.IsSubtask() {
			return nil
		}

		parent, err := h.r.TaskByRemoteID(ctx, current.ParentID, current.AccountID)
		if err != nil {
			h.miss(ctx, "task_stage_parent", err, logging.KeyTask, current.ParentID)
			return nil
		}
		current = parent
	}
	return nil
}

// TaskFolded reports whether a task sits in a folded stage.
func (h *Resolver) TaskFolded(ctx context.Context, t *model.Task) bool {
	s := h.TaskStage(ctx, t)
	return s != nil && s.Fold
}

// ProjectStage returns the stage of a project, inherited from its parent
// chain when the project has none.
func (h *Resolver) ProjectStage(ctx context.Context, p *model.Project) *model.Stage {
	visited := make(map[model.Ref]bool)
	current := p
	for current != nil {
		if visited[current.RemoteID] {
			return nil
		}
		visited[current.RemoteID] = true

		if current.StageID.IsSet() {
			s, err := h.r.StageByRemoteID(ctx, model.StageKindProject, current.StageID, current.AccountID)
			if err == nil {
				return s
			}
			h.miss(ctx, "project_stage", err, logging.KeyProject, current.RemoteID, "stage_id", current.StageID)
		}
		if !current.IsSubProject() {
			return nil
		}

		parent, err := h.r.ProjectByRemoteID(ctx, current.ParentID, current.AccountID)
		if err != nil {
			h.miss(ctx, "project_stage_parent", err, logging.KeyProject, current.ParentID)
			return nil
		}
		current = parent
	}
	return nil
}

// FillTimesheet sets the project, sub-project, task and subtask of a timesheet
// line from the task it is logged against.
func (h *Resolver) FillTimesheet(ctx context.Context, e *model.TimesheetEntry, taskRemoteID model.Ref) {
	l := h.TaskLinkage(ctx, taskRemoteID, e.AccountID)
	e.ProjectID, e.SubProjectID = l.ProjectID, l.SubProjectID
	e.TaskID, e.SubTaskID = l.TaskID, l.SubTaskID
}

// FillTimesheetFromProject sets the project and sub-project of a timesheet line
// logged directly against a project.
func (h *Resolver) FillTimesheetFromProject(ctx context.Context, e *model.TimesheetEntry, projectRemoteID model.Ref) {
	pair := h.ClassifyProject(ctx, projectRemoteID, e.AccountID)
	if !pair.Parent.IsSet() {
		// Unknown project: keep what the caller gave us.
		e.ProjectID, e.SubProjectID = projectRemoteID, model.Unresolved
		return
	}
	e.ProjectID, e.SubProjectID = pair.Parent, pair.Child
}
