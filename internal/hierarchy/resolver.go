// Package hierarchy resolves project and task parent chains.
//
// Every cross-entity reference is a remote id scoped to an account. The
// resolver classifies records as top-level or nested and computes the
// attributes children inherit from their ancestors (color, stage fold).
// It never fails: misses are logged and turn into model.Unresolved.
package hierarchy

import (
	"context"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
)

// Pair is the normalized classification of a record: Parent is the top-level
// remote id and Child the nested one, or Unresolved for a top-level record.
type Pair struct {
	Parent model.Ref `json:"parent"`
	Child  model.Ref `json:"child"`
}

// IsNested reports whether the record has a parent.
func (p Pair) IsNested() bool {
	return p.Child.IsSet()
}

// Leaf returns the most specific id of the pair.
func (p Pair) Leaf() model.Ref {
	if p.Child.IsSet() {
		return p.Child
	}
	return p.Parent
}

func unresolvedPair() Pair {
	return Pair{Parent: model.Unresolved, Child: model.Unresolved}
}

func classify(remoteID, parentID model.Ref) Pair {
	if parentID.IsSet() {
		return Pair{Parent: parentID, Child: remoteID}
	}
	return Pair{Parent: remoteID, Child: model.Unresolved}
}

// Resolver walks parent chains through a Reader.
type Resolver struct {
	r Reader
}

// New creates a resolver.
func New(r Reader) *Resolver {
	return &Resolver{r: r}
}

// ClassifyProject classifies a project as a sub-project or a top-level project.
func (h *Resolver) ClassifyProject(ctx context.Context, remoteID model.Ref, accountID int64) Pair {
	if !remoteID.IsSet() {
		return unresolvedPair()
	}
	p, err := h.r.ProjectByRemoteID(ctx, remoteID, accountID)
	if err != nil {
		h.miss(ctx, "classify_project", err, logging.KeyProject, remoteID, logging.KeyAccount, accountID)
		return unresolvedPair()
	}
	return classify(p.RemoteID, p.ParentID)
}

// ProjectLinkage resolves the hierarchy of something attached to a project.
func (h *Resolver) ProjectLinkage(ctx context.Context, remoteID model.Ref, accountID int64) model.Linkage {
	l := model.UnresolvedLinkage()
	l.LinkedType = model.LinkedProject
	pair := h.ClassifyProject(ctx, remoteID, accountID)
	l.ProjectID, l.SubProjectID = pair.Parent, pair.Child
	return l
}

// TaskLinkage resolves the task, subtask, project and sub-project of something
// attached to a task.
func (h *Resolver) TaskLinkage(ctx context.Context, remoteID model.Ref, accountID int64) model.Linkage {
	if !remoteID.IsSet() {
		l := model.UnresolvedLinkage()
		l.LinkedType = model.LinkedTask
		return l
	}
	t, err := h.r.TaskByRemoteID(ctx, remoteID, accountID)
	if err != nil {
		h.miss(ctx, "task_linkage", err, logging.KeyTask, remoteID, logging.KeyAccount, accountID)
		l := model.UnresolvedLinkage()
		l.LinkedType = model.LinkedTask
		return l
	}
	return h.LinkageOf(ctx, t)
}

// LinkageOf resolves the hierarchy of a task row already in hand.
func (h *Resolver) LinkageOf(ctx context.Context, t *model.Task) model.Linkage {
	l := model.UnresolvedLinkage()
	l.LinkedType = model.LinkedTask

	owner := projectOf(t)
	if t.IsSubtask() {
		parentRemote, parentProject := h.subtaskParent(ctx, t)
		l.TaskID, l.SubTaskID = parentRemote, t.RemoteID
		if parentProject.IsSet() {
			owner = parentProject
		}
	} else {
		l.TaskID, l.SubTaskID = t.RemoteID, model.Unresolved
	}

	l.ProjectID, l.SubProjectID = h.projectPair(ctx, owner, t.AccountID)
	return l
}

// ActivityLinkage resolves what an activity is attached to from its linked model.
func (h *Resolver) ActivityLinkage(ctx context.Context, a *model.Activity) model.Linkage {
	if !a.ResID.IsSet() {
		return model.UnresolvedLinkage()
	}
	switch a.ResModel {
	case model.ResModelTask:
		return h.TaskLinkage(ctx, a.ResID, a.AccountID)
	case model.ResModelProject:
		return h.ProjectLinkage(ctx, a.ResID, a.AccountID)
	case model.ResModelUpdate:
		l := model.UnresolvedLinkage()
		l.UpdateID = a.ResID
		l.LinkedType = model.LinkedUpdate
		return l
	default:
		return model.UnresolvedLinkage()
	}
}

// subtaskParent finds the parent of a subtask and the project it belongs to.
// The stored parent id is tried as a remote id first, then as a local id of a
// row in the same account. When both miss, the stored parent id and the
// subtask's own project are used.
func (h *Resolver) subtaskParent(ctx context.Context, t *model.Task) (model.Ref, model.Ref) {
	parent, err := h.r.TaskByRemoteID(ctx, t.ParentID, t.AccountID)
	if err == nil {
		return parent.RemoteID, projectOf(parent)
	}
	h.miss(ctx, "subtask_parent_by_remote_id", err, logging.KeyTask, t.ParentID, logging.KeyAccount, t.AccountID)

	if t.ParentID > 0 {
		parent, err = h.r.TaskByLocalID(ctx, int64(t.ParentID))
		if err == nil && parent.AccountID == t.AccountID {
			return parent.RemoteID, projectOf(parent)
		}
		if err != nil {
			h.miss(ctx, "subtask_parent_by_local_id", err, logging.KeyTask, t.ParentID)
		}
	}
	return t.ParentID, projectOf(t)
}

// projectPair classifies the project owning a task. A project that cannot be
// found is reported as top-level.
func (h *Resolver) projectPair(ctx context.Context, projectID model.Ref, accountID int64) (model.Ref, model.Ref) {
	if !projectID.IsSet() {
		return model.Unresolved, model.Unresolved
	}
	p, err := h.r.ProjectByRemoteID(ctx, projectID, accountID)
	if err != nil {
		h.miss(ctx, "owning_project", err, logging.KeyProject, projectID, logging.KeyAccount, accountID)
		return projectID, model.Unresolved
	}
	pair := classify(p.RemoteID, p.ParentID)
	return pair.Parent, pair.Child
}

// projectOf returns the most specific project a task row points at.
func projectOf(t *model.Task) model.Ref {
	if t.SubProjectID.IsSet() {
		return t.SubProjectID
	}
	return t.ProjectID
}

// TopLevelProject walks a project's parent chain to its root.
// A cycle ends the walk at the last project visited.
func (h *Resolver) TopLevelProject(ctx context.Context, remoteID model.Ref, accountID int64) model.Ref {
	visited := make(map[model.Ref]bool)
	last := remoteID
	for current := remoteID; current.IsSet(); {
		if visited[current] {
			return last
		}
		visited[current] = true
		p, err := h.r.ProjectByRemoteID(ctx, current, accountID)
		if err != nil {
			h.miss(ctx, "top_level_project", err, logging.KeyProject, current, logging.KeyAccount, accountID)
			return current
		}
		if !p.ParentID.IsSet() {
			return p.RemoteID
		}
		last = current
		current = p.ParentID
	}
	return last
}

func (h *Resolver) miss(ctx context.Context, op string, err error, args ...any) {
	if errors.IsNotFound(err) {
		logging.LoggerFromContext(ctx).Debug("hierarchy lookup missed",
			append([]any{logging.KeyOperation, op}, args...)...)
		return
	}
	logging.LogFailure(ctx, op, err, args...)
}
