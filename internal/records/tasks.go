package records

import (
	"context"
	"fmt"
	"math"

	"github.com/timesheets-app/timesheets/internal/draft"
	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/filter"
	"github.com/timesheets-app/timesheets/internal/hierarchy"
	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
	"github.com/timesheets-app/timesheets/internal/validate"
)

// Tasks returns the live tasks of a scope with color, stage, project name,
// spent hours and linkage resolved.
func (s *Service) Tasks(ctx context.Context, scope int64) ([]*model.TaskView, error) {
	repos, h := bind(s.db)
	tasks, err := repos.Tasks.List(ctx, scope)
	if err != nil {
		return nil, errors.Storage("list_tasks", err)
	}
	return taskViews(ctx, repos, h, scope, tasks)
}

// FilterTasks lists the tasks of opts.Scope and applies the date, search and
// assignee filters. A zero opts.Now means the service clock.
func (s *Service) FilterTasks(ctx context.Context, opts filter.Options) ([]*model.TaskView, error) {
	views, err := s.Tasks(ctx, opts.Scope)
	if err != nil {
		return nil, err
	}
	if opts.Now.IsZero() {
		opts.Now = s.now()
	}
	return filter.Tasks(views, opts), nil
}

type taskHours struct {
	key   model.RecordKey
	hours float64
}

func taskViews(ctx context.Context, repos *storage.Repos, h *hierarchy.Resolver, scope int64,
	tasks []*model.Task) ([]*model.TaskView, error) {
	projects, err := repos.Projects.List(ctx, scope)
	if err != nil {
		return nil, errors.Storage("task_projects", err)
	}
	projectNames := make(map[model.RecordKey]string, len(projects))
	for _, p := range projects {
		projectNames[p.Key()] = p.Name
	}

	lines, err := repos.Timesheets.List(ctx, scope)
	if err != nil {
		return nil, errors.Storage("task_hours", err)
	}
	spent := make(map[model.RecordKey]float64)
	for _, l := range lines {
		for _, th := range lineTasks(l) {
			spent[th.key] += th.hours
		}
	}

	views := make([]*model.TaskView, 0, len(tasks))
	for _, t := range tasks {
		l := h.LinkageOf(ctx, t)
		v := &model.TaskView{
			Task:       t,
			Color:      h.ColorOf(ctx, l, t.AccountID),
			SpentHours: math.Round(spent[t.Key()]*100) / 100,
			Linkage:    l,
		}
		leaf := l.ProjectID
		if l.SubProjectID.IsSet() {
			leaf = l.SubProjectID
		}
		v.ProjectName = projectNames[model.RecordKey{RemoteID: leaf, AccountID: t.AccountID}]
		if st := h.TaskStage(ctx, t); st != nil {
			v.StageName, v.Folded = st.Name, st.Fold
		}
		views = append(views, v)
	}
	return views, nil
}

// lineTasks returns the tasks a timesheet line counts toward: its task, and
// its subtask when that differs.
func lineTasks(l *model.TimesheetEntry) []taskHours {
	var out []taskHours
	if l.TaskID.IsSet() {
		out = append(out, taskHours{model.RecordKey{RemoteID: l.TaskID, AccountID: l.AccountID}, l.UnitAmount})
	}
	if l.SubTaskID.IsSet() && l.SubTaskID != l.TaskID {
		out = append(out, taskHours{model.RecordKey{RemoteID: l.SubTaskID, AccountID: l.AccountID}, l.UnitAmount})
	}
	return out
}

// Task returns one task by local id, deleted tasks included.
func (s *Service) Task(ctx context.Context, id int64) (*model.TaskView, error) {
	repos, h := bind(s.db)
	t, err := repos.Tasks.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrTaskNotFound)
	}
	views, err := taskViews(ctx, repos, h, t.AccountID, []*model.Task{t})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// CreateTask adds a local task. A subtask without a project takes its
// parent's project and sub-project.
func (s *Service) CreateTask(ctx context.Context, t *model.Task) CreateResult {
	t.Name = validate.SanitizeName(t.Name)
	t.Description = validate.SanitizeNote(t.Description)
	if err := validate.Name("task", t.Name); err != nil {
		return CreateResult{Result: fail(ctx, "create_task", err)}
	}
	if err := validate.Note(t.Description); err != nil {
		return CreateResult{Result: fail(ctx, "create_task", err)}
	}

	err := s.db.WithTx(ctx, func(q storage.Querier) error {
		repos := storage.NewRepos(q)
		if t.ParentID.IsSet() {
			parent, err := repos.Tasks.GetByRemoteID(ctx, t.ParentID, t.AccountID)
			if err != nil {
				return notFound(err, errors.ErrTaskNotFound)
			}
			if !t.ProjectID.IsSet() && !t.SubProjectID.IsSet() {
				t.ProjectID, t.SubProjectID = parent.ProjectID, parent.SubProjectID
			}
		}
		for _, pid := range []model.Ref{t.ProjectID, t.SubProjectID} {
			if !pid.IsSet() {
				continue
			}
			if _, err := repos.Projects.GetByRemoteID(ctx, pid, t.AccountID); err != nil {
				return notFound(err, errors.ErrProjectNotFound)
			}
		}
		t.RemoteID = localRemoteID(t.RemoteID)
		t.ParentID = unsetRef(t.ParentID)
		t.SyncStatus = model.SyncNew
		return repos.Tasks.Create(ctx, t)
	})
	if err != nil {
		return CreateResult{Result: fail(ctx, "create_task", err, logging.KeyAccount, t.AccountID)}
	}
	logging.LogOperation(ctx, "create_task", logging.KeyTask, t.RemoteID, logging.KeyAccount, t.AccountID)
	return created("Task created", t.ID, t.RemoteID)
}

// DeleteTaskResult is the outcome of MarkTaskAsDeleted.
type DeleteTaskResult struct {
	model.Result
	HasChildren bool          `json:"has_children"`
	Children    []*model.Task `json:"children,omitempty"`
	// Orphaned counts subtasks left without a live parent by a forced delete.
	Orphaned          int `json:"orphaned,omitempty"`
	TimesheetsDeleted int `json:"timesheets_deleted,omitempty"`
	DraftsDeleted     int `json:"drafts_deleted,omitempty"`
}

// MarkTaskAsDeleted soft-deletes a task. A task with live subtasks is left
// untouched unless force is set; a forced delete marks only the parent and
// leaves the subtasks orphaned. The task's timesheet lines are soft-deleted
// and the drafts of everything removed are discarded.
func (s *Service) MarkTaskAsDeleted(ctx context.Context, id int64, force bool) DeleteTaskResult {
	var out DeleteTaskResult
	var blocked bool
	err := s.db.WithTx(ctx, func(q storage.Querier) error {
		repos := storage.NewRepos(q)
		t, err := repos.Tasks.Get(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrTaskNotFound)
		}
		if t.SyncStatus.IsDeleted() {
			return errors.ErrTaskNotFound
		}

		children, err := repos.Tasks.Children(ctx, t.RemoteID, t.AccountID)
		if err != nil {
			return err
		}
		out.HasChildren = len(children) > 0
		out.Children = children
		if out.HasChildren && !force {
			blocked = true
			return nil
		}

		if err := repos.Tasks.MarkDeleted(ctx, id); err != nil {
			return err
		}
		lineIDs, err := repos.Timesheets.SoftDeleteForTask(ctx, t.RemoteID, t.AccountID)
		if err != nil {
			return err
		}
		out.TimesheetsDeleted = len(lineIDs)

		n, err := draft.PurgeRecords(ctx, q, model.FormTask, []int64{id})
		if err != nil {
			return err
		}
		m, err := draft.PurgeRecords(ctx, q, model.FormTimesheet, lineIDs)
		if err != nil {
			return err
		}
		out.DraftsDeleted = n + m

		if out.HasChildren {
			out.Orphaned = len(children)
			return repos.Notifications.Create(ctx, &model.Notification{
				AccountID: t.AccountID,
				Kind:      model.NotifyTask,
				Title:     "Task deleted",
				Body:      fmt.Sprintf("%s was deleted; %d subtask(s) no longer have a parent", t.Name, len(children)),
				RecordID:  &id,
			})
		}
		return nil
	})
	if err != nil {
		out.Result = fail(ctx, "delete_task", err, logging.KeyTask, id)
		return out
	}

	if blocked {
		err := fmt.Errorf("%w: %d active subtask(s)", errors.ErrHasChildren, len(out.Children))
		logging.LogFailure(ctx, "delete_task", err, logging.KeyTask, id)
		out.Result = model.Result{
			Success: false,
			Message: fmt.Sprintf("Task has %d active subtask(s); delete them first or force the delete", len(out.Children)),
			Kind:    errors.KindReferential.String(),
		}
		return out
	}

	logging.LogOperation(ctx, "delete_task", logging.KeyTask, id,
		"forced", force, "orphaned", out.Orphaned, "timesheets", out.TimesheetsDeleted)
	out.Result = model.OK("Task deleted")
	return out
}

// Batch item outcomes.
const (
	ItemDeleted = "deleted"
	ItemBlocked = "blocked"
	ItemFailed  = "failed"
)

// BatchItem is the outcome for one id of a batch delete.
type BatchItem struct {
	ID       int64  `json:"id"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Children int    `json:"children,omitempty"`
}

// BatchDeleteResult is the outcome of MarkMultipleTasksAsDeleted.
type BatchDeleteResult struct {
	model.Result
	Items   []BatchItem `json:"items"`
	Deleted int         `json:"deleted"`
	Blocked int         `json:"blocked"`
	Failed  int         `json:"failed"`
}

// MarkMultipleTasksAsDeleted deletes each task on its own. Success means
// every task was deleted.
func (s *Service) MarkMultipleTasksAsDeleted(ctx context.Context, ids []int64, force bool) BatchDeleteResult {
	var out BatchDeleteResult
	for _, id := range ids {
		r := s.MarkTaskAsDeleted(ctx, id, force)
		item := BatchItem{ID: id, Message: r.Message}
		switch {
		case r.Success:
			item.Status = ItemDeleted
			out.Deleted++
		case r.HasChildren:
			item.Status = ItemBlocked
			item.Children = len(r.Children)
			out.Blocked++
		default:
			item.Status = ItemFailed
			out.Failed++
		}
		out.Items = append(out.Items, item)
	}

	msg := fmt.Sprintf("Deleted %d of %d task(s)", out.Deleted, len(ids))
	if out.Blocked > 0 {
		msg += fmt.Sprintf(", %d blocked by subtasks", out.Blocked)
	}
	if out.Failed > 0 {
		msg += fmt.Sprintf(", %d failed", out.Failed)
	}
	out.Result = model.Result{Success: out.Deleted == len(ids), Message: msg}
	if out.Blocked > 0 {
		out.Kind = errors.KindReferential.String()
	}
	return out
}

// TaskNode is a task with its subtasks.
type TaskNode struct {
	*model.TaskView
	Children []*TaskNode `json:"children,omitempty"`
}

// BuildTaskTree nests tasks under their parent tasks. Tasks whose parent is
// not in the list become roots, so a filtered list keeps its orphans visible.
func BuildTaskTree(views []*model.TaskView) []*TaskNode {
	index := make(map[model.RecordKey]bool, len(views))
	for _, v := range views {
		index[v.Key()] = true
	}
	children := make(map[model.RecordKey][]*model.TaskView)
	var roots []*model.TaskView
	for _, v := range views {
		parent := model.RecordKey{RemoteID: v.ParentID, AccountID: v.AccountID}
		if v.ParentID.IsSet() && index[parent] && parent != v.Key() {
			children[parent] = append(children[parent], v)
			continue
		}
		roots = append(roots, v)
	}

	seen := make(map[int64]bool, len(views))
	var build func(v *model.TaskView) *TaskNode
	build = func(v *model.TaskView) *TaskNode {
		seen[v.ID] = true
		n := &TaskNode{TaskView: v}
		for _, c := range children[v.Key()] {
			if !seen[c.ID] {
				n.Children = append(n.Children, build(c))
			}
		}
		return n
	}

	var out []*TaskNode
	for _, v := range roots {
		out = append(out, build(v))
	}
	for _, v := range views {
		if !seen[v.ID] {
			out = append(out, build(v))
		}
	}
	return out
}
