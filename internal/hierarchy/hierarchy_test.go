package hierarchy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
)

const acct int64 = 1

func setup(t *testing.T) (*Resolver, *storage.Repos) {
	t.Helper()
	db, err := storage.Open(context.Background(), storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repos := storage.NewRepos(db)
	return New(NewStoreReader(repos)), repos
}

func addProject(t *testing.T, repos *storage.Repos, remote, parent model.Ref, color string) {
	t.Helper()
	require.NoError(t, repos.Projects.Create(context.Background(), &model.Project{
		Syncable: model.Syncable{RemoteID: remote, AccountID: acct},
		Name:     "P" + remote.String(),
		ParentID: parent,
		Color:    color,
	}))
}

func addTask(t *testing.T, repos *storage.Repos, task *model.Task) *model.Task {
	t.Helper()
	task.AccountID = acct
	if task.Name == "" {
		task.Name = "T" + task.RemoteID.String()
	}
	require.NoError(t, repos.Tasks.Create(context.Background(), task))
	return task
}

// ===== Classification =====

func TestClassifyProject(t *testing.T) {
	h, repos := setup(t)
	ctx := context.Background()
	addProject(t, repos, 10, model.NoParent, "3")
	addProject(t, repos, 20, 10, "0")

	assert.Equal(t, Pair{Parent: 10, Child: 20}, h.ClassifyProject(ctx, 20, acct))
	assert.Equal(t, Pair{Parent: 10, Child: model.Unresolved}, h.ClassifyProject(ctx, 10, acct))
	assert.Equal(t, unresolvedPair(), h.ClassifyProject(ctx, 99, acct))
	assert.Equal(t, unresolvedPair(), h.ClassifyProject(ctx, 10, 2), "other account")

	assert.True(t, h.ClassifyProject(ctx, 20, acct).IsNested())
	assert.Equal(t, model.Ref(20), h.ClassifyProject(ctx, 20, acct).Leaf())
}

func TestClassifyProvisionalParent(t *testing.T) {
	h, repos := setup(t)
	addProject(t, repos, -5, model.NoParent, "")
	addProject(t, repos, 30, -5, "")

	assert.Equal(t, Pair{Parent: -5, Child: 30}, h.ClassifyProject(context.Background(), 30, acct))
}

func TestTaskLinkageClassifiesSubtasks(t *testing.T) {
	h, repos := setup(t)
	ctx := context.Background()
	addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 100}, ProjectID: 10})
	addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 101}, ParentID: 100})

	sub := h.TaskLinkage(ctx, 101, acct)
	assert.Equal(t, model.Ref(100), sub.TaskID)
	assert.Equal(t, model.Ref(101), sub.SubTaskID)

	top := h.TaskLinkage(ctx, 100, acct)
	assert.Equal(t, model.Ref(100), top.TaskID)
	assert.Equal(t, model.Unresolved, top.SubTaskID)
}

// ===== Linkage =====

func TestTaskLinkage(t *testing.T) {
	h, repos := setup(t)
	ctx := context.Background()
	addProject(t, repos, 10, model.NoParent, "")
	addProject(t, repos, 20, 10, "")

	t.Run("top_level_task_in_sub_project", func(t *testing.T) {
		addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 100}, ProjectID: 20})
		l := h.TaskLinkage(ctx, 100, acct)
		assert.Equal(t, model.Ref(10), l.ProjectID)
		assert.Equal(t, model.Ref(20), l.SubProjectID)
		assert.Equal(t, model.Ref(100), l.TaskID)
		assert.Equal(t, model.Unresolved, l.SubTaskID)
		assert.Equal(t, model.LinkedTask, l.LinkedType)
	})

	t.Run("subtask_takes_project_from_parent", func(t *testing.T) {
		addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 101}, ParentID: 100, ProjectID: model.Unresolved})
		l := h.TaskLinkage(ctx, 101, acct)
		assert.Equal(t, model.Ref(10), l.ProjectID)
		assert.Equal(t, model.Ref(20), l.SubProjectID)
		assert.Equal(t, model.Ref(100), l.TaskID)
		assert.Equal(t, model.Ref(101), l.SubTaskID)
	})

	t.Run("top_level_project", func(t *testing.T) {
		addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 200}, ProjectID: 10})
		l := h.TaskLinkage(ctx, 200, acct)
		assert.Equal(t, model.Ref(10), l.ProjectID)
		assert.Equal(t, model.Unresolved, l.SubProjectID)
	})

	t.Run("missing_task_degrades", func(t *testing.T) {
		l := h.TaskLinkage(ctx, 999, acct)
		assert.Equal(t, model.Unresolved, l.ProjectID)
		assert.Equal(t, model.Unresolved, l.TaskID)
		assert.Equal(t, model.LinkedTask, l.LinkedType)
	})

	t.Run("unknown_project_is_reported_top_level", func(t *testing.T) {
		addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 300}, ProjectID: 77})
		l := h.TaskLinkage(ctx, 300, acct)
		assert.Equal(t, model.Ref(77), l.ProjectID)
		assert.Equal(t, model.Unresolved, l.SubProjectID)
	})
}

func TestSubtaskParentFallbacks(t *testing.T) {
	h, repos := setup(t)
	ctx := context.Background()
	addProject(t, repos, 10, model.NoParent, "")
	addProject(t, repos, 11, model.NoParent, "")

	parent := addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 500}, ProjectID: 10})

	t.Run("parent_id_stored_as_local_id", func(t *testing.T) {
		sub := addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 501}, ParentID: model.Ref(parent.ID)})
		l := h.LinkageOf(ctx, sub)
		assert.Equal(t, model.Ref(500), l.TaskID)
		assert.Equal(t, model.Ref(10), l.ProjectID)
	})

	t.Run("parent_missing_uses_own_project", func(t *testing.T) {
		sub := addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 502}, ParentID: 9999, ProjectID: 11})
		l := h.LinkageOf(ctx, sub)
		assert.Equal(t, model.Ref(9999), l.TaskID)
		assert.Equal(t, model.Ref(502), l.SubTaskID)
		assert.Equal(t, model.Ref(11), l.ProjectID)
	})
}

func TestActivityLinkage(t *testing.T) {
	h, repos := setup(t)
	ctx := context.Background()
	addProject(t, repos, 10, model.NoParent, "")
	addProject(t, repos, 20, 10, "")

	project := h.ActivityLinkage(ctx, &model.Activity{
		Syncable: model.Syncable{AccountID: acct}, ResModel: model.ResModelProject, ResID: 20,
	})
	assert.Equal(t, model.LinkedProject, project.LinkedType)
	assert.Equal(t, model.Ref(10), project.ProjectID)
	assert.Equal(t, model.Ref(20), project.SubProjectID)
	assert.Equal(t, model.Unresolved, project.TaskID)

	update := h.ActivityLinkage(ctx, &model.Activity{
		Syncable: model.Syncable{AccountID: acct}, ResModel: model.ResModelUpdate, ResID: 7,
	})
	assert.Equal(t, model.LinkedUpdate, update.LinkedType)
	assert.Equal(t, model.Ref(7), update.UpdateID)

	other := h.ActivityLinkage(ctx, &model.Activity{ResModel: "res.partner", ResID: 3})
	assert.Equal(t, model.UnresolvedLinkage(), other)
}

// ===== Inheritance =====

func TestResolveColor(t *testing.T) {
	h, repos := setup(t)
	ctx := context.Background()
	addProject(t, repos, 10, model.NoParent, "4")
	addProject(t, repos, 20, 10, "0")
	addProject(t, repos, 30, 20, "")
	addProject(t, repos, 40, 10, "9")

	assert.Equal(t, "4", h.ResolveColor(ctx, 30, acct))
	assert.Equal(t, "9", h.ResolveColor(ctx, 40, acct))
	assert.Equal(t, model.DefaultColor, h.ResolveColor(ctx, 404, acct))
	assert.Equal(t, model.DefaultColor, h.ResolveColor(ctx, model.Unresolved, acct))
}

func TestResolveColorTerminatesOnCycle(t *testing.T) {
	h, repos := setup(t)
	addProject(t, repos, 1, 2, "0")
	addProject(t, repos, 2, 3, "")
	addProject(t, repos, 3, 1, "0")

	assert.Equal(t, model.DefaultColor, h.ResolveColor(context.Background(), 1, acct))
	assert.Equal(t, model.Ref(1), h.TopLevelProject(context.Background(), 2, acct))
}

func TestTaskColor(t *testing.T) {
	h, repos := setup(t)
	addProject(t, repos, 10, model.NoParent, "5")
	addProject(t, repos, 20, 10, "")
	addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 100}, ProjectID: 20})
	sub := addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 101}, ParentID: 100})

	assert.Equal(t, "5", h.TaskColor(context.Background(), sub))
}

func TestTaskStageInheritance(t *testing.T) {
	h, repos := setup(t)
	ctx := context.Background()
	require.NoError(t, repos.Stages.Create(ctx, &model.Stage{
		Syncable: model.Syncable{RemoteID: 7, AccountID: acct}, Kind: model.StageKindTask, Name: "Done", Fold: true,
	}))

	parent := addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 100}, StageID: 7})
	sub := addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 101}, ParentID: 100})
	loose := addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 102}})

	s := h.TaskStage(ctx, sub)
	require.NotNil(t, s)
	assert.Equal(t, "Done", s.Name)
	assert.True(t, h.TaskFolded(ctx, parent))
	assert.True(t, h.TaskFolded(ctx, sub))
	assert.False(t, h.TaskFolded(ctx, loose))
}

func TestProjectStageInheritance(t *testing.T) {
	h, repos := setup(t)
	ctx := context.Background()
	require.NoError(t, repos.Stages.Create(ctx, &model.Stage{
		Syncable: model.Syncable{RemoteID: 3, AccountID: acct}, Kind: model.StageKindProject, Name: "Archived", Fold: true,
	}))
	require.NoError(t, repos.Projects.Create(ctx, &model.Project{
		Syncable: model.Syncable{RemoteID: 10, AccountID: acct}, Name: "Root", StageID: 3,
	}))
	child := &model.Project{Syncable: model.Syncable{RemoteID: 20, AccountID: acct}, Name: "Child", ParentID: 10}
	require.NoError(t, repos.Projects.Create(ctx, child))

	s := h.ProjectStage(ctx, child)
	require.NotNil(t, s)
	assert.True(t, s.Fold)
}

func TestFillTimesheet(t *testing.T) {
	h, repos := setup(t)
	ctx := context.Background()
	addProject(t, repos, 10, model.NoParent, "")
	addProject(t, repos, 20, 10, "")
	addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 100}, ProjectID: 20})
	addTask(t, repos, &model.Task{Syncable: model.Syncable{RemoteID: 101}, ParentID: 100})

	e := &model.TimesheetEntry{Syncable: model.Syncable{AccountID: acct}}
	h.FillTimesheet(ctx, e, 101)
	assert.Equal(t, model.Ref(10), e.ProjectID)
	assert.Equal(t, model.Ref(20), e.SubProjectID)
	assert.Equal(t, model.Ref(100), e.TaskID)
	assert.Equal(t, model.Ref(101), e.SubTaskID)

	e = &model.TimesheetEntry{Syncable: model.Syncable{AccountID: acct}}
	h.FillTimesheetFromProject(ctx, e, 20)
	assert.Equal(t, model.Ref(10), e.ProjectID)
	assert.Equal(t, model.Ref(20), e.SubProjectID)
}

// ===== Rollup =====

func TestRollupSpentHours(t *testing.T) {
	projects := []*model.Project{
		{Syncable: model.Syncable{RemoteID: 1}, ParentID: model.NoParent},
		{Syncable: model.Syncable{RemoteID: 2}, ParentID: 1},
		{Syncable: model.Syncable{RemoteID: 3}, ParentID: 2},
		{Syncable: model.Syncable{RemoteID: 4}, ParentID: model.NoParent},
		{Syncable: model.Syncable{RemoteID: 5}, ParentID: 6},
		{Syncable: model.Syncable{RemoteID: 6}, ParentID: 5},
	}
	totals := RollupSpentHours(projects, map[model.Ref]float64{
		1: 1, 2: 0.5, 3: 0.25, 5: 2, 99: 8,
	})

	assert.InDelta(t, 1.75, totals[1], 0.001)
	assert.InDelta(t, 0.75, totals[2], 0.001)
	assert.InDelta(t, 0.25, totals[3], 0.001)
	assert.Zero(t, totals[4])
	assert.InDelta(t, 2, totals[5], 0.001)
	assert.InDelta(t, 2, totals[6], 0.001)
	_, unknown := totals[99]
	assert.False(t, unknown)
}
