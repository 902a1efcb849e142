package records

import (
	"context"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/hierarchy"
	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
	"github.com/timesheets-app/timesheets/internal/validate"
)

// Projects returns the live projects of a scope with inherited color, stage
// and spent hours rolled up through sub-projects.
func (s *Service) Projects(ctx context.Context, scope int64) ([]*model.ProjectView, error) {
	repos, h := bind(s.db)
	projects, err := repos.Projects.List(ctx, scope)
	if err != nil {
		return nil, errors.Storage("list_projects", err)
	}
	return projectViews(ctx, repos, h, projects)
}

func projectViews(ctx context.Context, repos *storage.Repos, h *hierarchy.Resolver,
	projects []*model.Project) ([]*model.ProjectView, error) {
	byAccount := make(map[int64][]*model.Project)
	for _, p := range projects {
		byAccount[p.AccountID] = append(byAccount[p.AccountID], p)
	}
	spent := make(map[int64]map[model.Ref]float64, len(byAccount))
	for acct, group := range byAccount {
		direct, err := repos.Timesheets.HoursByProject(ctx, acct)
		if err != nil {
			return nil, errors.Storage("project_hours", err)
		}
		spent[acct] = hierarchy.RollupSpentHours(group, direct)
	}

	views := make([]*model.ProjectView, 0, len(projects))
	for _, p := range projects {
		v := &model.ProjectView{
			Project:        p,
			InheritedColor: h.ResolveColor(ctx, p.RemoteID, p.AccountID),
			SpentHours:     spent[p.AccountID][p.RemoteID],
			TopLevelID:     h.TopLevelProject(ctx, p.RemoteID, p.AccountID),
		}
		if st := h.ProjectStage(ctx, p); st != nil {
			v.StageName, v.Folded = st.Name, st.Fold
		}
		views = append(views, v)
	}
	return views, nil
}

// Project returns one project by local id.
func (s *Service) Project(ctx context.Context, id int64) (*model.ProjectView, error) {
	repos, h := bind(s.db)
	p, err := repos.Projects.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrProjectNotFound)
	}
	siblings, err := repos.Projects.List(ctx, p.AccountID)
	if err != nil {
		return nil, errors.Storage("get_project", err)
	}
	if p.SyncStatus.IsDeleted() {
		siblings = append(siblings, p)
	}
	views, err := projectViews(ctx, repos, h, siblings)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, errors.ErrProjectNotFound
}

// CreateProject adds a local project. A parent must exist in the same
// account.
func (s *Service) CreateProject(ctx context.Context, p *model.Project) CreateResult {
	p.Name = validate.SanitizeName(p.Name)
	p.Description = validate.SanitizeNote(p.Description)
	if err := validate.Name("project", p.Name); err != nil {
		return CreateResult{Result: fail(ctx, "create_project", err)}
	}
	if err := validate.Note(p.Description); err != nil {
		return CreateResult{Result: fail(ctx, "create_project", err)}
	}
	if err := checkColor(p.Color); err != nil {
		return CreateResult{Result: fail(ctx, "create_project", err)}
	}
	if p.Color == "" {
		p.Color = model.DefaultColor
	}

	err := s.db.WithTx(ctx, func(q storage.Querier) error {
		repos := storage.NewRepos(q)
		if p.ParentID.IsSet() {
			if _, err := repos.Projects.GetByRemoteID(ctx, p.ParentID, p.AccountID); err != nil {
				return notFound(err, errors.ErrProjectNotFound)
			}
		}
		p.RemoteID = localRemoteID(p.RemoteID)
		p.ParentID = unsetRef(p.ParentID)
		p.SyncStatus = model.SyncNew
		return repos.Projects.Create(ctx, p)
	})
	if err != nil {
		return CreateResult{Result: fail(ctx, "create_project", err, logging.KeyAccount, p.AccountID)}
	}
	logging.LogOperation(ctx, "create_project", logging.KeyProject, p.RemoteID, logging.KeyAccount, p.AccountID)
	return created("Project created", p.ID, p.RemoteID)
}

// ProjectNode is a project with its sub-projects.
type ProjectNode struct {
	*model.ProjectView
	Children []*ProjectNode `json:"children,omitempty"`
}

// BuildProjectTree nests projects under their parents. Projects whose parent
// is not in the list become roots; members of a parent cycle appear once.
func BuildProjectTree(views []*model.ProjectView) []*ProjectNode {
	index := make(map[model.RecordKey]bool, len(views))
	for _, v := range views {
		index[v.Key()] = true
	}
	children := make(map[model.RecordKey][]*model.ProjectView)
	var roots []*model.ProjectView
	for _, v := range views {
		parent := model.RecordKey{RemoteID: v.ParentID, AccountID: v.AccountID}
		if v.ParentID.IsSet() && index[parent] {
			children[parent] = append(children[parent], v)
			continue
		}
		roots = append(roots, v)
	}

	seen := make(map[int64]bool, len(views))
	var build func(v *model.ProjectView) *ProjectNode
	build = func(v *model.ProjectView) *ProjectNode {
		seen[v.ID] = true
		n := &ProjectNode{ProjectView: v}
		for _, c := range children[v.Key()] {
			if !seen[c.ID] {
				n.Children = append(n.Children, build(c))
			}
		}
		return n
	}

	var out []*ProjectNode
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
