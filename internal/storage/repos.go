package storage

// Repos bundles every repository bound to one Querier, so a unit of work can
// run the same calls against the database or inside a transaction.
type Repos struct {
	Accounts      *AccountRepo
	Users         *UserRepo
	Stages        *StageRepo
	Projects      *ProjectRepo
	Tasks         *TaskRepo
	Timesheets    *TimesheetRepo
	Activities    *ActivityRepo
	Updates       *ProjectUpdateRepo
	Notifications *NotificationRepo
	Drafts        *DraftRepo
	IDs           *Resolver
}

// NewRepos binds all repositories to q.
func NewRepos(q Querier) *Repos {
	return &Repos{
		Accounts:      NewAccountRepo(q),
		Users:         NewUserRepo(q),
		Stages:        NewStageRepo(q),
		Projects:      NewProjectRepo(q),
		Tasks:         NewTaskRepo(q),
		Timesheets:    NewTimesheetRepo(q),
		Activities:    NewActivityRepo(q),
		Updates:       NewProjectUpdateRepo(q),
		Notifications: NewNotificationRepo(q),
		Drafts:        NewDraftRepo(q),
		IDs:           NewResolver(q),
	}
}
