// Package records serves the enriched read models and guarded mutations
// behind the project, task, activity and timesheet commands.
//
// Reads attach the attributes resolved at read time: inherited colors,
// stage fold state, hierarchy linkage and spent hours. Mutations run in one
// transaction each and report through model.Result.
package records

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/hierarchy"
	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
	"github.com/timesheets-app/timesheets/internal/validate"
)

// Service reads and writes project data for one database.
type Service struct {
	db        *storage.DB
	now       func() time.Time
	weekStart time.Weekday
}

// New creates a records service. Weeks start on Monday until WithWeekStart
// says otherwise.
func New(db *storage.DB) *Service {
	return &Service{db: db, now: time.Now, weekStart: time.Monday}
}

// WithClock replaces the wall clock used for "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithWeekStart sets the first day of the week for date filters.
func (s *Service) WithWeekStart(d time.Weekday) *Service {
	s.weekStart = d
	return s
}

// CreateResult is the outcome of a create operation.
type CreateResult struct {
	model.Result
	ID       int64     `json:"id,omitempty"`
	RemoteID model.Ref `json:"remote_id,omitempty"`
}

func created(message string, id int64, remoteID model.Ref) CreateResult {
	return CreateResult{Result: model.OK(message), ID: id, RemoteID: remoteID}
}

func fail(ctx context.Context, op string, err error, args ...any) model.Result {
	if errors.KindOf(err) == errors.KindUnknown {
		err = errors.WithStack(errors.Storage(op, err), "records."+op)
	}
	logging.LogFailure(ctx, op, err, args...)
	return model.Fail(err)
}

// bind returns the repositories and a hierarchy resolver over q.
func bind(q storage.Querier) (*storage.Repos, *hierarchy.Resolver) {
	repos := storage.NewRepos(q)
	return repos, hierarchy.New(hierarchy.NewStoreReader(repos))
}

// notFound maps a storage miss onto the entity sentinel.
func notFound(err, sentinel error) error {
	if errors.IsNotFound(err) {
		return sentinel
	}
	return err
}

// localRemoteID prepares the remote id of a locally created row so storage
// assigns a provisional id.
func localRemoteID(r model.Ref) model.Ref {
	if r == model.NoParent {
		return model.Unresolved
	}
	return r
}

// unsetRef normalises an unset reference to Unresolved.
func unsetRef(r model.Ref) model.Ref {
	if !r.IsSet() {
		return model.Unresolved
	}
	return r
}

// checkColor accepts a palette index or a hex value.
func checkColor(tag string) error {
	if tag == "" {
		return nil
	}
	if strings.HasPrefix(tag, "#") {
		return validate.HexColor(tag)
	}
	n, err := strconv.Atoi(tag)
	if err != nil {
		return errors.NewUserErrorWithField("color", tag, "Invalid color",
			"Use a palette index 0-11 or a hex value like '#F06050'")
	}
	return validate.ColorIndex(n)
}

func (s *Service) today() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// accountsOf returns the distinct account ids in first-seen order.
func accountsOf[T any](rows []T, account func(T) int64) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, r := range rows {
		id := account(r)
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
