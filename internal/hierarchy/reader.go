package hierarchy

import (
	"context"

	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
)

// Reader is the read-only data access the resolver walks.
// Lookups return storage.ErrNotFound (or any error) on a miss.
type Reader interface {
	ProjectByRemoteID(ctx context.Context, remoteID model.Ref, accountID int64) (*model.Project, error)
	TaskByRemoteID(ctx context.Context, remoteID model.Ref, accountID int64) (*model.Task, error)
	TaskByLocalID(ctx context.Context, id int64) (*model.Task, error)
	StageByRemoteID(ctx context.Context, kind model.StageKind, remoteID model.Ref, accountID int64) (*model.Stage, error)
}

// StoreReader adapts storage repositories to Reader.
type StoreReader struct {
	repos *storage.Repos
}

// NewStoreReader creates a Reader over the given repositories.
func NewStoreReader(repos *storage.Repos) *StoreReader {
	return &StoreReader{repos: repos}
}

func (s *StoreReader) ProjectByRemoteID(ctx context.Context, remoteID model.Ref, accountID int64) (*model.Project, error) {
	return s.repos.Projects.GetByRemoteID(ctx, remoteID, accountID)
}

func (s *StoreReader) TaskByRemoteID(ctx context.Context, remoteID model.Ref, accountID int64) (*model.Task, error) {
	return s.repos.Tasks.GetByRemoteID(ctx, remoteID, accountID)
}

func (s *StoreReader) TaskByLocalID(ctx context.Context, id int64) (*model.Task, error) {
	return s.repos.Tasks.Get(ctx, id)
}

func (s *StoreReader) StageByRemoteID(ctx context.Context, kind model.StageKind, remoteID model.Ref, accountID int64) (*model.Stage, error) {
	return s.repos.Stages.GetByRemoteID(ctx, kind, remoteID, accountID)
}
