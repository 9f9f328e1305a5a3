package tasks

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TaskChanges carries a partial update. Nil fields are left untouched so a
// caller can flip completion without resending the description.
type TaskChanges struct {
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Completed   *bool   `json:"completed"`
}

// Tasks is the owner-scoped task store. Update and delete match on both the
// task id and the owner id, so acting on another user's task is
// indistinguishable from acting on a task that does not exist.
type Tasks interface {
	Create(ctx context.Context, record *Task) (*Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	UpdateOwned(ctx context.Context, id, userID uuid.UUID, changes TaskChanges) (*Task, error)
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) error
}

type tasks struct {
	repo repository.Repository[*Task]
	db   *bun.DB
}

var _ Tasks = (*tasks)(nil)

// NewTasksRepository builds the bun backed task store.
func NewTasksRepository(db *bun.DB) Tasks {
	repo := repository.NewRepository[*Task](db, repository.ModelHandlers[*Task]{
		NewRecord: func() *Task { return &Task{} },
		GetID: func(t *Task) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Task, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
	})

	return &tasks{repo: repo, db: db}
}

func (t *tasks) Create(ctx context.Context, record *Task) (*Task, error) {
	prepareTaskDefaults(record)
	return t.repo.CreateTx(ctx, t.db, record)
}

func (t *tasks) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Task, error) {
	records := []*Task{}

	err := t.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID.String()).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (t *tasks) getOwned(ctx context.Context, id, userID uuid.UUID) (*Task, error) {
	record := &Task{}

	err := t.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Where("?TableAlias.user_id = ?", userID.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (t *tasks) UpdateOwned(ctx context.Context, id, userID uuid.UUID, changes TaskChanges) (*Task, error) {
	record, err := t.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if changes.Description != nil {
		record.Description = *changes.Description
	}
	if changes.Category != nil {
		record.Category = *changes.Category
	}
	if changes.Priority != nil {
		record.Priority = *changes.Priority
	}
	if changes.Completed != nil {
		record.Completed = *changes.Completed
	}

	prepareTaskDefaults(record)

	_, err = t.db.NewUpdate().
		Model(record).
		WherePK().
		Where("?TableAlias.user_id = ?", userID.String()).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (t *tasks) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	res, err := t.db.NewDelete().
		Model((*Task)(nil)).
		Where("?TableAlias.id = ?", id.String()).
		Where("?TableAlias.user_id = ?", userID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}
