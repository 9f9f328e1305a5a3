package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpdatePasswordSQL swaps the stored hash for a single identity. The update
// and the preceding hash computation always run inside the same transaction.
var UpdatePasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?
RETURNING *;`

// Users is the credential store. Email and username are each unique;
// FindByEmailOrUsername is the explicit two-field disjunctive lookup both the
// login path and the registration fast-path conflict check rely on.
type Users interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
}

type users struct {
	repo repository.Repository[*User]
	db   *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository builds the bun backed credential store.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{repo: repo, db: db}
}

func (a *users) GetByID(ctx context.Context, id string) (*User, error) {
	return a.repo.GetByID(ctx, id)
}

func (a *users) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	identifier = NormalizeIdentifier(identifier)
	return a.FindByEmailOrUsername(ctx, identifier, identifier)
}

func (a *users) FindByEmailOrUsername(ctx context.Context, email, username string) (*User, error) {
	return a.findByEmailOrUsernameTx(ctx, a.db, email, username)
}

func (a *users) findByEmailOrUsernameTx(ctx context.Context, tx bun.IDB, email, username string) (*User, error) {
	record := &User{}

	err := tx.NewSelect().
		Model(record).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.email = ?", NormalizeIdentifier(email)).
				WhereOr("?TableAlias.username = ?", NormalizeIdentifier(username))
		}).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"identifier": "email|username",
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record)
	return a.repo.CreateTx(ctx, tx, record)
}

func (a *users) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.repo.RawTx(ctx, tx, UpdatePasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}
