package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/playoff-pool/internal/domain/user"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

type userTableModel struct {
	UID         string    `db:"uid"`
	DisplayName string    `db:"display_name"`
	Email       string    `db:"email"`
	PhotoURL    string    `db:"photo_url"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	query, args, err := qb.Select("uid", "display_name", "email", "photo_url", "created_at", "updated_at").
		From("users").
		OrderBy("uid").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, user.User(row))
	}
	return out, nil
}

func (r *UserRepository) Get(ctx context.Context, uid string) (user.User, bool, error) {
	query, args, err := qb.Select("uid", "display_name", "email", "photo_url", "created_at", "updated_at").
		From("users").
		Where(qb.Eq("uid", uid)).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user uid=%s: %w", uid, err)
	}
	return user.User(row), true, nil
}

func (r *UserRepository) Upsert(ctx context.Context, u user.User) error {
	insert, err := qb.InsertModels("users", []userTableModel{userTableModel(u)})
	if err != nil {
		return fmt.Errorf("build upsert user query: %w", err)
	}
	query, args, err := insert.
		OnConflictUpdate([]string{"uid"}, "display_name", "email", "photo_url", "updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert user query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user uid=%s: %w", u.UID, err)
	}
	return nil
}
