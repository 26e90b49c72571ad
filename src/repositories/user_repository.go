package repositories

import (
	"context"
	"errors"
	"fmt"

	"finance/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetForUpdate loads the user and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*models.User, error)
	UpdateCash(ctx context.Context, id int64, cash decimal.Decimal) error
}

type userRepo struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, username, hash, cash::text, created_at`

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (username, hash, cash)
		VALUES ($1, $2, $3::numeric)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, u.Username, u.Hash, u.Cash.String()).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *userRepo) GetForUpdate(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *userRepo) UpdateCash(ctx context.Context, id int64, cash decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET cash = $1::numeric WHERE id = $2`, cash.String(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	var cash string
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Hash, &cash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Cash, err = decimal.NewFromString(cash)
	if err != nil {
		return nil, fmt.Errorf("parsing cash of user %d: %w", u.ID, err)
	}
	return &u, nil
}
