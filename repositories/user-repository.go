package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password, name, avatar_url, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.AvatarURL, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	row := r.db.Pool.QueryRow(ctx,
		`INSERT INTO users (email, password, name) VALUES ($1, $2, $3) RETURNING `+userColumns,
		email, passwordHash, name)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.BadRequest("User already exists")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("User")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("User")
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	var set setBuilder
	if req.Name != nil {
		set.add("name", *req.Name)
	}
	if req.AvatarURL != nil {
		set.add("avatar_url", *req.AvatarURL)
	}
	set.addRaw("updated_at = NOW()")

	query, args := set.build("users", "id", id, userColumns)
	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("User")
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
