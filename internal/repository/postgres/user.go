package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medipoint/scheduler-api/internal/repository"
	apperrors "github.com/medipoint/scheduler-api/pkg/errors"
)

type userDirectory struct {
	db *sqlx.DB
}

// NewUserDirectory exposes the read-only slice of the user store that
// notification delivery needs. User management itself is owned elsewhere.
func NewUserDirectory(db *sqlx.DB) repository.UserDirectory {
	return &userDirectory{db: db}
}

func (r *userDirectory) GetEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	var email string
	err := r.db.GetContext(ctx, &email, `SELECT email FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.NotFound("user", err)
		}
		return "", fmt.Errorf("failed to get user email: %w", err)
	}
	return email, nil
}
