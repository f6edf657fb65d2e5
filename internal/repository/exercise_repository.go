package repository

import (
	"context"

	"github.com/mlezhnin/exercise-tracker/internal/models"
)

// ExerciseFilter narrows a user's exercise log. From and To are inclusive
// YYYY-MM-DD bounds; an empty bound is open. Limit <= 0 means unlimited.
type ExerciseFilter struct {
	From  string
	To    string
	Limit int
}

type ExerciseRepository interface {
	Create(ctx context.Context, exercise *models.Exercise) (int64, error)
	ListForUser(ctx context.Context, userID int64, filter ExerciseFilter) ([]models.Exercise, error)
}
