package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/mlezhnin/exercise-tracker/internal/infrastructure/observability"
	"github.com/mlezhnin/exercise-tracker/internal/models"
	pkgerrors "github.com/mlezhnin/exercise-tracker/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const uniqueViolation = "23505"

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	var err error
	tracer := otel.Tracer("user-repository")
	ctx, span := tracer.Start(ctx, "CreateUser")
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("CreateUser", status).Inc()
		observability.RepositoryDuration.WithLabelValues("CreateUser").Observe(time.Since(start).Seconds())
	}()

	if user == nil {
		err = pkgerrors.ErrNilUser
		slog.Error("failed to create user", "method", "Create", "error", err)
		return err
	}
	if user.Username == "" {
		err = pkgerrors.ErrEmptyUsername
		slog.Error("failed to create user", "method", "Create", "error", err)
		return err
	}

	span.SetAttributes(attribute.String("username", user.Username))

	query := `INSERT INTO users (username) VALUES ($1) RETURNING id`
	err = r.db.QueryRowContext(ctx, query, user.Username).Scan(&user.ID)
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		slog.Warn("username taken", "method", "Create", "username", user.Username)
		err = pkgerrors.ErrUsernameExists
		return err
	}
	if err != nil {
		slog.Error("failed to create user", "method", "Create", "username", user.Username, "error", err)
		err = fmt.Errorf("failed to create user: %w", err)
		return err
	}

	slog.Info("user created", "method", "Create", "user_id", user.ID, "username", user.Username)
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var err error
	tracer := otel.Tracer("user-repository")
	ctx, span := tracer.Start(ctx, "GetUserByID")
	span.SetAttributes(attribute.Int("user_id", int(id)))
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("GetUserByID", status).Inc()
		observability.RepositoryDuration.WithLabelValues("GetUserByID").Observe(time.Since(start).Seconds())
	}()

	var user models.User
	query := `SELECT id, username FROM users WHERE id = $1`
	err = r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Username)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrUserNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get user by id", "method", "GetByID", "user_id", id, "error", err)
		err = fmt.Errorf("failed to get user by id: %w", err)
		return nil, err
	}

	return &user, nil
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var err error
	tracer := otel.Tracer("user-repository")
	ctx, span := tracer.Start(ctx, "GetUserByUsername")
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("GetUserByUsername", status).Inc()
		observability.RepositoryDuration.WithLabelValues("GetUserByUsername").Observe(time.Since(start).Seconds())
	}()

	if username == "" {
		err = pkgerrors.ErrEmptyUsername
		return nil, err
	}

	var user models.User
	query := `SELECT id, username FROM users WHERE username = $1`
	err = r.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrUserNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get user by username", "method", "GetByUsername", "username", username, "error", err)
		err = fmt.Errorf("failed to get user by username: %w", err)
		return nil, err
	}

	return &user, nil
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	var err error
	tracer := otel.Tracer("user-repository")
	ctx, span := tracer.Start(ctx, "ListUsers")
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("ListUsers", status).Inc()
		observability.RepositoryDuration.WithLabelValues("ListUsers").Observe(time.Since(start).Seconds())
	}()

	query := `SELECT id, username FROM users`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("failed to list users", "method", "List", "error", err)
		err = fmt.Errorf("failed to list users: %w", err)
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err = rows.Scan(&user.ID, &user.Username); err != nil {
			slog.Error("failed to scan user row", "method", "List", "error", err)
			err = fmt.Errorf("failed to scan user row: %w", err)
			return nil, err
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		slog.Error("failed to iterate user rows", "method", "List", "error", err)
		err = fmt.Errorf("failed to iterate user rows: %w", err)
		return nil, err
	}

	return users, nil
}
