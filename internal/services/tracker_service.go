package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mlezhnin/exercise-tracker/internal/infrastructure/kafka"
	"github.com/mlezhnin/exercise-tracker/internal/infrastructure/redis"
	"github.com/mlezhnin/exercise-tracker/internal/models"
	"github.com/mlezhnin/exercise-tracker/internal/repository"
	pkgerrors "github.com/mlezhnin/exercise-tracker/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const (
	userCacheTTL = 5 * time.Minute

	topicUsers     = "users"
	topicExercises = "exercises"
)

type TrackerService interface {
	CreateUser(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateExercise(ctx context.Context, exercise *models.Exercise) (int64, error)
	GetUserLog(ctx context.Context, userID int64, filter repository.ExerciseFilter) (*models.UserExerciseLog, error)
}

type trackerService struct {
	userRepo     repository.UserRepository
	exerciseRepo repository.ExerciseRepository
	cache        redis.RedisClient
	producer     kafka.KafkaProducer
}

func NewTrackerService(
	userRepo repository.UserRepository,
	exerciseRepo repository.ExerciseRepository,
	cache redis.RedisClient,
	producer kafka.KafkaProducer,
) *trackerService {
	return &trackerService{
		userRepo:     userRepo,
		exerciseRepo: exerciseRepo,
		cache:        cache,
		producer:     producer,
	}
}

func (s *trackerService) CreateUser(ctx context.Context, username string) (*models.User, error) {
	tracer := otel.Tracer("tracker-service")
	ctx, span := tracer.Start(ctx, "CreateUser")
	defer span.End()

	if username == "" {
		span.SetStatus(codes.Error, "empty username")
		return nil, pkgerrors.ErrEmptyUsername
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if existing != nil {
		span.SetStatus(codes.Error, "username already exists")
		slog.Warn("username already exists",
			"username", username,
			"existing_id", existing.ID)
		return nil, pkgerrors.ErrUsernameExists
	}
	if err != nil && !stderrors.Is(err, pkgerrors.ErrUserNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user check failed")
		slog.Error("failed to check user existence",
			"username", username,
			"error", err)
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	user := &models.User{Username: username}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The UNIQUE constraint closes the window between the existence
		// check and the insert; a lost race surfaces as a conflict too.
		if stderrors.Is(err, pkgerrors.ErrUsernameExists) {
			span.SetStatus(codes.Error, "username already exists")
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "user creation failed")
		slog.Error("failed to create user in DB",
			"username", username,
			"error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.publishEvent(user.ID, topicUsers, map[string]interface{}{
		"event_type": "user_registered",
		"user_id":    user.ID,
		"username":   user.Username,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	})

	slog.Info("user created", "user_id", user.ID, "username", username)
	return user, nil
}

func (s *trackerService) ListUsers(ctx context.Context) ([]models.User, error) {
	tracer := otel.Tracer("tracker-service")
	ctx, span := tracer.Start(ctx, "ListUsers")
	defer span.End()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user listing failed")
		slog.Error("failed to list users", "error", err)
		return nil, err
	}
	if len(users) == 0 {
		span.SetStatus(codes.Error, "no users found")
		return nil, pkgerrors.ErrNoUsers
	}

	slog.Info("users listed", "count", len(users))
	return users, nil
}

// GetUser resolves a user by id, reading through a short-lived cache.
// Cache faults are logged and ignored; the repository stays authoritative.
func (s *trackerService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	tracer := otel.Tracer("tracker-service")
	ctx, span := tracer.Start(ctx, "GetUser")
	defer span.End()

	key := fmt.Sprintf("user:%d", id)
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var user models.User
		if err := json.Unmarshal([]byte(cached), &user); err != nil {
			slog.Error("failed to unmarshal cached user", "user_id", id, "error", err)
		} else {
			return &user, nil
		}
	} else if !stderrors.Is(err, redis.ErrKeyNotFound) {
		slog.Error("failed to get user from cache", "user_id", id, "error", err)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if !stderrors.Is(err, pkgerrors.ErrUserNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "user fetch failed")
		}
		return nil, err
	}

	if data, err := json.Marshal(user); err != nil {
		slog.Error("failed to marshal user for cache", "user_id", id, "error", err)
	} else if err := s.cache.Set(ctx, key, string(data), userCacheTTL); err != nil {
		slog.Error("failed to cache user", "user_id", id, "error", err)
	}

	return user, nil
}

func (s *trackerService) CreateExercise(ctx context.Context, exercise *models.Exercise) (int64, error) {
	tracer := otel.Tracer("tracker-service")
	ctx, span := tracer.Start(ctx, "CreateExercise")
	defer span.End()

	if exercise == nil {
		span.SetStatus(codes.Error, "nil exercise")
		return 0, pkgerrors.ErrNilExercise
	}

	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exercise creation failed")
		slog.Error("failed to create exercise",
			"user_id", exercise.UserID,
			"error", err)
		return 0, err
	}

	s.publishEvent(id, topicExercises, map[string]interface{}{
		"event_type":  "exercise_logged",
		"exercise_id": id,
		"user_id":     exercise.UserID,
		"duration":    exercise.Duration,
		"date":        exercise.Date,
		"created_at":  time.Now().UTC().Format(time.RFC3339),
	})

	slog.Info("exercise created", "exercise_id", id, "user_id", exercise.UserID)
	return id, nil
}

func (s *trackerService) GetUserLog(ctx context.Context, userID int64, filter repository.ExerciseFilter) (*models.UserExerciseLog, error) {
	tracer := otel.Tracer("tracker-service")
	ctx, span := tracer.Start(ctx, "GetUserLog")
	defer span.End()

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	exercises, err := s.exerciseRepo.ListForUser(ctx, userID, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exercise listing failed")
		slog.Error("failed to list exercises", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("user log assembled", "user_id", userID, "count", len(exercises))
	return &models.UserExerciseLog{
		ID:       user.ID,
		Username: user.Username,
		Logs:     exercises,
		Count:    len(exercises),
	}, nil
}

// publishEvent emits a creation event without blocking the request; delivery
// is retried a few times and then given up on.
func (s *trackerService) publishEvent(key int64, topic string, event map[string]interface{}) {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", "topic", topic, "key", key, "error", err)
		return
	}

	go func() {
		retries := 3
		for i := 0; i < retries; i++ {
			if err := s.producer.Send(context.Background(), topic, key, eventBytes); err == nil {
				return
			}
			time.Sleep(time.Second * time.Duration(i+1))
		}
		slog.Error("failed to send event after retries", "topic", topic, "key", key)
	}()
}
