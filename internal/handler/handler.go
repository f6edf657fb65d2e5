package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/mlezhnin/exercise-tracker/internal/dateutil"
	"github.com/mlezhnin/exercise-tracker/internal/models"
	"github.com/mlezhnin/exercise-tracker/internal/repository"
	"github.com/mlezhnin/exercise-tracker/internal/sanitize"
	service "github.com/mlezhnin/exercise-tracker/internal/services"
	pkgerrors "github.com/mlezhnin/exercise-tracker/pkg/errors"
)

// defaultLogLimit caps a log query when the client sends no limit at all.
// An explicit limit of 0 still means unlimited at the storage layer.
const defaultLogLimit = 1000

type Handler struct {
	service   service.TrackerService
	sanitizer *sanitize.Sanitizer
}

func NewHandler(s service.TrackerService, sanitizer *sanitize.Sanitizer) *Handler {
	return &Handler{service: s, sanitizer: sanitizer}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/users", h.CreateUser).Methods("POST")
	r.HandleFunc("/api/users", h.ListUsers).Methods("GET")
	r.HandleFunc("/api/users/{id}/exercises", h.CreateExercise).Methods("POST")
	r.HandleFunc("/api/users/{id}/logs", h.GetLogs).Methods("GET")
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors []string `json:"errors"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) writeValidationErrors(w http.ResponseWriter, messages []string) {
	h.writeJSON(w, http.StatusBadRequest, validationResponse{Errors: messages})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username interface{} `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	username, ok := req.Username.(string)
	if !ok || username == "" {
		h.writeValidationErrors(w, []string{"Username cannot be empty"})
		return
	}
	username = h.sanitizer.Clean(username)
	if username == "" {
		h.writeValidationErrors(w, []string{"Username cannot be empty"})
		return
	}

	user, err := h.service.CreateUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUsernameExists) {
			h.writeError(w, http.StatusConflict, errors.New("User already exists with the same username"))
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNoUsers) {
			h.writeError(w, http.StatusNotFound, errors.New("No users found"))
		} else {
			h.writeError(w, http.StatusInternalServerError, errors.New("Error during user fetching"))
		}
		return
	}

	h.writeJSON(w, http.StatusOK, users)
}

// resolveUser implements the shared user-resolution contract: both exercise
// creation and log listing gate on it before touching exercise data.
func (h *Handler) resolveUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	raw := h.sanitizer.Clean(mux.Vars(r)["id"])
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, errors.New("No userId provided"))
		return nil, false
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUserNotFound) {
			h.writeError(w, http.StatusNotFound, errors.New("No user with provided id found"))
		} else {
			h.writeError(w, http.StatusInternalServerError, errors.New("Error during user fetching"))
		}
		return nil, false
	}

	return user, true
}

func (h *Handler) CreateExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description interface{} `json:"description"`
		Duration    interface{} `json:"duration"`
		Date        interface{} `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var messages []string

	description, descriptionOK := req.Description.(string)
	if req.Description == nil {
		messages = append(messages, "Missing required description value")
	} else if !descriptionOK || len(description) < 1 {
		messages = append(messages, "Min length of description is 1")
	}

	var duration int
	switch v := req.Duration.(type) {
	case nil:
		messages = append(messages, "Missing required duration value")
	case float64:
		duration = int(v)
		if v != float64(duration) {
			messages = append(messages, "Duration should be a number")
		}
	case string:
		parsed, err := strconv.Atoi(h.sanitizer.Clean(v))
		if err != nil {
			messages = append(messages, "Duration should be a number")
		} else {
			duration = parsed
		}
	default:
		messages = append(messages, "Duration should be a number")
	}

	var date string
	switch v := req.Date.(type) {
	case nil:
		date = dateutil.Format(time.Now())
	case string:
		resolved, err := dateutil.ValidateFormat(h.sanitizer.Clean(v), "date")
		if err != nil {
			messages = append(messages, err.Error())
		} else {
			date = resolved
		}
	default:
		messages = append(messages, "date must be a valid YYYY-MM-DD date")
	}

	if len(messages) > 0 {
		h.writeValidationErrors(w, messages)
		return
	}

	user, ok := h.resolveUser(w, r)
	if !ok {
		return
	}

	exercise := &models.Exercise{
		UserID:      user.ID,
		Duration:    duration,
		Description: h.sanitizer.Clean(description),
		Date:        date,
	}
	id, err := h.service.CreateExercise(r.Context(), exercise)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, models.CreatedExercise{
		ExerciseID:  id,
		Date:        exercise.Date,
		UserID:      exercise.UserID,
		Duration:    exercise.Duration,
		Description: exercise.Description,
	})
}

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.ExerciseFilter{Limit: defaultLogLimit}

	var messages []string

	if from := h.sanitizer.Clean(query.Get("from")); from != "" {
		resolved, err := dateutil.ValidateFormat(from, "from")
		if err != nil {
			messages = append(messages, err.Error())
		} else {
			filter.From = resolved
		}
	}
	if to := h.sanitizer.Clean(query.Get("to")); to != "" {
		resolved, err := dateutil.ValidateFormat(to, "to")
		if err != nil {
			messages = append(messages, err.Error())
		} else {
			filter.To = resolved
		}
	}
	if rawLimit := h.sanitizer.Clean(query.Get("limit")); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil {
			messages = append(messages, "Limit should be a number")
		} else {
			filter.Limit = limit
		}
	}

	if len(messages) > 0 {
		h.writeValidationErrors(w, messages)
		return
	}

	user, ok := h.resolveUser(w, r)
	if !ok {
		return
	}

	log, err := h.service.GetUserLog(r.Context(), user.ID, filter)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, errors.New("Error during exercises fetching"))
		return
	}

	h.writeJSON(w, http.StatusOK, log)
}
