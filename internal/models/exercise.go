package models

type Exercise struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// CreatedExercise is the response body of a successful exercise creation.
type CreatedExercise struct {
	ExerciseID  int64  `json:"exerciseId"`
	Date        string `json:"date"`
	UserID      int64  `json:"userId"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// UserExerciseLog is assembled per request from a user row and its
// exercise rows; it is never persisted.
type UserExerciseLog struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	Logs     []Exercise `json:"logs"`
	Count    int        `json:"count"`
}
