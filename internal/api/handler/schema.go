package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// --- Users ---

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type updateProfileRequest struct {
	Name     string `json:"name"     validate:"omitempty,max=100"`
	Password string `json:"password" validate:"omitempty,max=72"`
}

// --- Tasks ---

type createTaskRequest struct {
	Header      string `json:"header"       validate:"required,max=255"`
	Description string `json:"description"  validate:"max=4000"`
	Status      string `json:"status"       validate:"omitempty,oneof=PENDING PROGRESS COMPLETED"`
	Priority    string `json:"priority"     validate:"required,oneof=LOW MIDDLE HIGH"`
	PerformerID string `json:"performer_id" validate:"required"`
}

type updateTaskRequest struct {
	Header      string `json:"header"       validate:"omitempty,max=255"`
	Description string `json:"description"  validate:"max=4000"`
	Status      string `json:"status"       validate:"omitempty,oneof=PENDING PROGRESS COMPLETED"`
	Priority    string `json:"priority"     validate:"omitempty,oneof=LOW MIDDLE HIGH"`
	PerformerID string `json:"performer_id"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PROGRESS COMPLETED"`
}

type taskResponse struct {
	ID          string    `json:"id"`
	Header      string    `json:"header"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	AuthorID    string    `json:"author_id"`
	PerformerID string    `json:"performer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type taskPageResponse struct {
	Items      []taskResponse `json:"items"`
	Total      int64          `json:"total"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// --- Comments ---

type createCommentRequest struct {
	TaskID string `json:"task_id" validate:"required"`
	Text   string `json:"text"    validate:"required,max=2000"`
}

type updateCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
