package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Name       string `json:"name"        validate:"required"`
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required"`
	UnitNumber string `json:"unit_number" validate:"max=32"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// --- Complaints ---

type submitComplaintRequest struct {
	Issue string `json:"issue" validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type complaintOwnerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type complaintResponse struct {
	ID        string                  `json:"id"`
	UserID    string                  `json:"user_id"`
	Issue     string                  `json:"issue"`
	Status    string                  `json:"status"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
	User      *complaintOwnerResponse `json:"user,omitempty"`
}

type submitComplaintResponse struct {
	Message   string            `json:"message"`
	Complaint complaintResponse `json:"complaint"`
}

type updateStatusResponse struct {
	Message   string            `json:"message"`
	Complaint complaintResponse `json:"complaint"`
}

// --- Notifications ---

type notificationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type notificationListResponse struct {
	Unread        int64                  `json:"unread"`
	Notifications []notificationResponse `json:"notifications"`
}

type markAllReadResponse struct {
	Updated int64 `json:"updated"`
}
