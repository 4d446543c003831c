package domain

import "time"

// NotificationCategory groups notifications for client-side filtering.
type NotificationCategory string

const (
	CategoryComplaint NotificationCategory = "COMPLAINT"
	CategorySystem    NotificationCategory = "SYSTEM"
)

// Notification is a message addressed to a single recipient.
type Notification struct {
	ID          string               `json:"id" bson:"_id"`
	RecipientID string               `json:"user_id" bson:"user_id"`
	Title       string               `json:"title" bson:"title"`
	Message     string               `json:"message" bson:"message"`
	Category    NotificationCategory `json:"category" bson:"category"`
	Read        bool                 `json:"is_read" bson:"is_read"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
}
