package models

import "time"

// Message is an anonymous note addressed to a user. It is persisted as one
// element of Messages.json; RecipientID is not checked against Users and may
// point at a deleted user.
type Message struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	RecipientID int       `json:"recipient_id"`
	Timestamp   time.Time `json:"timestamp"`
	IsAnonymous bool      `json:"is_anonymous"`
}
