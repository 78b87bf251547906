package models

// User is a registered recipient. It is persisted as one element of Users.json.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Link         string `json:"link"`
}
