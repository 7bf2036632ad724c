package model

import "time"

// User represents a registered account. Username and email are each unique.
type User struct {
	ID           string    `json:"id" bson:"id" gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" bson:"username" gorm:"uniqueIndex;size:255;not null"`
	Email        string    `json:"email" bson:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" bson:"hashed_password" gorm:"column:hashed_password;size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse strips the password hash.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
