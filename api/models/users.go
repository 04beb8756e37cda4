package models

import (
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"time"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Role     access.Role `json:"role"`
	TeamID   string      `json:"teamId,omitempty"`
}

// CreateUserRequest creates staff accounts. JUDGE and MENTOR accounts also get
// their profile; Expertise is stored on it.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Expertise string `json:"expertise"`
}

type SettingRequest struct {
	Key    string `json:"key"`
	Locked bool   `json:"locked"`
}

func TransformUserFromStorage(u *storage.User) UserResponse {
	resp := UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
	}
	if u.TeamID != nil {
		resp.TeamID = *u.TeamID
	}
	return resp
}
