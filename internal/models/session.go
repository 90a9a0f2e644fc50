package models

import "time"

// UserSession is the persisted shared-login session
type UserSession struct {
	ID         string    `json:"id"`
	RememberMe bool      `json:"rememberMe"`
	Timestamp  time.Time `json:"timestamp"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Session     *UserSession `json:"session"`
}
