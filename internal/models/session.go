package models

import "time"

// Session is a signed-in browser session tracked by the session store.
type Session struct {
	ID           string    `json:"sessionId"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	IDToken      string    `json:"idToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresIn    int       `json:"expiresIn,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// AuthTokens is the result of a password sign-in with the identity provider.
type AuthTokens struct {
	UserID       string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresIn    int
}
