package models

// Session is an issued anonymous session.
type Session struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt Timestamp `json:"expiresAt"`
}
