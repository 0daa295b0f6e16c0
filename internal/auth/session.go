package auth

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// SessionFromClaims builds the request session from validated token claims
func SessionFromClaims(claims *JWTClaims) SessionData {
	return SessionData{
		UserID:  claims.UserID,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}
}
