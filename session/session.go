package session

// TokenPair is the credential pair issued by the login endpoint.
// An empty field means the token is absent.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// Store holds the single active token pair for the process.
// Implementations must be safe for concurrent use, the gateway reads and writes the
// store from every in-flight request.
type Store interface {
	// AccessToken returns the stored access token, or "" when there is none.
	AccessToken() (string, error)
	// RefreshToken returns the stored refresh token, or "" when there is none.
	RefreshToken() (string, error)
	// SetTokens replaces the active pair.
	SetTokens(pair TokenPair) error
	// Clear removes both tokens.
	Clear() error
}
