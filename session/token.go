package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// ErrNoSession is returned by StoreTokenSource when no access token is stored.
var ErrNoSession = errors.New("no active session")

// OAuth2Token converts the pair into an oauth2.Token.
// Expiry comes from the access token's "exp" claim, read without verifying the
// signature, so it is only a hint for display. It stays zero when the access token
// is not a JWT or carries no exp.
func (p TokenPair) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       AccessTokenExpiry(p.AccessToken),
	}
}

// AccessTokenExpiry returns the exp claim of a JWT access token, or the zero time.
func AccessTokenExpiry(accessToken string) time.Time {
	if accessToken == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

type storeTokenSource struct {
	store Store
}

// StoreTokenSource exposes whatever pair is currently in the store as an
// oauth2.TokenSource. It never refreshes, the gateway owns that.
func StoreTokenSource(store Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	access, err := s.store.AccessToken()
	if err != nil {
		return nil, err
	}
	if access == "" {
		return nil, ErrNoSession
	}
	refresh, err := s.store.RefreshToken()
	if err != nil {
		return nil, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}.OAuth2Token(), nil
}
