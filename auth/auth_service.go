package auth

import (
	"context"
	"net/http"

	"github.com/jrsteele09/dca-console/gateway"
	"github.com/jrsteele09/dca-console/session"
	"github.com/pkg/errors"
)

const (
	LoginPath    = "/login/"
	RegisterPath = "/register/"
	ProfilePath  = "/users/me/"
)

const defaultRegistrationMessage = "Registration successful!"

// Credentials are posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up form.
type Registration struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the authenticated user as returned by the profile endpoint.
type Profile struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	IsActive  bool   `json:"is_active,omitempty"`
	IsStaff   bool   `json:"is_staff,omitempty"`
}

// Service signs users in and out. It owns the writes to the session store that
// start and end a session; the gateway only updates it on refresh.
type Service struct {
	sender gateway.Sender
	store  session.Store
}

func NewService(sender gateway.Sender, store session.Store) (*Service, error) {
	if sender == nil {
		return nil, errors.New("[NewService] gateway is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] session store is required")
	}
	return &Service{sender: sender, store: store}, nil
}

// Login exchanges credentials for a token pair, stores it and returns the profile.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Profile, error) {
	d, err := gateway.NewJSONDescriptor(http.MethodPost, LoginPath, creds)
	if err != nil {
		return nil, errors.Wrap(err, "[Login]")
	}
	d.Anonymous = true

	var pair session.TokenPair
	if err := gateway.Do(ctx, s.sender, d, &pair); err != nil {
		return nil, errors.Wrap(err, "[Login] login request")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, InvalidLoginResponseErr
	}
	if err := s.store.SetTokens(pair); err != nil {
		return nil, errors.Wrap(err, "[Login] store tokens")
	}
	return s.Me(ctx)
}

// Register creates an account and returns the server's confirmation message.
func (s *Service) Register(ctx context.Context, reg Registration) (string, error) {
	d, err := gateway.NewJSONDescriptor(http.MethodPost, RegisterPath, reg)
	if err != nil {
		return "", errors.Wrap(err, "[Register]")
	}
	d.Anonymous = true

	var out struct {
		Message string `json:"message"`
		Data    struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := gateway.Do(ctx, s.sender, d, &out); err != nil {
		return "", errors.Wrap(err, "[Register] register request")
	}
	switch {
	case out.Data.Message != "":
		return out.Data.Message, nil
	case out.Message != "":
		return out.Message, nil
	}
	return defaultRegistrationMessage, nil
}

// Me fetches the authenticated user. Nothing is sent when no access token is stored.
func (s *Service) Me(ctx context.Context) (*Profile, error) {
	access, err := s.store.AccessToken()
	if err != nil {
		return nil, errors.Wrap(err, "[Me] read access token")
	}
	if access == "" {
		return nil, NoAccessTokenErr
	}

	var profile Profile
	if err := gateway.SendJSON(ctx, s.sender, http.MethodGet, ProfilePath, nil, &profile); err != nil {
		return nil, errors.Wrap(err, "[Me] profile request")
	}
	return &profile, nil
}

// Logout ends the session locally by clearing both tokens.
func (s *Service) Logout() error {
	return errors.Wrap(s.store.Clear(), "[Logout]")
}
