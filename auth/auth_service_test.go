package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/dca-console/auth"
	"github.com/jrsteele09/dca-console/gateway"
	"github.com/jrsteele09/dca-console/session"
	"github.com/stretchr/testify/require"
)

const (
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "password123"
	testAccessToken  = "access-1"
	testRefreshToken = "refresh-1"
)

// testFixture holds all test dependencies
type testFixture struct {
	server       *httptest.Server
	store        *session.InMemoryStore
	service      *auth.Service
	profileCalls atomic.Int32
	loginBody    atomic.Value
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		store: session.NewInMemoryStore(session.TokenPair{}),
	}
	f.loginBody.Store(`{"access":"` + testAccessToken + `","refresh":"` + testRefreshToken + `"}`)

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+auth.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		var creds auth.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Email != testUserEmail || creds.Password != testUserPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
			return
		}
		_, _ = w.Write([]byte(f.loginBody.Load().(string)))
	})
	mux.HandleFunc("POST "+auth.RegisterPath, func(w http.ResponseWriter, r *http.Request) {
		var reg auth.Registration
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		if reg.Email == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"email":["This field is required."]}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"message":"Company registered"}}`))
	})
	mux.HandleFunc("GET "+auth.ProfilePath, func(w http.ResponseWriter, r *http.Request) {
		f.profileCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+testAccessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":7,"email":"` + testUserEmail + `","full_name":"John Doe"}`))
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	g, err := gateway.New(f.server.URL, f.store)
	require.NoError(t, err)
	f.service, err = auth.NewService(g, f.store)
	require.NoError(t, err)
	return f
}

func TestNewService(t *testing.T) {
	_, err := auth.NewService(nil, session.NewInMemoryStore(session.TokenPair{}))
	require.Error(t, err)
}

func TestService_Login(t *testing.T) {
	t.Run("stores tokens and returns profile", func(t *testing.T) {
		f := setupTestFixture(t)
		profile, err := f.service.Login(context.Background(), auth.Credentials{Email: testUserEmail, Password: testUserPassword})
		require.NoError(t, err)
		require.Equal(t, int64(7), profile.ID)
		require.Equal(t, "John Doe", profile.FullName)

		access, _ := f.store.AccessToken()
		refresh, _ := f.store.RefreshToken()
		require.Equal(t, testAccessToken, access)
		require.Equal(t, testRefreshToken, refresh)
	})

	t.Run("wrong password is reported without a refresh", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Login(context.Background(), auth.Credentials{Email: testUserEmail, Password: "wrong"})
		require.Error(t, err)
		require.True(t, gateway.IsUnauthorized(err))
		require.NotErrorIs(t, err, gateway.ErrUnauthenticated)
		require.Zero(t, f.profileCalls.Load())
	})

	t.Run("response without tokens leaves store untouched", func(t *testing.T) {
		f := setupTestFixture(t)
		f.loginBody.Store(`{"access":"only-access"}`)
		_, err := f.service.Login(context.Background(), auth.Credentials{Email: testUserEmail, Password: testUserPassword})
		require.ErrorIs(t, err, auth.InvalidLoginResponseErr)

		access, _ := f.store.AccessToken()
		require.Empty(t, access)
	})
}

func TestService_Me(t *testing.T) {
	t.Run("no access token sends nothing", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Me(context.Background())
		require.ErrorIs(t, err, auth.NoAccessTokenErr)
		require.Zero(t, f.profileCalls.Load())
	})

	t.Run("uses stored access token", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.SetTokens(session.TokenPair{AccessToken: testAccessToken, RefreshToken: testRefreshToken}))
		profile, err := f.service.Me(context.Background())
		require.NoError(t, err)
		require.Equal(t, testUserEmail, profile.Email)
	})
}

func TestService_Register(t *testing.T) {
	f := setupTestFixture(t)

	msg, err := f.service.Register(context.Background(), auth.Registration{FullName: "John Doe", Email: testUserEmail, Password: testUserPassword})
	require.NoError(t, err)
	require.Equal(t, "Company registered", msg)

	_, err = f.service.Register(context.Background(), auth.Registration{FullName: "John Doe"})
	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, []string{"This field is required."}, apiErr.FieldErrors()["email"])
}

func TestService_Logout(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.SetTokens(session.TokenPair{AccessToken: testAccessToken, RefreshToken: testRefreshToken}))
	require.NoError(t, f.service.Logout())

	access, _ := f.store.AccessToken()
	refresh, _ := f.store.RefreshToken()
	require.Empty(t, access)
	require.Empty(t, refresh)
}
