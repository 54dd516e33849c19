package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyshelf/studyshelf/internal/api"
	"github.com/studyshelf/studyshelf/internal/model"
)

// fakeAuth scripts the backend responses for session tests.
type fakeAuth struct {
	loginData *api.AuthData
	loginErr  error
	meUser    *model.UserProfile
	meErr     error
}

func (f *fakeAuth) Login(ctx context.Context, identifier, password string) (*api.AuthData, error) {
	return f.loginData, f.loginErr
}

func (f *fakeAuth) Me(ctx context.Context, token string) (*model.UserProfile, error) {
	return f.meUser, f.meErr
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, token string, profile model.UserProfile) (*model.UserProfile, error) {
	return &profile, nil
}

func sessionPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

func writeSession(t *testing.T, path, token string, user *model.UserProfile) {
	t.Helper()
	data, err := json.Marshal(persisted{Token: token, User: user})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func TestLoginSuccessPersists(t *testing.T) {
	path := sessionPath(t)
	auth := &fakeAuth{loginData: &api.AuthData{
		Token: "tok-1",
		User:  model.UserProfile{ID: "u-1", Name: "Asha", Phone: "9876543210"},
	}}
	s := NewStore(auth, path)

	res := s.Login(context.Background(), "9876543210", "secret")
	assert.True(t, res.Success)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok-1", s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "Asha", s.User().Name)

	// A fresh store picks up the persisted session
	s2 := NewStore(auth, path)
	assert.Equal(t, "tok-1", s2.Token())
	assert.False(t, s2.IsAuthenticated(), "persisted session is untrusted until restored")
}

func TestLoginRejectionDoesNotMutate(t *testing.T) {
	path := sessionPath(t)
	auth := &fakeAuth{loginErr: &api.Error{Message: "Invalid phone number or password"}}
	s := NewStore(auth, path)

	res := s.Login(context.Background(), "9876543210", "wrong")
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid phone number or password", res.Message)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no session file after a failed login")
}

func TestLoginNetworkFailureMessage(t *testing.T) {
	auth := &fakeAuth{loginErr: errors.New("dial tcp: connection refused")}
	s := NewStore(auth, sessionPath(t))

	res := s.Login(context.Background(), "9876543210", "secret")
	assert.False(t, res.Success)
	assert.Equal(t, "Could not reach the server. Please try again.", res.Message)
}

func TestRestoreRevalidates(t *testing.T) {
	path := sessionPath(t)
	writeSession(t, path, "tok-1", &model.UserProfile{ID: "u-1", Name: "Old Name"})

	auth := &fakeAuth{meUser: &model.UserProfile{ID: "u-1", Name: "New Name"}}
	s := NewStore(auth, path)
	s.Restore(context.Background())

	assert.True(t, s.IsAuthenticated())
	assert.False(t, s.IsLoading())
	require.NotNil(t, s.User())
	assert.Equal(t, "New Name", s.User().Name, "profile refreshed from the backend")
}

func TestRestoreRejectedTokenClearsSession(t *testing.T) {
	path := sessionPath(t)
	writeSession(t, path, "tok-stale", &model.UserProfile{ID: "u-1"})

	auth := &fakeAuth{meErr: &api.Error{Message: "Invalid token"}}
	s := NewStore(auth, path)
	s.Restore(context.Background())

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "persisted session removed on rejection")
}

func TestRestoreNetworkFailureKeepsCachedProfile(t *testing.T) {
	path := sessionPath(t)
	writeSession(t, path, "tok-1", &model.UserProfile{ID: "u-1", Name: "Asha"})

	auth := &fakeAuth{meErr: errors.New("dial tcp: connection refused")}
	s := NewStore(auth, path)
	s.Restore(context.Background())

	assert.True(t, s.IsAuthenticated(), "offline start keeps the cached session")
	assert.Equal(t, "tok-1", s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "Asha", s.User().Name)
}

func TestRestoreNetworkFailureWithoutProfileClears(t *testing.T) {
	path := sessionPath(t)
	writeSession(t, path, "tok-1", nil)

	auth := &fakeAuth{meErr: errors.New("dial tcp: connection refused")}
	s := NewStore(auth, path)
	s.Restore(context.Background())

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
}

func TestRestoreWithoutTokenIsNoop(t *testing.T) {
	auth := &fakeAuth{}
	s := NewStore(auth, sessionPath(t))
	s.Restore(context.Background())

	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsLoading())
}

func TestLogoutClearsEverything(t *testing.T) {
	path := sessionPath(t)
	auth := &fakeAuth{loginData: &api.AuthData{
		Token: "tok-1",
		User:  model.UserProfile{ID: "u-1", Phone: "9876543210"},
	}}
	s := NewStore(auth, path)
	s.Login(context.Background(), "9876543210", "secret")
	require.True(t, s.IsAuthenticated())

	s.Logout()
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestUserReturnsCopy(t *testing.T) {
	auth := &fakeAuth{loginData: &api.AuthData{
		Token: "tok-1",
		User:  model.UserProfile{Name: "Asha", Phone: "9876543210"},
	}}
	s := NewStore(auth, sessionPath(t))
	s.Login(context.Background(), "9876543210", "secret")

	u := s.User()
	u.Name = "mutated"
	assert.Equal(t, "Asha", s.User().Name)
}
