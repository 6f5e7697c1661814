package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/abhishek02004/MAD-Project/client/storage"

	"go.uber.org/zap"
)

// CredentialStore manages the authentication lifecycle and exposes the
// current session to the rest of the app. Operations never panic and never
// return transport errors; failures set an error message and report false.
type CredentialStore struct {
	api   *api
	store *storage.Store
	log   *zap.Logger

	token   string
	user    *User
	loading bool
	errMsg  string
}

type authResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// NewCredentialStore builds the store and restores any persisted session.
// A failed restore is logged and treated as "not logged in".
func NewCredentialStore(baseURL string, store *storage.Store, log *zap.Logger) *CredentialStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &CredentialStore{
		api:   newAPI(baseURL),
		store: store,
		log:   log,
	}
	s.restore()
	return s
}

func (s *CredentialStore) restore() {
	info, err := s.store.GetItem(keyUserInfo)
	if err != nil {
		s.log.Warn("failed to read stored session", zap.Error(err))
		return
	}
	if info == "" {
		return
	}

	var u User
	if err := json.Unmarshal([]byte(info), &u); err != nil {
		s.log.Warn("stored user info is corrupt", zap.Error(err))
		return
	}

	token, err := s.store.GetItem(keyUserToken)
	if err != nil {
		s.log.Warn("failed to read stored token", zap.Error(err))
		return
	}

	s.user = &u
	s.token = token
}

// Login exchanges credentials for a session. On success the token and
// profile are held in memory and persisted; on failure the error message is
// recorded and false returned.
func (s *CredentialStore) Login(ctx context.Context, email, password string) bool {
	s.loading = true
	s.errMsg = ""
	defer func() { s.loading = false }()

	var resp authResponse
	err := s.api.do(ctx, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		s.errMsg = err.Error()
		s.log.Warn("login failed", zap.Error(err))
		return false
	}

	s.setSession(resp)
	return true
}

// Register creates an account; the persistence contract matches Login.
func (s *CredentialStore) Register(ctx context.Context, name, email, password string) bool {
	s.loading = true
	s.errMsg = ""
	defer func() { s.loading = false }()

	var resp authResponse
	err := s.api.do(ctx, http.MethodPost, "/api/users", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		s.errMsg = err.Error()
		s.log.Warn("registration failed", zap.Error(err))
		return false
	}

	s.setSession(resp)
	return true
}

func (s *CredentialStore) setSession(resp authResponse) {
	s.user = &resp.User
	s.token = resp.Token

	info, _ := json.Marshal(resp.User)
	if err := s.store.SetItem(keyUserInfo, string(info)); err != nil {
		s.log.Warn("failed to persist user info", zap.Error(err))
	}
	if err := s.store.SetItem(keyUserToken, resp.Token); err != nil {
		s.log.Warn("failed to persist token", zap.Error(err))
	}
}

// Logout clears the in-memory session and removes the persisted entries.
func (s *CredentialStore) Logout() {
	s.loading = true
	s.errMsg = ""
	s.token = ""
	s.user = nil

	if err := s.store.RemoveItem(keyUserInfo); err != nil {
		s.log.Warn("failed to remove user info", zap.Error(err))
	}
	if err := s.store.RemoveItem(keyUserToken); err != nil {
		s.log.Warn("failed to remove token", zap.Error(err))
	}

	s.loading = false
}

// Token is the current session token, "" when logged out.
func (s *CredentialStore) Token() string { return s.token }

// User is the current profile, nil when logged out.
func (s *CredentialStore) User() *User { return s.user }

// Err is the message from the last failed operation, "" after a success.
func (s *CredentialStore) Err() string { return s.errMsg }

// Loading reports whether an operation is in flight, for disabling controls.
func (s *CredentialStore) Loading() bool { return s.loading }
