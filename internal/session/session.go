// Package session holds the authentication session state for one principal:
// the cached profile row, the auth flags and the last operation error. All
// mutations go through the account service and the row store; on success the
// local state is replaced with the store's authoritative response.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/MukamaJ-2/crypto-vault/internal/cache"
	"github.com/MukamaJ-2/crypto-vault/internal/models"
	"github.com/MukamaJ-2/crypto-vault/internal/store"

	"go.uber.org/zap"
)

const cacheNamespace = "auth-storage"

// Store is an explicit session-state object, built once per principal and
// passed by reference to its consumers. Operations never propagate failures
// as returned errors; callers read Error() after the call.
type Store struct {
	accounts store.AccountService
	rows     store.LedgerStore
	cache    *cache.Cache
	log      *zap.Logger

	mu            sync.Mutex
	user          *models.User
	token         string
	authenticated bool
	loading       bool
	err           string
}

type snapshot struct {
	User          *models.User `json:"user"`
	Authenticated bool         `json:"is_authenticated"`
}

func New(accounts store.AccountService, rows store.LedgerStore, c *cache.Cache, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{accounts: accounts, rows: rows, cache: c, log: log}
}

// Login exchanges credentials for a session, then fetches the matching
// profile row. Any failure surfaces as a human-readable error and leaves the
// session unauthenticated; nothing is retried.
func (s *Store) Login(ctx context.Context, email, password string) {
	s.begin()

	sess, err := s.accounts.SignIn(ctx, email, password)
	if err != nil {
		s.failAuth("login failed", err)
		return
	}

	user, err := s.rows.UserByID(ctx, sess.UserID)
	if err != nil {
		s.failAuth("login failed", err)
		return
	}

	s.commit(user, sess.Token)
	s.log.Info("user logged in", zap.String("user_id", user.ID))
}

// Register creates an account, inserts the matching profile row under the
// account id, then re-fetches the authoritative row into state. A failed
// profile insert aborts without cleaning up the half-created account; the
// system of record owns that reconciliation.
func (s *Store) Register(ctx context.Context, name, email, password string) {
	s.begin()

	sess, err := s.accounts.SignUp(ctx, email, password)
	if err != nil {
		s.failAuth("registration failed", err)
		return
	}

	if _, err := s.rows.InsertUser(ctx, &models.User{
		ID:    sess.UserID,
		Email: email,
		Name:  name,
	}); err != nil {
		s.failAuth("registration failed", err)
		return
	}

	user, err := s.rows.UserByID(ctx, sess.UserID)
	if err != nil {
		s.failAuth("registration failed", err)
		return
	}

	s.commit(user, sess.Token)
	s.log.Info("user registered", zap.String("user_id", user.ID))
}

// Logout invalidates the remote session and clears local state. Local state
// is cleared even when the remote sign-out fails: a stale authenticated flag
// over a dead remote session is the worse outcome. The failure still lands
// in Error().
func (s *Store) Logout(ctx context.Context, token string) {
	remoteErr := s.accounts.SignOut(ctx, token)

	s.mu.Lock()
	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	s.user = nil
	s.token = ""
	s.authenticated = false
	s.loading = false
	if remoteErr != nil {
		s.err = fmt.Sprintf("logout failed: %v", remoteErr)
	} else {
		s.err = ""
	}
	s.mu.Unlock()

	if userID != "" {
		if err := s.cache.Delete(cacheNamespace, userID); err != nil {
			s.log.Warn("drop session snapshot", zap.Error(err))
		}
	}
	if remoteErr != nil {
		s.log.Warn("remote sign-out failed, local session cleared anyway", zap.Error(remoteErr))
	}
}

// UpdateProfile sends the changed columns to the row store and replaces the
// cached profile with the returned row.
func (s *Store) UpdateProfile(ctx context.Context, updates map[string]any) {
	s.mu.Lock()
	if !s.authenticated || s.user == nil {
		s.err = "not authenticated"
		s.mu.Unlock()
		return
	}
	id := s.user.ID
	token := s.token
	s.mu.Unlock()

	user, err := s.rows.UpdateUser(ctx, id, updates)
	if err != nil {
		s.fail("profile update failed", err)
		return
	}

	s.commit(user, token)
}

// Resume rehydrates the session for an already-verified principal: from the
// durable snapshot if present, otherwise from the row store. The bearer token
// was validated upstream, so a successful resume is authenticated.
func (s *Store) Resume(ctx context.Context, userID, token string) {
	var snap snapshot
	if err := s.cache.Load(cacheNamespace, userID, &snap); err == nil &&
		snap.User != nil && snap.User.ID == userID {
		s.commit(snap.User, token)
		return
	}

	user, err := s.rows.UserByID(ctx, userID)
	if err != nil {
		s.failAuth("session resume failed", err)
		return
	}
	s.commit(user, token)
}

// ---------- accessors ----------

// CurrentUser returns a copy of the cached profile row, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Error returns the message of the last failed operation, or "".
func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Token returns the bearer token of the last successful login or
// registration.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// ---------- state transitions ----------

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

// fail records the error and resets loading; everything else stays as it was.
func (s *Store) fail(op string, err error) {
	s.mu.Lock()
	s.loading = false
	s.err = fmt.Sprintf("%s: %v", op, err)
	s.mu.Unlock()
	s.log.Warn(op, zap.Error(err))
}

// failAuth additionally drops the authenticated flag; used by the operations
// that establish identity.
func (s *Store) failAuth(op string, err error) {
	s.mu.Lock()
	s.authenticated = false
	s.mu.Unlock()
	s.fail(op, err)
}

func (s *Store) commit(user *models.User, token string) {
	u := *user
	s.mu.Lock()
	s.user = &u
	s.token = token
	s.authenticated = true
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	if err := s.cache.Save(cacheNamespace, u.ID, snapshot{User: &u, Authenticated: true}); err != nil {
		s.log.Warn("save session snapshot", zap.Error(err))
	}
}
