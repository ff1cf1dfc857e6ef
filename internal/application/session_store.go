package application

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	repo "github.com/oksasatya/vortex-feed/internal/domain/repository"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

const (
	userCacheKey          = "vortex_user"
	loginCompleteCacheKey = "vortex_login_complete"

	// defaultDisplayName is used for comments written before a profile is loaded.
	defaultDisplayName = "Vortex User"
)

// Actor identifies who performs store mutations.
type Actor interface {
	Address() string
	DisplayName() string
}

// SessionStore is the single in-memory copy of the connected user's profile.
// Every change is mirrored to the local cache so a restart shows the last known profile
// before the network answers.
type SessionStore struct {
	users  repo.UserRemote
	cache  repo.LocalCache
	logger *logrus.Logger

	mu      sync.RWMutex
	user    *entity.User
	address string
	loading bool
	gen     uint64 // bumped by every write; a fetch only applies if nothing newer happened

	persistMu sync.Mutex
}

func NewSessionStore(users repo.UserRemote, cache repo.LocalCache, logger *logrus.Logger) *SessionStore {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &SessionStore{users: users, cache: cache, logger: logger}
}

// Hydrate installs the cached profile unless something newer is already in place.
// A cache entry that cannot be decoded is dropped.
func (s *SessionStore) Hydrate(ctx context.Context) {
	var u entity.User
	ok, err := s.cache.GetJSON(ctx, userCacheKey, &u)
	if err != nil {
		helpers.LogWarn(s.logger, "discarding unreadable cached user", err, nil)
		_ = s.cache.Delete(ctx, userCacheKey)
		return
	}
	if !ok {
		return
	}
	s.mu.Lock()
	if s.gen == 0 && s.user == nil {
		s.user = &u
	}
	s.mu.Unlock()
}

// SetUser replaces the profile; nil clears it.
func (s *SessionStore) SetUser(ctx context.Context, u *entity.User) {
	s.mu.Lock()
	s.user = u.Clone()
	s.gen++
	s.mu.Unlock()
	s.persist(ctx)
}

// FetchUser loads the profile for address. Any failure, including a missing or malformed
// profile, leaves no user installed: identity is never assumed.
func (s *SessionStore) FetchUser(ctx context.Context, address string) *entity.User {
	if address == "" {
		return nil
	}
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading = true
	s.mu.Unlock()

	u, err := s.users.GetUser(ctx, address)

	s.mu.Lock()
	if gen != s.gen || (s.address != "" && s.address != address) {
		// only the newest fetch owns the loading flag
		if gen == s.gen {
			s.loading = false
		}
		s.mu.Unlock()
		s.logger.WithField("address", address).Debug("discarding superseded profile response")
		return nil
	}
	s.loading = false
	if err != nil || u == nil || u.WalletAddress != address {
		s.user = nil
		s.mu.Unlock()
		fields := logrus.Fields{"address": address}
		if err == nil {
			s.logger.WithFields(fields).Warn("profile response did not match the requested wallet")
		} else {
			s.logger.WithError(err).WithFields(fields).Info("no profile for wallet")
		}
		s.persist(ctx)
		return nil
	}
	s.user = u.Clone()
	s.mu.Unlock()
	s.persist(ctx)
	return u.Clone()
}

// RefreshUser re-fetches the connected wallet's profile. No-op when nothing is connected.
func (s *SessionStore) RefreshUser(ctx context.Context) *entity.User {
	addr := s.Address()
	if addr == "" {
		return nil
	}
	return s.FetchUser(ctx, addr)
}

// Connected records the wallet transition and fetches its profile.
func (s *SessionStore) Connected(ctx context.Context, address string) *entity.User {
	s.mu.Lock()
	// a hydrated profile for the same wallet stays visible until the fetch resolves
	if s.user != nil && s.user.WalletAddress != address {
		s.user = nil
	}
	s.address = address
	s.mu.Unlock()
	return s.FetchUser(ctx, address)
}

// Disconnected clears the user and its cached copy.
func (s *SessionStore) Disconnected(ctx context.Context) {
	s.mu.Lock()
	s.address = ""
	s.user = nil
	s.loading = false
	s.gen++
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *SessionStore) User() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *SessionStore) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

func (s *SessionStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *SessionStore) ProfileCompleted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.ProfileCompleted
}

// DisplayName is the name stamped on comments by the connected user.
func (s *SessionStore) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user != nil && s.user.DisplayName != "" {
		return s.user.DisplayName
	}
	return defaultDisplayName
}

// LoginComplete reports whether the human-verification flow already ran on this device.
func (s *SessionStore) LoginComplete(ctx context.Context) bool {
	var done bool
	ok, err := s.cache.GetJSON(ctx, loginCompleteCacheKey, &done)
	return err == nil && ok && done
}

func (s *SessionStore) MarkLoginComplete(ctx context.Context) error {
	return s.cache.SetJSON(ctx, loginCompleteCacheKey, true)
}

// persist writes the current profile (not a stale argument) so concurrent writers
// always leave the cache matching memory.
func (s *SessionStore) persist(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	u := s.User()
	var err error
	if u == nil {
		err = s.cache.Delete(ctx, userCacheKey)
	} else {
		err = s.cache.SetJSON(ctx, userCacheKey, u)
	}
	if err != nil {
		helpers.LogWarn(s.logger, "local profile cache write failed", err, nil)
	}
}
