package application

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	repo "github.com/oksasatya/vortex-feed/internal/domain/repository"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

// ProfileInput is a profile edit as submitted by the user.
type ProfileInput struct {
	DisplayName  string `json:"display_name" validate:"displayname"`
	ProfileImage string `json:"profile_image"`
	Bio          string `json:"bio" validate:"omitempty,runes=500"`
	Email        string `json:"email" validate:"omitempty,email"`
	Website      string `json:"website" validate:"omitempty,runes=200"`
	Twitter      string `json:"twitter" validate:"handle"`
	Instagram    string `json:"instagram" validate:"handle"`
	Location     string `json:"location" validate:"omitempty,runes=100"`
}

type ProfileService struct {
	users    repo.UserRemote
	session  *SessionStore
	images   repo.ImageStore
	notifier repo.Notifier
	logger   *logrus.Logger
	captcha  *captchaBook
}

func NewProfileService(users repo.UserRemote, session *SessionStore, images repo.ImageStore, notifier repo.Notifier, logger *logrus.Logger) *ProfileService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &ProfileService{
		users:    users,
		session:  session,
		images:   images,
		notifier: notifier,
		logger:   logger,
		captcha:  newCaptchaBook(),
	}
}

// SaveProfile validates and stores the connected user's profile. The remote answer after
// the save is authoritative; when it cannot be read the edit is applied locally and the
// profile is considered complete.
func (s *ProfileService) SaveProfile(ctx context.Context, in ProfileInput) (*entity.User, error) {
	addr := s.session.Address()
	if addr == "" {
		return nil, ErrNotConnected
	}

	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := validate(in); err != nil {
		return nil, err
	}
	in.Website = normalizeWebsite(in.Website)
	in.Twitter = normalizeHandle(in.Twitter)
	in.Instagram = normalizeHandle(in.Instagram)

	image, err := s.profileImage(ctx, addr, in.ProfileImage)
	if err != nil {
		return nil, err
	}
	in.ProfileImage = image

	update := repo.ProfileUpdate{
		DisplayName:  in.DisplayName,
		ProfileImage: in.ProfileImage,
		Bio:          in.Bio,
		Email:        in.Email,
		Website:      in.Website,
		Twitter:      in.Twitter,
		Instagram:    in.Instagram,
		Location:     in.Location,
	}
	if err := s.users.UpdateProfile(ctx, addr, update); err != nil {
		helpers.LogError(s.logger, "profile update failed", err, logrus.Fields{"address": addr})
		return nil, fmt.Errorf("update profile: %w", err)
	}

	fresh, err := s.users.GetUser(ctx, addr)
	if err != nil || fresh == nil || fresh.WalletAddress != addr {
		helpers.LogWarn(s.logger, "profile re-fetch failed, applying edit locally", err, logrus.Fields{"address": addr})
		fresh = mergeProfile(s.session.User(), addr, update)
	}
	s.session.SetUser(ctx, fresh)
	s.notify(entity.LevelSuccess, "Profile updated successfully!", "profile.update")
	return fresh.Clone(), nil
}

// NewChallenge issues a human-verification question for registration.
func (s *ProfileService) NewChallenge() Challenge {
	return s.captcha.issue()
}

// Register creates the remote account for the connected wallet once the challenge is
// answered, then loads the new profile and marks the login flow as done.
func (s *ProfileService) Register(ctx context.Context, challengeID string, answer int) (*entity.User, error) {
	addr := s.session.Address()
	if addr == "" {
		return nil, ErrNotConnected
	}
	if !s.captcha.check(challengeID, answer) {
		return nil, ErrCaptchaFailed
	}

	reg := repo.Registration{
		WalletAddress: addr,
		Username:      defaultUsername(addr),
		DisplayName:   shortAddress(addr),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.users.Register(ctx, reg); err != nil {
		helpers.LogError(s.logger, "registration failed", err, logrus.Fields{"address": addr})
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := s.session.MarkLoginComplete(ctx); err != nil {
		helpers.LogWarn(s.logger, "login flag not persisted", err, nil)
	}
	s.logger.WithField("address", addr).Info("wallet registered")
	return s.session.FetchUser(ctx, addr), nil
}

// profileImage accepts an existing URL as-is; a data URL is size checked and, when an
// image store is configured, uploaded.
func (s *ProfileService) profileImage(ctx context.Context, owner, ref string) (string, error) {
	raw, contentType, inline, err := decodeDataURL("profile_image", ref)
	if err != nil {
		return "", err
	}
	if !inline || s.images == nil {
		return ref, nil
	}
	url, err := s.images.Upload(ctx, owner, bytes.NewReader(raw), "avatar-"+uuid.NewString(), contentType)
	if err != nil {
		return "", fmt.Errorf("upload profile image: %w", err)
	}
	return url, nil
}

func (s *ProfileService) notify(level entity.Level, msg, action string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(context.Background(), entity.Notification{Level: level, Message: msg, Action: action, At: time.Now().UTC()})
}

func mergeProfile(current *entity.User, addr string, in repo.ProfileUpdate) *entity.User {
	u := current
	if u == nil || u.WalletAddress != addr {
		u = &entity.User{WalletAddress: addr, Username: defaultUsername(addr)}
	}
	u.DisplayName = in.DisplayName
	u.ProfileImage = in.ProfileImage
	u.Bio = in.Bio
	u.Email = in.Email
	u.Website = in.Website
	u.Twitter = in.Twitter
	u.Instagram = in.Instagram
	u.Location = in.Location
	u.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	u.ProfileCompleted = true
	return u
}

func normalizeWebsite(w string) string {
	w = strings.TrimSpace(w)
	if w == "" || strings.HasPrefix(w, "http://") || strings.HasPrefix(w, "https://") {
		return w
	}
	return "https://" + w
}

func normalizeHandle(h string) string {
	h = strings.TrimSpace(h)
	if h == "" || strings.HasPrefix(h, "@") {
		return h
	}
	return "@" + h
}

func defaultUsername(addr string) string {
	return "user_" + prefix(addr, 8)
}

// shortAddress renders an address as its first 8 and last 4 characters.
func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-4:]
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
