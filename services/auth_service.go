package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/site-engineer-app/metrics"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Profile   *models.Profile `json:"profile"`
}

// AuthService is the session authenticator: credentials in, server-side session out.
type AuthService struct {
	profiles repositories.ProfileRepository
	sessions SessionStore
	hasher   PasswordHasher
	signer   *utils.TokenSigner
	now      func() time.Time

	// dummyHash is verified against when the email is unknown so both
	// failure paths cost one hash comparison.
	dummyHash string
}

func NewAuthService(profiles repositories.ProfileRepository, sessions SessionStore, hasher PasswordHasher, signer *utils.TokenSigner) (*AuthService, error) {
	dummy, err := hasher.Hash("site-engineer-dummy-password")
	if err != nil {
		return nil, err
	}
	return &AuthService{
		profiles:  profiles,
		sessions:  sessions,
		hasher:    hasher,
		signer:    signer,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.ErrValidation("email and password are required")
	}

	p, err := s.profiles.GetProfileByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, utils.ErrInvalidCredentials()
	}
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, utils.ErrInternal(err)
	}

	if !s.hasher.Verify(password, p.PasswordHash) {
		metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		utils.InfoLogger.WithField("email", email).Info("Login rejected")
		return nil, utils.ErrInvalidCredentials()
	}

	sessionID, err := s.sessions.Create(ctx, p.ID, s.signer.TTL())
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, utils.ErrInternal(err)
	}

	token, expires, err := s.signer.Sign(sessionID, p.ID, s.now())
	if err != nil {
		_ = s.sessions.Destroy(ctx, sessionID)
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, utils.ErrInternal(err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	utils.InfoLogger.WithFields(logrus.Fields{"profile_id": p.ID, "role": p.Role}).Info("User logged in")
	return &LoginResult{Token: token, ExpiresAt: expires, Profile: p}, nil
}

// Logout destroys the session behind token. Unknown or expired sessions are
// reported as Unauthenticated.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.signer.Parse(strings.TrimSpace(token))
	if err != nil {
		return utils.ErrUnauthenticated()
	}
	if _, err := s.resolve(ctx, claims); err != nil {
		return err
	}
	if err := s.sessions.Destroy(ctx, claims.ID); err != nil {
		return utils.ErrInternal(err)
	}
	return nil
}

// CurrentUser returns the profile bound to the session behind token.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.Profile, error) {
	claims, err := s.signer.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, utils.ErrUnauthenticated()
	}
	profileID, err := s.resolve(ctx, claims)
	if err != nil {
		return nil, err
	}

	p, err := s.profiles.GetProfile(ctx, profileID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.ErrUnauthenticated()
	}
	if err != nil {
		return nil, utils.ErrInternal(err)
	}
	return p, nil
}

func (s *AuthService) resolve(ctx context.Context, claims *utils.SessionClaims) (string, error) {
	profileID, err := s.sessions.Resolve(ctx, claims.ID)
	if errors.Is(err, ErrSessionNotFound) {
		return "", utils.ErrUnauthenticated()
	}
	if err != nil {
		return "", utils.ErrInternal(err)
	}
	if profileID != claims.Subject {
		return "", utils.ErrUnauthenticated()
	}
	return profileID, nil
}
