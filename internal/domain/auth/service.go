package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/shiebas/safa-connect-sub002/internal/domain/reward"
	"github.com/shiebas/safa-connect-sub002/internal/domain/user"
	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/jwt"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/password"
)

// OnboardingConfig controls the coins a new member receives.
type OnboardingConfig struct {
	WelcomeBonus      decimal.Decimal
	FirstUseReward    decimal.Decimal
	FirstUseRewardTTL time.Duration
}

// Service defines authentication and user lifecycle operations.
type Service interface {
	// Register creates the user, provisions a wallet, credits the welcome
	// bonus and grants a claimable first-use reward.
	Register(ctx context.Context, req RegisterRequest) (*user.User, *TokenPair, error)

	// Login verifies credentials and issues a token pair.
	Login(ctx context.Context, req LoginRequest) (*user.User, *TokenPair, error)

	// Refresh exchanges a valid refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// GetUser returns a user by ID.
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type service struct {
	users      user.Repository
	walletSvc  wallet.Service
	rewardSvc  reward.Service
	jwtSvc     *jwt.Service
	onboarding OnboardingConfig
}

// NewService creates a new auth service
func NewService(users user.Repository, walletSvc wallet.Service, rewardSvc reward.Service, jwtSvc *jwt.Service, onboarding OnboardingConfig) Service {
	return &service{
		users:      users,
		walletSvc:  walletSvc,
		rewardSvc:  rewardSvc,
		jwtSvc:     jwtSvc,
		onboarding: onboarding,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*user.User, *TokenPair, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: hash password", ErrInternal)
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         user.RoleMember,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	s.onboard(ctx, u.ID)

	tokens, err := s.issueTokens(u)
	if err != nil {
		return nil, nil, err
	}
	return u, tokens, nil
}

// onboard provisions the wallet and the welcome coins. Failures here are
// logged but never fail the registration: the user exists and can log in,
// and EnsureWallet on first use covers a missing wallet.
func (s *service) onboard(ctx context.Context, userID uuid.UUID) {
	if _, _, err := s.walletSvc.EnsureWallet(ctx, userID); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Wallet provisioning failed during registration")
		return
	}

	if s.onboarding.WelcomeBonus.IsPositive() {
		_, err := s.walletSvc.Credit(ctx, userID, wallet.Entry{
			Kind:   wallet.TxKindBonus,
			Amount: s.onboarding.WelcomeBonus,
			Reason: "Welcome bonus",
		})
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Welcome bonus credit failed")
		}
	}

	if s.onboarding.FirstUseReward.IsPositive() {
		var expiresAt *time.Time
		if s.onboarding.FirstUseRewardTTL > 0 {
			t := time.Now().UTC().Add(s.onboarding.FirstUseRewardTTL)
			expiresAt = &t
		}
		_, err := s.rewardSvc.Grant(ctx, userID, reward.KindFirstUse, s.onboarding.FirstUseReward,
			"First use reward", expiresAt, nil)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("First-use reward grant failed")
		}
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*user.User, *TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(u)
	if err != nil {
		return nil, nil, err
	}
	return u, tokens, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return s.issueTokens(u)
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *service) issueTokens(u *user.User) (*TokenPair, error) {
	access, err := s.jwtSvc.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: sign access token", ErrInternal)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: sign refresh token", ErrInternal)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
