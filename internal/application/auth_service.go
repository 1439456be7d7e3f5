package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/jwtauth"
	"quell-core-api/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles dashboard signup and login
type AuthService struct {
	users    ports.UserRepository
	stores   ports.StoreRepository
	pending  ports.PendingStoreRepository
	tokens   *jwtauth.Manager
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	users ports.UserRepository,
	stores ports.StoreRepository,
	pending ports.PendingStoreRepository,
	tokens *jwtauth.Manager,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		stores:  stores,
		pending: pending,
		tokens:  tokens,
		logger:  logger,
		now:     time.Now,
	}
}

// SignupInput is the signup request payload
type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	ShopToken string `json:"shopToken"`
}

// AuthResult is returned by Signup and Login
type AuthResult struct {
	Token  string          `json:"token"`
	User   *domain.User    `json:"user"`
	Store  *domain.Store   `json:"store,omitempty"`
	Stores []*domain.Store `json:"stores,omitempty"`
}

// Signup consumes a pending store created by the OAuth callback and creates
// the linked user and store. An expired or unknown shop token is rejected
// without touching the pending row: a failed attempt must not burn the link.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" || input.ShopToken == "" {
		return nil, fmt.Errorf("email, password and shopToken are required")
	}

	pending, err := s.pending.GetByToken(ctx, input.ShopToken)
	if err != nil {
		return nil, fmt.Errorf("failed to look up registration: %w", err)
	}
	if pending == nil || pending.Expired(s.now()) {
		return nil, ErrInvalidRegistrationKey
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hash),
		Role:         domain.RoleMerchant,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	widgetToken, err := newSecretToken(32)
	if err != nil {
		return nil, err
	}

	store := &domain.Store{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		ShopDomain:  domain.NormalizeHost(pending.ShopDomain),
		StoreID:     pending.StoreID,
		Name:        pending.ShopName,
		AccessToken: pending.AccessToken,
		WidgetToken: widgetToken,
		Status:      domain.StoreStatusActive,
		InstalledAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.stores.Upsert(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	if err := s.pending.Delete(ctx, input.ShopToken); err != nil {
		// The signup already succeeded; the TTL index will reap the row.
		s.logger.Warn().Err(err).Str("shop", pending.ShopDomain).Msg("Failed to delete consumed pending store")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", email).Str("shop", store.ShopDomain).Msg("Signup completed")

	return &AuthResult{Token: token, User: user, Store: store}, nil
}

// LoginInput is the login request payload
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a bearer token plus the user's stores.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	stores, err := s.stores.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user, Stores: stores}, nil
}
