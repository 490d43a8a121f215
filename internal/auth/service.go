package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/gocart-backend/internal/users"
	pkgAuth "github.com/angelmondragon/gocart-backend/pkg/auth"
	"github.com/angelmondragon/gocart-backend/pkg/auth/session"
	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "Invalid email or password"
	avatarPlaceholderURL      = "https://ui-avatars.com/api/?name=%s&background=10b981&color=fff"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error)
	Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error)
	Logout(ctx context.Context, accessID string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, accessID string, req ChangePasswordRequest) (*TokenPair, error)
}

type sessionManager interface {
	Issue(ctx context.Context) (string, string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type storeLookup interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Store, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Users          *users.Repository
	Stores         storeLookup
	Tx             txRunner
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Now            func() time.Time
}

type service struct {
	users       *users.Repository
	stores      storeLookup
	tx          txRunner
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store lookup is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:       params.Users,
		stores:      params.Stores,
		tx:          params.Tx,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		now:         now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.Validation("email is required")
	}
	if n := len([]rune(name)); n < 2 || n > 100 {
		return nil, pkgerrors.Validation("name must be between 2 and 100 characters")
	}
	if err := security.CheckPasswordStrength(req.Password); err != nil {
		return nil, pkgerrors.Validation(err.Error())
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	image := strings.TrimSpace(req.Image)
	if image == "" {
		image = fmt.Sprintf(avatarPlaceholderURL, url.QueryEscape(name))
	}

	var user *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.Conflict("User with this email already exists")
		} else if !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		created, err := repo.Create(ctx, users.CreateUserDTO{
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			Image:        image,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Conflict("User with this email already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.issueTokens(ctx, user, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return &AuthResponse{TokenPair: *pair, User: users.FromModel(user)}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.issueTokens(ctx, user, now)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{TokenPair: *pair, User: users.FromModel(user)}, nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	if strings.TrimSpace(req.RefreshToken) == "" {
		return nil, pkgerrors.Validation("Refresh token is required")
	}
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, strings.TrimSpace(req.AccessToken))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "The user belonging to this token no longer exists.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	newAccessID, refreshToken, err := s.session.Rotate(ctx, claims.ID, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenPair{Token: token, RefreshToken: refreshToken}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("User", userID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	resp := &MeResponse{User: users.FromModel(user)}
	store, err := s.stores.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		resp.Store = &StoreSummary{
			ID:       store.ID,
			Name:     store.Name,
			Username: store.Username,
			Status:   store.Status,
			IsActive: store.IsActive,
		}
	case !db.IsNotFound(err):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup store")
	}
	return resp, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// ChangePassword verifies the current password, stores the new hash and replaces the
// caller's session with a fresh token pair.
func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, accessID string, req ChangePasswordRequest) (*TokenPair, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("User", userID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Current password is incorrect")
	}
	if err := security.CheckPasswordStrength(req.NewPassword); err != nil {
		return nil, pkgerrors.Validation(err.Error())
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}

	if accessID != "" {
		if err := s.session.Revoke(ctx, accessID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
		}
	}
	return s.issueTokens(ctx, user, s.now().UTC())
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User) (time.Time, error) {
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return now, nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User, now time.Time) (*TokenPair, error) {
	role := user.Role
	if role == "" {
		role = enums.UserRoleCustomer
	}
	accessID, refreshToken, err := s.session.Issue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenPair{Token: token, RefreshToken: refreshToken}, nil
}
