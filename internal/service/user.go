package service

import (
	"accordee/internal/auth"
	"accordee/internal/database"
	"accordee/internal/misc"
	"accordee/internal/types"
	"accordee/logger"
	"context"
	"errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"strings"
)

type (
	UserService interface {
		Signup(ctx context.Context, params types.SignupParams) (*types.AuthResponse, error)
		Login(ctx context.Context, params types.LoginParams) (*types.AuthResponse, error)
		// Authenticate resolves a bearer token to its user.
		Authenticate(ctx context.Context, token string) (*types.User, error)
		FindByUsername(ctx context.Context, username string) (*types.User, error)
	}

	userService struct {
		userRepository      database.UserRepository
		dashboardRepository database.DashboardRepository
		tokens              auth.TokenIssuer
	}
)

func NewUserService(userRepo database.UserRepository, dashboardRepo database.DashboardRepository, tokens auth.TokenIssuer) UserService {
	return &userService{
		userRepository:      userRepo,
		dashboardRepository: dashboardRepo,
		tokens:              tokens,
	}
}

// Signup creates the account and its first dashboard, both named after the local part of the
// email turned into a slug.
func (u *userService) Signup(ctx context.Context, params types.SignupParams) (*types.AuthResponse, error) {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if err := misc.Validator.Struct(params); err != nil {
		return nil, types.ErrInvalidInput("a valid email and a password of at least 8 characters are required", err)
	}

	_, err := u.userRepository.FindByEmail(ctx, params.Email)
	if err == nil {
		return nil, types.ErrConflict("email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.ErrInternal(err)
	}

	username := misc.Slugify(params.Email[:strings.Index(params.Email, "@")])
	if err := u.ensureAvailable(ctx, username); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, types.ErrInternal(err)
	}

	user := &types.User{Username: username, Email: params.Email, Password: hash}
	dashboard := &types.Dashboard{
		URL:             username,
		Title:           username,
		Layout:          types.DefaultLayout,
		BackgroundStyle: types.DefaultBackgroundStyle,
	}
	if err := u.userRepository.Create(ctx, user, dashboard); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.ErrConflict("email, username or dashboard url already taken")
		}
		return nil, types.ErrInternal(err)
	}

	logger.Info("user signed up",
		zap.Uint("user_id", user.ID),
		zap.String("username", username))
	return u.authResponse(user)
}

func (u *userService) ensureAvailable(ctx context.Context, username string) error {
	if _, err := u.userRepository.FindByUsername(ctx, username); err == nil {
		return types.ErrConflict("username " + username + " is already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrInternal(err)
	}

	if _, err := u.dashboardRepository.FindByURL(ctx, username); err == nil {
		return types.ErrConflict("dashboard url " + username + " is already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrInternal(err)
	}
	return nil
}

// Login accepts either the username or the email in params.Login.
func (u *userService) Login(ctx context.Context, params types.LoginParams) (*types.AuthResponse, error) {
	if err := misc.Validator.Struct(params); err != nil {
		return nil, types.ErrInvalidInput("login and password are required", err)
	}

	var (
		user *types.User
		err  error
	)
	login := strings.TrimSpace(params.Login)
	if strings.Contains(login, "@") {
		user, err = u.userRepository.FindByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = u.userRepository.FindByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrUnauthorized("invalid username/email or password")
		}
		return nil, types.ErrInternal(err)
	}

	if err := auth.ComparePassword(user.Password, params.Password); err != nil {
		return nil, types.ErrUnauthorized("invalid username/email or password")
	}
	return u.authResponse(user)
}

func (u *userService) Authenticate(ctx context.Context, token string) (*types.User, error) {
	claims, err := u.tokens.Parse(token)
	if err != nil {
		return nil, types.ErrForbidden("invalid or expired token")
	}

	user, err := u.userRepository.FindByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrForbidden("invalid or expired token")
		}
		return nil, types.ErrInternal(err)
	}
	return user, nil
}

func (u *userService) FindByUsername(ctx context.Context, username string) (*types.User, error) {
	user, err := u.userRepository.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound("user not found")
		}
		return nil, types.ErrInternal(err)
	}
	return user, nil
}

func (u *userService) authResponse(user *types.User) (*types.AuthResponse, error) {
	token, err := u.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, types.ErrInternal(err)
	}
	return &types.AuthResponse{UserID: user.ID, Username: user.Username, Token: token}, nil
}
