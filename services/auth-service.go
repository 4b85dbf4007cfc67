package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
	"github.com/alexander-edwards/asana-clone-app-fullstack/utils"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes and x/crypto rejects it outright.
	maxPasswordLength = 72
)

type AuthService struct {
	users  UserStore
	tokens *utils.JWTManager
}

func NewAuthService(users UserStore, tokens *utils.JWTManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := utils.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	var v utils.Validator
	v.Check(utils.IsEmail(email), "email", "Please enter a valid email")
	v.Check(len(req.Password) >= minPasswordLength, "password", "Password must be at least 6 characters")
	v.Check(len(req.Password) <= maxPasswordLength, "password", "Password must be at most 72 bytes")
	v.Check(name != "", "name", "Name is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, email, hash, name)
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered", user.ID)

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email := utils.NormalizeEmail(req.Email)

	var v utils.Validator
	v.Check(utils.IsEmail(email), "email", "Please enter a valid email")
	v.Check(req.Password != "", "password", "Password is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Unknown email")
			return nil, apperrors.BadRequest("Invalid credentials")
		}
		return nil, err
	}
	if !utils.CheckPassword(user.Password, req.Password) {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Wrong password for user %s", user.ID)
		return nil, apperrors.BadRequest("Invalid credentials")
	}

	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	var v utils.Validator
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
		v.Check(trimmed != "", "name", "Name cannot be empty")
	}
	if req.AvatarURL != nil {
		v.Check(utils.IsURL(*req.AvatarURL), "avatar_url", "Avatar must be a valid URL")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, apperrors.BadRequest("No fields to update")
	}

	return s.users.UpdateProfile(ctx, userID, req)
}

// Authenticate resolves a bearer token to the user id it was issued for.
func (s *AuthService) Authenticate(token string) (uuid.UUID, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.CodeUnauthorized, "Token is not valid", err)
	}
	return claims.UserUUID(), nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}
