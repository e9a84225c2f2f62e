package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/supabase-community/gotrue-go/types"
)

var ErrNotAdmin = errors.New("account is not an admin")

type UserService struct {
	userRepo models.UserRepo
}

func NewUserService(userRepo models.UserRepo) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// AuthenticateUser signs in with email and password and only lets admins through.
func (us *UserService) AuthenticateUser(ctx context.Context, email, password string) (*types.TokenResponse, *models.AdminProfile, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid email format: %v", models.ErrValidation, err)
	}
	if err := models.Validate.Var(password, "required,min=6"); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid password format: %v", models.ErrValidation, err)
	}

	response, err := us.userRepo.AuthenticateUser(ctx, email, password)
	if err != nil {
		return nil, nil, fmt.Errorf("authentication failed: %w", err)
	}

	profile, err := us.GetProfile(ctx, response.User.ID, response.AccessToken)
	if err != nil {
		return nil, nil, err
	}
	if !profile.IsAdmin() {
		return nil, nil, ErrNotAdmin
	}

	return response, profile, nil
}

func (us *UserService) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", models.ErrValidation)
	}
	response, err := us.userRepo.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return response, nil
}

func (us *UserService) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*models.AdminProfile, error) {
	res, err := us.userRepo.GetProfile(ctx, id, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return res, nil
}
