package services

import (
	"ns2po_server/lib"
	"ns2po_server/structs"
	"strings"

	"github.com/MonkyMars/gecho"
)

// AuthService authenticates the single back-office administrator against the
// configured credentials. There is no user table: the MVP has exactly one
// admin, defined by environment.
type AuthService struct {
	cfg    *structs.Config
	logger *gecho.Logger
}

func NewAuthService(cfg *structs.Config, logger *gecho.Logger) *AuthService {
	return &AuthService{
		cfg:    cfg,
		logger: logger,
	}
}

// Login verifies the admin credentials and issues a bearer token.
func (as *AuthService) Login(req *structs.AuthRequest) (*structs.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if email != strings.ToLower(as.cfg.Auth.AdminEmail) {
		as.logger.Warn("Admin login rejected", gecho.Field("email", email))
		return nil, lib.ErrInvalidCredentials
	}

	if !lib.VerifyPassword(as.cfg.Auth.AdminPasswordHash, req.Password) {
		as.logger.Warn("Admin login rejected", gecho.Field("email", email))
		return nil, lib.ErrInvalidCredentials
	}

	token, expiresAt, err := lib.GenerateAccessToken(
		email,
		"admin",
		as.cfg.Auth.AccessTokenSecret,
		as.cfg.Auth.AccessTokenExpiry,
	)
	if err != nil {
		as.logger.Error("Failed to issue admin token", gecho.Field("error", err))
		return nil, err
	}

	as.logger.Info("Admin logged in", gecho.Field("email", email))
	return &structs.AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// ValidateToken parses a bearer token and checks the admin role.
func (as *AuthService) ValidateToken(token string) (*structs.AuthClaims, error) {
	claims, err := lib.ParseToken(token, as.cfg.Auth.AccessTokenSecret)
	if err != nil {
		return nil, err
	}
	if claims.Role != "admin" {
		return nil, lib.ErrInvalidToken
	}
	return claims, nil
}
