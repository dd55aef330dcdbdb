package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newspaper/config"
	"newspaper/models"
	"newspaper/repositories"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	// BecomeAuthor moves a common user into the authors role and returns a token carrying it.
	BecomeAuthor(ctx context.Context, userID uint) (*models.AuthResponse, error)
}

type authService struct {
	userRepo   repositories.UserRepository
	authorRepo repositories.AuthorRepository
	cfg        *config.Config
	log        *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, authorRepo repositories.AuthorRepository, cfg *config.Config, log *slog.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		authorRepo: authorRepo,
		cfg:        cfg,
		log:        log,
	}
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	// Check if user already exists
	_, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, fmt.Errorf("user %s: %w", req.Email, models.ErrConflict)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// New accounts join the common group
	role := models.RoleCommon
	if s.cfg.IsAdminEmail(req.Email) {
		role = models.RoleAdmin
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID, "role", user.Role)

	return s.authResponse(user)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *authService) BecomeAuthor(ctx context.Context, userID uint) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Admins already publish; never downgrade them.
	if !user.Role.IsAuthor() {
		if err := s.userRepo.UpdateRole(ctx, user.ID, models.RoleAuthor); err != nil {
			return nil, err
		}
		user.Role = models.RoleAuthor
		s.log.Info("user joined authors", "user_id", user.ID)
	}

	if _, err := s.authorRepo.GetOrCreate(ctx, user.ID); err != nil {
		return nil, err
	}

	return s.authResponse(user)
}

func (s *authService) authResponse(user *models.User) (*models.AuthResponse, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      now.Add(s.cfg.JWTExpiration()).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.cfg.JWTKey())
}
