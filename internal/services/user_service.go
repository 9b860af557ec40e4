package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/Dias221467/Habit_Tracker/internal/repository"
	"github.com/Dias221467/Habit_Tracker/internal/validation"
	jwtutil "github.com/Dias221467/Habit_Tracker/pkg/jwt"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInvalidToken       = errors.New("token is invalid or expired")
)

const msgUsernameTaken = "A user with that username already exists."

// TokenSettings configures token issuing.
type TokenSettings struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo   UserStore
	tokens TokenSettings
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore, tokens TokenSettings) *UserService {
	return &UserService{
		repo:   repo,
		tokens: tokens,
	}
}

// RegisterUser validates the request and creates an active account.
func (s *UserService) RegisterUser(ctx context.Context, req models.RegisterRequest) (*models.PublicUser, error) {
	logrus.WithField("username", req.Username).Info("Registering new user")

	if errs := validation.CheckRegistration(req); len(errs) > 0 {
		logrus.WithError(errs.Err()).Warn("Registration rejected")
		return nil, errs.Err()
	}

	existing, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		logrus.WithField("username", req.Username).Warn("Username already in use")
		return nil, usernameTaken()
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.CreateUser(ctx, &models.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: string(hashedPwd),
		IsActive:       true,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, usernameTaken()
	}
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	logrus.WithField("user_id", created.ID.Hex()).Info("User registered successfully")
	return &models.PublicUser{
		ID:       created.ID,
		Username: created.Username,
		Email:    created.Email,
	}, nil
}

// ObtainTokens checks the credentials and issues an access/refresh pair.
func (s *UserService) ObtainTokens(ctx context.Context, username, password string) (*models.TokenPair, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		logrus.WithField("username", username).Warn("Invalid login attempt")
		return nil, ErrInvalidCredentials
	}

	access, err := jwtutil.GenerateToken(user.ID.Hex(), user.Username, jwtutil.AccessToken, s.tokens.Secret, s.tokens.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := jwtutil.GenerateToken(user.ID.Hex(), user.Username, jwtutil.RefreshToken, s.tokens.Secret, s.tokens.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	logrus.WithField("user_id", user.ID.Hex()).Info("Tokens issued")
	return &models.TokenPair{Access: access, Refresh: refresh}, nil
}

// RefreshAccessToken trades a refresh token for a new access token.
func (s *UserService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := jwtutil.ValidateTokenOfType(refreshToken, s.tokens.Secret, jwtutil.RefreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	user, err := s.userFromClaims(ctx, claims)
	if err != nil {
		return "", err
	}

	access, err := jwtutil.GenerateToken(user.ID.Hex(), user.Username, jwtutil.AccessToken, s.tokens.Secret, s.tokens.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return access, nil
}

func (s *UserService) userFromClaims(ctx context.Context, claims *jwtutil.Claims) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func usernameTaken() error {
	return validation.FieldErrors{"username": msgUsernameTaken}.Err()
}
