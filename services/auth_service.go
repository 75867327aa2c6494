package services

import (
	"fmt"
	"time"

	"chat-direct/auth"
	"chat-direct/errors"
	"chat-direct/repositories"
)

type IAuthService interface {
	Login(email, password string) (Token, string, error)
	Register(email, name, password string) (Token, string, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokenDuration  time.Duration
}

type Token string

func NewAuthService(repo repositories.IUserRepository, tokenDuration time.Duration) IAuthService {
	return &AuthService{userRepository: repo, tokenDuration: tokenDuration}
}

// Register validates, hashes and persists a new account, then issues its
// first session token. Returns the token and the new user id.
func (s *AuthService) Register(email, name, password string) (Token, string, error) {
	valReq := auth.RegisterRequest{
		Email:    email,
		Name:     name,
		Password: password,
	}

	// Business rules first: no expensive cryptographic work on bad input.
	// The double wrap keeps the specific cause (a password-complexity
	// failure stays matchable) under the generic validation sentinel.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", "", fmt.Errorf("%w: %w", errors.ErrInvalidRegistration, err)
	}

	// Hashing happens in the service layer so the repository never sees a
	// plain password.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", "", fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.userRepository.CreateUser(email, name, hashedPassword)
	if err != nil {
		return "", "", err // Propagates ErrUserAlreadyExists if the email is taken
	}

	token, err := auth.GenerateToken(userID, s.tokenDuration)
	if err != nil {
		return "", "", errors.ErrTokenGeneration
	}

	return Token(token), userID, nil
}

func (s *AuthService) Login(email, password string) (Token, string, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, s.tokenDuration)
	if err != nil {
		return "", "", errors.ErrTokenGeneration
	}

	return Token(token), user.ID, nil
}
