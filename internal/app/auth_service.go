package app

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"nlustudio/internal/model"
	"nlustudio/internal/pkg/token"
)

type AuthService struct {
	userStore    UserStore
	sessionStore SessionStore
	sessionTTL   time.Duration

	now func() time.Time
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(userStore UserStore, sessionStore SessionStore, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		userStore:    userStore,
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
		now:          time.Now,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)
	fullName := strings.TrimSpace(input.FullName)

	if email == "" || password == "" || len(password) < 8 {
		return nil, ErrInvalidInput
	}

	existing, err := s.userStore.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
	}
	if err := s.userStore.Create(user); err != nil {
		return nil, err
	}

	return s.issueSession(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userStore.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.issueSession(user)
}

func (s *AuthService) Logout(tok string) error {
	if strings.TrimSpace(tok) == "" {
		return ErrInvalidInput
	}
	return s.sessionStore.DeleteByToken(tok)
}

// ResolveCredential maps an opaque token to a user ID. An unknown token and an
// expired session both come back as ErrUnauthenticated; the caller cannot tell
// them apart. Expired rows are left in place.
func (s *AuthService) ResolveCredential(tok string) (uint, error) {
	if tok == "" {
		return 0, ErrUnauthenticated
	}

	session, err := s.sessionStore.GetByToken(tok)
	if err != nil {
		return 0, err
	}
	if session == nil || session.Expired(s.now()) {
		return 0, ErrUnauthenticated
	}
	return session.UserID, nil
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userStore.GetByID(id)
}

func (s *AuthService) issueSession(user *model.User) (*AuthResult, error) {
	tok, err := token.New()
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		Token:     tok,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessionStore.Create(session); err != nil {
		return nil, err
	}
	return &AuthResult{Token: tok, User: user}, nil
}
