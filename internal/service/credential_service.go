package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"tasktracker/internal/auth"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"

	"github.com/google/uuid"
)

const maxUsernameLength = 150

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

type CredentialService struct {
	users  UserStore
	hasher *auth.PasswordHasher
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialService(users UserStore, hasher *auth.PasswordHasher) *CredentialService {
	return &CredentialService{
		users:  users,
		hasher: hasher,
		now:    time.Now,
	}
}

// Register validates the request, hashes the password and stores the new user.
func (s *CredentialService) Register(ctx context.Context, username, password, password2 string) (*model.User, error) {
	verr := &ValidationError{}

	switch {
	case strings.TrimSpace(username) == "":
		verr.Add("username", msgBlank)
	case utf8.RuneCountInString(username) > maxUsernameLength:
		verr.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", maxUsernameLength))
	case !usernamePattern.MatchString(username):
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}

	if password == "" {
		verr.Add("password", msgBlank)
	} else {
		for _, problem := range auth.CheckPasswordStrength(password, username) {
			verr.Add("password", problem)
		}
	}
	if password2 == "" {
		verr.Add("password2", msgBlank)
	} else if password != "" && password != password2 {
		verr.Add("password", "Password fields didn't match.")
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:             uuid.New(),
		Username:       username,
		HashedPassword: hashed,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Verify checks a username/password pair. Unknown users and wrong passwords
// produce the same error and cost the same bcrypt comparison.
func (s *CredentialService) Verify(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		_, _ = s.hasher.Verify(s.dummy(), password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(user.HashedPassword, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *CredentialService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}
