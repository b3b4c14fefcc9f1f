package devserver

import (
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrMissingName        = errors.New("name is required")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserRepo holds accounts in memory, keyed by normalized email.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]User
	cost  int
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[string]User{}, cost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || strings.ToLower(addr.Address) != email {
		return ErrInvalidEmail
	}
	return nil
}

func (r *UserRepo) Register(name, email, password string, now time.Time) (User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return User{}, ErrMissingName
	}
	if err := validateEmail(email); err != nil {
		return User{}, err
	}
	if len(password) < 6 {
		return User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; ok {
		return User{}, ErrEmailTaken
	}
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	r.users[email] = u
	return u, nil
}

// Authenticate checks a password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (r *UserRepo) Authenticate(email, password string) (User, error) {
	r.mu.RLock()
	u, ok := r.users[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(email string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[normalizeEmail(email)]
	return u, ok
}
