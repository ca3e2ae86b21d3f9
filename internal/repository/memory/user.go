package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/msomdec/rightnow/internal/domain"
)

// UserRepository is the in-memory user table. Email lookups are case-insensitive.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("%w: duplicate user id %s", domain.ErrInvalidInput, user.ID)
	}
	if r.emailTaken(user.Email, "") {
		return domain.ErrDuplicateEmail
	}

	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	found := cloneUser(u)
	return &found, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			found := cloneUser(u)
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return domain.ErrDuplicateEmail
	}

	r.users[user.ID] = cloneUser(*user)
	return nil
}

// emailTaken must be called with r.mu held.
func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func cloneUser(u domain.User) domain.User {
	if u.Age != nil {
		v := *u.Age
		u.Age = &v
	}
	return u
}
