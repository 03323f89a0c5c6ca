package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainuser "homestay/internal/domain/user"
)

// UserRepository is an in-memory account store with a unique email index.
type UserRepository struct {
	mu      sync.RWMutex
	items   map[domainuser.ID]*domainuser.User
	byEmail map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		items:   make(map[domainuser.ID]*domainuser.User),
		byEmail: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepository) ByEmail(_ context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	clone := *r.items[id]
	return &clone, nil
}

func (r *UserRepository) Save(_ context.Context, u *domainuser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byEmail[u.Email]; ok && existingID != u.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	if prev, ok := r.items[u.ID]; ok && prev.Email != u.Email {
		delete(r.byEmail, prev.Email)
	}
	clone := *u
	r.items[clone.ID] = &clone
	r.byEmail[clone.Email] = clone.ID
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id domainuser.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return domainuser.ErrNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.items, id)
	return nil
}

func (r *UserRepository) List(_ context.Context, params domainuser.ListParams) ([]*domainuser.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(params.Query))
	var matches []*domainuser.User
	for _, u := range r.items {
		if query != "" &&
			!strings.Contains(strings.ToLower(u.Name), query) &&
			!strings.Contains(u.Email, query) {
			continue
		}
		clone := *u
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})

	total := len(matches)
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + params.Limit
	if params.Limit <= 0 || end > total {
		end = total
	}
	return matches[offset:end], total, nil
}
