package users

import (
	"context"
	"sort"
	"sync"

	"github.com/angelmondragon/accounts-backend/pkg/db/models"
)

// memoryRepo is an in-memory Repository with the same lookup rules as the
// real stores, including unique email and phone.
type memoryRepo struct {
	mu      sync.Mutex
	records map[string]models.User
	calls   []string

	getErr    error
	addErr    error
	updateErr error
}

func newMemoryRepo(seed ...models.User) *memoryRepo {
	r := &memoryRepo{records: map[string]models.User{}}
	for _, u := range seed {
		r.records[u.ID] = u
	}
	return r
}

func (r *memoryRepo) record(call string) {
	r.calls = append(r.calls, call)
}

func (r *memoryRepo) find(match func(models.User) bool) *models.User {
	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if u := r.records[id]; match(u) {
			return &u
		}
	}
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetByID")
	if r.getErr != nil {
		return nil, r.getErr
	}
	if u, ok := r.records[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetByEmail")
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.find(func(u models.User) bool { return u.Email == email && !u.IsDeleted }), nil
}

func (r *memoryRepo) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetByPhone")
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.find(func(u models.User) bool { return u.PhoneNumber != nil && *u.PhoneNumber == phone }), nil
}

func (r *memoryRepo) GetDeletedByEmailOrPhone(_ context.Context, email string, phone *string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetDeletedByEmailOrPhone")
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.find(func(u models.User) bool {
		if !u.IsDeleted {
			return false
		}
		if u.Email == email {
			return true
		}
		return phone != nil && u.PhoneNumber != nil && *u.PhoneNumber == *phone
	}), nil
}

func (r *memoryRepo) Add(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Add")
	if r.addErr != nil {
		return r.addErr
	}
	for _, u := range r.records {
		if u.Email == user.Email {
			return &ErrDuplicate{Field: duplicateFieldEmail}
		}
		if user.PhoneNumber != nil && u.PhoneNumber != nil && *u.PhoneNumber == *user.PhoneNumber {
			return &ErrDuplicate{Field: duplicateFieldPhone}
		}
	}
	r.records[user.ID] = *user
	return nil
}

func (r *memoryRepo) Update(_ context.Context, id string, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Update")
	if r.updateErr != nil {
		return r.updateErr
	}
	r.records[id] = *user
	return nil
}

func (r *memoryRepo) GetAll(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetAll")
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := []models.User{}
	for _, u := range r.records {
		if !u.IsDeleted {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == "Add" || c == "Update" {
			n++
		}
	}
	return n
}

type fakeHasher struct {
	err error
}

func (f fakeHasher) Hash(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hashed:" + password, nil
}

type recordingSink struct {
	events []AuditEvent
	err    error
}

func (s *recordingSink) Record(_ context.Context, events ...AuditEvent) error {
	s.events = append(s.events, events...)
	return s.err
}

type recordingNotifier struct {
	mu    sync.Mutex
	sends []string
}

func (n *recordingNotifier) Dispatch(_ context.Context, email, displayName string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, email+"|"+displayName)
}
