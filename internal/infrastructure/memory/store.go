// Package memory is an in-process implementation of the user and place
// stores with a serializing unit of work. It backs STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/places-api/internal/domain/entity"
	"github.com/oksasatya/places-api/internal/domain/repository"
)

var errTxDone = errors.New("transaction already finished")

type state struct {
	users     map[string]*entity.User
	userOrder []string
	places    map[string]*entity.Place
}

func (s *state) clone() *state {
	c := &state{
		users:     make(map[string]*entity.User, len(s.users)),
		userOrder: slices.Clone(s.userOrder),
		places:    make(map[string]*entity.Place, len(s.places)),
	}
	for id, u := range s.users {
		c.users[id] = u.Clone()
	}
	for id, p := range s.places {
		c.places[id] = p.Clone()
	}
	return c
}

// Store holds both collections behind one lock. A transaction owns the lock
// from Begin until Commit or Rollback and works on a private copy, so
// concurrent units of work run one after another.
type Store struct {
	txMu sync.Mutex // held for the life of a transaction

	mu    sync.RWMutex // guards data
	data  *state
	clock func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: &state{
			users:  map[string]*entity.User{},
			places: map[string]*entity.Place{},
		},
		clock: time.Now,
	}
}

// Users returns a repository that reads and writes the committed state directly.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s, view: s.autocommit} }

// Places returns a repository that reads and writes the committed state directly.
func (s *Store) Places() repository.PlaceRepository { return &placeRepo{s: s, view: s.autocommit} }

// autocommit runs fn as a single-statement transaction.
func (s *Store) autocommit(write bool, fn func(st *state) error) error {
	if !write {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return fn(s.data)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Begin blocks until no other transaction is open.
func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.txMu.Lock()
	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()
	return &tx{s: s, work: work}, nil
}

type tx struct {
	s    *Store
	work *state
	done bool
}

func (t *tx) view(_ bool, fn func(st *state) error) error {
	if t.done {
		return errTxDone
	}
	return fn(t.work)
}

func (t *tx) Users() repository.UserRepository   { return &userRepo{s: t.s, view: t.view} }
func (t *tx) Places() repository.PlaceRepository { return &placeRepo{s: t.s, view: t.view} }

func (t *tx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true
	defer t.s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.mu.Lock()
	t.s.data = t.work
	t.s.mu.Unlock()
	return nil
}

func (t *tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.work = nil
	t.s.txMu.Unlock()
	return nil
}

type viewFunc func(write bool, fn func(st *state) error) error

type userRepo struct {
	s    *Store
	view viewFunc
}

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.view(true, func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return repository.ErrDuplicateEmail
			}
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		if u.PlaceIDs == nil {
			u.PlaceIDs = []string{}
		}
		now := r.s.clock()
		u.CreatedAt, u.UpdatedAt = now, now
		st.users[u.ID] = u.Clone()
		st.userOrder = append(st.userOrder, u.ID)
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.view(false, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = u.Clone()
		return nil
	})
	return out, err
}

// GetByIDForUpdate needs no extra locking: a transaction already holds the store.
func (r *userRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.view(false, func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				out = u.Clone()
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *userRepo) List(_ context.Context) ([]*entity.User, error) {
	var out []*entity.User
	err := r.view(false, func(st *state) error {
		out = make([]*entity.User, 0, len(st.userOrder))
		for _, id := range st.userOrder {
			out = append(out, st.users[id].Clone())
		}
		return nil
	})
	return out, err
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	return r.view(true, func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return repository.ErrNotFound
		}
		for id, existing := range st.users {
			if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
				return repository.ErrDuplicateEmail
			}
		}
		u.UpdatedAt = r.s.clock()
		st.users[u.ID] = u.Clone()
		return nil
	})
}

type placeRepo struct {
	s    *Store
	view viewFunc
}

func (r *placeRepo) Create(_ context.Context, p *entity.Place) error {
	return r.view(true, func(st *state) error {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, ok := st.places[p.ID]; ok {
			return errors.New("place already exists")
		}
		now := r.s.clock()
		p.CreatedAt, p.UpdatedAt = now, now
		c := p.Clone()
		c.Status = entity.PlaceStatusCommitted
		st.places[p.ID] = c
		return nil
	})
}

func (r *placeRepo) GetByID(_ context.Context, id string) (*entity.Place, error) {
	var out *entity.Place
	err := r.view(false, func(st *state) error {
		p, ok := st.places[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = p.Clone()
		return nil
	})
	return out, err
}

func (r *placeRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Place, error) {
	out := make([]*entity.Place, 0, len(ids))
	err := r.view(false, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.places[id]; ok {
				out = append(out, p.Clone())
			}
		}
		return nil
	})
	return out, err
}

func (r *placeRepo) Update(_ context.Context, p *entity.Place) error {
	return r.view(true, func(st *state) error {
		cur, ok := st.places[p.ID]
		if !ok {
			return repository.ErrNotFound
		}
		next := cur.Clone()
		next.Title = p.Title
		next.Description = p.Description
		next.UpdatedAt = r.s.clock()
		p.UpdatedAt = next.UpdatedAt
		st.places[p.ID] = next
		return nil
	})
}

func (r *placeRepo) Delete(_ context.Context, id string) error {
	return r.view(true, func(st *state) error {
		if _, ok := st.places[id]; !ok {
			return repository.ErrNotFound
		}
		delete(st.places, id)
		return nil
	})
}

var (
	_ repository.UnitOfWork      = (*Store)(nil)
	_ repository.UserRepository  = (*userRepo)(nil)
	_ repository.PlaceRepository = (*placeRepo)(nil)
)
