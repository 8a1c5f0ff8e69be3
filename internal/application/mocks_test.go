package application

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/places-api/internal/domain/entity"
	repo "github.com/oksasatya/places-api/internal/domain/repository"
	"github.com/oksasatya/places-api/internal/domain/service"
)

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) ResolveAddress(ctx context.Context, address string) (service.Coordinates, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(service.Coordinates), args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, contentType, r)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) Index(ctx context.Context, p *entity.Place) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockIndexer) Remove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockIndexer) Search(ctx context.Context, q string, size int) ([]string, error) {
	args := m.Called(ctx, q, size)
	var ids []string
	if v := args.Get(0); v != nil {
		ids = v.([]string)
	}
	return ids, args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, ev service.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

var errInjected = errors.New("injected store failure")

// faultyUoW wraps a real unit of work, records the places written through
// it and fails at a chosen step.
type faultyUoW struct {
	repo.UnitOfWork
	failUserUpdate bool
	failCommit     bool

	mu      sync.Mutex
	begins  int
	created []string
}

func (f *faultyUoW) Begin(ctx context.Context) (repo.Tx, error) {
	tx, err := f.UnitOfWork.Begin(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.begins++
	f.mu.Unlock()
	return &faultyTx{Tx: tx, f: f}, nil
}

func (f *faultyUoW) beginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.begins
}

func (f *faultyUoW) createdIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

type faultyTx struct {
	repo.Tx
	f *faultyUoW
}

func (t *faultyTx) Users() repo.UserRepository {
	if t.f.failUserUpdate {
		return failingUpdates{UserRepository: t.Tx.Users()}
	}
	return t.Tx.Users()
}

func (t *faultyTx) Places() repo.PlaceRepository {
	return recordingPlaces{PlaceRepository: t.Tx.Places(), f: t.f}
}

func (t *faultyTx) Commit(ctx context.Context) error {
	if t.f.failCommit {
		return errInjected
	}
	return t.Tx.Commit(ctx)
}

type recordingPlaces struct {
	repo.PlaceRepository
	f *faultyUoW
}

func (r recordingPlaces) Create(ctx context.Context, p *entity.Place) error {
	r.f.mu.Lock()
	r.f.created = append(r.f.created, p.ID)
	r.f.mu.Unlock()
	return r.PlaceRepository.Create(ctx, p)
}

type failingUpdates struct {
	repo.UserRepository
}

func (failingUpdates) Update(context.Context, *entity.User) error { return errInjected }
