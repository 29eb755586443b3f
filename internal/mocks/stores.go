package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/taskflow-server/internal/model"
)

var (
	_ model.UserStore     = (*UserStore)(nil)
	_ model.SessionStore  = (*SessionStore)(nil)
	_ model.TaskStore     = (*TaskStore)(nil)
	_ model.HistoryStore  = (*HistoryStore)(nil)
	_ model.SettingsStore = (*SettingsStore)(nil)
)

// UserStore is a mock of model.UserStore.
type UserStore struct {
	mock.Mock
}

func NewUserStore(t testingT) *UserStore {
	m := &UserStore{}
	register(&m.Mock, t)
	return m
}

func (m *UserStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	if rf, ok := args.Get(0).(func(context.Context, model.User) model.User); ok {
		return rf(ctx, user), args.Error(1)
	}
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *UserStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, id uuid.UUID, update model.UserUpdate) (model.WriteResult, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(model.WriteResult), args.Error(1)
}

// SessionStore is a mock of model.SessionStore.
type SessionStore struct {
	mock.Mock
}

func NewSessionStore(t testingT) *SessionStore {
	m := &SessionStore{}
	register(&m.Mock, t)
	return m
}

func (m *SessionStore) Create(ctx context.Context, session model.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *SessionStore) GetByToken(ctx context.Context, token string) (model.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Session), args.Error(1)
}

func (m *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SessionStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// TaskStore is a mock of model.TaskStore.
type TaskStore struct {
	mock.Mock
}

func NewTaskStore(t testingT) *TaskStore {
	m := &TaskStore{}
	register(&m.Mock, t)
	return m
}

func (m *TaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, userID)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *TaskStore) Upsert(ctx context.Context, task model.Task) (model.WriteResult, error) {
	args := m.Called(ctx, task)
	return args.Get(0).(model.WriteResult), args.Error(1)
}

func (m *TaskStore) Update(ctx context.Context, userID uuid.UUID, id string, patch model.TaskPatch) (model.WriteResult, error) {
	args := m.Called(ctx, userID, id, patch)
	return args.Get(0).(model.WriteResult), args.Error(1)
}

func (m *TaskStore) Delete(ctx context.Context, userID uuid.UUID, id string) (model.WriteResult, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(model.WriteResult), args.Error(1)
}

// HistoryStore is a mock of model.HistoryStore.
type HistoryStore struct {
	mock.Mock
}

func NewHistoryStore(t testingT) *HistoryStore {
	m := &HistoryStore{}
	register(&m.Mock, t)
	return m
}

func (m *HistoryStore) Append(ctx context.Context, entry model.HistoryEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *HistoryStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]model.HistoryEntry, error) {
	args := m.Called(ctx, userID, limit)
	entries, _ := args.Get(0).([]model.HistoryEntry)
	return entries, args.Error(1)
}

func (m *HistoryStore) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// SettingsStore is a mock of model.SettingsStore.
type SettingsStore struct {
	mock.Mock
}

func NewSettingsStore(t testingT) *SettingsStore {
	m := &SettingsStore{}
	register(&m.Mock, t)
	return m
}

func (m *SettingsStore) Get(ctx context.Context, userID uuid.UUID) (model.Settings, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Settings), args.Error(1)
}

func (m *SettingsStore) Save(ctx context.Context, userID uuid.UUID, settings model.Settings) error {
	return m.Called(ctx, userID, settings).Error(0)
}
