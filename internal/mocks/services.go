package mocks

import (
	"context"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/taskflow-server/internal/model"
)

var _ model.SecurityLayer = (*SecurityLayer)(nil)

// AuthService is a mock of handler.AuthService.
type AuthService struct {
	mock.Mock
}

func NewAuthService(t testingT) *AuthService {
	m := &AuthService{}
	register(&m.Mock, t)
	return m
}

func (m *AuthService) Login(ctx context.Context, params model.LoginParams) (model.AuthResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.AuthResult), args.Error(1)
}

func (m *AuthService) SetPIN(ctx context.Context, params model.SetPINParams) (model.AuthResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.AuthResult), args.Error(1)
}

// SessionResolver is a mock of middleware.SessionResolver.
type SessionResolver struct {
	mock.Mock
}

func NewSessionResolver(t testingT) *SessionResolver {
	m := &SessionResolver{}
	register(&m.Mock, t)
	return m
}

func (m *SessionResolver) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// TaskService is a mock of handler.TaskService.
type TaskService struct {
	mock.Mock
}

func NewTaskService(t testingT) *TaskService {
	m := &TaskService{}
	register(&m.Mock, t)
	return m
}

func (m *TaskService) List(ctx context.Context, userID uuid.UUID) (model.TaskList, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.TaskList), args.Error(1)
}

func (m *TaskService) Save(ctx context.Context, userID uuid.UUID, in model.TaskInput) (string, error) {
	args := m.Called(ctx, userID, in)
	return args.String(0), args.Error(1)
}

func (m *TaskService) Update(ctx context.Context, userID uuid.UUID, in model.TaskInput) (model.WriteResult, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(model.WriteResult), args.Error(1)
}

func (m *TaskService) Delete(ctx context.Context, userID uuid.UUID, id string) (model.WriteResult, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(model.WriteResult), args.Error(1)
}

// HistoryService is a mock of handler.HistoryService.
type HistoryService struct {
	mock.Mock
}

func NewHistoryService(t testingT) *HistoryService {
	m := &HistoryService{}
	register(&m.Mock, t)
	return m
}

func (m *HistoryService) Append(ctx context.Context, userID uuid.UUID, in model.HistoryInput) error {
	return m.Called(ctx, userID, in).Error(0)
}

func (m *HistoryService) ListRecent(ctx context.Context, userID uuid.UUID) ([]model.HistoryEntry, error) {
	args := m.Called(ctx, userID)
	entries, _ := args.Get(0).([]model.HistoryEntry)
	return entries, args.Error(1)
}

func (m *HistoryService) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// SettingsService is a mock of handler.SettingsService.
type SettingsService struct {
	mock.Mock
}

func NewSettingsService(t testingT) *SettingsService {
	m := &SettingsService{}
	register(&m.Mock, t)
	return m
}

func (m *SettingsService) Get(ctx context.Context, userID uuid.UUID) (model.Settings, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Settings), args.Error(1)
}

func (m *SettingsService) Save(ctx context.Context, userID uuid.UUID, patch model.SettingsPatch) (model.Settings, error) {
	args := m.Called(ctx, userID, patch)
	return args.Get(0).(model.Settings), args.Error(1)
}

// AssistService is a mock of handler.AssistService.
type AssistService struct {
	mock.Mock
}

func NewAssistService(t testingT) *AssistService {
	m := &AssistService{}
	register(&m.Mock, t)
	return m
}

func (m *AssistService) Categorize(ctx context.Context, params model.CategorizeParams) (model.Categorization, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Categorization), args.Error(1)
}

func (m *AssistService) Briefing(ctx context.Context, params model.BriefingParams) (model.Briefing, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Briefing), args.Error(1)
}

// AdminService is a mock of the admin handler service and the admin gate.
type AdminService struct {
	mock.Mock
}

func NewAdminService(t testingT) *AdminService {
	m := &AdminService{}
	register(&m.Mock, t)
	return m
}

func (m *AdminService) RequireAdmin(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *AdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *AdminService) CreateUser(ctx context.Context, params model.CreateUserParams) (model.User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *AdminService) UpdateUser(ctx context.Context, params model.UpdateUserParams) error {
	return m.Called(ctx, params).Error(0)
}

// ExportService is a mock of handler.ExportService.
type ExportService struct {
	mock.Mock
}

func NewExportService(t testingT) *ExportService {
	m := &ExportService{}
	register(&m.Mock, t)
	return m
}

func (m *ExportService) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *ExportService) Open(ctx context.Context, userID uuid.UUID, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, userID, name)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

// Pinger is a mock of handler.Pinger.
type Pinger struct {
	mock.Mock
}

func NewPinger(t testingT) *Pinger {
	m := &Pinger{}
	register(&m.Mock, t)
	return m
}

func (m *Pinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// SecurityLayer is a mock of model.SecurityLayer.
type SecurityLayer struct {
	mock.Mock
}

func NewSecurityLayer(t testingT) *SecurityLayer {
	m := &SecurityLayer{}
	register(&m.Mock, t)
	return m
}

func (m *SecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	args := m.Called(protocol, addr)
	ln, _ := args.Get(0).(net.Listener)
	return ln, args.Error(1)
}
