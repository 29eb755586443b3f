package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/taskflow-server/internal/model"
)

var (
	_ model.Completer      = (*Completer)(nil)
	_ model.Storage        = (*Storage)(nil)
	_ model.TokenGenerator = (*TokenGenerator)(nil)
)

// Completer is a mock of model.Completer.
type Completer struct {
	mock.Mock
}

func NewCompleter(t testingT) *Completer {
	m := &Completer{}
	register(&m.Mock, t)
	return m
}

func (m *Completer) Complete(ctx context.Context, req model.CompletionRequest) (model.CompletionResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.CompletionResult), args.Error(1)
}

// Storage is a mock of model.Storage.
type Storage struct {
	mock.Mock
}

func NewStorage(t testingT) *Storage {
	m := &Storage{}
	register(&m.Mock, t)
	return m
}

func (m *Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, reader, size, contentType).Error(0)
}

func (m *Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *Storage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// TokenGenerator is a mock of model.TokenGenerator.
type TokenGenerator struct {
	mock.Mock
}

func NewTokenGenerator(t testingT) *TokenGenerator {
	m := &TokenGenerator{}
	register(&m.Mock, t)
	return m
}

func (m *TokenGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}
