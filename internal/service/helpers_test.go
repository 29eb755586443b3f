package service

import (
	"testing"
	"time"

	"github.com/dtroode/taskflow-server/internal/mocks"
	"github.com/dtroode/taskflow-server/internal/pin"
	"github.com/dtroode/taskflow-server/internal/testutil"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func ptr[T any](v T) *T { return &v }

func newTestSession(t *testing.T) (*Session, *mocks.SessionStore, *mocks.TokenGenerator) {
	store := mocks.NewSessionStore(t)
	tokens := mocks.NewTokenGenerator(t)
	s := NewSession(store, tokens, time.Hour, testutil.MakeNoopLogger())
	s.now = fixedClock
	return s, store, tokens
}

type authFixture struct {
	auth     *Auth
	users    *mocks.UserStore
	sessions *mocks.SessionStore
	tokens   *mocks.TokenGenerator
	hasher   *pin.Hasher
}

func newAuthFixture(t *testing.T) authFixture {
	session, sessions, tokens := newTestSession(t)
	users := mocks.NewUserStore(t)
	hasher := pin.NewHasher(1000)
	a := NewAuth(users, session, hasher, "owner", testutil.MakeNoopLogger())
	a.now = fixedClock
	return authFixture{auth: a, users: users, sessions: sessions, tokens: tokens, hasher: hasher}
}
