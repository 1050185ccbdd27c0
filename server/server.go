package server

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/gin-gonic/gin"
	"github.com/lockmail/go-lockmail-api"
	"github.com/lockmail/go-lockmail-api/server/backend"
)

type Server struct {
	// r is the gin router.
	r *gin.Engine

	// s is the underlying server.
	s *httptest.Server

	// b is the server backend, which manages accounts, messages, attachments, etc.
	b *backend.Backend

	// callWatchers records calls received by the server.
	callWatchers     []callWatcher
	callWatchersLock sync.RWMutex

	// statusHooks can force the status code of a response.
	statusHooks     []StatusHook
	statusHooksLock sync.RWMutex

	// minAppVersion is the minimum app version that the server will accept.
	minAppVersion *semver.Version
}

// StatusHook can inspect a request and force a response status for it.
type StatusHook func(*http.Request) (int, bool)

func New(opts ...Option) *Server {
	builder := newServerBuilder()

	for _, opt := range opts {
		opt.config(builder)
	}

	return builder.build()
}

func (s *Server) GetHostURL() string {
	return s.s.URL
}

func (s *Server) AddCallWatcher(fn func(Call), paths ...string) {
	s.callWatchersLock.Lock()
	defer s.callWatchersLock.Unlock()

	s.callWatchers = append(s.callWatchers, newCallWatcher(fn, paths...))
}

func (s *Server) AddStatusHook(fn StatusHook) {
	s.statusHooksLock.Lock()
	defer s.statusHooksLock.Unlock()

	s.statusHooks = append(s.statusHooks, fn)
}

// CreateUser creates an account with one address and returns the user and
// address IDs.
func (s *Server) CreateUser(username, email string, password []byte) (string, string, error) {
	userID, err := s.b.CreateUser(username, password)
	if err != nil {
		return "", "", err
	}

	addrID, err := s.b.CreateAddress(userID, email, password)
	if err != nil {
		return "", "", err
	}

	return userID, addrID, nil
}

func (s *Server) RemoveUser(userID string) error {
	return s.b.RemoveUser(userID)
}

// CreateSession issues a session for the given user and returns the session
// UID and access token.
func (s *Server) CreateSession(userID string) (string, string, error) {
	return s.b.CreateSession(userID)
}

func (s *Server) CreateAddress(userID, email string, password []byte) (string, error) {
	return s.b.CreateAddress(userID, email, password)
}

// RegisterExternalAddress teaches the key directory about an address hosted
// elsewhere, with the given armored public key.
func (s *Server) RegisterExternalAddress(email, armPubKey string) {
	s.b.RegisterExternalAddress(email, armPubKey)
}

func (s *Server) CreateContact(userID, name string, cards lockmail.Cards) (string, error) {
	return s.b.CreateContact(userID, name, cards)
}

// GetMessagePackages returns the packages a message was sent with, for
// asserting on the exact key material that went out.
func (s *Server) GetMessagePackages(messageID string) ([]*lockmail.MessagePackage, error) {
	return s.b.GetMessagePackages(messageID)
}

func (s *Server) SetAuthLife(authLife time.Duration) {
	s.b.SetAuthLife(authLife)
}

func (s *Server) SetMinAppVersion(minAppVersion *semver.Version) {
	s.minAppVersion = minAppVersion
}

func (s *Server) Close() {
	s.s.Close()
}
