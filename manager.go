package lockmail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ProtonMail/gluon/async"
	"github.com/go-resty/resty/v2"
)

// Manager holds the shared HTTP state used by all clients.
type Manager struct {
	rc *resty.Client

	errHandlers map[Code][]Handler
	handlerLock sync.RWMutex

	attPoolSize int

	panicHandler async.PanicHandler
}

func New(opts ...Option) *Manager {
	builder := newManagerBuilder()

	for _, opt := range opts {
		opt.config(builder)
	}

	return builder.build()
}

// NewClient returns a new client using the given session UID and access token.
func (m *Manager) NewClient(uid, acc, ref string, exp time.Time) *Client {
	return newClient(m, uid).withAuth(acc, ref, exp)
}

// AddErrorHandler registers a handler to be called whenever the API returns
// the given error code.
func (m *Manager) AddErrorHandler(code Code, handler Handler) {
	m.handlerLock.Lock()
	defer m.handlerLock.Unlock()

	m.errHandlers[code] = append(m.errHandlers[code], handler)
}

func (m *Manager) Close() {
	m.rc.GetClient().CloseIdleConnections()
}

func (m *Manager) r(ctx context.Context) *resty.Request {
	return m.rc.R().SetContext(ctx)
}

func (m *Manager) handleError(_ *resty.Request, err error) {
	apiErr := new(APIError)

	if !errors.As(err, &apiErr) {
		return
	}

	m.handlerLock.RLock()
	defer m.handlerLock.RUnlock()

	for _, handler := range m.errHandlers[apiErr.Code] {
		handler()
	}
}
