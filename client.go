package lockmail

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bradenaw/juniper/xsync"
	"github.com/go-resty/resty/v2"
)

// clientID is a unique identifier for a client.
var clientID uint64

// Handler is a generic function that can be registered for a certain event
// (e.g. deauth, API code).
type Handler func()

// Client is an authorized API client.
type Client struct {
	m *Manager

	// clientID is this client's unique ID.
	clientID uint64

	// attPool is the (lazy-initialized) pool of goroutines that fetch attachments.
	attPool func() *Pool[string, []byte]

	// sending records message IDs with an in-flight send attempt; at most one
	// send may be in flight per message.
	sending     map[string]struct{}
	sendingLock sync.Mutex

	uid      string
	acc      string
	ref      string
	exp      time.Time
	authLock sync.RWMutex

	deauthHandlers []Handler
	hookLock       sync.RWMutex

	deauthOnce sync.Once
}

func newClient(m *Manager, uid string) *Client {
	c := &Client{
		m:        m,
		uid:      uid,
		clientID: atomic.AddUint64(&clientID, 1),
		sending:  make(map[string]struct{}),
	}

	c.attPool = xsync.Lazy(func() *Pool[string, []byte] {
		return NewPool(m.attPoolSize, c.getAttachment)
	})

	return c
}

func (c *Client) AddDeauthHandler(handler Handler) {
	c.hookLock.Lock()
	defer c.hookLock.Unlock()

	c.deauthHandlers = append(c.deauthHandlers, handler)
}

func (c *Client) Close() {
	c.attPool().Done()

	c.authLock.Lock()
	defer c.authLock.Unlock()

	c.uid = ""
	c.acc = ""
	c.ref = ""
	c.exp = time.Time{}

	c.hookLock.Lock()
	defer c.hookLock.Unlock()

	c.deauthHandlers = nil
}

func (c *Client) withAuth(acc, ref string, exp time.Time) *Client {
	c.acc = acc
	c.ref = ref
	c.exp = exp

	return c
}

func (c *Client) do(ctx context.Context, fn func(*resty.Request) (*resty.Response, error)) error {
	if _, err := c.doRes(ctx, fn); err != nil {
		return err
	}

	return nil
}

func (c *Client) doRes(ctx context.Context, fn func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	c.hookLock.RLock()
	defer c.hookLock.RUnlock()

	req, err := c.newReq(ctx)
	if err != nil {
		return nil, err
	}

	// Perform the request.
	res, err := fn(req)

	// If we receive no response, we can't do anything.
	if res.RawResponse == nil {
		return nil, fmt.Errorf("received no response from API: %w", err)
	}

	// If we receive a 401, notify deauth handlers.
	if res.StatusCode() == http.StatusUnauthorized {
		c.deauthOnce.Do(func() {
			for _, handler := range c.deauthHandlers {
				handler()
			}
		})
	}

	return res, err
}

func (c *Client) newReq(ctx context.Context) (*resty.Request, error) {
	c.authLock.Lock()
	defer c.authLock.Unlock()

	r := c.m.r(ctx)

	if c.uid != "" {
		r.SetHeader("x-lm-uid", c.uid)
	}

	if c.acc != "" {
		r.SetAuthToken(c.acc)
	}

	return r, nil
}
