package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/bradenaw/juniper/xslices"
	"github.com/gin-gonic/gin"
)

// Call is one request/response pair observed by the server.
type Call struct {
	URL    *url.URL
	Method string
	Status int

	RequestHeader http.Header
	RequestBody   []byte

	ResponseHeader http.Header
	ResponseBody   []byte
}

type callWatcher struct {
	fn    func(Call)
	paths []string
}

func newCallWatcher(fn func(Call), paths ...string) callWatcher {
	return callWatcher{fn: fn, paths: paths}
}

func (watcher callWatcher) isWatching(path string) bool {
	if len(watcher.paths) == 0 {
		return true
	}

	return xslices.Index(watcher.paths, path) >= 0
}

func (watcher callWatcher) publish(call Call) {
	watcher.fn(call)
}

func (s *Server) logCalls() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := io.ReadAll(c.Request.Body)
		if err != nil {
			panic(err)
		} else {
			c.Request.Body = io.NopCloser(bytes.NewReader(req))
		}

		res, err := newBodyWriter(c.Writer)
		if err != nil {
			panic(err)
		} else {
			c.Writer = res
		}

		c.Next()

		s.callWatchersLock.RLock()
		defer s.callWatchersLock.RUnlock()

		for _, call := range s.callWatchers {
			if call.isWatching(c.Request.URL.Path) {
				call.publish(Call{
					URL:    c.Request.URL,
					Method: c.Request.Method,
					Status: c.Writer.Status(),

					RequestHeader: c.Request.Header,
					RequestBody:   req,

					ResponseHeader: c.Writer.Header(),
					ResponseBody:   res.bytes(),
				})
			}
		}
	}
}

func (s *Server) applyStatusHooks() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.statusHooksLock.RLock()
		defer s.statusHooksLock.RUnlock()

		for _, hook := range s.statusHooks {
			if status, ok := hook(c.Request); ok {
				c.AbortWithStatus(status)
				return
			}
		}
	}
}

type bodyWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func newBodyWriter(w gin.ResponseWriter) (*bodyWriter, error) {
	if w == nil {
		return nil, errors.New("response writer is nil")
	}

	return &bodyWriter{
		ResponseWriter: w,

		buf: &bytes.Buffer{},
	}, nil
}

func (w bodyWriter) Write(b []byte) (int, error) {
	if n, err := w.buf.Write(b); err != nil {
		return n, err
	}

	return w.ResponseWriter.Write(b)
}

func (w bodyWriter) bytes() []byte {
	return w.buf.Bytes()
}
