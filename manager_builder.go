package lockmail

import (
	"net/http"
	"time"

	"github.com/ProtonMail/gluon/async"
	"github.com/go-resty/resty/v2"
)

const (
	// DefaultHostURL is the default host of the API.
	DefaultHostURL = "https://mail.lockmail.io/api"

	// DefaultAppVersion is the default app version used to communicate with
	// the API. This must be changed (using the WithAppVersion option) for
	// production use.
	DefaultAppVersion = "go-lockmail-api"

	// defaultAttPoolSize is the default number of concurrent attachment fetches.
	defaultAttPoolSize = 8
)

// Option configures the manager.
type Option interface {
	config(*managerBuilder)
}

type managerBuilder struct {
	hostURL      string
	appVersion   string
	transport    http.RoundTripper
	cookieJar    http.CookieJar
	retryCount   int
	attPoolSize  int
	logger       resty.Logger
	debug        bool
	panicHandler async.PanicHandler
}

func newManagerBuilder() *managerBuilder {
	return &managerBuilder{
		hostURL:      DefaultHostURL,
		appVersion:   DefaultAppVersion,
		transport:    http.DefaultTransport,
		cookieJar:    nil,
		retryCount:   3,
		attPoolSize:  defaultAttPoolSize,
		logger:       nil,
		debug:        false,
		panicHandler: async.NoopPanicHandler{},
	}
}

func (builder *managerBuilder) build() *Manager {
	m := &Manager{
		rc: resty.New(),

		errHandlers: make(map[Code][]Handler),

		attPoolSize: builder.attPoolSize,

		panicHandler: builder.panicHandler,
	}

	// Set the API host.
	m.rc.SetBaseURL(builder.hostURL)

	// Set the transport.
	m.rc.SetTransport(builder.transport)

	// Set the cookie jar.
	m.rc.SetCookieJar(builder.cookieJar)

	// Set the logger.
	if builder.logger != nil {
		m.rc.SetLogger(builder.logger)
	}

	// Set the debug flag.
	m.rc.SetDebug(builder.debug)

	// Set app version in header.
	m.rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("x-lm-appversion", builder.appVersion)
		return nil
	})

	// Set middleware.
	m.rc.OnAfterResponse(catchAPIError)
	m.rc.OnAfterResponse(updateTime)
	m.rc.OnError(m.handleError)

	// Configure retry mechanism.
	m.rc.SetRetryCount(builder.retryCount)
	m.rc.SetRetryMaxWaitTime(time.Minute)
	m.rc.AddRetryCondition(catchTooManyRequests)
	m.rc.AddRetryCondition(catchDialError)
	m.rc.SetRetryAfter(catchRetryAfter)

	// Set the data type of API errors.
	m.rc.SetError(&APIError{})

	return m
}

type withHostURL struct {
	hostURL string
}

func (opt withHostURL) config(builder *managerBuilder) {
	builder.hostURL = opt.hostURL
}

// WithHostURL sets the API host to use.
func WithHostURL(hostURL string) Option {
	return withHostURL{hostURL: hostURL}
}

type withAppVersion struct {
	appVersion string
}

func (opt withAppVersion) config(builder *managerBuilder) {
	builder.appVersion = opt.appVersion
}

// WithAppVersion sets the app version reported to the API.
func WithAppVersion(appVersion string) Option {
	return withAppVersion{appVersion: appVersion}
}

type withTransport struct {
	transport http.RoundTripper
}

func (opt withTransport) config(builder *managerBuilder) {
	builder.transport = opt.transport
}

// WithTransport sets the HTTP transport to use.
func WithTransport(transport http.RoundTripper) Option {
	return withTransport{transport: transport}
}

type withCookieJar struct {
	jar http.CookieJar
}

func (opt withCookieJar) config(builder *managerBuilder) {
	builder.cookieJar = opt.jar
}

// WithCookieJar sets the cookie jar to use.
func WithCookieJar(jar http.CookieJar) Option {
	return withCookieJar{jar: jar}
}

type withRetryCount struct {
	retryCount int
}

func (opt withRetryCount) config(builder *managerBuilder) {
	builder.retryCount = opt.retryCount
}

// WithRetryCount sets the number of times a request is retried.
func WithRetryCount(retryCount int) Option {
	return withRetryCount{retryCount: retryCount}
}

type withAttPoolSize struct {
	attPoolSize int
}

func (opt withAttPoolSize) config(builder *managerBuilder) {
	builder.attPoolSize = opt.attPoolSize
}

// WithAttPoolSize sets the number of concurrent attachment fetches per client.
func WithAttPoolSize(attPoolSize int) Option {
	return withAttPoolSize{attPoolSize: attPoolSize}
}

type withLogger struct {
	logger resty.Logger
}

func (opt withLogger) config(builder *managerBuilder) {
	builder.logger = opt.logger
}

// WithLogger sets the logger used by the underlying HTTP client.
func WithLogger(logger resty.Logger) Option {
	return withLogger{logger: logger}
}

type withDebug struct {
	debug bool
}

func (opt withDebug) config(builder *managerBuilder) {
	builder.debug = opt.debug
}

// WithDebug enables HTTP debug logging.
func WithDebug(debug bool) Option {
	return withDebug{debug: debug}
}

type withPanicHandler struct {
	panicHandler async.PanicHandler
}

func (opt withPanicHandler) config(builder *managerBuilder) {
	builder.panicHandler = opt.panicHandler
}

// WithPanicHandler sets the handler called when a background goroutine panics.
func WithPanicHandler(panicHandler async.PanicHandler) Option {
	return withPanicHandler{panicHandler: panicHandler}
}
