package inttest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dhis2-sre/im-calendar/internal/handler"
	"github.com/dhis2-sre/im-calendar/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// SetupHTTPServer creates an HTTP server using Gin. Routes are registered by f on the router group
// of the engine. An HTTP client is returned to interact with the created server.
func SetupHTTPServer(t *testing.T, f func(router gin.IRouter)) *HTTPClient {
	t.Helper()

	err := handler.RegisterValidation()
	require.NoError(t, err, "failed to register validation")
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, router := server.GetEngine(logger, "", []string{"*"})
	f(router)

	srv := httptest.NewServer(engine.Handler())
	client := srv.Client()
	t.Cleanup(func() {
		client.CloseIdleConnections()
		srv.Close()
	})

	return &HTTPClient{Client: client, ServerURL: srv.URL}
}

// HTTPClient allows making requests in a way most of our handlers would expect them. It does so by
// wrapping an http.Client. Access the actual http.Client for specific use cases where our defaults don't
// work.
type HTTPClient struct {
	Client    *http.Client
	ServerURL string
}

// WithHeader adds a header with the given key and value to HTTP request headers.
func WithHeader(key string, value string) func(http.Header) {
	return func(header http.Header) {
		header.Add(key, value)
	}
}

// WithAuthToken adds an authorization header with the given bearer token to HTTP request headers.
func WithAuthToken(token string) func(http.Header) {
	return func(header http.Header) {
		header.Add("Authorization", "Bearer "+token)
	}
}

// Get sends an HTTP GET request to given path. Optional headers are applied to the request. The
// response body is read in full and returned as is. Failure to read or close the HTTP response body
// and HTTP status other than 200 will fail the test associated with t.
func (hc *HTTPClient) Get(t *testing.T, path string, headers ...func(http.Header)) []byte {
	t.Helper()
	return hc.Do(t, http.MethodGet, path, nil, http.StatusOK, headers...)
}

// Post sends an HTTP POST request to given path. Optional headers are applied to the request. The
// response body is read in full and returned as is. Failure to read or close the HTTP response body
// and HTTP status other than 201 will fail the test associated with t.
func (hc *HTTPClient) Post(t *testing.T, path string, requestBody io.Reader, headers ...func(http.Header)) []byte {
	t.Helper()
	return hc.Do(t, http.MethodPost, path, requestBody, http.StatusCreated, headers...)
}

// Do sends an HTTP request of given method to given path. Optional headers are applied to the
// request. The response body is read in full and returned as is. Failure to read or close the HTTP
// response body and HTTP status other than given expectedStatus will fail the test associated with t.
func (hc *HTTPClient) Do(t *testing.T, method, path string, requestBody io.Reader, expectedStatus int, headers ...func(http.Header)) []byte {
	t.Helper()

	req := hc.newRequest(t, method, path, requestBody, headers...)
	res := hc.do(t, req)

	errMsg := httpClientErrMessage(method, path)
	defer func() {
		require.NoError(t, res.Body.Close(), errMsg+": failed to close HTTP response body")
	}()
	require.Equal(t, expectedStatus, res.StatusCode, errMsg+": HTTP status mismatch")
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err, errMsg+": failed to read HTTP response body")
	return body
}

// do delegates the request to the underlying HTTP client.
func (hc *HTTPClient) do(t *testing.T, req *http.Request) *http.Response {
	resp, err := hc.Client.Do(req)
	require.NoError(t, err, httpClientErrMessage(req.Method, req.URL.Path)+": HTTP request failed")
	return resp
}

// GetJSON sends an HTTP GET request to given path. Optional headers are applied to the request. The
// response body is unmarshaled as JSON into given responseBody. Failure to read or close the HTTP
// response body and HTTP status other than 200 will fail the test associated with t.
func (hc *HTTPClient) GetJSON(t *testing.T, path string, responseBody any, headers ...func(http.Header)) {
	t.Helper()

	body := hc.Get(t, path, headers...)

	err := json.Unmarshal(body, &responseBody)
	errMsg := httpClientErrMessage(http.MethodGet, path)
	require.NoError(t, err, errMsg+": failed to unmarshal response body")
}

// PostJSON sends an HTTP POST request to given path. Optional headers are applied to the request. The
// optional requestBody is assumed to be JSON. The response body is unmarshaled as JSON into given
// responseBody. Failure to read or close the HTTP response body and HTTP status other than 201
// will fail the test associated with t.
func (hc *HTTPClient) PostJSON(t *testing.T, path string, requestBody io.Reader, responseBody any, headers ...func(http.Header)) {
	t.Helper()

	if requestBody != nil {
		headers = append(headers, WithHeader("Content-Type", "application/json"))
	}
	body := hc.Post(t, path, requestBody, headers...)

	err := json.Unmarshal(body, &responseBody)
	errMsg := httpClientErrMessage(http.MethodPost, path)
	require.NoError(t, err, errMsg+": failed to unmarshal response body")
}

// Dial opens a websocket connection to the server at given path. The connection is closed when the
// test finishes. Failing to connect will fail the test associated with t.
func (hc *HTTPClient) Dial(t *testing.T, path string, headers ...func(http.Header)) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	for _, f := range headers {
		f(header)
	}

	url := "ws" + strings.TrimPrefix(hc.ServerURL, "http") + path
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, res, err := dialer.Dial(url, header)
	require.NoError(t, err, httpClientErrMessage(http.MethodGet, path)+": failed to dial websocket")
	_ = res.Body.Close()
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

func httpClientErrMessage(method, path string) string {
	return fmt.Sprintf("failed %s %q", method, path)
}

// newRequest creates a new HTTP request to the server at given path after applying any optional
// headers.
func (hc *HTTPClient) newRequest(t *testing.T, method, path string, body io.Reader, headers ...func(http.Header)) *http.Request {
	t.Helper()

	req, err := http.NewRequest(method, hc.ServerURL+path, body)
	require.NoError(t, err, httpClientErrMessage(method, path)+": failed to create request")

	for _, f := range headers {
		f(req.Header)
	}

	return req
}
