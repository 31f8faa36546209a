package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

const (
	testReqID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	otherAddr = "0xde709f2102306220921060314715629080e2fb77"
)

// asCaller stands in for JWTAuth; an X-Test-Caller header picks the caller.
func asCaller(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		switch h := c.Request().Header.Get("X-Test-Caller"); h {
		case "none":
		case "":
			c.Set(callerKey, testCaller)
		default:
			c.Set(callerKey, h)
		}
		return next(c)
	}
}

// helper: new Echo with the middleware and a simple route
func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	log, _ := logtest.NewNullLogger()
	e.Use(asCaller, IdempotencyMiddleware(rdb, ttl, log))
	e.POST("/loans", handler)
	e.GET("/loans", handler) // for non-mutating bypass test
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderRequestID: testReqID,
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// simple handler to exercise respRecorder capture & saveFinal
func okCreatedHandler(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/loans", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okCreatedHandler)

	cases := []struct {
		name string
		hdr  map[string]string
		want int
	}{
		{"missing Ax-Request-Id", map[string]string{HeaderRequestAt: validHeaders()[HeaderRequestAt]}, http.StatusBadRequest},
		{"invalid Ax-Request-Id", map[string]string{HeaderRequestID: "NOT-VALID", HeaderRequestAt: validHeaders()[HeaderRequestAt]}, http.StatusBadRequest},
		{"invalid Ax-Request-At", map[string]string{HeaderRequestID: testReqID, HeaderRequestAt: "not-a-time"}, http.StatusBadRequest},
		{"skewed Ax-Request-At", map[string]string{
			HeaderRequestID: testReqID,
			HeaderRequestAt: time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339),
		}, http.StatusBadRequest},
		{"no caller", map[string]string{
			HeaderRequestID: testReqID,
			HeaderRequestAt: validHeaders()[HeaderRequestAt],
			"X-Test-Caller": "none",
		}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]int{"x": 1}), tc.hdr)
		if rec.Code != tc.want {
			t.Fatalf("%s => want %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	var calls int32
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		atomic.AddInt32(&calls, 1)
		return okCreatedHandler(c)
	})

	h := validHeaders()
	rec1 := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]any{"amount": 500000}), h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	// same headers & body -> replay stored response without running the handler
	rec2 := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]any{"amount": 500000}), h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if rec2.Header().Get("Ax-Idempotent-Replay") != "true" {
		t.Fatalf("replay header missing")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("handler ran %d times, want 1", got)
	}
}

func Test_KeyScopedByCaller(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	var calls int32
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		atomic.AddInt32(&calls, 1)
		return okCreatedHandler(c)
	})

	h := validHeaders()
	doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]any{"amount": 1}), h)
	h["X-Test-Caller"] = otherAddr
	rec := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]any{"amount": 1}), h)
	if rec.Code != http.StatusCreated || rec.Header().Get("Ax-Idempotent-Replay") != "" {
		t.Fatalf("second caller should not replay: code=%d", rec.Code)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("handler ran %d times, want 2", got)
	}
}

func Test_ErrorResponsesAreReplayed(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		return c.JSON(http.StatusConflict, map[string]string{"error": "already has active loan"})
	})

	h := validHeaders()
	rec1 := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]any{"amount": 1}), h)
	rec2 := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]any{"amount": 1}), h)
	if rec1.Code != http.StatusConflict || rec2.Code != http.StatusConflict || rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("error replay mismatch: %d %q / %d %q", rec1.Code, rec1.Body, rec2.Code, rec2.Body)
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	body := []byte(`{"x":1}`)

	// Seed provisional "in-progress" entry (so SetNX will fail and loadEntry sees InProgress=true)
	key := buildKey(http.MethodPost, "/loans", testCaller, testReqID)
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, "/loans", bytes.NewReader(body), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	body1 := []byte(`{"x":1}`)
	body2 := []byte(`{"x":2}`)

	key := buildKey(http.MethodPost, "/loans", testCaller, testReqID)
	final := idempEntry{
		InProgress:  false,
		Code:        http.StatusCreated,
		Body:        []byte(`{"ok":true}`),
		BodySHA256:  bodyHash(body1),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, time.Minute*5); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, "/loans", bytes.NewReader(body2), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	// closed address → SetNX error
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := setupEcho(rdb, time.Minute, okCreatedHandler)

	rec := doReq(t, e, http.MethodPost, "/loans", bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}
