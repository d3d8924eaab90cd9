package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/windfall/vocal_service/internal/config"
	"github.com/windfall/vocal_service/internal/errors"
	httphandler "github.com/windfall/vocal_service/internal/handler/http"
	wshandler "github.com/windfall/vocal_service/internal/handler/ws"
	"github.com/windfall/vocal_service/internal/repository"
	"github.com/windfall/vocal_service/internal/service"
)

const testKey = "secret"

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		HTTPPort:           0,
		GRPCPort:           0,
		Environment:        "test",
		APIKeys:            []string{testKey},
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type", "X-API-Key"},
	}
}

func testHandlers(log zerolog.Logger) Handlers {
	catalog := repository.NewDefaultSpeechCatalog()
	analysis := service.NewAnalysisService(nil, log)
	patterns := service.NewPatternAnalyzer(nil, log)
	sessions := service.NewSessionService(repository.NewMemorySessionRepository(), analysis, nil, time.Second, log)
	conversations := service.NewConversationService(
		service.NewResponseGenerator(nil, log), patterns, repository.NewMemoryHistoryRepository(), time.Second, log)

	return Handlers{
		Health: httphandler.NewHealthHandler(httphandler.ServiceStatus{Environment: "test"}),
		Coaching: httphandler.NewCoachingHandler(log, analysis, patterns,
			service.NewComparisonService(catalog, analysis, nil, log), catalog, sessions),
		Conversation: httphandler.NewConversationHandler(log, conversations),
		Speech: httphandler.NewSpeechHandler(log,
			service.NewTranscriptionService(nil, nil, log),
			service.NewVoiceService(nil, nil, nil, "", time.Minute, log)),
		Session:   httphandler.NewSessionHandler(log, sessions),
		Meeting:   httphandler.NewMeetingHandler(log, service.NewMeetingService(log)),
		WebSocket: wshandler.NewHandler(log, conversations, analysis),
	}
}

func newTestRouter(t *testing.T) (http.Handler, *WebSocketHub) {
	t.Helper()
	log := zerolog.Nop()
	cfg := testConfig()
	hub := NewWebSocketHub(log, cfg.CORSAllowedOrigins)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return NewRouter(cfg, log, hub, testHandlers(log)), hub
}

func TestRouter_HealthIsPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/ready", "/live"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_APIRequiresKey(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-API-Key", testKey)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", rec.Code)
	}

	var body struct {
		Success bool                      `json:"success"`
		Data    httphandler.ServiceStatus `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if !body.Success || body.Data.Service != httphandler.ServiceName {
		t.Errorf("unexpected status body %+v", body)
	}
}

func TestRouter_RoutesAreMounted(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, "/api/analyze", `{"text":"hello there everyone"}`, http.StatusOK},
		{http.MethodPost, "/api/analyze", `{"text":"short"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/compare-with-pro", `{"text":"leadership matters to me","professional_id":"ted_002"}`, http.StatusOK},
		{http.MethodGet, "/api/professional-speeches", "", http.StatusOK},
		{http.MethodGet, "/api/professional-speeches/nope", "", http.StatusNotFound},
		{http.MethodGet, "/api/conversation/topics", "", http.StatusOK},
		{http.MethodGet, "/api/conversation/abc/history", "", http.StatusOK},
		{http.MethodGet, "/api/voices", "", http.StatusOK},
		{http.MethodGet, "/api/statistics", "", http.StatusOK},
		{http.MethodGet, "/api/sessions/missing", "", http.StatusNotFound},
		{http.MethodGet, "/api/meetings/templates", "", http.StatusOK},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		var req *http.Request
		if tc.body != "" {
			req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(tc.method, tc.path, nil)
		}
		req.Header.Set("X-API-Key", testKey)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s %s: expected %d, got %d (%s)", tc.method, tc.path, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestWebSocket_PingAndChat(t *testing.T) {
	router, hub := newTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/conversation?api_key=" + testKey
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	send := func(msg string) wshandler.Response {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var resp wshandler.Response
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("read failed: %v", err)
		}
		return resp
	}

	if resp := send(`{"type":"ping","payload":{}}`); resp.Type != wshandler.TypePong {
		t.Errorf("expected pong, got %s", resp.Type)
	}
	if resp := send(`{"type":"chat","payload":{"message":"I get so nervous"}}`); resp.Type != wshandler.TypeReply {
		t.Errorf("expected reply, got %s", resp.Type)
	}
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 connected client, got %d", hub.ClientCount())
	}
}

func TestWebSocket_RejectsMissingKey(t *testing.T) {
	router, _ := newTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/conversation"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail without key")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", resp)
	}
}

func TestOriginAllowed(t *testing.T) {
	cases := []struct {
		origin  string
		allowed []string
		want    bool
	}{
		{"", []string{"https://app.example.com"}, true},
		{"https://app.example.com", []string{"https://app.example.com"}, true},
		{"https://evil.example.com", []string{"https://app.example.com"}, false},
		{"https://any.example.com", []string{"*"}, true},
		{"https://any.example.com", nil, true},
	}
	for _, tc := range cases {
		if got := originAllowed(tc.origin, tc.allowed); got != tc.want {
			t.Errorf("originAllowed(%q, %v): expected %v, got %v", tc.origin, tc.allowed, tc.want, got)
		}
	}
}

func TestGRPCHealth(t *testing.T) {
	srv := NewGRPCServer(testConfig(), zerolog.Nop())

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	go func() { _ = srv.Serve(lis) }()
	defer srv.GracefulStop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := healthpb.NewHealthClient(conn)

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: GRPCServiceName})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING before SetServing, got %s", resp.GetStatus())
	}

	srv.SetServing(true)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: GRPCServiceName})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %s", resp.GetStatus())
	}

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound for unknown service, got %v", err)
	}
}

func TestToStatus(t *testing.T) {
	if toStatus(nil) != nil {
		t.Error("expected nil for nil error")
	}
	err := toStatus(errors.Validation("bad input"))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %s", status.Code(err))
	}
}
