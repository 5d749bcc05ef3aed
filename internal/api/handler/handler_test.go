package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/dto"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/service"
	pkgerrors "github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/errors"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/jwt"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult    *dto.TokenResponse
	loginErr       error
	registerResult *dto.TokenResponse
	registerErr    error
	refreshResult  *dto.TokenResponse
	refreshErr     error
	logoutErr      error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.TokenResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}

// ── Mock PaymentService ──

type mockPaymentService struct {
	webhookResult *dto.WebhookPaymentResponse
	webhookErr    error
	manualResult  *dto.ManualPaymentResponse
	manualErr     error
	pendingList   []dto.PaymentResponse
	pendingTotal  int64
	pendingErr    error
	getResult     *dto.PaymentResponse
	getErr        error
}

func (m *mockPaymentService) RecordWebhookPayment(_ context.Context, _ *dto.WebhookPaymentRequest) (*dto.WebhookPaymentResponse, error) {
	return m.webhookResult, m.webhookErr
}
func (m *mockPaymentService) RecordManualPayment(_ context.Context, _ *dto.ManualPaymentRequest, _ string) (*dto.ManualPaymentResponse, error) {
	return m.manualResult, m.manualErr
}
func (m *mockPaymentService) ListPending(_ context.Context, _, _ int) ([]dto.PaymentResponse, int64, error) {
	return m.pendingList, m.pendingTotal, m.pendingErr
}
func (m *mockPaymentService) GetPayment(_ context.Context, _ string) (*dto.PaymentResponse, error) {
	return m.getResult, m.getErr
}

// ── Mock ApprovalService ──

type mockApprovalService struct {
	approveResult *dto.ApprovalResponse
	approveErr    error
	rejectResult  *dto.ApprovalResponse
	rejectErr     error
	batchResult   *dto.BatchApproveResponse
	batchErr      error
	logsResult    []dto.AuditLogResponse
	logsTotal     int64
	logsErr       error
}

func (m *mockApprovalService) ApprovePayment(_ context.Context, _, _, _ string) (*dto.ApprovalResponse, error) {
	return m.approveResult, m.approveErr
}
func (m *mockApprovalService) RejectPayment(_ context.Context, _, _, _ string) (*dto.ApprovalResponse, error) {
	return m.rejectResult, m.rejectErr
}
func (m *mockApprovalService) BatchApprove(_ context.Context, _ []string, _, _ string) (*dto.BatchApproveResponse, error) {
	return m.batchResult, m.batchErr
}
func (m *mockApprovalService) ListAuditLogs(_ context.Context, _, _ int) ([]dto.AuditLogResponse, int64, error) {
	return m.logsResult, m.logsTotal, m.logsErr
}

// ── Mock EventService ──

type mockEventService struct {
	createResult   *dto.EventResponse
	createErr      error
	updateResult   *dto.EventResponse
	updateErr      error
	getResult      *dto.EventResponse
	getErr         error
	listResult     []dto.EventResponse
	listTotal      int64
	listErr        error
	joinResult     *dto.ReservationResponse
	joinErr        error
	releaseErr     error
	capacityResult *dto.CapacityResponse
	capacityErr    error
	myResult       []dto.ReservationResponse
	myErr          error
	icsResult      string
	icsErr         error
}

func (m *mockEventService) CreateEvent(_ context.Context, _ *dto.CreateEventRequest, _ string) (*dto.EventResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockEventService) UpdateEvent(_ context.Context, _ string, _ *dto.UpdateEventRequest, _ string) (*dto.EventResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockEventService) GetEvent(_ context.Context, _ string) (*dto.EventResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockEventService) ListEvents(_ context.Context, _, _ int) ([]dto.EventResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockEventService) JoinEvent(_ context.Context, _, _ string) (*dto.ReservationResponse, error) {
	return m.joinResult, m.joinErr
}
func (m *mockEventService) ReleaseSlot(_ context.Context, _, _ string) error {
	return m.releaseErr
}
func (m *mockEventService) CheckCapacity(_ context.Context, _, _ string) (*dto.CapacityResponse, error) {
	return m.capacityResult, m.capacityErr
}
func (m *mockEventService) ListMyReservations(_ context.Context, _ string) ([]dto.ReservationResponse, error) {
	return m.myResult, m.myErr
}
func (m *mockEventService) MyCalendarICS(_ context.Context, _ string) (string, error) {
	return m.icsResult, m.icsErr
}

// ── Mock TicketService ──

type mockTicketService struct {
	issueResult *dto.TicketResponse
	issueErr    error
	listResult  []dto.ReservationResponse
	listErr     error
}

func (m *mockTicketService) IssueTicket(_ context.Context, _, _, _ string) (*dto.TicketResponse, error) {
	return m.issueResult, m.issueErr
}
func (m *mockTicketService) ListEventReservations(_ context.Context, _ string) ([]dto.ReservationResponse, error) {
	return m.listResult, m.listErr
}

// ── Mock LeaderboardService ──

type mockLeaderboardService struct {
	currentResult *dto.LeaderboardResponse
	currentErr    error
	freezeResult  *dto.LeaderboardResponse
	freezeErr     error
	frozenResult  *dto.LeaderboardResponse
	frozenErr     error
}

func (m *mockLeaderboardService) Current(_ context.Context) (*dto.LeaderboardResponse, error) {
	return m.currentResult, m.currentErr
}
func (m *mockLeaderboardService) Freeze(_ context.Context, _, _ string) (*dto.LeaderboardResponse, error) {
	return m.freezeResult, m.freezeErr
}
func (m *mockLeaderboardService) Frozen(_ context.Context, _ string) (*dto.LeaderboardResponse, error) {
	return m.frozenResult, m.frozenErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportLedger(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)
	return r, c, w
}

func setAuth(c *gin.Context) {
	c.Set("member_id", "11111111-1111-1111-1111-111111111111")
	c.Set("role", "admin")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func webhookPayload(eventType, reference string) dto.WebhookPaymentRequest {
	return dto.WebhookPaymentRequest{
		Type: eventType,
		Data: dto.WebhookPaymentData{
			ID:        "evt-001",
			Amount:    50000,
			Currency:  "ZAR",
			Reference: reference,
		},
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "a@example.com",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "a@example.com",
		Password: "wrong-password",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	mock := &mockAuthService{
		registerResult: &dto.TokenResponse{
			AccessToken: "test-access-token",
			ExpiresIn:   900,
		},
	}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name:     "新会员",
		Email:    "new@example.com",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	mock := &mockAuthService{registerErr: service.ErrEmailTaken}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name:     "重复邮箱",
		Email:    "a@example.com",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	mock := &mockAuthService{refreshErr: service.ErrInvalidRefresh}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{
		RefreshToken: "stale-refresh",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11003 {
		t.Errorf("expected error code 11003, got %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// PaymentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPaymentHandler_Webhook_Recorded(t *testing.T) {
	mock := &mockPaymentService{
		webhookResult: &dto.WebhookPaymentResponse{Status: "recorded", PaymentID: "payment-001"},
	}
	h := NewPaymentHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/payments/webhook",
		jsonBody(webhookPayload("payment succeeded", "GROOVE-550e8400-e29b-41d4-a716-446655440000")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/payments/webhook", h.Webhook)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

// 重放与被忽略的事件类型均返回 200：提供方不应重试
func TestPaymentHandler_Webhook_DuplicateAndIgnoredReturn200(t *testing.T) {
	for _, status := range []string{"duplicate", "ignored"} {
		t.Run(status, func(t *testing.T) {
			mock := &mockPaymentService{
				webhookResult: &dto.WebhookPaymentResponse{Status: status},
			}
			h := NewPaymentHandler(mock)

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/payments/webhook",
				jsonBody(webhookPayload("payment succeeded", "GROOVE-550e8400-e29b-41d4-a716-446655440000")))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/payments/webhook", h.Webhook)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", w.Code)
			}
		})
	}
}

func TestPaymentHandler_Webhook_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"BadReference", service.ErrReferenceFormat, 400, 12001},
		{"UnknownMember", service.ErrReferenceUnknown, 400, 12002},
		// 持久化失败返回 500，触发提供方重试
		{"PersistenceFailure", errors.New("db down"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockPaymentService{webhookErr: tt.err}
			h := NewPaymentHandler(mock)

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/payments/webhook",
				jsonBody(webhookPayload("payment succeeded", "not-a-groove-reference")))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/payments/webhook", h.Webhook)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestPaymentHandler_Webhook_BadJSON(t *testing.T) {
	mock := &mockPaymentService{}
	h := NewPaymentHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/payments/webhook", bytes.NewReader([]byte("bad")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/payments/webhook", h.Webhook)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPaymentHandler_CreateManualPayment_Success(t *testing.T) {
	mock := &mockPaymentService{
		manualResult: &dto.ManualPaymentResponse{OK: true},
	}
	h := NewPaymentHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/admin/payments/manual", jsonBody(dto.ManualPaymentRequest{
		TargetMemberID: "22222222-2222-2222-2222-222222222222",
		Amount:         50000,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/payments/manual", func(c *gin.Context) {
		setAuth(c)
		h.CreateManualPayment(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestPaymentHandler_CreateManualPayment_Unauthenticated(t *testing.T) {
	mock := &mockPaymentService{}
	h := NewPaymentHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/admin/payments/manual", jsonBody(dto.ManualPaymentRequest{
		TargetMemberID: "22222222-2222-2222-2222-222222222222",
		Amount:         50000,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/payments/manual", h.CreateManualPayment)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestPaymentHandler_GetPayment_NotFound(t *testing.T) {
	mock := &mockPaymentService{getErr: service.ErrPaymentNotFound}
	h := NewPaymentHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/admin/payments/payment-x", nil)

	r := gin.New()
	r.GET("/admin/payments/:id", h.GetPayment)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12003 {
		t.Errorf("expected error code 12003, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ApprovalHandler Tests
// ═══════════════════════════════════════════════════════════

func TestApprovalHandler_Approve_Success(t *testing.T) {
	mock := &mockApprovalService{
		approveResult: &dto.ApprovalResponse{},
	}
	h := NewApprovalHandler(mock)

	_, _, w := setupGin()
	// 审批请求体可为空
	req := httptest.NewRequest("POST", "/admin/payments/payment-1/approve", nil)

	r := gin.New()
	r.POST("/admin/payments/:id/approve", func(c *gin.Context) {
		setAuth(c)
		h.Approve(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestApprovalHandler_Approve_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrPaymentNotFound, 404, 12003},
		{"NotPending", service.ErrPaymentNotPending, 409, 12004},
		{"MemberGone", service.ErrMemberNotFound, 404, 11004},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockApprovalService{approveErr: tt.err}
			h := NewApprovalHandler(mock)

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/admin/payments/payment-1/approve", nil)

			r := gin.New()
			r.POST("/admin/payments/:id/approve", func(c *gin.Context) {
				setAuth(c)
				h.Approve(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestApprovalHandler_BatchApprove_Success(t *testing.T) {
	mock := &mockApprovalService{
		batchResult: &dto.BatchApproveResponse{Succeeded: 2, Failed: 1},
	}
	h := NewApprovalHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/admin/payments/batch-approve", jsonBody(dto.BatchApproveRequest{
		PaymentIDs: []string{
			"44444444-4444-4444-4444-444444444444",
			"55555555-5555-5555-5555-555555555555",
		},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/payments/batch-approve", func(c *gin.Context) {
		setAuth(c)
		h.BatchApprove(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestApprovalHandler_BatchApprove_EmptyIDs(t *testing.T) {
	mock := &mockApprovalService{}
	h := NewApprovalHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/admin/payments/batch-approve", jsonBody(dto.BatchApproveRequest{
		PaymentIDs: []string{},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/payments/batch-approve", func(c *gin.Context) {
		setAuth(c)
		h.BatchApprove(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// EventHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEventHandler_Join_Success(t *testing.T) {
	mock := &mockEventService{
		joinResult: &dto.ReservationResponse{
			ReservationID: "reservation-1",
			EventID:       "event-1",
			Active:        true,
		},
	}
	h := NewEventHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/events/event-1/join", nil)

	r := gin.New()
	r.POST("/events/:id/join", func(c *gin.Context) {
		setAuth(c)
		h.Join(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestEventHandler_Join_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"EventNotFound", service.ErrEventNotFound, 404, 13001},
		{"EventClosed", pkgerrors.ErrEventClosed, 409, 13002},
		{"CapacityExceeded", pkgerrors.ErrCapacityExceeded, 409, 13003},
		{"InsufficientSlots", pkgerrors.ErrInsufficientSlots, 409, 13004},
		{"MemberNotFound", service.ErrMemberNotFound, 404, 11004},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockEventService{joinErr: tt.err}
			h := NewEventHandler(mock)

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/events/event-1/join", nil)

			r := gin.New()
			r.POST("/events/:id/join", func(c *gin.Context) {
				setAuth(c)
				h.Join(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestEventHandler_Leave_Success(t *testing.T) {
	mock := &mockEventService{}
	h := NewEventHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("DELETE", "/events/event-1/join", nil)

	r := gin.New()
	r.DELETE("/events/:id/join", func(c *gin.Context) {
		setAuth(c)
		h.Leave(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestEventHandler_CreateEvent_BadStartsAt(t *testing.T) {
	mock := &mockEventService{createErr: service.ErrInvalidStartsAt}
	h := NewEventHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/admin/events", jsonBody(dto.CreateEventRequest{
		Name:     "音乐节",
		StartsAt: "明天晚上",
		Capacity: 100,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/events", func(c *gin.Context) {
		setAuth(c)
		h.CreateEvent(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13005 {
		t.Errorf("expected error code 13005, got %d", resp.Code)
	}
}

func TestEventHandler_MyCalendar_ContentType(t *testing.T) {
	mock := &mockEventService{
		icsResult: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
	}
	h := NewEventHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/members/me/calendar.ics", nil)

	r := gin.New()
	r.GET("/members/me/calendar.ics", func(c *gin.Context) {
		setAuth(c)
		h.MyCalendar(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "text/calendar; charset=utf-8" {
		t.Errorf("unexpected content type: %s", ct)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("BEGIN:VCALENDAR")) {
		t.Error("expected iCalendar body")
	}
}

// ═══════════════════════════════════════════════════════════
// TicketHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTicketHandler_Issue_Success(t *testing.T) {
	mock := &mockTicketService{
		issueResult: &dto.TicketResponse{TicketID: "ticket-1"},
	}
	h := NewTicketHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/admin/events/event-1/tickets", jsonBody(dto.IssueTicketRequest{
		MemberID: "22222222-2222-2222-2222-222222222222",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/events/:id/tickets", func(c *gin.Context) {
		setAuth(c)
		h.IssueTicket(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestTicketHandler_Issue_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NoReservation", service.ErrReservationNotFound, 404, 15001},
		{"AlreadyIssued", service.ErrTicketAlreadyIssued, 409, 15002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockTicketService{issueErr: tt.err}
			h := NewTicketHandler(mock)

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/admin/events/event-1/tickets", jsonBody(dto.IssueTicketRequest{
				MemberID: "22222222-2222-2222-2222-222222222222",
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/admin/events/:id/tickets", func(c *gin.Context) {
				setAuth(c)
				h.IssueTicket(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// LeaderboardHandler Tests
// ═══════════════════════════════════════════════════════════

func TestLeaderboardHandler_Frozen_NotFound(t *testing.T) {
	mock := &mockLeaderboardService{frozenErr: service.ErrFrozenNotFound}
	h := NewLeaderboardHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/leaderboard/frozen/2026-07", nil)

	r := gin.New()
	r.GET("/leaderboard/frozen/:period", h.Frozen)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16001 {
		t.Errorf("expected error code 16001, got %d", resp.Code)
	}
}

func TestLeaderboardHandler_Freeze_EmptyBodyDefaultsPeriod(t *testing.T) {
	mock := &mockLeaderboardService{
		freezeResult: &dto.LeaderboardResponse{},
	}
	h := NewLeaderboardHandler(mock)

	_, _, w := setupGin()
	// 请求体为空时由服务端取当前月
	req := httptest.NewRequest("POST", "/admin/leaderboard/freeze", nil)

	r := gin.New()
	r.POST("/admin/leaderboard/freeze", func(c *gin.Context) {
		setAuth(c)
		h.Freeze(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestLeaderboardHandler_Freeze_BadPeriod(t *testing.T) {
	mock := &mockLeaderboardService{}
	h := NewLeaderboardHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/admin/leaderboard/freeze", jsonBody(dto.FreezeLeaderboardRequest{
		Period: "2026/08",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/leaderboard/freeze", func(c *gin.Context) {
		setAuth(c)
		h.Freeze(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	buf := bytes.NewBufferString("excel content")
	mock := &mockExportService{
		buf:      buf,
		filename: "groove_ledger_20260830_120000.xlsx",
	}
	h := NewExportHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/admin/export/ledger", nil)

	r := gin.New()
	r.GET("/admin/export/ledger", h.ExportLedger)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_Failure(t *testing.T) {
	mock := &mockExportService{err: errors.New("db down")}
	h := NewExportHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/admin/export/ledger", nil)

	r := gin.New()
	r.GET("/admin/export/ledger", h.ExportLedger)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
