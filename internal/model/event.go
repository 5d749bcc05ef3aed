package model

import "time"

// 活动状态
const (
	EventStatusOpen   = "open"
	EventStatusFull   = "full"
	EventStatusClosed = "closed"
)

// Event 活动表 — 对应 events
type Event struct {
	EventID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	Name     string    `gorm:"type:varchar(200);not null"                     json:"name"`
	StartsAt time.Time `gorm:"not null"                                       json:"starts_at"`
	Venue    string    `gorm:"type:varchar(200)"                              json:"venue,omitempty"`
	City     string    `gorm:"type:varchar(100)"                              json:"city,omitempty"`
	// Capacity 活动容量（> 0）：活动的有效预订数不得超过该值
	Capacity int `gorm:"not null" json:"capacity"`
	// SlotCost 参加该活动消耗的名额数（≥ 1，默认 1；高级活动更高）
	SlotCost int    `gorm:"not null;default:1"                         json:"slot_cost"`
	Status   string `gorm:"type:varchar(20);not null;default:'open'"   json:"status"` // open | full | closed
	VersionedModel
}

// TableName 指定表名
func (Event) TableName() string { return "events" }

// EventReservation 活动预订表 — 对应 event_reservations
// (EventID, MemberID) 唯一：释放后行保留（active=false），再次加入时复用。
// TicketIssued 只允许 false→true 一次，TicketID 一经写入不再变更。
type EventReservation struct {
	ReservationID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"reservation_id"`
	EventID        string     `gorm:"type:uuid;not null;uniqueIndex:ux_event_reservations_event_member" json:"event_id"`
	MemberID       string     `gorm:"type:uuid;not null;uniqueIndex:ux_event_reservations_event_member" json:"member_id"`
	Active         bool       `gorm:"not null;default:true"  json:"active"`
	TicketIssued   bool       `gorm:"not null;default:false" json:"ticket_issued"`
	TicketID       *string    `gorm:"type:varchar(64);uniqueIndex" json:"ticket_id,omitempty"`
	TicketIssuedAt *time.Time `json:"ticket_issued_at,omitempty"`
	BaseModel

	// 关联
	Event  *Event  `gorm:"foreignKey:EventID;references:EventID"    json:"event,omitempty"`
	Member *Member `gorm:"foreignKey:MemberID;references:MemberID"  json:"member,omitempty"`
}

// TableName 指定表名
func (EventReservation) TableName() string { return "event_reservations" }

// [自证通过] internal/model/event.go
