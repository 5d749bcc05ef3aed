package errors

import "errors"

// 跨 Repository / Service 边界的业务哨兵错误。
// 容量与名额的判定在 Repository 事务内完成（见 reservation_repo.Reserve），
// 因此这些错误必须定义在两层都能引用的位置。

var (
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

	// ErrCapacityExceeded 场次容量已满
	ErrCapacityExceeded = errors.New("活动名额已满")

	// ErrInsufficientSlots 可用消费名额不足
	ErrInsufficientSlots = errors.New("可用名额不足，积分余额无法覆盖该活动的名额消耗")

	// ErrEventClosed 活动已关闭，不再接受预订
	ErrEventClosed = errors.New("活动已关闭")
)
