package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/model"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/repository"
	pkgerrors "github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/errors"
)

// ── Mock MemberRepository ──

type mockMemberRepo struct {
	mu      sync.Mutex
	members map[string]*model.Member
	seq     int
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{members: make(map[string]*model.Member)}
}

func (m *mockMemberRepo) Create(_ context.Context, member *model.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if member.MemberID == "" {
		m.seq++
		member.MemberID = fmt.Sprintf("member-%03d", m.seq)
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}
	m.members[member.MemberID] = member
	return nil
}

func (m *mockMemberRepo) GetByID(_ context.Context, id string) (*model.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if member, ok := m.members[id]; ok {
		cp := *member
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Member, error) {
	return m.GetByID(ctx, id)
}

func (m *mockMemberRepo) GetByEmail(_ context.Context, email string) (*model.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range m.members {
		if member.Email == email {
			cp := *member
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRepo) GetByReferralCode(_ context.Context, code string) (*model.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range m.members {
		if member.ReferralCode == code {
			cp := *member
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRepo) Update(_ context.Context, member *model.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.MemberID] = member
	return nil
}

func (m *mockMemberRepo) CreditPoints(_ context.Context, memberID string, delta int64, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[memberID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	member.PointsBalance += delta
	member.UpdatedBy = &updatedBy
	return nil
}

func (m *mockMemberRepo) UpdateStreak(_ context.Context, memberID string, streak int, period, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[memberID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	member.StreakMonth = streak
	member.LastContributionPeriod = period
	member.UpdatedBy = &updatedBy
	return nil
}

func (m *mockMemberRepo) List(_ context.Context, offset, limit int) ([]model.Member, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Member
	for _, member := range m.members {
		all = append(all, *member)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockMemberRepo) ListRanked(_ context.Context) ([]model.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Member
	for _, member := range m.members {
		all = append(all, *member)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].PointsBalance != all[j].PointsBalance {
			return all[i].PointsBalance > all[j].PointsBalance
		}
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].MemberID < all[j].MemberID
	})
	return all, nil
}

// ── Mock PaymentRepository ──

type mockPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*model.Payment
	seq      int
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[string]*model.Payment)}
}

func (m *mockPaymentRepo) Create(_ context.Context, payment *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// 幂等唯一索引 (provider, provider_event_id)
	if payment.ProviderEventID != nil {
		for _, p := range m.payments {
			if p.Provider == payment.Provider && p.ProviderEventID != nil && *p.ProviderEventID == *payment.ProviderEventID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if payment.PaymentID == "" {
		m.seq++
		payment.PaymentID = fmt.Sprintf("payment-%03d", m.seq)
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	m.payments[payment.PaymentID] = payment
	return nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaymentRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Payment, error) {
	return m.GetByID(ctx, id)
}

func (m *mockPaymentRepo) GetByProviderEvent(_ context.Context, provider, providerEventID string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.Provider == provider && p.ProviderEventID != nil && *p.ProviderEventID == providerEventID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaymentRepo) UpdateStatus(_ context.Context, paymentID, status, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	p.UpdatedBy = &updatedBy
	return nil
}

func (m *mockPaymentRepo) ListPending(_ context.Context, offset, limit int) ([]model.Payment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []model.Payment
	for _, p := range m.payments {
		if p.Status == model.PaymentStatusPending {
			pending = append(pending, *p)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	total := int64(len(pending))
	if offset >= len(pending) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(pending) {
		end = len(pending)
	}
	return pending[offset:end], total, nil
}

func (m *mockPaymentRepo) ListAll(_ context.Context) ([]model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Payment
	for _, p := range m.payments {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

// ── Mock PaymentApprovalRepository ──

type mockPaymentApprovalRepo struct {
	mu        sync.Mutex
	approvals []model.PaymentApproval
	seq       int
}

func newMockPaymentApprovalRepo() *mockPaymentApprovalRepo {
	return &mockPaymentApprovalRepo{}
}

func (m *mockPaymentApprovalRepo) Create(_ context.Context, approval *model.PaymentApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	approval.ApprovalID = fmt.Sprintf("approval-%03d", m.seq)
	approval.CreatedAt = time.Now()
	m.approvals = append(m.approvals, *approval)
	return nil
}

func (m *mockPaymentApprovalRepo) ListByPayment(_ context.Context, paymentID string) ([]model.PaymentApproval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.PaymentApproval
	for _, a := range m.approvals {
		if a.PaymentID == paymentID {
			result = append(result, a)
		}
	}
	return result, nil
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	mu     sync.Mutex
	events map[string]*model.Event
	seq    int
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*model.Event)}
}

func (m *mockEventRepo) Create(_ context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.EventID == "" {
		m.seq++
		event.EventID = fmt.Sprintf("event-%03d", m.seq)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	m.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) Update(_ context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) List(_ context.Context, offset, limit int) ([]model.Event, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Event
	for _, e := range m.events {
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartsAt.Before(all[j].StartsAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock ReservationRepository ──

// mockReservationRepo 用互斥锁复刻数据库事务的原子性：
// Reserve 的容量校验与写入在同一临界区内完成
type mockReservationRepo struct {
	mu           sync.Mutex
	events       *mockEventRepo
	reservations map[string]*model.EventReservation // key: eventID + "/" + memberID
	seq          int
}

func newMockReservationRepo(events *mockEventRepo) *mockReservationRepo {
	return &mockReservationRepo{
		events:       events,
		reservations: make(map[string]*model.EventReservation),
	}
}

func resKey(eventID, memberID string) string { return eventID + "/" + memberID }

func (m *mockReservationRepo) GetByEventAndMember(_ context.Context, eventID, memberID string) (*model.EventReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reservations[resKey(eventID, memberID)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReservationRepo) GetByEventAndMemberForUpdate(ctx context.Context, eventID, memberID string) (*model.EventReservation, error) {
	return m.GetByEventAndMember(ctx, eventID, memberID)
}

func (m *mockReservationRepo) CountActiveByEvent(_ context.Context, eventID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countActiveLocked(eventID), nil
}

func (m *mockReservationRepo) countActiveLocked(eventID string) int {
	count := 0
	for _, r := range m.reservations {
		if r.EventID == eventID && r.Active {
			count++
		}
	}
	return count
}

func (m *mockReservationRepo) SumActiveSlotCostByMember(_ context.Context, memberID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sumSlotCostLocked(memberID), nil
}

func (m *mockReservationRepo) sumSlotCostLocked(memberID string) int {
	sum := 0
	for _, r := range m.reservations {
		if r.MemberID != memberID || !r.Active {
			continue
		}
		if e, ok := m.events.events[r.EventID]; ok {
			sum += e.SlotCost
		}
	}
	return sum
}

func (m *mockReservationRepo) ListActiveByMember(_ context.Context, memberID string) ([]model.EventReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.EventReservation
	for _, r := range m.reservations {
		if r.MemberID == memberID && r.Active {
			cp := *r
			if e, ok := m.events.events[r.EventID]; ok {
				ecp := *e
				cp.Event = &ecp
			}
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockReservationRepo) ListActiveByEvent(_ context.Context, eventID string) ([]model.EventReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.EventReservation
	for _, r := range m.reservations {
		if r.EventID == eventID && r.Active {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockReservationRepo) Update(_ context.Context, reservation *model.EventReservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[resKey(reservation.EventID, reservation.MemberID)] = reservation
	return nil
}

func (m *mockReservationRepo) Reserve(_ context.Context, eventID, memberID string, totalSlots int) (*model.EventReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events.mu.Lock()
	event, ok := m.events.events[eventID]
	if !ok {
		m.events.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	eventCopy := *event
	m.events.mu.Unlock()

	if eventCopy.Status == model.EventStatusClosed {
		return nil, pkgerrors.ErrEventClosed
	}

	activeCount := m.countActiveLocked(eventID)
	if activeCount >= eventCopy.Capacity {
		return nil, pkgerrors.ErrCapacityExceeded
	}

	used := m.sumSlotCostLocked(memberID)
	if totalSlots-used < eventCopy.SlotCost {
		return nil, pkgerrors.ErrInsufficientSlots
	}

	key := resKey(eventID, memberID)
	if existing, ok := m.reservations[key]; ok {
		if existing.Active {
			cp := *existing
			return &cp, nil
		}
		existing.Active = true
		cp := *existing
		return &cp, nil
	}

	m.seq++
	reservation := &model.EventReservation{
		ReservationID: fmt.Sprintf("reservation-%03d", m.seq),
		EventID:       eventID,
		MemberID:      memberID,
		Active:        true,
	}
	reservation.CreatedAt = time.Now()
	m.reservations[key] = reservation

	if activeCount+1 >= eventCopy.Capacity && eventCopy.Status == model.EventStatusOpen {
		m.events.mu.Lock()
		if e, ok := m.events.events[eventID]; ok {
			e.Status = model.EventStatusFull
		}
		m.events.mu.Unlock()
	}

	cp := *reservation
	return &cp, nil
}

func (m *mockReservationRepo) Release(_ context.Context, eventID, memberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reservations[resKey(eventID, memberID)]
	if !ok || !r.Active {
		return nil
	}
	r.Active = false

	m.events.mu.Lock()
	if e, ok := m.events.events[eventID]; ok && e.Status == model.EventStatusFull {
		e.Status = model.EventStatusOpen
	}
	m.events.mu.Unlock()
	return nil
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct {
	mu      sync.Mutex
	entries []model.AuditLogEntry
	seq     int
}

func newMockAuditLogRepo() *mockAuditLogRepo {
	return &mockAuditLogRepo{}
}

func (m *mockAuditLogRepo) Create(_ context.Context, entry *model.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	entry.AuditLogID = fmt.Sprintf("audit-%03d", m.seq)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditLogRepo) List(_ context.Context, offset, limit int) ([]model.AuditLogEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := int64(len(m.entries))
	if offset >= len(m.entries) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(m.entries) {
		end = len(m.entries)
	}
	return m.entries[offset:end], total, nil
}

// ── 测试用 Repository 组装 ──

type testRepos struct {
	members      *mockMemberRepo
	payments     *mockPaymentRepo
	approvals    *mockPaymentApprovalRepo
	events       *mockEventRepo
	reservations *mockReservationRepo
	auditLogs    *mockAuditLogRepo
}

// newTestRepository 组装注入 mock 仓储的 Repository（db 为 nil，
// BeginTx 返回 nil 事务，各仓储方法直接生效）
func newTestRepository() (*repository.Repository, *testRepos) {
	members := newMockMemberRepo()
	payments := newMockPaymentRepo()
	approvals := newMockPaymentApprovalRepo()
	events := newMockEventRepo()
	reservations := newMockReservationRepo(events)
	auditLogs := newMockAuditLogRepo()

	repo := &repository.Repository{
		Member:          members,
		Payment:         payments,
		PaymentApproval: approvals,
		Event:           events,
		Reservation:     reservations,
		AuditLog:        auditLogs,
	}

	return repo, &testRepos{
		members:      members,
		payments:     payments,
		approvals:    approvals,
		events:       events,
		reservations: reservations,
		auditLogs:    auditLogs,
	}
}
