package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/financbase/reconcile/internal/domain"
	"github.com/financbase/reconcile/internal/usecase"
)

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session

	CreateFunc                 func(ctx context.Context, session *domain.Session) error
	GetByIDFunc                func(ctx context.Context, id string) (*domain.Session, error)
	GetInProgressByAccountFunc func(ctx context.Context, accountRef string) (*domain.Session, error)
	UpdateStatusFunc           func(ctx context.Context, tx usecase.Transaction, id string, status domain.SessionStatus, failureReason string, completedAt *time.Time) error
	UpdateProgressFunc         func(ctx context.Context, id string, matched, unmatched int) error
	UpdateTotalsFunc           func(ctx context.Context, tx usecase.Transaction, id string, totals domain.SessionTotals) error
	ListByAccountFunc          func(ctx context.Context, accountRef string, limit, offset int) ([]*domain.Session, error)
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) GetInProgressByAccount(ctx context.Context, accountRef string) (*domain.Session, error) {
	if m.GetInProgressByAccountFunc != nil {
		return m.GetInProgressByAccountFunc(ctx, accountRef)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.AccountRef == accountRef && s.Status == domain.SessionStatusInProgress {
			copied := *s
			return &copied, nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.SessionStatus, failureReason string, completedAt *time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, failureReason, completedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Status = status
	s.FailureReason = failureReason
	s.CompletedAt = completedAt
	return nil
}

func (m *MockSessionRepository) UpdateProgress(ctx context.Context, id string, matched, unmatched int) error {
	if m.UpdateProgressFunc != nil {
		return m.UpdateProgressFunc(ctx, id, matched, unmatched)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Totals.Matched = matched
	s.Totals.Unmatched = unmatched
	return nil
}

func (m *MockSessionRepository) UpdateTotals(ctx context.Context, tx usecase.Transaction, id string, totals domain.SessionTotals) error {
	if m.UpdateTotalsFunc != nil {
		return m.UpdateTotalsFunc(ctx, tx, id, totals)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Totals = totals
	return nil
}

func (m *MockSessionRepository) ListByAccount(ctx context.Context, accountRef string, limit, offset int) ([]*domain.Session, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountRef, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sessions []*domain.Session
	for _, s := range m.sessions {
		if s.AccountRef == accountRef {
			copied := *s
			sessions = append(sessions, &copied)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

// MockStatementLineRepository is a mock implementation of StatementLineRepository.
type MockStatementLineRepository struct {
	mu    sync.RWMutex
	lines map[string][]*domain.StatementLine

	CreateBatchFunc   func(ctx context.Context, tx usecase.Transaction, lines []*domain.StatementLine) error
	ListBySessionFunc func(ctx context.Context, sessionID string) ([]*domain.StatementLine, error)
}

func NewMockStatementLineRepository() *MockStatementLineRepository {
	return &MockStatementLineRepository{
		lines: make(map[string][]*domain.StatementLine),
	}
}

func (m *MockStatementLineRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, lines []*domain.StatementLine) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, lines)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range lines {
		m.lines[line.SessionID] = append(m.lines[line.SessionID], line)
	}
	return nil
}

func (m *MockStatementLineRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.StatementLine, error) {
	if m.ListBySessionFunc != nil {
		return m.ListBySessionFunc(ctx, sessionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lines[sessionID], nil
}

// MockMatchRepository is a mock implementation of MatchRepository.
type MockMatchRepository struct {
	mu      sync.RWMutex
	matches map[string]*domain.Match

	CreateBatchFunc         func(ctx context.Context, tx usecase.Transaction, matches []*domain.Match) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Match, error)
	ListBySessionFunc       func(ctx context.Context, sessionID string, limit, offset int) ([]*domain.Match, error)
	UpdateStatusFunc        func(ctx context.Context, tx usecase.Transaction, id string, status domain.MatchStatus, updatedAt time.Time) error
	SetActiveAdjustmentFunc func(ctx context.Context, tx usecase.Transaction, matchID string, adjustment *domain.Adjustment) error
	AnnotateSessionFunc     func(ctx context.Context, sessionID, note string) error
}

func NewMockMatchRepository() *MockMatchRepository {
	return &MockMatchRepository{
		matches: make(map[string]*domain.Match),
	}
}

func (m *MockMatchRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, matches []*domain.Match) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, matches)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, match := range matches {
		copied := *match
		m.matches[match.ID] = &copied
	}
	return nil
}

func (m *MockMatchRepository) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if match, ok := m.matches[id]; ok {
		copied := *match
		return &copied, nil
	}
	return nil, domain.ErrMatchNotFound
}

func (m *MockMatchRepository) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]*domain.Match, error) {
	if m.ListBySessionFunc != nil {
		return m.ListBySessionFunc(ctx, sessionID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matches []*domain.Match
	for _, match := range m.matches {
		if match.SessionID == sessionID {
			copied := *match
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (m *MockMatchRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.MatchStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[id]
	if !ok {
		return domain.ErrMatchNotFound
	}
	match.Status = status
	match.UpdatedAt = updatedAt
	return nil
}

func (m *MockMatchRepository) SetActiveAdjustment(ctx context.Context, tx usecase.Transaction, matchID string, adjustment *domain.Adjustment) error {
	if m.SetActiveAdjustmentFunc != nil {
		return m.SetActiveAdjustmentFunc(ctx, tx, matchID, adjustment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[matchID]
	if !ok {
		return domain.ErrMatchNotFound
	}
	match.Adjustment = adjustment
	match.UpdatedAt = adjustment.AdjustedAt
	return nil
}

func (m *MockMatchRepository) AnnotateSession(ctx context.Context, sessionID, note string) error {
	if m.AnnotateSessionFunc != nil {
		return m.AnnotateSessionFunc(ctx, sessionID, note)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, match := range m.matches {
		if match.SessionID == sessionID {
			match.Note = note
		}
	}
	return nil
}

// MockDiscrepancyRepository is a mock implementation of DiscrepancyRepository.
type MockDiscrepancyRepository struct {
	mu            sync.RWMutex
	discrepancies map[string]*domain.Discrepancy

	CreateBatchFunc   func(ctx context.Context, tx usecase.Transaction, discrepancies []*domain.Discrepancy) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Discrepancy, error)
	ListBySessionFunc func(ctx context.Context, sessionID string, limit, offset int) ([]*domain.Discrepancy, error)
	UpdateReviewFunc  func(ctx context.Context, d *domain.Discrepancy) error
}

func NewMockDiscrepancyRepository() *MockDiscrepancyRepository {
	return &MockDiscrepancyRepository{
		discrepancies: make(map[string]*domain.Discrepancy),
	}
}

func (m *MockDiscrepancyRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, discrepancies []*domain.Discrepancy) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, discrepancies)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range discrepancies {
		copied := *d
		m.discrepancies[d.ID] = &copied
	}
	return nil
}

func (m *MockDiscrepancyRepository) GetByID(ctx context.Context, id string) (*domain.Discrepancy, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.discrepancies[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, domain.ErrDiscrepancyNotFound
}

func (m *MockDiscrepancyRepository) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]*domain.Discrepancy, error) {
	if m.ListBySessionFunc != nil {
		return m.ListBySessionFunc(ctx, sessionID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Discrepancy
	for _, d := range m.discrepancies {
		if d.SessionID == sessionID {
			copied := *d
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockDiscrepancyRepository) UpdateReview(ctx context.Context, d *domain.Discrepancy) error {
	if m.UpdateReviewFunc != nil {
		return m.UpdateReviewFunc(ctx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.discrepancies[d.ID]; !ok {
		return domain.ErrDiscrepancyNotFound
	}
	copied := *d
	m.discrepancies[d.ID] = &copied
	return nil
}

// MockAdjustmentRepository is a mock implementation of AdjustmentRepository.
type MockAdjustmentRepository struct {
	mu          sync.RWMutex
	adjustments []*domain.Adjustment

	CreateFunc      func(ctx context.Context, tx usecase.Transaction, adjustment *domain.Adjustment) error
	ListByMatchFunc func(ctx context.Context, matchID string) ([]*domain.Adjustment, error)
}

func NewMockAdjustmentRepository() *MockAdjustmentRepository {
	return &MockAdjustmentRepository{}
}

func (m *MockAdjustmentRepository) Create(ctx context.Context, tx usecase.Transaction, adjustment *domain.Adjustment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, adjustment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *adjustment
	m.adjustments = append(m.adjustments, &copied)
	return nil
}

func (m *MockAdjustmentRepository) ListByMatch(ctx context.Context, matchID string) ([]*domain.Adjustment, error) {
	if m.ListByMatchFunc != nil {
		return m.ListByMatchFunc(ctx, matchID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Adjustment
	for _, a := range m.adjustments {
		if a.MatchID == matchID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

// MockRuleRepository is a mock implementation of RuleRepository.
type MockRuleRepository struct {
	mu    sync.RWMutex
	rules map[string]*domain.Rule
	usage map[string]*domain.RuleStats

	CreateFunc      func(ctx context.Context, rule *domain.Rule) error
	UpdateFunc      func(ctx context.Context, rule *domain.Rule) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Rule, error)
	ListActiveFunc  func(ctx context.Context) ([]*domain.Rule, error)
	ListFunc        func(ctx context.Context, limit, offset int) ([]*domain.Rule, error)
	SetActiveFunc   func(ctx context.Context, id string, active bool) error
	RecordUsageFunc func(ctx context.Context, id string, evaluated, hits int64) error
}

func NewMockRuleRepository() *MockRuleRepository {
	return &MockRuleRepository{
		rules: make(map[string]*domain.Rule),
		usage: make(map[string]*domain.RuleStats),
	}
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *domain.Rule) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rule)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *rule
	m.rules[rule.ID] = &copied
	return nil
}

func (m *MockRuleRepository) Update(ctx context.Context, rule *domain.Rule) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, rule)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[rule.ID]; !ok {
		return domain.ErrRuleNotFound
	}
	copied := *rule
	m.rules[rule.ID] = &copied
	return nil
}

func (m *MockRuleRepository) GetByID(ctx context.Context, id string) (*domain.Rule, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rule, ok := m.rules[id]; ok {
		copied := *rule
		return &copied, nil
	}
	return nil, domain.ErrRuleNotFound
}

func (m *MockRuleRepository) ListActive(ctx context.Context) ([]*domain.Rule, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Rule
	for _, rule := range m.rules {
		if rule.IsActive {
			copied := *rule
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRuleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Rule, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Rule
	for _, rule := range m.rules {
		copied := *rule
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func (m *MockRuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rule, ok := m.rules[id]
	if !ok {
		return domain.ErrRuleNotFound
	}
	rule.IsActive = active
	return nil
}

func (m *MockRuleRepository) RecordUsage(ctx context.Context, id string, evaluated, hits int64) error {
	if m.RecordUsageFunc != nil {
		return m.RecordUsageFunc(ctx, id, evaluated, hits)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.usage[id]
	if !ok {
		stats = &domain.RuleStats{}
		m.usage[id] = stats
	}
	stats.TimesEvaluated += evaluated
	stats.TimesUsed += hits
	return nil
}

// Usage returns the recorded counters for a rule.
func (m *MockRuleRepository) Usage(id string) domain.RuleStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if stats, ok := m.usage[id]; ok {
		return *stats
	}
	return domain.RuleStats{}
}

// MockLedgerStore is a mock implementation of LedgerStore backed by an
// in-memory transaction list and claim set.
type MockLedgerStore struct {
	mu     sync.Mutex
	txs    []*domain.BookTransaction
	claims map[string]map[string]bool

	GetTransactionsFunc func(ctx context.Context, accountRef string, start, end time.Time) ([]*domain.BookTransaction, error)
	ClaimFunc           func(ctx context.Context, sessionID, transactionID string) error
	ListUnclaimedFunc   func(ctx context.Context, sessionID, accountRef string, start, end time.Time) ([]*domain.BookTransaction, error)
}

func NewMockLedgerStore(txs ...*domain.BookTransaction) *MockLedgerStore {
	return &MockLedgerStore{
		txs:    txs,
		claims: make(map[string]map[string]bool),
	}
}

func (m *MockLedgerStore) GetTransactions(ctx context.Context, accountRef string, start, end time.Time) ([]*domain.BookTransaction, error) {
	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(ctx, accountRef, start, end)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.BookTransaction
	for _, tx := range m.txs {
		if tx.AccountRef == accountRef && !tx.Date.Before(start) && !tx.Date.After(end) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *MockLedgerStore) Claim(ctx context.Context, sessionID, transactionID string) error {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, sessionID, transactionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	claimed, ok := m.claims[sessionID]
	if !ok {
		claimed = make(map[string]bool)
		m.claims[sessionID] = claimed
	}
	if claimed[transactionID] {
		return domain.ErrConcurrentModification
	}
	claimed[transactionID] = true
	return nil
}

func (m *MockLedgerStore) ListUnclaimed(ctx context.Context, sessionID, accountRef string, start, end time.Time) ([]*domain.BookTransaction, error) {
	if m.ListUnclaimedFunc != nil {
		return m.ListUnclaimedFunc(ctx, sessionID, accountRef, start, end)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	claimed := m.claims[sessionID]
	var out []*domain.BookTransaction
	for _, tx := range m.txs {
		if tx.AccountRef != accountRef || tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		if !claimed[tx.ID] {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Claimed reports whether a session claimed a transaction.
func (m *MockLedgerStore) Claimed(sessionID, transactionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims[sessionID][transactionID]
}

// MockStatementFeed is a mock implementation of StatementFeed.
type MockStatementFeed struct {
	Lines []*domain.StatementLine

	GetStatementLinesFunc func(ctx context.Context, accountRef string, start, end time.Time) ([]*domain.StatementLine, error)
}

func NewMockStatementFeed(lines ...*domain.StatementLine) *MockStatementFeed {
	return &MockStatementFeed{Lines: lines}
}

func (m *MockStatementFeed) GetStatementLines(ctx context.Context, accountRef string, start, end time.Time) ([]*domain.StatementLine, error) {
	if m.GetStatementLinesFunc != nil {
		return m.GetStatementLinesFunc(ctx, accountRef, start, end)
	}
	var out []*domain.StatementLine
	for _, line := range m.Lines {
		if !line.Date.Before(start) && !line.Date.After(end) {
			copied := *line
			out = append(out, &copied)
		}
	}
	return out, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.Mutex
	Events []*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return domain.ErrPersistence
}

// MockSessionLock is a mock implementation of SessionLock.
type MockSessionLock struct {
	mu   sync.Mutex
	held map[string]bool

	AcquireFunc func(ctx context.Context, accountRef string, ttl time.Duration) (bool, error)
	ReleaseFunc func(ctx context.Context, accountRef string) error
}

func NewMockSessionLock() *MockSessionLock {
	return &MockSessionLock{held: make(map[string]bool)}
}

func (m *MockSessionLock) Acquire(ctx context.Context, accountRef string, ttl time.Duration) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, accountRef, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[accountRef] {
		return false, nil
	}
	m.held[accountRef] = true
	return true, nil
}

func (m *MockSessionLock) Release(ctx context.Context, accountRef string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, accountRef)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, accountRef)
	return nil
}

// MockRuleCache is a mock implementation of RuleCache.
type MockRuleCache struct {
	mu            sync.Mutex
	rules         []*domain.Rule
	Invalidations int

	GetFunc        func(ctx context.Context) ([]*domain.Rule, error)
	SetFunc        func(ctx context.Context, rules []*domain.Rule, ttl time.Duration) error
	InvalidateFunc func(ctx context.Context) error
}

func NewMockRuleCache() *MockRuleCache {
	return &MockRuleCache{}
}

func (m *MockRuleCache) Get(ctx context.Context) ([]*domain.Rule, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rules, nil
}

func (m *MockRuleCache) Set(ctx context.Context, rules []*domain.Rule, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, rules, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = rules
	return nil
}

func (m *MockRuleCache) Invalidate(ctx context.Context) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = nil
	m.Invalidations++
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}
