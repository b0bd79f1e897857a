package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/financbase/reconcile/internal/domain"
	"github.com/financbase/reconcile/internal/infrastructure/metrics"
	"github.com/financbase/reconcile/internal/matcher"
)

// errRunCancelled signals the runner that the session was cancelled from
// outside while a run was in flight.
var errRunCancelled = errors.New("run cancelled")

// SessionUseCase handles reconciliation session business logic.
type SessionUseCase struct {
	txManager       TransactionManager
	sessionRepo     SessionRepository
	lineRepo        StatementLineRepository
	matchRepo       MatchRepository
	discrepancyRepo DiscrepancyRepository
	ruleRepo        RuleRepository
	ruleCache       RuleCache
	outboxRepo      OutboxRepository
	ledger          LedgerStore
	feed            StatementFeed
	lock            SessionLock
	idGen           IDGenerator
	matcherCfg      *matcher.Config
	metrics         *metrics.Metrics
	retrier         Retrier
	batchSize       int
	timeout         time.Duration
}

// NewSessionUseCase creates a new SessionUseCase. ruleCache may be nil, in
// which case active rules are loaded from the repository on every run. A
// zero batchSize or timeout falls back to the defaults.
func NewSessionUseCase(
	txManager TransactionManager,
	sessionRepo SessionRepository,
	lineRepo StatementLineRepository,
	matchRepo MatchRepository,
	discrepancyRepo DiscrepancyRepository,
	ruleRepo RuleRepository,
	ruleCache RuleCache,
	outboxRepo OutboxRepository,
	ledger LedgerStore,
	feed StatementFeed,
	lock SessionLock,
	idGen IDGenerator,
	matcherCfg *matcher.Config,
	metrics *metrics.Metrics,
	batchSize int,
	timeout time.Duration,
) *SessionUseCase {
	if matcherCfg == nil {
		matcherCfg = matcher.DefaultConfig()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}

	return &SessionUseCase{
		txManager:       txManager,
		sessionRepo:     sessionRepo,
		lineRepo:        lineRepo,
		matchRepo:       matchRepo,
		discrepancyRepo: discrepancyRepo,
		ruleRepo:        ruleRepo,
		ruleCache:       ruleCache,
		outboxRepo:      outboxRepo,
		ledger:          ledger,
		feed:            feed,
		lock:            lock,
		idGen:           idGen,
		matcherCfg:      matcherCfg,
		metrics:         metrics,
		batchSize:       batchSize,
		timeout:         timeout,
	}
}

// WithRetrier makes transactional writes retry on transient database
// errors such as deadlocks and serialization failures.
func (uc *SessionUseCase) WithRetrier(retrier Retrier) *SessionUseCase {
	uc.retrier = retrier
	return uc
}

func (uc *SessionUseCase) withRetry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}

// StartSessionInput represents input for creating a session.
type StartSessionInput struct {
	AccountRef string
	Type       domain.SessionType
	StartDate  time.Time
	EndDate    time.Time
}

// StartSession creates a new pending reconciliation session. It refuses to
// create one while the account already has a session in progress.
func (uc *SessionUseCase) StartSession(ctx context.Context, input StartSessionInput) (*domain.Session, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		ID:         uc.idGen.Generate(),
		AccountRef: input.AccountRef,
		Type:       input.Type,
		Status:     domain.SessionStatusPending,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		CreatedAt:  now,
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}

	_, err := uc.sessionRepo.GetInProgressByAccount(ctx, input.AccountRef)
	switch {
	case err == nil:
		return nil, domain.ErrSessionAlreadyActive
	case !errors.Is(err, domain.ErrSessionNotFound):
		return nil, err
	}

	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SessionsStarted.Inc()
	}

	return session, nil
}

// RunSession executes a pending session end to end: it loads statement
// lines and book transactions for the period, matches them batch by batch,
// detects discrepancies, and drives the session to a terminal status. The
// run is bounded by the configured timeout; a timed-out session fails but
// keeps the matches produced so far.
func (uc *SessionUseCase) RunSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.CanRun() {
		return nil, domain.ErrSessionNotRunnable
	}

	acquired, err := uc.lock.Acquire(ctx, session.AccountRef, DefaultLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, domain.ErrSessionAlreadyActive
	}
	defer func() { _ = uc.lock.Release(context.WithoutCancel(ctx), session.AccountRef) }()

	if err := uc.sessionRepo.UpdateStatus(ctx, nil, session.ID, domain.SessionStatusInProgress, "", nil); err != nil {
		return nil, err
	}
	session.Status = domain.SessionStatusInProgress

	runCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	started := time.Now()
	result, runErr := uc.run(runCtx, session)
	if uc.metrics != nil {
		uc.metrics.SessionDuration.Observe(time.Since(started).Seconds())
	}

	// Finalization must outlive the (possibly expired) run context.
	finCtx := context.WithoutCancel(ctx)

	if result != nil {
		uc.flushRuleStats(finCtx, result.stats)
	}

	switch {
	case runErr == nil:
		return uc.finalize(finCtx, session, result.totals)
	case errors.Is(runErr, errRunCancelled):
		// CancelSession already drove the session terminal.
		return uc.sessionRepo.GetByID(finCtx, session.ID)
	case errors.Is(runErr, context.DeadlineExceeded):
		return uc.fail(finCtx, session, domain.ErrSessionTimeout.Error())
	case errors.Is(runErr, context.Canceled):
		return nil, runErr
	default:
		return uc.fail(finCtx, session, runErr.Error())
	}
}

type runResult struct {
	totals domain.SessionTotals
	stats  map[string]matcher.RuleUsage
}

type flaggedMatch struct {
	match  *domain.Match
	ruleID string
}

func (uc *SessionUseCase) run(ctx context.Context, session *domain.Session) (*runResult, error) {
	lines, err := uc.feed.GetStatementLines(ctx, session.AccountRef, session.StartDate, session.EndDate)
	if err != nil {
		return nil, err
	}

	// Fetch a widened window so lines near the period edges still see
	// their candidates.
	window := uc.matcherCfg.DateWindow()
	txs, err := uc.ledger.GetTransactions(ctx, session.AccountRef, session.StartDate.Add(-window), session.EndDate.Add(window))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, line := range lines {
		if line.ID == "" {
			line.ID = uc.idGen.Generate()
		}
		line.SessionID = session.ID
	}

	if len(lines) > 0 {
		if err := uc.persistLines(ctx, lines); err != nil {
			return nil, err
		}
	}
	if uc.metrics != nil {
		uc.metrics.LinesProcessed.Add(float64(len(lines)))
	}

	// Process in statement date order so the greedy claim phase is
	// deterministic across runs.
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].Date.Equal(lines[j].Date) {
			return lines[i].Date.Before(lines[j].Date)
		}
		return lines[i].ID < lines[j].ID
	})

	rules, err := uc.activeRules(ctx)
	if err != nil {
		return nil, err
	}

	engine := matcher.NewEngine(uc.matcherCfg, matcher.NewRuleEngine(rules))
	acc := matcher.NewStatsAccumulator()

	lineByID := make(map[string]*domain.StatementLine, len(lines))
	statementBalance := session.Totals.StatementBalance
	for _, line := range lines {
		lineByID[line.ID] = line
		statementBalance = statementBalance.Add(line.Amount)
	}

	txByID := make(map[string]*domain.BookTransaction, len(txs))
	bookBalance := session.Totals.BookBalance
	for _, tx := range txs {
		txByID[tx.ID] = tx
		if !tx.Date.Before(session.StartDate) && !tx.Date.After(session.EndDate) {
			bookBalance = bookBalance.Add(tx.Amount)
		}
	}

	consumed := make(map[string]bool)

	var (
		matches   []*domain.Match
		flagged   []flaggedMatch
		matched   int
		unmatched int
	)

	for start := 0; start < len(lines); start += uc.batchSize {
		if err := ctx.Err(); err != nil {
			return &runResult{stats: acc.Snapshot()}, err
		}

		current, err := uc.sessionRepo.GetByID(ctx, session.ID)
		if err != nil {
			return &runResult{stats: acc.Snapshot()}, err
		}
		if current.Status == domain.SessionStatusCancelled {
			return &runResult{stats: acc.Snapshot()}, errRunCancelled
		}

		end := start + uc.batchSize
		if end > len(lines) {
			end = len(lines)
		}
		batch := lines[start:end]

		// Scoring is pure and runs in parallel; claims stay sequential
		// below so contention resolves the same way every run.
		ranked := make([][]matcher.Candidate, len(batch))
		var wg sync.WaitGroup
		for i, line := range batch {
			wg.Add(1)
			go func(i int, line *domain.StatementLine) {
				defer wg.Done()
				ranked[i] = engine.ScoreCandidates(line, txs, acc)
			}(i, line)
		}
		wg.Wait()

		batchMatches := make([]*domain.Match, 0, len(batch))
		for i, line := range batch {
			m, flag, err := uc.claimBest(ctx, session.ID, line, ranked[i], engine, consumed, now)
			if err != nil {
				return &runResult{stats: acc.Snapshot()}, err
			}
			if m.Status == domain.MatchStatusMatched {
				matched++
				if uc.metrics != nil {
					uc.metrics.MatchesCreated.WithLabelValues(string(m.Confidence)).Inc()
					uc.metrics.MatchScore.Observe(float64(m.ConfidenceScore))
				}
			} else {
				unmatched++
				if uc.metrics != nil {
					uc.metrics.UnmatchedLines.Inc()
				}
			}
			if flag != "" {
				flagged = append(flagged, flaggedMatch{match: m, ruleID: flag})
			}
			batchMatches = append(batchMatches, m)
		}

		if err := uc.persistMatches(ctx, batchMatches); err != nil {
			return &runResult{stats: acc.Snapshot()}, err
		}
		matches = append(matches, batchMatches...)

		if err := uc.sessionRepo.UpdateProgress(ctx, session.ID, matched, unmatched); err != nil {
			return &runResult{stats: acc.Snapshot()}, err
		}
	}

	unclaimed, err := uc.ledger.ListUnclaimed(ctx, session.ID, session.AccountRef, session.StartDate, session.EndDate)
	if err != nil {
		return &runResult{stats: acc.Snapshot()}, err
	}

	detector := matcher.NewDetector(uc.matcherCfg, uc.idGen.Generate, func() time.Time { return time.Now().UTC() })
	discrepancies := detector.Detect(matcher.DetectInput{
		SessionID: session.ID,
		Matches:   matches,
		Lines:     lineByID,
		Txs:       txByID,
		Unclaimed: unclaimed,
	})
	for _, f := range flagged {
		discrepancies = append(discrepancies, detector.FlagDiscrepancy(session.ID, f.match, f.ruleID))
	}

	if err := uc.persistDiscrepancies(ctx, discrepancies); err != nil {
		return &runResult{stats: acc.Snapshot()}, err
	}
	if uc.metrics != nil {
		for _, d := range discrepancies {
			uc.metrics.DiscrepanciesDetected.WithLabelValues(string(d.Type), string(d.Severity)).Inc()
		}
	}

	totals := domain.SessionTotals{
		StatementBalance: statementBalance,
		BookBalance:      bookBalance,
		Difference:       statementBalance.Sub(bookBalance),
		TotalLines:       len(lines),
		Matched:          matched,
		Unmatched:        unmatched,
		Discrepancies:    len(discrepancies),
	}

	return &runResult{totals: totals, stats: acc.Snapshot()}, nil
}

// claimBest walks a line's ranked candidates and claims the first one still
// available. Losing a claim race just moves on to the next candidate; a line
// whose candidates are all taken or below threshold becomes unmatched.
func (uc *SessionUseCase) claimBest(
	ctx context.Context,
	sessionID string,
	line *domain.StatementLine,
	candidates []matcher.Candidate,
	engine *matcher.Engine,
	consumed map[string]bool,
	now time.Time,
) (*domain.Match, string, error) {
	for _, c := range candidates {
		if !engine.Accepted(c) {
			break
		}
		if consumed[c.Tx.ID] {
			continue
		}

		err := uc.ledger.Claim(ctx, sessionID, c.Tx.ID)
		if errors.Is(err, domain.ErrConcurrentModification) {
			consumed[c.Tx.ID] = true
			if uc.metrics != nil {
				uc.metrics.ClaimConflicts.Inc()
			}
			continue
		}
		if err != nil {
			return nil, "", err
		}

		consumed[c.Tx.ID] = true
		txID := c.Tx.ID
		match := &domain.Match{
			ID:                uc.idGen.Generate(),
			SessionID:         sessionID,
			StatementLineID:   line.ID,
			BookTransactionID: &txID,
			Status:            domain.MatchStatusMatched,
			Confidence:        domain.ConfidenceForScore(c.Score),
			ConfidenceScore:   c.Score,
			MatchCriteria:     c.Criteria,
			MatchReason:       c.Reason,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		return match, c.FlaggedByRuleID, nil
	}

	match := &domain.Match{
		ID:              uc.idGen.Generate(),
		SessionID:       sessionID,
		StatementLineID: line.ID,
		Status:          domain.MatchStatusUnmatched,
		Confidence:      domain.ConfidenceLow,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return match, "", nil
}

// CancelSession cancels a pending or in-progress session. Matches produced
// so far are kept and annotated; a running session observes the cancelled
// status between batches and stops.
func (uc *SessionUseCase) CancelSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.CanCancel() {
		return nil, domain.ErrSessionNotCancellable
	}

	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := uc.sessionRepo.UpdateStatus(ctx, tx, session.ID, domain.SessionStatusCancelled, "", &now); err != nil {
		return nil, err
	}
	session.Status = domain.SessionStatusCancelled
	session.CompletedAt = &now

	if err := uc.emitOutcome(ctx, tx, session, domain.EventTypeSessionCancelled, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SessionsCancelled.Inc()
	}

	if err := uc.matchRepo.AnnotateSession(ctx, session.ID, CancelledMatchNote); err != nil {
		return nil, err
	}

	return session, nil
}

// GetSession returns a session by id.
func (uc *SessionUseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return uc.sessionRepo.GetByID(ctx, sessionID)
}

// ListSessions returns an account's sessions, newest first.
func (uc *SessionUseCase) ListSessions(ctx context.Context, accountRef string, limit, offset int) ([]*domain.Session, error) {
	if accountRef == "" {
		return nil, domain.ErrValidation
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.sessionRepo.ListByAccount(ctx, accountRef, limit, offset)
}

// ListMatches returns a session's matches.
func (uc *SessionUseCase) ListMatches(ctx context.Context, sessionID string, limit, offset int) ([]*domain.Match, error) {
	if _, err := uc.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.matchRepo.ListBySession(ctx, sessionID, limit, offset)
}

// ListDiscrepancies returns a session's discrepancies.
func (uc *SessionUseCase) ListDiscrepancies(ctx context.Context, sessionID string, limit, offset int) ([]*domain.Discrepancy, error) {
	if _, err := uc.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.discrepancyRepo.ListBySession(ctx, sessionID, limit, offset)
}

func (uc *SessionUseCase) persistLines(ctx context.Context, lines []*domain.StatementLine) error {
	return uc.withRetry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := uc.lineRepo.CreateBatch(ctx, tx, lines); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
}

func (uc *SessionUseCase) persistMatches(ctx context.Context, matches []*domain.Match) error {
	if len(matches) == 0 {
		return nil
	}

	return uc.withRetry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := uc.matchRepo.CreateBatch(ctx, tx, matches); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
}

func (uc *SessionUseCase) persistDiscrepancies(ctx context.Context, discrepancies []*domain.Discrepancy) error {
	if len(discrepancies) == 0 {
		return nil
	}

	return uc.withRetry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := uc.discrepancyRepo.CreateBatch(ctx, tx, discrepancies); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
}

func (uc *SessionUseCase) activeRules(ctx context.Context) ([]*domain.Rule, error) {
	if uc.ruleCache != nil {
		if rules, err := uc.ruleCache.Get(ctx); err == nil && rules != nil {
			return rules, nil
		}
	}

	rules, err := uc.ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if uc.ruleCache != nil {
		_ = uc.ruleCache.Set(ctx, rules, DefaultRuleCacheTTL)
	}

	return rules, nil
}

// flushRuleStats folds the session's rule counters into lifetime stats.
// Usage counters are advisory, so flush failures do not fail the session.
func (uc *SessionUseCase) flushRuleStats(ctx context.Context, stats map[string]matcher.RuleUsage) {
	for id, usage := range stats {
		_ = uc.ruleRepo.RecordUsage(ctx, id, usage.Evaluated, usage.Hits)
		if uc.metrics != nil {
			uc.metrics.RuleEvaluations.WithLabelValues(id, "hit").Add(float64(usage.Hits))
			uc.metrics.RuleEvaluations.WithLabelValues(id, "miss").Add(float64(usage.Evaluated - usage.Hits))
		}
	}
}

// finalize commits totals, the completed status, and the outcome event in
// one transaction.
func (uc *SessionUseCase) finalize(ctx context.Context, session *domain.Session, totals domain.SessionTotals) (*domain.Session, error) {
	now := time.Now().UTC()

	err := uc.withRetry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := uc.sessionRepo.UpdateTotals(ctx, tx, session.ID, totals); err != nil {
			return err
		}
		if err := uc.sessionRepo.UpdateStatus(ctx, tx, session.ID, domain.SessionStatusCompleted, "", &now); err != nil {
			return err
		}

		session.Totals = totals
		session.Status = domain.SessionStatusCompleted
		session.CompletedAt = &now

		if err := uc.emitOutcome(ctx, tx, session, domain.EventTypeSessionCompleted, now); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SessionsCompleted.Inc()
	}

	return session, nil
}

func (uc *SessionUseCase) fail(ctx context.Context, session *domain.Session, reason string) (*domain.Session, error) {
	now := time.Now().UTC()

	err := uc.withRetry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := uc.sessionRepo.UpdateStatus(ctx, tx, session.ID, domain.SessionStatusFailed, reason, &now); err != nil {
			return err
		}

		session.Status = domain.SessionStatusFailed
		session.FailureReason = reason
		session.CompletedAt = &now

		if err := uc.emitOutcome(ctx, tx, session, domain.EventTypeSessionFailed, now); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SessionsFailed.Inc()
	}

	return session, nil
}

func (uc *SessionUseCase) emitOutcome(ctx context.Context, tx Transaction, session *domain.Session, eventType string, now time.Time) error {
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   session.ID,
		AggregateType: domain.AggregateTypeSession,
		EventType:     eventType,
		Payload:       domain.SessionOutcomePayload(session),
		CreatedAt:     now,
		Published:     false,
	}
	return uc.outboxRepo.Create(ctx, tx, event)
}
