package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
	"github.com/atlas-erp/atlas-erp/internal/ledger/periods"
	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
	internalshared "github.com/atlas-erp/atlas-erp/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

// Observer counts posted entries.
type Observer interface {
	EntryPosted(entryType string)
}

// CacheInvalidator drops cached reports after a balance mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, orgID int64)
}

// Service is the journal entry engine: the single choke point through which
// every balance mutation flows. Manual callers, the depreciation scheduler,
// and the payroll job all post through it.
type Service struct {
	repo        Repository
	audit       AuditPort
	observer    Observer
	invalidator CacheInvalidator
	now         func() time.Time
}

// NewService constructs the engine.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithObserver attaches a posted-entry counter.
func (s *Service) WithObserver(o Observer) {
	s.observer = o
}

// WithCacheInvalidator attaches report cache invalidation on post.
func (s *Service) WithCacheInvalidator(c CacheInvalidator) {
	s.invalidator = c
}

func (s *Service) notifyPosted(ctx context.Context, entry Entry) {
	if s.observer != nil {
		s.observer.EntryPosted(string(entry.Type))
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, entry.OrgID)
	}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) Get(ctx context.Context, orgID, entryID int64) (Entry, error) {
	return s.repo.GetEntry(ctx, orgID, entryID)
}

func (s *Service) List(ctx context.Context, orgID int64) ([]Entry, error) {
	return s.repo.List(ctx, orgID)
}

// Create validates the input and stores a draft entry. Drafts are invisible
// to balances and reports until posted.
func (s *Service) Create(ctx context.Context, in CreateInput) (Entry, error) {
	if err := in.Validate(); err != nil {
		return Entry{}, err
	}
	if in.Type == "" {
		in.Type = EntryTypeStandard
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := ensureOpenPeriod(ctx, tx, in.OrgID, in.Date); err != nil {
			return err
		}
		if _, err := resolveAccounts(ctx, tx, in.OrgID, toLines(0, in.Lines)); err != nil {
			return err
		}
		number, err := tx.NextNumber(ctx, in.OrgID)
		if err != nil {
			return err
		}
		inserted, err := tx.InsertEntry(ctx, Entry{
			OrgID:        in.OrgID,
			Number:       number,
			Date:         in.Date,
			Memo:         in.Memo,
			Type:         in.Type,
			Status:       EntryStatusDraft,
			SourceModule: in.SourceModule,
			SourceKey:    in.SourceKey,
			CreatedBy:    in.ActorID,
		})
		if err != nil {
			return err
		}
		lines := toLines(inserted.ID, in.Lines)
		if err := tx.InsertLines(ctx, inserted.ID, lines); err != nil {
			return err
		}
		if in.SourceModule != "" {
			if err := tx.LinkSource(ctx, in.OrgID, in.SourceModule, in.SourceKey, inserted.ID); err != nil {
				return err
			}
		}
		inserted.Lines = lines
		entry = inserted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.record(ctx, in.ActorID, "journal.create", entry.ID, map[string]any{"number": entry.Number})
	return entry, nil
}

// Post transitions a draft to posted and applies every line delta to the
// chart of accounts. The whole step commits atomically or not at all.
func (s *Service) Post(ctx context.Context, orgID, entryID, actorID int64) (Entry, error) {
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, orgID, entryID)
		if err != nil {
			return err
		}
		if current.Status != EntryStatusDraft {
			return fmt.Errorf("%w: entry %d is %s", shared.ErrInvalidStatus, current.Number, current.Status)
		}
		posted, err := s.postLocked(ctx, tx, current, actorID)
		if err != nil {
			return err
		}
		entry = posted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.notifyPosted(ctx, entry)
	s.record(ctx, actorID, "journal.post", entry.ID, map[string]any{"number": entry.Number})
	return entry, nil
}

// postLocked performs the atomic posting step against an entry already locked
// in the transaction: re-validate the balance invariant, check the period,
// apply deltas, flip status.
func (s *Service) postLocked(ctx context.Context, tx TxRepository, entry Entry, actorID int64) (Entry, error) {
	debit, credit := Totals(entry.Lines)
	if !debit.Equal(credit) {
		return Entry{}, fmt.Errorf("%w: debits %s vs credits %s", shared.ErrUnbalanced, debit.StringFixed(2), credit.StringFixed(2))
	}
	if !debit.IsPositive() {
		return Entry{}, shared.ErrZeroAmount
	}
	if err := ensureOpenPeriod(ctx, tx, entry.OrgID, entry.Date); err != nil {
		return Entry{}, err
	}
	accounts, err := resolveAccounts(ctx, tx, entry.OrgID, entry.Lines)
	if err != nil {
		return Entry{}, err
	}
	for _, line := range entry.Lines {
		account := accounts[line.AccountID]
		if err := tx.ApplyBalanceDelta(ctx, line.AccountID, line.Delta(account.Type.NormalSide())); err != nil {
			return Entry{}, err
		}
	}
	if err := tx.UpdateEntryStatus(ctx, entry.ID, EntryStatusPosted, &actorID); err != nil {
		return Entry{}, err
	}
	entry.Status = EntryStatusPosted
	entry.PostedBy = &actorID
	postedAt := s.now()
	entry.PostedAt = &postedAt
	return entry, nil
}

// PostNew creates and posts an entry in a single transaction. Automated
// posters (depreciation, payroll) use this path so the source link, the
// entry, and the balance deltas commit as one unit.
func (s *Service) PostNew(ctx context.Context, in CreateInput) (Entry, error) {
	if err := in.Validate(); err != nil {
		return Entry{}, err
	}
	if in.Type == "" {
		in.Type = EntryTypeStandard
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := tx.NextNumber(ctx, in.OrgID)
		if err != nil {
			return err
		}
		inserted, err := tx.InsertEntry(ctx, Entry{
			OrgID:        in.OrgID,
			Number:       number,
			Date:         in.Date,
			Memo:         in.Memo,
			Type:         in.Type,
			Status:       EntryStatusDraft,
			SourceModule: in.SourceModule,
			SourceKey:    in.SourceKey,
			CreatedBy:    in.ActorID,
		})
		if err != nil {
			return err
		}
		lines := toLines(inserted.ID, in.Lines)
		if err := tx.InsertLines(ctx, inserted.ID, lines); err != nil {
			return err
		}
		if in.SourceModule != "" {
			if err := tx.LinkSource(ctx, in.OrgID, in.SourceModule, in.SourceKey, inserted.ID); err != nil {
				return err
			}
		}
		inserted.Lines = lines
		posted, err := s.postLocked(ctx, tx, inserted, in.ActorID)
		if err != nil {
			return err
		}
		entry = posted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.notifyPosted(ctx, entry)
	s.record(ctx, in.ActorID, "journal.post", entry.ID, map[string]any{
		"number":        entry.Number,
		"source_module": in.SourceModule,
		"source_key":    in.SourceKey,
	})
	return entry, nil
}

// Reverse negates a posted entry by posting its mirror image and linking the
// pair. The original keeps its balance effects and moves to REVERSED.
func (s *Service) Reverse(ctx context.Context, in ReverseInput) (Entry, error) {
	var reversal Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetEntryForUpdate(ctx, in.OrgID, in.EntryID)
		if err != nil {
			return err
		}
		switch original.Status {
		case EntryStatusReversed:
			return fmt.Errorf("%w: entry %d", shared.ErrAlreadyReversed, original.Number)
		case EntryStatusDraft:
			return fmt.Errorf("%w: entry %d is a draft", shared.ErrInvalidStatus, original.Number)
		}
		number, err := tx.NextNumber(ctx, in.OrgID)
		if err != nil {
			return err
		}
		memo := in.Reason
		if memo == "" {
			memo = fmt.Sprintf("Reversal of JE %d", original.Number)
		}
		inserted, err := tx.InsertEntry(ctx, Entry{
			OrgID:      in.OrgID,
			Number:     number,
			Date:       original.Date,
			Memo:       memo,
			Type:       EntryTypeReversal,
			Status:     EntryStatusDraft,
			ReversalOf: &original.ID,
			CreatedBy:  in.ActorID,
		})
		if err != nil {
			return err
		}
		lines := toLines(inserted.ID, mirrorLines(original.Lines))
		if err := tx.InsertLines(ctx, inserted.ID, lines); err != nil {
			return err
		}
		inserted.Lines = lines
		posted, err := s.postLocked(ctx, tx, inserted, in.ActorID)
		if err != nil {
			return err
		}
		if err := tx.SetReversalLinks(ctx, original.ID, posted.ID); err != nil {
			return err
		}
		if err := tx.UpdateEntryStatus(ctx, original.ID, EntryStatusReversed, nil); err != nil {
			return err
		}
		posted.ReversalOf = &original.ID
		reversal = posted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.notifyPosted(ctx, reversal)
	s.record(ctx, in.ActorID, "journal.reverse", in.EntryID, map[string]any{
		"reversal_id":     reversal.ID,
		"reversal_number": reversal.Number,
		"reason":          in.Reason,
	})
	return reversal, nil
}

// Update edits a draft entry in place. Posted entries are immutable.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Entry, error) {
	if err := validateLines(in.Lines); err != nil {
		return Entry{}, err
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, in.OrgID, in.EntryID)
		if err != nil {
			return err
		}
		if current.Status != EntryStatusDraft {
			return fmt.Errorf("%w: entry %d is %s", shared.ErrImmutable, current.Number, current.Status)
		}
		if err := ensureOpenPeriod(ctx, tx, in.OrgID, in.Date); err != nil {
			return err
		}
		lines := toLines(current.ID, in.Lines)
		if _, err := resolveAccounts(ctx, tx, in.OrgID, lines); err != nil {
			return err
		}
		if err := tx.UpdateEntryHeader(ctx, current.ID, in.Date, in.Memo); err != nil {
			return err
		}
		if err := tx.ReplaceLines(ctx, current.ID, lines); err != nil {
			return err
		}
		current.Date = in.Date
		current.Memo = in.Memo
		current.Lines = lines
		entry = current
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.record(ctx, in.ActorID, "journal.update", entry.ID, map[string]any{"number": entry.Number})
	return entry, nil
}

// Delete removes a draft entry. Its number is never reassigned.
func (s *Service) Delete(ctx context.Context, orgID, entryID, actorID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, orgID, entryID)
		if err != nil {
			return err
		}
		if current.Status != EntryStatusDraft {
			return fmt.Errorf("%w: entry %d is %s", shared.ErrImmutable, current.Number, current.Status)
		}
		return tx.DeleteEntry(ctx, current.ID)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actorID, "journal.delete", entryID, nil)
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, entryID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalshared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "journal_entry",
		EntityID: fmt.Sprintf("%d", entryID),
		Meta:     meta,
		At:       s.now(),
	})
}

func ensureOpenPeriod(ctx context.Context, tx TxRepository, orgID int64, date time.Time) error {
	period, found, err := tx.GetPeriodForDate(ctx, orgID, date)
	if err != nil {
		return err
	}
	if found && period.Status == periods.StatusClosed {
		return fmt.Errorf("%w: %s falls in period %s", shared.ErrPeriodClosed, date.Format("2006-01-02"), period.Code)
	}
	return nil
}

func resolveAccounts(ctx context.Context, tx TxRepository, orgID int64, lines []Line) (map[int64]coa.Account, error) {
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]bool, len(lines))
	for _, line := range lines {
		if !seen[line.AccountID] {
			seen[line.AccountID] = true
			ids = append(ids, line.AccountID)
		}
	}
	accounts, err := tx.GetActiveAccounts(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}
	for idx, line := range lines {
		if _, ok := accounts[line.AccountID]; !ok {
			return nil, fmt.Errorf("%w: line %d references account %d", shared.ErrInvalidAccount, idx+1, line.AccountID)
		}
	}
	return accounts, nil
}
