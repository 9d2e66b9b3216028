package importer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"
)

// Placeholder enrichment written on auto-imported leads. The real summary
// write stays owned by the enrichment worker.
const (
	ImportedSummary    = "Lead imported automatically from RandomUser API"
	ImportedNextAction = "Contact to validate data"
)

// Importer runs the periodic contact import. The check-then-insert sequence is
// not atomic; the email uniqueness constraint converts any race between
// overlapping runs into a Conflict, which the importer treats as "already
// imported".
type Importer struct {
	source   ContactSource
	repo     repository.LeadsRepository
	interval time.Duration
	log      *logger.Logger
	running  sync.Mutex
}

// New creates an importer that runs at the given interval.
func New(source ContactSource, repo repository.LeadsRepository, interval time.Duration, log *logger.Logger) *Importer {
	return &Importer{
		source:   source,
		repo:     repo,
		interval: interval,
		log:      log.WithComponent("lead-importer"),
	}
}

// Run executes one import immediately and then on every tick until ctx is
// cancelled.
func (i *Importer) Run(ctx context.Context) {
	i.runGuarded(ctx)

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.runGuarded(ctx)
		}
	}
}

// runGuarded skips the cycle when the previous run is still in flight, so
// runs never overlap within one process.
func (i *Importer) runGuarded(ctx context.Context) {
	if !i.running.TryLock() {
		i.log.Warn("previous import still running, skipping cycle")
		return
	}
	defer i.running.Unlock()

	inserted, err := i.RunOnce(ctx)
	if err != nil {
		i.log.Error("import cycle aborted", "error", err)
		return
	}
	i.log.Info("import cycle finished", "inserted", inserted)
}

// RunOnce fetches one batch and inserts every previously-unseen contact as a
// lead with the auto-import placeholder. It returns the count of newly
// inserted leads. A source failure aborts the cycle before any writes; a
// store failure aborts the remainder of the cycle.
func (i *Importer) RunOnce(ctx context.Context) (int, error) {
	contacts, err := i.source.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("contact source unavailable: %w", err)
	}

	inserted := 0
	for _, contact := range contacts {
		existing, err := i.repo.GetByEmail(ctx, contact.Email)
		if err != nil {
			return inserted, err
		}
		if existing != nil {
			continue
		}

		summary := ImportedSummary
		nextAction := ImportedNextAction

		params := repository.CreateLeadParams{
			Name:       contactName(contact),
			Email:      contact.Email,
			Summary:    &summary,
			NextAction: &nextAction,
		}
		if normalized := phone.NormalizeE164(contact.Phone); normalized != "" {
			params.Phone = &normalized
		}

		_, err = i.repo.Create(ctx, params)
		if apperr.Is(err, apperr.KindConflict) {
			// Lost the check-then-insert race to a concurrent run: the lead
			// exists, which is the outcome we wanted.
			i.log.Debug("contact already imported", "email", contact.Email)
			continue
		}
		if err != nil {
			return inserted, err
		}

		inserted++
	}

	return inserted, nil
}

func contactName(contact Contact) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", contact.FirstName, contact.LastName))
}
