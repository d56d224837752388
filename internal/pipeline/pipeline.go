package pipeline

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carport-configurator/internal/catalog"
	"carport-configurator/internal/configuration"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	FindColorByName(ctx context.Context, line catalog.ProductLine, name string) (*catalog.Entity, error)
	InsertSteelConfiguration(ctx context.Context, rec *configuration.Record, structureColorID *string) (int64, error)
	InsertWoodConfiguration(ctx context.Context, rec *configuration.Record) (int64, error)
}

// Notifier dispatches the post-persistence notifications. Its error only
// feeds the auxiliary email-sent flag.
type Notifier interface {
	Dispatch(ctx context.Context, rec *configuration.Record, id int64) error
}

// Result is the wizard-facing submission outcome. EmailSent is best-effort
// feedback only and never part of control flow. Err carries the typed error
// behind the user-facing message.
type Result struct {
	Success   bool   `json:"success"`
	ID        int64  `json:"id,omitempty"`
	Error     string `json:"error,omitempty"`
	EmailSent bool   `json:"email_sent"`

	Err error `json:"-"`
}

// Pipeline is the single authoritative entry point turning an assembled
// candidate into a persisted record plus a best-effort notification:
// validate → branch by product line → persist → notify.
type Pipeline struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger

	insertTimeout time.Duration
	notifyTimeout time.Duration
}

func New(store Store, notifier Notifier, logger *zap.Logger, insertTimeout, notifyTimeout time.Duration) *Pipeline {
	if insertTimeout <= 0 {
		insertTimeout = 5 * time.Second
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 15 * time.Second
	}
	return &Pipeline{
		store:         store,
		notifier:      notifier,
		logger:        logger,
		insertTimeout: insertTimeout,
		notifyTimeout: notifyTimeout,
	}
}

// Submit runs the pipeline for one candidate. No deduplication is performed:
// submitting the same candidate twice persists two rows.
func (p *Pipeline) Submit(ctx context.Context, rec *configuration.Record) Result {
	if err := validate(rec); err != nil {
		p.logger.Info("Submission rejected", zap.String("reason", err.Error()))
		return Result{Error: userFacingMessage(err), Err: err}
	}

	structureColorID := p.branch(ctx, rec)

	id, err := p.persist(ctx, rec, structureColorID)
	if err != nil {
		perr := &PersistenceError{Err: err}
		p.logger.Error("Failed to persist configuration",
			zap.String("product_line", string(rec.ProductLine)),
			zap.Error(err))
		return Result{Error: userFacingMessage(perr), Err: perr}
	}

	p.logger.Info("Configuration persisted",
		zap.Int64("id", id),
		zap.String("product_line", string(rec.ProductLine)),
		zap.Float64("total_price", rec.TotalPrice))

	emailSent := false
	if p.notifier != nil {
		// Detached from the request: the submission outcome is already
		// decided, losing a notification is acceptable, losing the lead is
		// not.
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.notifyTimeout)
		defer cancel()

		if err := p.notifier.Dispatch(notifyCtx, rec, id); err != nil {
			p.logger.Error("Notification dispatch failed",
				zap.Int64("id", id),
				zap.Error(err))
		} else {
			emailSent = true
		}
	}

	return Result{Success: true, ID: id, EmailSent: emailSent}
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// validate fails fast on the first missing or malformed required field.
// Nothing is written before this passes.
func validate(rec *configuration.Record) error {
	if err := rec.CheckVariant(); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	switch rec.ProductLine {
	case catalog.LineSteel:
		steel := rec.Steel
		if steel.ModelID == "" {
			return &ValidationError{Reason: "model selection is required"}
		}
		if steel.CoverageID == "" {
			return &ValidationError{Reason: "coverage selection is required"}
		}
		if steel.StructureColor == "" {
			return &ValidationError{Reason: "structure color selection is required"}
		}

	case catalog.LineWood:
		wood := rec.Wood
		if wood.StructureTypeID == "" {
			return &ValidationError{Reason: "structure type selection is required"}
		}
		if wood.ModelID == "" {
			return &ValidationError{Reason: "model selection is required"}
		}
		if wood.CoverageID == "" {
			return &ValidationError{Reason: "coverage selection is required"}
		}
		if wood.ColorID == "" {
			return &ValidationError{Reason: "color selection is required"}
		}
		if wood.SurfaceID == "" {
			return &ValidationError{Reason: "surface selection is required"}
		}
	}

	customer := rec.Customer
	if customer.Name == "" {
		return &ValidationError{Reason: "customer name is required"}
	}
	if customer.Email == "" {
		return &ValidationError{Reason: "customer email is required"}
	}
	if !emailPattern.MatchString(customer.Email) {
		return &ValidationError{Reason: "customer email is not a valid address"}
	}
	if customer.Phone == "" {
		return &ValidationError{Reason: "customer phone is required"}
	}

	return nil
}

// branch resolves the steel structure color to a reference. A well-formed
// UUID passes through verbatim with no catalog query; a free-text name is
// matched case-insensitively against the steel color catalog. An unresolved
// name persists a NULL reference rather than failing the submission. Wood
// references are used verbatim; the asymmetry mirrors the persisted schemas.
func (p *Pipeline) branch(ctx context.Context, rec *configuration.Record) *string {
	if rec.ProductLine != catalog.LineSteel {
		return nil
	}

	color := rec.Steel.StructureColor
	if err := uuid.Validate(color); err == nil {
		return &color
	}

	entity, err := p.store.FindColorByName(ctx, catalog.LineSteel, color)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			p.logger.Warn("Structure color not resolved, persisting NULL",
				zap.String("color", color))
		} else {
			p.logger.Warn("Structure color lookup failed, persisting NULL",
				zap.String("color", color),
				zap.Error(err))
		}
		return nil
	}

	return &entity.ID
}

// persist issues the single insert for the product line's table, with one
// bounded retry. The insert itself is atomic; a duplicate submission simply
// creates a second row.
func (p *Pipeline) persist(ctx context.Context, rec *configuration.Record, structureColorID *string) (int64, error) {
	var id int64

	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.insertTimeout)
		defer cancel()

		var err error
		if rec.ProductLine == catalog.LineSteel {
			id, err = p.store.InsertSteelConfiguration(attemptCtx, rec, structureColorID)
		} else {
			id, err = p.store.InsertWoodConfiguration(attemptCtx, rec)
		}
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 1)
	if err := backoff.Retry(attempt, backoff.WithContext(policy, ctx)); err != nil {
		return 0, err
	}

	return id, nil
}
