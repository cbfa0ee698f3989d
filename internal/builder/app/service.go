// Package app is the builder pricing service: it resolves a selection
// against the catalog and returns price and nutrition totals.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/mealprep-builder/internal/builder/domain"
	"github.com/jcmexdev/mealprep-builder/internal/catalog"
	"github.com/jcmexdev/mealprep-builder/internal/pkg/apperr"
)

const (
	msgBaseRequired = "baseId or baseSlug is required"
	msgBaseNotFound = "Base not found"
	msgUnavailable  = "Unable to calculate builder totals"
)

var tracer = otel.Tracer("github.com/jcmexdev/mealprep-builder/internal/builder")

// Selection is a base plus the chosen option ids. It lives for one request.
type Selection struct {
	BaseID    domain.ID
	BaseSlug  string
	OptionIDs []domain.ID
}

// BaseLine is the priced base in a quote.
type BaseLine struct {
	ID    domain.ID
	Name  string
	Price float64
}

// OptionLine is a resolved option in a quote.
type OptionLine struct {
	ID              domain.ID
	Name            string
	CategoryID      domain.ID
	PriceAdjustment float64
}

// Totals is derived per request and never stored.
type Totals struct {
	Price     float64
	Nutrition domain.MacroVector
}

// Quote is the pricing result for a selection.
type Quote struct {
	Base       BaseLine
	Options    []OptionLine
	Totals     Totals
	Validation domain.ValidationResult
	// Unresolved lists option ids the catalog did not return.
	Unresolved []domain.ID
}

// Service prices builder selections. It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	catalog catalog.Lookup
	strict  bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithStrictOptions rejects selections containing option ids the catalog
// cannot resolve instead of silently dropping them.
func WithStrictOptions(strict bool) ServiceOption {
	return func(s *Service) { s.strict = strict }
}

func NewService(lookup catalog.Lookup, opts ...ServiceOption) *Service {
	s := &Service{catalog: lookup}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Price resolves sel and computes its totals. The category rules are
// evaluated and reported on the quote but do not fail the call.
func (s *Service) Price(ctx context.Context, sel Selection) (*Quote, error) {
	ctx, span := tracer.Start(ctx, "builder.Price")
	defer span.End()
	span.SetAttributes(
		attribute.String("builder.base_id", string(sel.BaseID)),
		attribute.Int("builder.option_count", len(sel.OptionIDs)),
	)

	quote, err := s.resolve(ctx, sel)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.Message(err))
		return nil, err
	}
	span.SetAttributes(attribute.Float64("builder.total_price", quote.Totals.Price))
	return quote, nil
}

// ValidateSelection prices sel and fails with InvalidInput when a category
// rule is broken. Order admission calls it before committing a built meal.
func (s *Service) ValidateSelection(ctx context.Context, sel Selection) (*Quote, error) {
	quote, err := s.Price(ctx, sel)
	if err != nil {
		return nil, err
	}
	if !quote.Validation.Valid {
		return quote, apperr.InvalidInput(strings.Join(quote.Validation.Errors, "; "))
	}
	return quote, nil
}

func (s *Service) resolve(ctx context.Context, sel Selection) (*Quote, error) {
	q := catalog.BaseQuery{ID: sel.BaseID, Slug: sel.BaseSlug}
	if q.Empty() {
		return nil, apperr.InvalidInput(msgBaseRequired)
	}

	base, err := s.catalog.FindBase(ctx, q)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, apperr.NotFound(msgBaseNotFound)
		}
		slog.ErrorContext(ctx, "builder base lookup failed", "base_id", sel.BaseID, "base_slug", sel.BaseSlug, "error", err)
		return nil, apperr.Internal(msgUnavailable, err)
	}

	ids := uniqueIDs(sel.OptionIDs)
	options := []domain.Option{}
	if len(ids) > 0 {
		options, err = s.catalog.OptionsByIDs(ctx, ids)
		if err != nil {
			slog.ErrorContext(ctx, "builder option lookup failed", "option_ids", ids, "error", err)
			return nil, apperr.Internal(msgUnavailable, err)
		}
	}
	options = orderLike(ids, options)

	unresolved := missingIDs(ids, options)
	if len(unresolved) > 0 {
		if s.strict {
			return nil, apperr.InvalidInput(fmt.Sprintf("unknown option ids: %s", joinIDs(unresolved)))
		}
		slog.WarnContext(ctx, "builder dropped unresolved option ids", "base_id", base.ID, "option_ids", unresolved)
	}

	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "builder category lookup failed", "error", err)
		return nil, apperr.Internal(msgUnavailable, err)
	}

	adjustments := make([]float64, len(options))
	vectors := make([]domain.Nutrition, 0, len(options)+1)
	vectors = append(vectors, base.Nutrition)
	lines := make([]OptionLine, len(options))
	for i, opt := range options {
		adjustments[i] = opt.Adjustment()
		vectors = append(vectors, opt.Nutrition)
		lines[i] = OptionLine{
			ID:              opt.ID,
			Name:            opt.Name,
			CategoryID:      opt.CategoryID,
			PriceAdjustment: opt.Adjustment(),
		}
	}

	return &Quote{
		Base:    BaseLine{ID: base.ID, Name: base.Name, Price: base.Price()},
		Options: lines,
		Totals: Totals{
			Price:     domain.ComputePrice(base.Price(), adjustments),
			Nutrition: domain.Aggregate(vectors...),
		},
		Validation: domain.Validate(categories, domain.CountByCategory(options)),
		Unresolved: unresolved,
	}, nil
}

// uniqueIDs drops empty and repeated ids, keeping first occurrence order.
func uniqueIDs(ids []domain.ID) []domain.ID {
	seen := make(map[domain.ID]struct{}, len(ids))
	out := make([]domain.ID, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// orderLike sorts options into the order their ids were requested in.
func orderLike(ids []domain.ID, options []domain.Option) []domain.Option {
	pos := make(map[domain.ID]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	sort.SliceStable(options, func(a, b int) bool {
		return pos[options[a].ID] < pos[options[b].ID]
	})
	return options
}

func missingIDs(ids []domain.ID, options []domain.Option) []domain.ID {
	found := make(map[domain.ID]struct{}, len(options))
	for _, opt := range options {
		found[opt.ID] = struct{}{}
	}
	var missing []domain.ID
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []domain.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
