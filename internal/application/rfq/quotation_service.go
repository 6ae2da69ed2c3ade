package rfq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/currency"
	"github.com/erp/crm/internal/domain/rfq"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CodePrintingUnavailable is returned when no PDF renderer is configured
const CodePrintingUnavailable = "PRINTING_UNAVAILABLE"

// ErrPrintingUnavailable reports a missing PDF renderer
var ErrPrintingUnavailable = shared.NewDomainError(CodePrintingUnavailable, "Quotation printing is not configured")

// QuotationDocument is everything a rendered quotation shows
type QuotationDocument struct {
	Quotation   QuotationResponse
	RFQNumber   string
	RFQTitle    string
	GeneratedAt time.Time
}

// QuotationRenderer renders quotation documents to PDF
type QuotationRenderer interface {
	RenderQuotation(ctx context.Context, doc QuotationDocument) ([]byte, error)
}

// QuotationService handles the product manager side of the workflow
type QuotationService struct {
	quotationRepo  rfq.QuotationRepository
	rfqRepo        rfq.RFQRepository
	productRepo    catalog.ProductRepository
	rates          currency.RateSource
	renderer       QuotationRenderer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotationRepo rfq.QuotationRepository,
	rfqRepo rfq.RFQRepository,
	productRepo catalog.ProductRepository,
	rates currency.RateSource,
	logger *zap.Logger,
) *QuotationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotationService{
		quotationRepo: quotationRepo,
		rfqRepo:       rfqRepo,
		productRepo:   productRepo,
		rates:         rates,
		logger:        logger,
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *QuotationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRenderer sets the PDF renderer
func (s *QuotationService) SetRenderer(renderer QuotationRenderer) {
	s.renderer = renderer
}

// Create starts a draft quotation for an RFQ accepting quotations
func (s *QuotationService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateQuotationRequest) (*QuotationResponse, error) {
	code, err := valueobject.ParseCurrencyCode(req.Currency)
	if err != nil {
		return nil, err
	}
	if s.rates != nil {
		if _, err := s.rates.Rate(ctx, tenantID, code); err != nil {
			return nil, err
		}
	}

	r, err := s.rfqRepo.FindByID(ctx, tenantID, req.RFQID)
	if err != nil {
		return nil, err
	}

	generate := func(ctx context.Context) (string, error) {
		number, err := s.quotationRepo.GenerateNumber(ctx, tenantID)
		if err != nil {
			return "", fmt.Errorf("failed to generate quotation number: %w", err)
		}
		return number, nil
	}
	build := func(number string) (*rfq.Quotation, error) {
		q, err := rfq.NewQuotation(tenantID, number, req.Title, r, userID, code)
		if err != nil {
			return nil, err
		}
		q.Description = req.Description
		q.ValidUntil = req.ValidUntil
		q.DeliveryTime = req.DeliveryTime
		q.PaymentTerms = req.PaymentTerms
		q.DeliveryTerms = req.DeliveryTerms
		q.Notes = req.Notes
		q.ExtID = req.ExtID
		return q, nil
	}

	q, err := createNumbered(ctx, generate, build, s.quotationRepo.Create)
	if err != nil {
		return nil, err
	}
	publishEvents(ctx, s.eventPublisher, s.logger, q)

	s.logger.Info("quotation created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("quotation_id", q.ID.String()),
		zap.String("rfq_id", r.ID.String()),
		zap.String("number", q.Number),
	)
	resp := ToQuotationResponse(q)
	return &resp, nil
}

// GetByID retrieves a quotation with its items
func (s *QuotationService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToQuotationResponse(q)
	return &resp, nil
}

// ListByRFQ returns all quotations answering an RFQ
func (s *QuotationService) ListByRFQ(ctx context.Context, tenantID, rfqID uuid.UUID) ([]QuotationResponse, error) {
	list, err := s.quotationRepo.FindByRFQ(ctx, tenantID, rfqID)
	if err != nil {
		return nil, err
	}
	out := make([]QuotationResponse, 0, len(list))
	for i := range list {
		out = append(out, ToQuotationResponse(&list[i]))
	}
	return out, nil
}

// AddItem prices a line against an RFQ item under a row lock
func (s *QuotationService) AddItem(ctx context.Context, tenantID, id uuid.UUID, req AddQuotationItemRequest) (*QuotationItemResponse, error) {
	if err := checkCatalogProduct(ctx, s.productRepo, tenantID, req.ProductID); err != nil {
		return nil, err
	}

	current, err := s.quotationRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	// RFQ lines are append-only, so reading them outside the lock is safe
	r, err := s.rfqRepo.FindByID(ctx, tenantID, current.RFQID)
	if err != nil {
		return nil, err
	}
	rfqItem := r.GetItem(req.RFQItemID)
	if rfqItem == nil {
		return nil, rfq.ErrItemNotInRFQ
	}

	var added rfq.QuotationItem
	q, err := s.quotationRepo.Mutate(ctx, tenantID, id, func(q *rfq.Quotation) error {
		item, err := q.AddItem(rfqItem, req.toInput())
		if err != nil {
			return err
		}
		added = *item
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvents(ctx, s.eventPublisher, s.logger, q)

	resp := ToQuotationItemResponse(&added)
	return &resp, nil
}

// Submit sends a draft quotation to the sales side
func (s *QuotationService) Submit(ctx context.Context, tenantID, id uuid.UUID) (*QuotationResponse, error) {
	return s.mutate(ctx, tenantID, id, "submit", (*rfq.Quotation).Submit)
}

// Accept records the buyer's acceptance
func (s *QuotationService) Accept(ctx context.Context, tenantID, id uuid.UUID) (*QuotationResponse, error) {
	return s.mutate(ctx, tenantID, id, "accept", (*rfq.Quotation).Accept)
}

// Reject records the buyer's rejection
func (s *QuotationService) Reject(ctx context.Context, tenantID, id uuid.UUID, req ReasonRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, tenantID, id, "reject", func(q *rfq.Quotation) error {
		return q.Reject(req.Reason)
	})
}

// Expire closes a submitted quotation whose validity ended
func (s *QuotationService) Expire(ctx context.Context, tenantID, id uuid.UUID) (*QuotationResponse, error) {
	now := s.now()
	return s.mutate(ctx, tenantID, id, "expire", func(q *rfq.Quotation) error {
		return q.Expire(now)
	})
}

// ExpireOverdue expires up to limit submitted quotations of any tenant whose
// validity ended before now and returns how many it expired. Quotations
// decided in the meantime are skipped.
func (s *QuotationService) ExpireOverdue(ctx context.Context, now time.Time, limit int) (int, error) {
	refs, err := s.quotationRepo.FindOverdue(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to find overdue quotations: %w", err)
	}

	expired := 0
	for _, ref := range refs {
		_, err := s.mutate(ctx, ref.TenantID, ref.ID, "expire", func(q *rfq.Quotation) error {
			return q.Expire(now)
		})
		switch {
		case err == nil:
			expired++
		case errors.Is(err, shared.ErrInvalidState), errors.Is(err, shared.ErrConcurrentModification):
			s.logger.Debug("overdue quotation already decided",
				zap.String("tenant_id", ref.TenantID.String()),
				zap.String("quotation_id", ref.ID.String()),
			)
		default:
			return expired, fmt.Errorf("failed to expire quotation %s: %w", ref.ID, err)
		}
	}
	return expired, nil
}

// RenderPDF renders the quotation document
func (s *QuotationService) RenderPDF(ctx context.Context, tenantID, id uuid.UUID) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", ErrPrintingUnavailable
	}
	q, err := s.quotationRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, "", err
	}
	r, err := s.rfqRepo.FindByID(ctx, tenantID, q.RFQID)
	if err != nil {
		return nil, "", err
	}

	doc := QuotationDocument{
		Quotation:   ToQuotationResponse(q),
		RFQNumber:   r.Number,
		RFQTitle:    r.Title,
		GeneratedAt: s.now(),
	}
	pdf, err := s.renderer.RenderQuotation(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render quotation %s: %w", q.Number, err)
	}
	return pdf, q.Number + ".pdf", nil
}

func (s *QuotationService) mutate(ctx context.Context, tenantID, id uuid.UUID, action string, fn rfq.QuotationMutation) (*QuotationResponse, error) {
	q, err := s.quotationRepo.Mutate(ctx, tenantID, id, fn)
	if err != nil {
		return nil, err
	}
	publishEvents(ctx, s.eventPublisher, s.logger, q)

	s.logger.Info("quotation updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("quotation_id", id.String()),
		zap.String("action", action),
		zap.String("status", q.Status.String()),
	)
	resp := ToQuotationResponse(q)
	return &resp, nil
}
