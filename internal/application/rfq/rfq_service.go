package rfq

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/rfq"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RFQService handles the sales side of the RFQ workflow
type RFQService struct {
	rfqRepo        rfq.RFQRepository
	companyRepo    partner.CompanyRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewRFQService creates a new RFQService
func NewRFQService(
	rfqRepo rfq.RFQRepository,
	companyRepo partner.CompanyRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *RFQService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RFQService{
		rfqRepo:     rfqRepo,
		companyRepo: companyRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *RFQService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens a draft RFQ for a company, optionally with initial items
func (s *RFQService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateRFQRequest) (*RFQResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, tenantID, req.CompanyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Company not found")
		}
		return nil, err
	}
	if !company.CanRequestQuotes() {
		return nil, rfq.ErrCompanyBlacklisted
	}

	if req.ContactID != nil {
		contact, err := s.companyRepo.FindContact(ctx, tenantID, *req.ContactID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, rfq.ErrContactNotInCompany
			}
			return nil, err
		}
		if !contact.BelongsTo(company.ID) {
			return nil, rfq.ErrContactNotInCompany
		}
	}

	for _, itemReq := range req.Items {
		if err := s.checkCatalogProduct(ctx, tenantID, itemReq.ProductID); err != nil {
			return nil, err
		}
	}

	generate := func(ctx context.Context) (string, error) {
		number, err := s.rfqRepo.GenerateNumber(ctx, tenantID)
		if err != nil {
			return "", fmt.Errorf("failed to generate RFQ number: %w", err)
		}
		return number, nil
	}
	build := func(number string) (*rfq.RFQ, error) {
		r, err := rfq.NewRFQ(tenantID, number, req.Title, company.ID, userID)
		if err != nil {
			return nil, err
		}
		r.ContactID = req.ContactID
		r.Deadline = req.Deadline
		r.Description = req.Description
		r.DeliveryAddress = req.DeliveryAddress
		r.PaymentTerms = req.PaymentTerms
		r.DeliveryTerms = req.DeliveryTerms
		r.Notes = req.Notes
		r.ExtID = req.ExtID
		if req.Priority != "" {
			if err := r.SetPriority(rfq.Priority(req.Priority)); err != nil {
				return nil, err
			}
		}
		for _, itemReq := range req.Items {
			if _, err := r.AddItem(itemReq.toInput()); err != nil {
				return nil, err
			}
		}
		return r, nil
	}

	r, err := createNumbered(ctx, generate, build, s.rfqRepo.Create)
	if err != nil {
		return nil, err
	}
	publishEvents(ctx, s.eventPublisher, s.logger, r)

	s.logger.Info("rfq created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("rfq_id", r.ID.String()),
		zap.String("number", r.Number),
		zap.Int("items", r.ItemCount()),
	)
	resp := ToRFQResponse(r)
	return &resp, nil
}

// GetByID retrieves an RFQ with its items
func (s *RFQService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*RFQResponse, error) {
	r, err := s.rfqRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToRFQResponse(r)
	return &resp, nil
}

// AddItem appends a line under a row lock
func (s *RFQService) AddItem(ctx context.Context, tenantID, id uuid.UUID, req AddRFQItemRequest) (*RFQItemResponse, error) {
	if err := s.checkCatalogProduct(ctx, tenantID, req.ProductID); err != nil {
		return nil, err
	}

	var added rfq.RFQItem
	r, err := s.rfqRepo.Mutate(ctx, tenantID, id, func(r *rfq.RFQ) error {
		item, err := r.AddItem(req.toInput())
		if err != nil {
			return err
		}
		added = *item
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvents(ctx, s.eventPublisher, s.logger, r)

	resp := ToRFQItemResponse(&added)
	return &resp, nil
}

// Submit sends a draft RFQ to product managers
func (s *RFQService) Submit(ctx context.Context, tenantID, id uuid.UUID) (*RFQResponse, error) {
	return s.mutate(ctx, tenantID, id, "submit", (*rfq.RFQ).Submit)
}

// StartProgress marks the RFQ as being worked on
func (s *RFQService) StartProgress(ctx context.Context, tenantID, id uuid.UUID) (*RFQResponse, error) {
	return s.mutate(ctx, tenantID, id, "start", (*rfq.RFQ).StartProgress)
}

// Close finishes a quoted RFQ
func (s *RFQService) Close(ctx context.Context, tenantID, id uuid.UUID) (*RFQResponse, error) {
	return s.mutate(ctx, tenantID, id, "close", (*rfq.RFQ).Close)
}

// Cancel abandons an RFQ
func (s *RFQService) Cancel(ctx context.Context, tenantID, id uuid.UUID, req ReasonRequest) (*RFQResponse, error) {
	return s.mutate(ctx, tenantID, id, "cancel", func(r *rfq.RFQ) error {
		return r.Cancel(req.Reason)
	})
}

// PendingFor lists RFQs awaiting a quotation from the product manager
func (s *RFQService) PendingFor(ctx context.Context, tenantID, productManagerID uuid.UUID) ([]RFQResponse, error) {
	list, err := s.rfqRepo.FindPendingForManager(ctx, tenantID, productManagerID)
	if err != nil {
		return nil, err
	}
	out := make([]RFQResponse, 0, len(list))
	for i := range list {
		out = append(out, ToRFQResponse(&list[i]))
	}
	return out, nil
}

func (s *RFQService) mutate(ctx context.Context, tenantID, id uuid.UUID, action string, fn rfq.RFQMutation) (*RFQResponse, error) {
	r, err := s.rfqRepo.Mutate(ctx, tenantID, id, fn)
	if err != nil {
		return nil, err
	}
	publishEvents(ctx, s.eventPublisher, s.logger, r)

	s.logger.Info("rfq updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("rfq_id", id.String()),
		zap.String("action", action),
		zap.String("status", r.Status.String()),
	)
	resp := ToRFQResponse(r)
	return &resp, nil
}

func (s *RFQService) checkCatalogProduct(ctx context.Context, tenantID uuid.UUID, productID *uuid.UUID) error {
	return checkCatalogProduct(ctx, s.productRepo, tenantID, productID)
}

// checkCatalogProduct verifies a referenced product exists and is active
func checkCatalogProduct(ctx context.Context, repo catalog.ProductRepository, tenantID uuid.UUID, productID *uuid.UUID) error {
	if productID == nil || *productID == uuid.Nil || repo == nil {
		return nil
	}
	p, err := repo.FindByID(ctx, tenantID, *productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError(shared.CodeInvalidInput, "Product not found in catalog")
		}
		return err
	}
	if !p.IsActive {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product is inactive")
	}
	return nil
}
