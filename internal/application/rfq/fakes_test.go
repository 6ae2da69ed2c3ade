package rfq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/rfq"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCompanyRepository is a mock implementation of CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Company, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindContact(ctx context.Context, tenantID, contactID uuid.UUID) (*partner.Contact, error) {
	args := m.Called(ctx, tenantID, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Contact), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, company *partner.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *MockCompanyRepository) SaveContact(ctx context.Context, contact *partner.Contact) error {
	return m.Called(ctx, contact).Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

// memRFQRepo keeps RFQs in memory with the Mutate contract of the Gorm repository
type memRFQRepo struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*rfq.RFQ
	seq      int
	pendings []rfq.RFQ
}

func newMemRFQRepo() *memRFQRepo {
	return &memRFQRepo{items: make(map[uuid.UUID]*rfq.RFQ)}
}

func cloneRFQ(r *rfq.RFQ) *rfq.RFQ {
	cp := *r
	cp.Items = append([]rfq.RFQItem(nil), r.Items...)
	cp.ClearDomainEvents()
	return &cp
}

func (m *memRFQRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*rfq.RFQ, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || !r.BelongsTo(tenantID) {
		return nil, shared.ErrNotFound
	}
	return cloneRFQ(r), nil
}

func (m *memRFQRepo) FindPendingForManager(_ context.Context, _, _ uuid.UUID) ([]rfq.RFQ, error) {
	return m.pendings, nil
}

func (m *memRFQRepo) Create(_ context.Context, r *rfq.RFQ) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, stored := range m.items {
		if stored.BelongsTo(r.TenantID) && stored.Number == r.Number {
			return shared.ErrAlreadyExists
		}
	}
	m.items[r.ID] = cloneRFQ(r)
	return nil
}

func (m *memRFQRepo) Mutate(_ context.Context, tenantID, id uuid.UUID, fn rfq.RFQMutation) (*rfq.RFQ, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[id]
	if !ok || !stored.BelongsTo(tenantID) {
		return nil, shared.ErrNotFound
	}
	r := cloneRFQ(stored)
	if err := fn(r); err != nil {
		return nil, err
	}
	r.IncrementVersion()
	m.items[id] = cloneRFQ(r)
	return r, nil
}

func (m *memRFQRepo) GenerateNumber(_ context.Context, _ uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("RFQ-2026-%05d", m.seq), nil
}

func (m *memRFQRepo) get(id uuid.UUID) *rfq.RFQ {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id]
}

type memQuotationRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*rfq.Quotation
	seq   int
}

func newMemQuotationRepo() *memQuotationRepo {
	return &memQuotationRepo{items: make(map[uuid.UUID]*rfq.Quotation)}
}

func cloneQuotation(q *rfq.Quotation) *rfq.Quotation {
	cp := *q
	cp.Items = append([]rfq.QuotationItem(nil), q.Items...)
	cp.ClearDomainEvents()
	return &cp
}

func (m *memQuotationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*rfq.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.items[id]
	if !ok || !q.BelongsTo(tenantID) {
		return nil, shared.ErrNotFound
	}
	return cloneQuotation(q), nil
}

func (m *memQuotationRepo) FindByRFQ(_ context.Context, tenantID, rfqID uuid.UUID) ([]rfq.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]rfq.Quotation, 0)
	for _, q := range m.items {
		if q.TenantID == tenantID && q.RFQID == rfqID {
			out = append(out, *cloneQuotation(q))
		}
	}
	return out, nil
}

func (m *memQuotationRepo) Create(_ context.Context, q *rfq.Quotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, stored := range m.items {
		if stored.BelongsTo(q.TenantID) && stored.Number == q.Number {
			return shared.ErrAlreadyExists
		}
	}
	m.items[q.ID] = cloneQuotation(q)
	return nil
}

func (m *memQuotationRepo) Mutate(_ context.Context, tenantID, id uuid.UUID, fn rfq.QuotationMutation) (*rfq.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[id]
	if !ok || !stored.BelongsTo(tenantID) {
		return nil, shared.ErrNotFound
	}
	q := cloneQuotation(stored)
	if err := fn(q); err != nil {
		return nil, err
	}
	q.IncrementVersion()
	m.items[id] = cloneQuotation(q)
	return q, nil
}

func (m *memQuotationRepo) FindOverdue(_ context.Context, now time.Time, limit int) ([]rfq.QuotationRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]rfq.QuotationRef, 0)
	for _, q := range m.items {
		if q.Status == rfq.QuotationStatusSubmitted && q.ValidUntil != nil && q.ValidUntil.Before(now) && len(out) < limit {
			out = append(out, rfq.QuotationRef{TenantID: q.TenantID, ID: q.ID})
		}
	}
	return out, nil
}

func (m *memQuotationRepo) GenerateNumber(_ context.Context, _ uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("QT-2026-%05d", m.seq), nil
}

// syncPublisher records events and dispatches them to subscribed handlers in-line
type syncPublisher struct {
	events   []shared.DomainEvent
	handlers []shared.EventHandler
}

func (p *syncPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		p.events = append(p.events, e)
		for _, h := range p.handlers {
			for _, t := range h.EventTypes() {
				if t == e.EventType() {
					_ = h.Handle(ctx, e)
				}
			}
		}
	}
	return nil
}

func (p *syncPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fakeRenderer struct {
	docs []QuotationDocument
}

func (f *fakeRenderer) RenderQuotation(_ context.Context, doc QuotationDocument) ([]byte, error) {
	f.docs = append(f.docs, doc)
	return []byte("%PDF-1.4"), nil
}

// staleNumbers hands out numbers already taken by a concurrent create before
// falling back to the repository's own numbering
type staleNumbers struct {
	mu    sync.Mutex
	stale []string
	calls int
}

func (s *staleNumbers) next(fallback func() (string, error)) (string, error) {
	s.mu.Lock()
	s.calls++
	if len(s.stale) > 0 {
		n := s.stale[0]
		s.stale = s.stale[1:]
		s.mu.Unlock()
		return n, nil
	}
	s.mu.Unlock()
	return fallback()
}

type racingRFQRepo struct {
	*memRFQRepo
	numbers *staleNumbers
}

func (r racingRFQRepo) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return r.numbers.next(func() (string, error) { return r.memRFQRepo.GenerateNumber(ctx, tenantID) })
}

type racingQuotationRepo struct {
	*memQuotationRepo
	numbers *staleNumbers
}

func (r racingQuotationRepo) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return r.numbers.next(func() (string, error) { return r.memQuotationRepo.GenerateNumber(ctx, tenantID) })
}
