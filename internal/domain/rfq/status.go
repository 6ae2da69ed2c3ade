package rfq

// RFQStatus is the lifecycle state of a request for quote
type RFQStatus string

const (
	RFQStatusDraft      RFQStatus = "draft"
	RFQStatusSubmitted  RFQStatus = "submitted"
	RFQStatusInProgress RFQStatus = "in_progress"
	RFQStatusQuoted     RFQStatus = "quoted"
	RFQStatusClosed     RFQStatus = "closed"
	RFQStatusCancelled  RFQStatus = "cancelled"
)

var rfqTransitions = map[RFQStatus][]RFQStatus{
	RFQStatusDraft:      {RFQStatusSubmitted, RFQStatusCancelled},
	RFQStatusSubmitted:  {RFQStatusInProgress, RFQStatusQuoted, RFQStatusCancelled},
	RFQStatusInProgress: {RFQStatusQuoted, RFQStatusCancelled},
	RFQStatusQuoted:     {RFQStatusInProgress, RFQStatusClosed, RFQStatusCancelled},
	RFQStatusClosed:     {},
	RFQStatusCancelled:  {},
}

// IsValid checks if the status is a known RFQStatus
func (s RFQStatus) IsValid() bool {
	_, ok := rfqTransitions[s]
	return ok
}

// String returns the string representation of RFQStatus
func (s RFQStatus) String() string {
	return string(s)
}

// CanTransitionTo checks the transition table
func (s RFQStatus) CanTransitionTo(target RFQStatus) bool {
	for _, allowed := range rfqTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist
func (s RFQStatus) IsTerminal() bool {
	return s.IsValid() && len(rfqTransitions[s]) == 0
}

// AcceptsItems reports whether items may still be added
func (s RFQStatus) AcceptsItems() bool {
	return s == RFQStatusDraft || s == RFQStatusSubmitted
}

// AcceptsQuotations reports whether product managers may respond
func (s RFQStatus) AcceptsQuotations() bool {
	return s == RFQStatusSubmitted || s == RFQStatusInProgress || s == RFQStatusQuoted
}

// Priority is the urgency of an RFQ
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// QuotationStatus is the lifecycle state of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "draft"
	QuotationStatusSubmitted QuotationStatus = "submitted"
	QuotationStatusAccepted  QuotationStatus = "accepted"
	QuotationStatusRejected  QuotationStatus = "rejected"
	QuotationStatusExpired   QuotationStatus = "expired"
)

var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft:     {QuotationStatusSubmitted},
	QuotationStatusSubmitted: {QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired},
	QuotationStatusAccepted:  {},
	QuotationStatusRejected:  {},
	QuotationStatusExpired:   {},
}

// IsValid checks if the status is a known QuotationStatus
func (s QuotationStatus) IsValid() bool {
	_, ok := quotationTransitions[s]
	return ok
}

// String returns the string representation of QuotationStatus
func (s QuotationStatus) String() string {
	return string(s)
}

// CanTransitionTo checks the transition table
func (s QuotationStatus) CanTransitionTo(target QuotationStatus) bool {
	for _, allowed := range quotationTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist
func (s QuotationStatus) IsTerminal() bool {
	return s.IsValid() && len(quotationTransitions[s]) == 0
}
