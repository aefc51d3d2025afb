package domain

import "time"

// Lead is a candidate contact proposed by the model for one outreach cycle.
type Lead struct {
	Name      string
	Role      string
	Company   string
	Industry  string
	Email     string
	Rationale string
}

// OutreachRecord is the persisted trace of a sent email; append-only.
type OutreachRecord struct {
	Name    string
	Company string
	Email   string
	SentAt  time.Time
}

// Persona describes the sender signing every drafted email.
type Persona struct {
	Name    string
	Title   string
	Company string
	Contact string
}

// Email is a rendered message ready for the transactional provider.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// SendReceipt carries the provider answer back to the cycle.
type SendReceipt struct {
	StatusCode int
	Body       string
}
