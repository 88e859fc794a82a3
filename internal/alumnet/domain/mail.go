package domain

import "time"

type MailStatus string

const (
	MailPending MailStatus = "pending"
	MailSent    MailStatus = "sent"
	MailFailed  MailStatus = "failed"
)

// MailJob is one queued outbound email. The body is cleared once delivered
// because invitation bodies carry a raw token.
type MailJob struct {
	ID        string
	BatchID   string
	InviteID  string
	Recipient string
	Subject   string
	Body      string
	Status    MailStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	SentAt    *time.Time
}

// MailStats summarises delivery for a batch.
type MailStats struct {
	Queued int `json:"queued"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
