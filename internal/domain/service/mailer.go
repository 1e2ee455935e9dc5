package service

import "context"

// Mail is one outbound email message.
type Mail struct {
	To      string // Recipient address.
	Subject string // Rendered subject line.
	Body    string // Plain-text body.
}

// Mailer is the external delivery collaborator for notification records.
// The notification stage's contract ends at handing over a fully rendered
// message; the mailer reports back success or failure for the record's status.
type Mailer interface {
	Send(ctx context.Context, mail *Mail) error
}
