package notify

import (
	"context"

	"github.com/aura-webinar/meeting-transcriber/internal/models"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// Notifier builds the report and failure emails for a submission.
type Notifier struct {
	sender Sender
}

// NewNotifier creates a Notifier on top of sender.
func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// SendReport emails the rendered report under the submission's subject.
func (n *Notifier) SendReport(ctx context.Context, sub models.Submission, report string) error {
	return n.sender.Send(ctx, Email{
		To:      sub.RecipientEmail,
		Subject: sub.Subject,
		HTML:    ReportHTML(report),
	})
}

// SendFailure emails the diagnostic for cause under the failure subject.
func (n *Notifier) SendFailure(ctx context.Context, sub models.Submission, cause error) error {
	return n.sender.Send(ctx, Email{
		To:      sub.RecipientEmail,
		Subject: FailureSubject(sub.Subject),
		HTML:    FailureHTML(cause.Error()),
	})
}
