// internal/adapters/out/sendgrid/notifier.go
package sendgrid

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	sg "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	sagadom "storefront/internal/domain/saga"
)

// EmailResolver resolves the recipient address for a user.
type EmailResolver interface {
	Email(ctx context.Context, userID string) (string, error)
}

// Notifier sends an order-completion email through SendGrid. It implements
// usecase.CompletionNotifier; the coordinator treats every failure here as
// best effort, so methods log and return the error without side effects.
type Notifier struct {
	client    *sg.Client
	resolver  EmailResolver
	fromName  string
	fromEmail string
}

// New creates the notifier. Returns nil when apiKey is empty so callers can
// wire it as an optional dependency.
func New(apiKey, fromName, fromEmail string, resolver EmailResolver) *Notifier {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	return &Notifier{
		client:    sg.NewSendClient(apiKey),
		resolver:  resolver,
		fromName:  strings.TrimSpace(fromName),
		fromEmail: strings.TrimSpace(fromEmail),
	}
}

// OrderCompleted emails the order confirmation for a completed saga.
func (n *Notifier) OrderCompleted(ctx context.Context, s *sagadom.OrderSaga) error {
	if n == nil || n.client == nil {
		return errors.New("sendgrid: notifier is not configured")
	}
	if s == nil || s.Snapshot == nil {
		return errors.New("sendgrid: saga has no snapshot")
	}

	to, err := n.resolver.Email(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("sendgrid: resolve recipient: %w", err)
	}
	if strings.TrimSpace(to) == "" {
		log.Printf("[sendgrid] WARN no email on file userId=%s sagaId=%s", s.UserID, s.SagaID)
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your order %s is confirmed and on its way.\n\n", s.SagaID)
	for _, ln := range s.Snapshot.Lines {
		fmt.Fprintf(&b, "  %s x%d — %s\n", ln.Name, ln.Qty, formatMinor(ln.UnitPrice*ln.Qty, s.Snapshot.Currency))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", formatMinor(s.Snapshot.Subtotal, s.Snapshot.Currency))
	if s.Snapshot.Discount > 0 {
		fmt.Fprintf(&b, "Discount (%s): -%s\n", s.Snapshot.CouponCode, formatMinor(s.Snapshot.Discount, s.Snapshot.Currency))
	}
	fmt.Fprintf(&b, "Total: %s\n", formatMinor(s.Snapshot.Total, s.Snapshot.Currency))
	if s.Shipment != nil && s.Shipment.ShipmentID != "" {
		fmt.Fprintf(&b, "\nShipment reference: %s\n", s.Shipment.ShipmentID)
	}

	msg := sgmail.NewSingleEmail(
		sgmail.NewEmail(n.fromName, n.fromEmail),
		fmt.Sprintf("Order confirmed — %s", s.SagaID),
		sgmail.NewEmail("", to),
		b.String(),
		"",
	)

	resp, err := n.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid: send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: send failed: status %d", resp.StatusCode)
	}

	log.Printf("[sendgrid] OK completion mail sent sagaId=%s", s.SagaID)
	return nil
}

// formatMinor renders a minor-unit amount as a decimal string ("1234" INR ->
// "INR 12.34").
func formatMinor(amount int, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, amount/100, amount%100)
}
