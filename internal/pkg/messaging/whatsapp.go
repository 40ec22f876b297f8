// internal/pkg/messaging/whatsapp.go
package messaging

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/your-org/pos-backend/internal/config"
)

// Service builds prefilled WhatsApp message links for customer notification.
// The link is handed to the operator's device; delivery is not tracked here.
type Service struct {
	config *config.Config
}

// NewService creates a new messaging service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// Link returns a wa.me URL that opens a chat with the given phone number and
// the message text prefilled.
func (s *Service) Link(phone, text string) (string, error) {
	digits := normalizePhone(phone)
	if digits == "" {
		return "", fmt.Errorf("phone number required for messaging link")
	}
	return fmt.Sprintf("%s/%s?text=%s", strings.TrimRight(s.config.Messaging.BaseURL, "/"),
		digits, url.QueryEscape(text)), nil
}

// CancellationLink builds the notification link for a cancelled order.
func (s *Service) CancellationLink(phone, orderNumber string) (string, error) {
	text := fmt.Sprintf(s.config.Messaging.CancelTemplate, orderNumber)
	return s.Link(phone, text)
}

// normalizePhone strips everything but digits. Formatting varies by who
// typed the number in; WhatsApp wants bare digits with country code.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
