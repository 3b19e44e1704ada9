package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/idevisu/fincast/internal/config"
	"github.com/idevisu/fincast/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendOverdueDigest sends a summary of overdue obligations per month
func (s *Sender) SendOverdueDigest(to string, asOf time.Time, alerts []models.OverdueAlert, total decimal.Decimal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Overdue Obligations Digest: %s outstanding", total)

	// Format email body
	body := fmt.Sprintf(
		"As of %s, the following obligations are past their due date:\n\n",
		asOf.Format("2006-01-02"),
	)
	for _, a := range alerts {
		body += fmt.Sprintf("%s — %s overdue\n", a.Month, a.OverdueTotal)
		for _, o := range a.Entries {
			body += fmt.Sprintf("  - %s: %s due %s (%s)\n",
				o.Description, o.Amount, o.DueDate.Format("2006-01-02"), o.Status)
		}
	}
	body += fmt.Sprintf("\nTotal overdue: %s\n", total)
	body += "\nBest regards,\nFincast"
	e.Text = []byte(body)

	// Send email
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
