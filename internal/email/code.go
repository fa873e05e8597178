package email

import (
	"context"
	"fmt"
	"html"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/otp"
)

// Code is a one-time code to be delivered. Subject is the account detail being
// changed and is only used for domain.OTPPurposeAccountChange.
type Code struct {
	Value   string
	Purpose domain.OTPPurpose
	Subject string
}

// CodeDeliverer delivers a one-time code to an address and reports whether it
// was handed off.
type CodeDeliverer interface {
	DeliverCode(ctx context.Context, to string, code Code) error
}

type CodeMailer struct {
	sender Sender
}

func NewCodeMailer(sender Sender) *CodeMailer {
	return &CodeMailer{sender: sender}
}

func (m *CodeMailer) DeliverCode(ctx context.Context, to string, code Code) error {
	msg := renderCode(code)
	msg.To = to
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("deliver %s code: %w", code.Purpose, err)
	}
	return nil
}

func renderCode(code Code) Message {
	minutes := int(otp.TTL.Minutes())

	subject, what := "Account Change OTP", code.Subject
	if code.Purpose == domain.OTPPurposePasswordReset {
		subject, what = "Password Reset OTP", "password reset"
	} else {
		if what == "" {
			what = "account"
		}
		what += " change"
	}

	return Message{
		Subject: subject,
		Tag:     string(code.Purpose),
		HTML: fmt.Sprintf(
			`<p>Your OTP for %s is <strong>%s</strong>.</p><p>It is valid for %d minutes.</p>`,
			html.EscapeString(what), html.EscapeString(code.Value), minutes,
		),
		Text: fmt.Sprintf("Your OTP for %s is %s. It is valid for %d minutes.", what, code.Value, minutes),
	}
}
