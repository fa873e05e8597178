package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
)

type recordingSender struct {
	to, subject, body, text, tag string
	err                          error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.to, s.subject, s.body, s.text, s.tag = msg.To, msg.Subject, msg.HTML, msg.Text, msg.Tag
	return s.err
}

func TestDeliverCode_PasswordReset(t *testing.T) {
	s := &recordingSender{}
	m := NewCodeMailer(s)

	err := m.DeliverCode(context.Background(), "a@example.com", Code{Value: "123456", Purpose: domain.OTPPurposePasswordReset})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.to != "a@example.com" {
		t.Errorf("to = %q", s.to)
	}
	if s.subject != "Password Reset OTP" {
		t.Errorf("subject = %q", s.subject)
	}
	if !strings.Contains(s.body, "123456") || !strings.Contains(s.body, "10 minutes") {
		t.Errorf("body %q missing code or validity", s.body)
	}
	if !strings.Contains(s.text, "password reset is 123456") {
		t.Errorf("text = %q", s.text)
	}
	if s.tag != string(domain.OTPPurposePasswordReset) {
		t.Errorf("tag = %q", s.tag)
	}
}

func TestDeliverCode_AccountChangeEscapesSubject(t *testing.T) {
	s := &recordingSender{}
	m := NewCodeMailer(s)

	err := m.DeliverCode(context.Background(), "a@example.com", Code{
		Value:   "654321",
		Purpose: domain.OTPPurposeAccountChange,
		Subject: "<b>email</b>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(s.body, "<b>email</b>") {
		t.Errorf("subject not escaped: %q", s.body)
	}
	if !strings.Contains(s.body, "&lt;b&gt;email&lt;/b&gt; change") {
		t.Errorf("body %q missing escaped subject", s.body)
	}
}

func TestDeliverCode_SenderErrorIsReported(t *testing.T) {
	sendErr := errors.New("smtp unavailable")
	m := NewCodeMailer(&recordingSender{err: sendErr})

	err := m.DeliverCode(context.Background(), "a@example.com", Code{Value: "123456", Purpose: domain.OTPPurposePasswordReset})
	if !errors.Is(err, sendErr) {
		t.Errorf("want wrapped sendErr, got %v", err)
	}
}
