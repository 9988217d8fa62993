package mail

import (
	"strings"
	"testing"

	"github.com/cropcareapp/cropcare-backend/pkg/config"
	"gopkg.in/gomail.v2"
)

func TestSendResetCodeComposesMessage(t *testing.T) {
	var captured *gomail.Message
	m := &Mailer{
		cfg: config.SMTPConfig{From: "noreply@cropcare.app"},
		send: func(msgs ...*gomail.Message) error {
			if len(msgs) != 1 {
				t.Fatalf("expected one message, got %d", len(msgs))
			}
			captured = msgs[0]
			return nil
		},
	}

	if err := m.SendResetCode("farmer@example.com", "farmer", "482913"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if captured == nil {
		t.Fatal("message was not handed to the dialer")
	}
	if got := captured.GetHeader("To"); len(got) != 1 || got[0] != "farmer@example.com" {
		t.Fatalf("to header = %v", got)
	}
	if got := captured.GetHeader("Subject"); len(got) != 1 || got[0] != "Password recovery code" {
		t.Fatalf("subject header = %v", got)
	}
}

func TestResetCodeBodyContainsCodeAndUsername(t *testing.T) {
	body := resetCodeBody("farmer", "482913")
	if !strings.Contains(body, "farmer") {
		t.Fatal("body should address the account holder")
	}
	if !strings.Contains(body, "482913") {
		t.Fatal("body should carry the code")
	}
}

func TestNoopSenderNeverFails(t *testing.T) {
	if err := (Noop{}).SendResetCode("a@b.c", "a", "000000"); err != nil {
		t.Fatalf("noop: %v", err)
	}
}
