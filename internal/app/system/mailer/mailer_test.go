package mailer_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/venuehub/internal/app/system/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WithoutHostLogsInstead(t *testing.T) {
	n := mailer.New(mailer.Config{}, zap.NewNop())
	_, ok := n.(*mailer.LogNotifier)
	require.True(t, ok, "expected LogNotifier, got %T", n)
	assert.NoError(t, n.Send(context.Background(), mailer.Email{To: "a@example.com", Subject: "hi"}))
}

func TestMailer_Message(t *testing.T) {
	n := mailer.New(mailer.Config{Host: "smtp.example.com", From: "noreply@example.com", FromName: "VenueHub"}, zap.NewNop())
	m, ok := n.(*mailer.Mailer)
	require.True(t, ok)

	msg, err := m.Message(mailer.Email{
		To:       "alice@example.com",
		Subject:  "Verify your VenueHub account",
		TextBody: "plain body",
		HTMLBody: "<p>html body</p>",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "alice@example.com")
	assert.Contains(t, raw, "noreply@example.com")
	assert.Contains(t, raw, "Verify your VenueHub account")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
}

func TestMailer_Message_BadRecipient(t *testing.T) {
	m := mailer.New(mailer.Config{Host: "smtp.example.com", From: "noreply@example.com"}, zap.NewNop()).(*mailer.Mailer)
	_, err := m.Message(mailer.Email{To: "not an address"})
	assert.Error(t, err)
}

func TestRecorder(t *testing.T) {
	r := &mailer.Recorder{}
	_, ok := r.Last()
	assert.False(t, ok)

	require.NoError(t, r.Send(context.Background(), mailer.Email{To: "a@example.com"}))
	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, "a@example.com", last.To)

	r.Err = mailer.ErrSMTPDown
	assert.True(t, errors.Is(r.Send(context.Background(), mailer.Email{}), mailer.ErrSMTPDown))
	assert.Len(t, r.Sent, 1)
}

func TestBuildVerificationEmail(t *testing.T) {
	e := mailer.BuildVerificationEmail("alice@example.com", mailer.VerificationEmailData{
		SiteName:  "VenueHub",
		Username:  "alice",
		Link:      "https://venuehub.example/verify-email?token=abc&username=alice",
		ExpiresIn: "24 hours",
	})
	assert.Equal(t, "alice@example.com", e.To)
	assert.Equal(t, "Verify your VenueHub account", e.Subject)
	assert.Contains(t, e.TextBody, "token=abc&username=alice")
	assert.Contains(t, e.TextBody, "24 hours")
	assert.Contains(t, e.HTMLBody, "token=abc&amp;username=alice")
	assert.Contains(t, e.HTMLBody, "VenueHub")
}

func TestBuildPasswordResetEmail(t *testing.T) {
	e := mailer.BuildPasswordResetEmail("bob@example.com", mailer.PasswordResetEmailData{
		SiteName:  "VenueHub",
		Link:      "https://venuehub.example/reset-password/tok",
		ExpiresIn: "1 hour",
	})
	assert.Contains(t, e.Subject, "Reset")
	assert.Contains(t, e.TextBody, "https://venuehub.example/reset-password/tok")
	assert.Contains(t, e.HTMLBody, "https://venuehub.example/reset-password/tok")
}

func TestBuildReservationEmail_EscapesRequests(t *testing.T) {
	e := mailer.BuildReservationEmail("c@example.com", mailer.ReservationEmailData{
		SiteName:        "VenueHub",
		Name:            "Carol",
		ItemName:        "Old Town Square",
		Reference:       "ref-123",
		StartDate:       "2025-05-10",
		EndDate:         "2025-05-12",
		NumberOfPersons: 3,
		SpecialRequests: "<script>x</script>",
	})
	assert.Contains(t, e.Subject, "Old Town Square")
	assert.Contains(t, e.TextBody, "ref-123")
	assert.Contains(t, e.TextBody, "Guests: 3")
	assert.Contains(t, e.HTMLBody, "ref-123")
	assert.False(t, strings.Contains(e.HTMLBody, "<script>"), "HTML body must escape user text")
}

func TestBuildReservationEmail_NoRequests(t *testing.T) {
	e := mailer.BuildReservationEmail("c@example.com", mailer.ReservationEmailData{SiteName: "VenueHub", ItemName: "X"})
	assert.NotContains(t, e.TextBody, "Special requests")
	assert.NotContains(t, e.HTMLBody, "Special requests")
}
