package notifier

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	calls int
	last  EmailMessage
	err   error
}

func (s *stubSender) Send(ctx context.Context, msg EmailMessage) error {
	s.calls++
	s.last = msg
	return s.err
}

func sampleAlerts() []models.DeadlineAlert {
	return []models.DeadlineAlert{
		{Job: models.Job{JobID: "00000001", Title: "Backend Engineer", CompanyName: "Acme"}, DaysUntilDeadline: 0},
		{Job: models.Job{JobID: "00000002", Title: "SRE", CompanyName: "Globex"}, DaysUntilDeadline: 2},
	}
}

func TestEmailNotifier_Sends(t *testing.T) {
	sender := &stubSender{}
	n := NewEmailNotifier(EmailConfig{From: "jobs@example.com"}, sender)
	to := models.UserProfile{UserID: "u1", Email: "ana@example.com", DisplayName: "Ana", Preferences: models.Preferences{Notifications: true, EmailUpdates: true}}

	require.NoError(t, n.Notify(context.Background(), to, sampleAlerts()))
	require.Equal(t, 1, sender.calls)
	assert.Equal(t, []string{"ana@example.com"}, sender.last.To)
	assert.Equal(t, "Application deadlines approaching", sender.last.Subject)
	assert.Contains(t, sender.last.Body, "Hi Ana")
	assert.Contains(t, sender.last.Body, "Backend Engineer at Acme (job 00000001): due today")
	assert.Contains(t, sender.last.Body, "SRE at Globex (job 00000002): 2 days left")
}

func TestEmailNotifier_Skips(t *testing.T) {
	sender := &stubSender{}
	n := NewEmailNotifier(EmailConfig{From: "jobs@example.com"}, sender)
	ctx := context.Background()

	optedOut := models.UserProfile{Email: "bo@example.com", Preferences: models.Preferences{Notifications: true}}
	require.NoError(t, n.Notify(ctx, optedOut, sampleAlerts()))

	optedIn := models.UserProfile{Email: "bo@example.com", Preferences: models.Preferences{EmailUpdates: true}}
	require.NoError(t, n.Notify(ctx, optedIn, nil))

	assert.Zero(t, sender.calls)
}

func TestEmailNotifier_SendError(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp down")}
	n := NewEmailNotifier(EmailConfig{From: "jobs@example.com"}, sender)
	to := models.UserProfile{Email: "ana@example.com", Preferences: models.Preferences{EmailUpdates: true}}

	err := n.Notify(context.Background(), to, sampleAlerts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ana@example.com")
}

func TestBuildEmailData(t *testing.T) {
	data := buildEmailData(EmailMessage{From: "a@example.com", To: []string{"b@example.com", "c@example.com"}, Subject: "Hi", Body: "body"})
	assert.True(t, strings.HasPrefix(data, "From: a@example.com\r\nTo: b@example.com,c@example.com\r\nSubject: Hi\r\n"))
	assert.True(t, strings.HasSuffix(data, "\r\n\r\nbody"))
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.Notify(context.Background(), models.UserProfile{UserID: "u1"}, sampleAlerts()))
	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "deadline approaching"))
	assert.Contains(t, out, `"jobId":"00000002"`)
	assert.Contains(t, out, `"daysUntilDeadline":2`)
}
