package mailalert

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internhunt-engine/internal/domain"
)

const linkedInHTML = `<html><body>
<table><tr><td>
  <a href="https://www.linkedin.com/comm/jobs/view/111?trk=logo"><img src="logo.png"></a>
  <a href="https://www.linkedin.com/comm/jobs/view/111?trk=title">Machine Learning Intern</a>
  <p>DeepCo · Bengaluru, India</p>
  <p>Actively recruiting</p>
</td></tr></table>
<table><tr><td>
  <a href="https://www.linkedin.com/comm/jobs/view/222">Research Intern, NLP Easy Apply</a>
  <p>LabX · Remote</p>
</td></tr></table>
<table><tr><td>
  <a href="https://www.linkedin.com/comm/jobs/alerts/manage">Manage alerts</a>
  <a href="https://www.linkedin.com/comm/jobs/view/333">12 alumni work here</a>
</td></tr></table>
</body></html>`

func rawMessage(subject, contentType, body string) []byte {
	return []byte("From: Job Alerts <jobalerts-noreply@linkedin.com>\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: " + contentType + "\r\n" +
		"\r\n" + body)
}

func TestParseAlertLinkedIn(t *testing.T) {
	got := ParseAlert(Body{HTML: linkedInHTML})
	require.Len(t, got, 2)

	assert.Equal(t, "Machine Learning Intern", got[0].Title)
	assert.Equal(t, "DeepCo", got[0].Organization)
	assert.Equal(t, "Bengaluru, India", got[0].Location)
	assert.Equal(t, domain.LocationIndia, got[0].LocationKind)
	assert.Equal(t, "LinkedIn Alerts", got[0].SourceName)

	assert.Equal(t, "Research Intern, NLP", got[1].Title)
	assert.Equal(t, "LabX", got[1].Organization)
	assert.Equal(t, domain.LocationRemote, got[1].LocationKind)
	assert.Equal(t, domain.RoleResearch, got[1].RoleKind)
}

func TestParseAlertInternshalaStipend(t *testing.T) {
	html := `<table><tr><td>
	<a href="https://internshala.com/internship/detail/data-science-internship-at-numbers123">Data Science</a>
	<p>Numbers Pvt Ltd · Work From Home</p>
	<span>Stipend: ₹ 15,000 /month</span>
	</td></tr></table>`
	got := ParseAlert(Body{HTML: html})
	require.Len(t, got, 1)
	assert.Equal(t, "Numbers Pvt Ltd", got[0].Organization)
	assert.Equal(t, 15000.0, got[0].StipendNumeric)
	assert.Equal(t, "INR", got[0].StipendCurrency)
	assert.Equal(t, domain.LocationRemote, got[0].LocationKind)
}

func TestParsePlainFallback(t *testing.T) {
	got := ParseAlert(Body{
		Subject: "Computer Vision Intern at VisionCo",
		Plain:   "See https://www.linkedin.com/jobs/view/999. Also https://www.linkedin.com/jobs/view/999 again.",
	})
	require.Len(t, got, 1)
	assert.Equal(t, "Computer Vision Intern at VisionCo", got[0].Title)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/999", got[0].ApplyURL)
}

func TestParseRFC822Multipart(t *testing.T) {
	body := "--b1\r\nContent-Type: text/plain\r\n\r\nplain text\r\n" +
		"--b1\r\nContent-Type: text/html\r\nContent-Transfer-Encoding: quoted-printable\r\n\r\n<p>hello=3Dworld</p>\r\n" +
		"--b1--\r\n"
	b := ParseRFC822(rawMessage("=?UTF-8?Q?Job_alert?=", `multipart/alternative; boundary="b1"`, body), "fallback")
	assert.Equal(t, "Job alert", b.Subject)
	assert.Contains(t, b.Plain, "plain text")
	assert.Contains(t, b.HTML, "hello=world")
}

type fakeMailbox struct {
	msgs    []Message
	seen    []imap.UID
	since   time.Time
	closed  bool
	markErr error
}

func (f *fakeMailbox) Unseen(_ context.Context, since time.Time, _ int) ([]Message, error) {
	f.since = since
	return f.msgs, nil
}

func (f *fakeMailbox) MarkSeen(_ context.Context, uids []imap.UID) error {
	f.seen = append(f.seen, uids...)
	return f.markErr
}

func (f *fakeMailbox) Close() error {
	f.closed = true
	return nil
}

func TestFetch(t *testing.T) {
	box := &fakeMailbox{msgs: []Message{
		{UID: 7, Subject: "Your job alert", Raw: rawMessage("Your job alert for ML intern", "text/html", linkedInHTML)},
		{UID: 8, Subject: "Weekly newsletter", Raw: rawMessage("Weekly newsletter", "text/plain", "nothing")},
		{UID: 9, Subject: "Job alert again", Raw: rawMessage("Job alert again", "text/html", linkedInHTML)},
	}}
	a := New(Config{SubjectAny: []string{"job alert"}, SinceDays: 7}, func(context.Context) (Mailbox, error) {
		return box, nil
	}, nil)
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	a.Now = func() time.Time { return now }

	got, err := a.Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	assert.Len(t, got, 2, "duplicate jobs across alerts collapse")
	assert.Equal(t, []imap.UID{7, 9}, box.seen)
	assert.Equal(t, now.AddDate(0, 0, -7), box.since)
	assert.True(t, box.closed)
}

func TestFetchMarkSeenFailureIsNotFatal(t *testing.T) {
	box := &fakeMailbox{
		msgs:    []Message{{UID: 1, Raw: rawMessage("job alert", "text/html", linkedInHTML)}},
		markErr: errors.New("read-only"),
	}
	a := New(Config{}, func(context.Context) (Mailbox, error) { return box, nil }, nil)
	got, err := a.Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFetchDialError(t *testing.T) {
	a := New(Config{}, func(context.Context) (Mailbox, error) { return nil, errors.New("no route") }, nil)
	_, err := a.Fetch(context.Background(), domain.RunConfig{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no route"))
}
