// Package mailalert turns job-alert emails (LinkedIn, Internshala) sitting in
// an IMAP mailbox into raw listings.
package mailalert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/secrets"

	"github.com/emersion/go-imap/v2"
)

type Config struct {
	SubjectAny  []string
	MaxMessages int
	SinceDays   int
}

// Dialer opens a ready-to-read mailbox session.
type Dialer func(ctx context.Context) (Mailbox, error)

type Adapter struct {
	cfg  Config
	dial Dialer
	log  logger.Logger
	Now  func() time.Time
}

func New(cfg Config, dial Dialer, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{cfg: cfg, dial: dial, log: log.With(logger.String("source", "Mail Alerts")), Now: time.Now}
}

// FromConfig wires the adapter to the configured IMAP account. The password is
// resolved on every fetch so a keychain update takes effect without a restart.
func FromConfig(e config.Email, log logger.Logger) *Adapter {
	dial := func(ctx context.Context) (Mailbox, error) {
		pw, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(e))
		if err != nil {
			return nil, err
		}
		return DialIMAP(ctx, IMAPConfig{
			Host:     e.IMAPHost,
			Port:     e.IMAPPort,
			Username: e.Username,
			Password: pw,
			Mailbox:  e.Mailbox,
		})
	}
	return New(Config{
		SubjectAny:  e.SearchSubjectAny,
		MaxMessages: e.MaxMessages,
		SinceDays:   e.SinceDays,
	}, dial, log)
}

func (a *Adapter) Name() string { return "Mail Alerts" }

// Fetch reads unseen alert messages and marks the ones it processed as seen.
// A failure to flag messages is logged; the listings are still returned.
func (a *Adapter) Fetch(ctx context.Context, _ domain.RunConfig) ([]domain.RawListing, error) {
	box, err := a.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("mail alerts: %w", err)
	}
	defer func() {
		if err := box.Close(); err != nil {
			a.log.Debug("imap logout", logger.Err(err))
		}
	}()

	days := a.cfg.SinceDays
	if days <= 0 {
		days = 14
	}
	since := a.Now().AddDate(0, 0, -days)

	msgs, err := box.Unseen(ctx, since, a.cfg.MaxMessages)
	if err != nil {
		return nil, fmt.Errorf("mail alerts: %w", err)
	}

	out := []domain.RawListing{}
	seen := map[string]bool{}
	var processed []imap.UID
	for _, m := range msgs {
		body := ParseRFC822(m.Raw, m.Subject)
		if !a.wanted(body.Subject) {
			continue
		}
		processed = append(processed, m.UID)

		found := 0
		for _, l := range ParseAlert(body) {
			if seen[l.ApplyURL] {
				continue
			}
			seen[l.ApplyURL] = true
			out = append(out, l)
			found++
		}
		a.log.Debug("alert parsed",
			logger.String("subject", body.Subject),
			logger.String("from", m.From),
			logger.Int("jobs", found),
		)
	}

	if err := box.MarkSeen(ctx, processed); err != nil {
		a.log.Warn("mark seen failed", logger.Int("messages", len(processed)), logger.Err(err))
	}
	return out, nil
}

func (a *Adapter) wanted(subject string) bool {
	if len(a.cfg.SubjectAny) == 0 {
		return true
	}
	s := strings.ToLower(subject)
	for _, k := range a.cfg.SubjectAny {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}
