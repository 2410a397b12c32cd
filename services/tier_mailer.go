package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/Dosada05/karting-league/models"
	"github.com/Dosada05/karting-league/repositories"
)

type MailSender interface {
	SendEmail(to []string, subject string, body string) error
}

type ProfileDirectory interface {
	GetProfile(ctx context.Context, profileID int) (*models.Profile, error)
}

const defaultMailQueueSize = 256

var tierMailTemplate = template.Must(template.New("tier_movement").Parse(`<p>Hi {{.Nickname}},</p>
<p>{{.Headline}}</p>
<p>The change takes effect after race {{.AfterRace}}. Points for your new tier count from the next race.</p>`))

type tierMail struct {
	Nickname  string
	Headline  string
	AfterRace int
}

// TierMailer emails drivers about tier movements. Deliver only queues;
// Run does the sending so a slow SMTP server never holds up a shuffle.
type TierMailer struct {
	sender   MailSender
	profiles ProfileDirectory
	queue    chan *models.TierMovementNotification
	logger   *slog.Logger
}

var _ NotificationSink = (*TierMailer)(nil)

func NewTierMailer(sender MailSender, profiles ProfileDirectory, logger *slog.Logger, queueSize int) *TierMailer {
	if queueSize < 1 {
		queueSize = defaultMailQueueSize
	}
	return &TierMailer{
		sender:   sender,
		profiles: profiles,
		queue:    make(chan *models.TierMovementNotification, queueSize),
		logger:   logger,
	}
}

func (m *TierMailer) Deliver(ctx context.Context, notifications []*models.TierMovementNotification) {
	for _, n := range notifications {
		if n == nil || n.Movement == nil {
			continue
		}
		select {
		case m.queue <- n:
		default:
			m.logger.WarnContext(ctx, "tier mail queue full, dropping notification",
				slog.Int64("notification_id", n.ID),
				slog.Int("profile_id", n.ProfileID))
		}
	}
}

// Run sends queued mail until ctx is done. Mail still queued at that point
// is dropped; the notification itself stays readable over REST.
func (m *TierMailer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-m.queue:
			if err := m.send(ctx, n); err != nil {
				m.logger.WarnContext(ctx, "failed to email tier movement",
					slog.Int64("notification_id", n.ID),
					slog.Int("profile_id", n.ProfileID),
					slog.Any("error", err))
			}
		}
	}
}

func (m *TierMailer) send(ctx context.Context, n *models.TierMovementNotification) error {
	profile, err := m.profiles.GetProfile(ctx, n.ProfileID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("no account for profile %d", n.ProfileID)
		}
		return err
	}
	if profile.Email == "" {
		return fmt.Errorf("profile %d has no email", n.ProfileID)
	}

	subject, headline := describeMovement(n.Movement)
	var body bytes.Buffer
	if err := tierMailTemplate.Execute(&body, tierMail{
		Nickname:  profile.Nickname,
		Headline:  headline,
		AfterRace: n.Movement.AfterRaceNumber,
	}); err != nil {
		return fmt.Errorf("render tier mail: %w", err)
	}
	return m.sender.SendEmail([]string{profile.Email}, subject, body.String())
}

func describeMovement(mv *models.TierMovement) (subject, headline string) {
	to := 0
	if mv.ToTier != nil {
		to = *mv.ToTier
	}
	switch mv.MovementType {
	case models.MovementPromoted:
		return fmt.Sprintf("Promoted to tier %d", to), fmt.Sprintf("Congratulations, you have been promoted to tier %d.", to)
	case models.MovementRelegated:
		return fmt.Sprintf("Moved down to tier %d", to), fmt.Sprintf("You have been relegated to tier %d.", to)
	default:
		return fmt.Sprintf("Assigned to tier %d", to), fmt.Sprintf("You have been assigned to tier %d.", to)
	}
}
