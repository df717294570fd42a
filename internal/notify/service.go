package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"stallbook/internal/booking"
	"stallbook/internal/logger"
	"stallbook/internal/metrics"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"

	maxTries = 3
)

type Job struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Recipients looks up the email addresses a booking event goes to.
// The booking payloads deliberately carry no contact details, so the
// notifier resolves them itself.
type Recipients interface {
	CustomerEmail(ctx context.Context, customerID int) (email, name string, err error)
	ProviderEmail(ctx context.Context, providerID int) (email, name string, err error)
}

// Service queues booking notifications on a redis list and drains it
// with an SMTP worker. Queueing never blocks the booking path on SMTP.
type Service struct {
	redis      *redis.Client
	recipients Recipients
	from       string
	fromName   string
	smtpHost   string
	smtpPort   string
	smtpUser   string
	smtpPass   string
}

func New(recipients Recipients, fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		recipients: recipients,
		from:       fromEmail,
		fromName:   fromName,
		smtpHost:   smtpHost,
		smtpPort:   smtpPort,
		smtpUser:   smtpUser,
		smtpPass:   smtpPass,
	}
}

// BookingCreated emails the customer a confirmation of the new booking.
func (s *Service) BookingCreated(ctx context.Context, b *booking.BookingWithRelations) {
	email, name, err := s.recipients.CustomerEmail(ctx, b.CustomerID)
	if err != nil {
		logger.Errorf("Failed to resolve customer %d for booking notification: %v", b.CustomerID, err)
		return
	}

	subject := "Din bokning är mottagen"
	body := fmt.Sprintf(
		"Hej %s!\n\nDin bokning av %s hos %s den %s kl %s-%s är mottagen och väntar på bekräftelse.\n\nHälsningar,\n%s",
		name, b.ServiceName, b.ProviderBusinessName,
		b.BookingDate.Format("2006-01-02"), b.StartTime, b.EndTime,
		s.fromName,
	)

	s.queue(ctx, "booking_created", email, name, subject, body)

	provEmail, provName, err := s.recipients.ProviderEmail(ctx, b.ProviderID)
	if err != nil {
		logger.Errorf("Failed to resolve provider %d for booking notification: %v", b.ProviderID, err)
		return
	}

	provBody := fmt.Sprintf(
		"Hej %s!\n\nNy bokningsförfrågan: %s den %s kl %s-%s.\nLogga in för att bekräfta eller avböja.\n\nHälsningar,\n%s",
		provName, b.ServiceName,
		b.BookingDate.Format("2006-01-02"), b.StartTime, b.EndTime,
		s.fromName,
	)
	s.queue(ctx, "booking_requested", provEmail, provName, "Ny bokningsförfrågan", provBody)
}

// BookingStatusChanged emails the customer about the new status.
func (s *Service) BookingStatusChanged(ctx context.Context, b *booking.Booking) {
	email, name, err := s.recipients.CustomerEmail(ctx, b.CustomerID)
	if err != nil {
		logger.Errorf("Failed to resolve customer %d for status notification: %v", b.CustomerID, err)
		return
	}

	var subject, line string
	switch b.Status {
	case booking.StatusConfirmed:
		subject = "Din bokning är bekräftad"
		line = "har bekräftats"
	case booking.StatusCancelled:
		subject = "Din bokning är avbokad"
		line = "har avbokats"
	case booking.StatusCompleted:
		subject = "Din bokning är genomförd"
		line = "har markerats som genomförd"
	case booking.StatusNoShow:
		subject = "Missad bokning"
		line = "har markerats som missad"
	default:
		return
	}

	body := fmt.Sprintf(
		"Hej %s!\n\nDin bokning den %s kl %s-%s %s.\n\nHälsningar,\n%s",
		name, b.BookingDate.Format("2006-01-02"), b.StartTime, b.EndTime, line,
		s.fromName,
	)

	s.queue(ctx, "booking_status_changed", email, name, subject, body)
}

func (s *Service) queue(ctx context.Context, jobType, to, name, subject, body string) {
	job := Job{
		ID:      uuid.NewString(),
		Type:    jobType,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue notification to %s: %v", to, err)
		return
	}

	metrics.RecordNotificationQueued(jobType)
	logger.Infof("Notification %s queued: %s to %s", job.ID, subject, to)
}

// Start drains the queue until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification service stopped")
			return
		default:
			s.processNext(ctx)
			metrics.NotificationQueueLength.Set(float64(s.QueueLength(ctx)))
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending notification %s to %s (attempt %d)", job.ID, job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send notification %s: %v", job.ID, err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying notification %s (attempt %d)", job.ID, job.Tries+1)
		} else {
			logger.Errorf("Notification %s failed after %d attempts", job.ID, maxTries)
			s.saveFailed(job, err)
		}
		return
	}

	logger.Infof("Notification %s sent to %s", job.ID, job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification %s moved to failed queue", job.ID)
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}
