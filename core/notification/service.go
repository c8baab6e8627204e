package notification

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
)

var (
	// errors
	ErrNotFound = errors.New("notification not found")
)

// PublishedFeedLimit caps the student-facing feed.
const PublishedFeedLimit = 10

type (
	Repository interface {
		CreateNotification(ntf Notification) (Notification, error)
		GetNotificationByID(id string) (Notification, error)
		// QueryAllNotifications returns every notification, newest first.
		QueryAllNotifications() ([]Notification, error)
		// FilterPublishedNotifications returns published, unexpired
		// notifications, newest first, capped at limit.
		FilterPublishedNotifications(now time.Time, limit int) ([]Notification, error)
		UpdateNotification(ntf Notification) (Notification, error)
		DeleteNotification(id string) error
		// DeleteExpiredNotifications removes rows past their expiry.
		DeleteExpiredNotifications(now time.Time) (int, error)
	}

	// StudentDirectory lists recipients for published-notification emails.
	StudentDirectory interface {
		QueryAllStudents() ([]account.Student, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		stuDir  StudentDirectory
		log     core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, stuDir StudentDirectory, log core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, stuDir: stuDir, log: log}
}

// Create saves a new notification; a missing expiry defaults to DefaultTTL
// from now. AutoSend publishes and broadcasts it right away instead of
// leaving a draft.
func (svc *Service) Create(nn NewNotification) (Notification, error) {
	now := time.Now().UTC()
	expiry := nn.ExpiryDate
	if expiry.IsZero() {
		expiry = now.Add(DefaultTTL)
	}
	ntf, err := svc.repo.CreateNotification(Notification{
		Title:       nn.Title,
		Message:     nn.Message,
		IsPublished: nn.AutoSend,
		ExpiryDate:  expiry,
		AutoSend:    nn.AutoSend,
		ExamID:      nn.ExamID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Notification{}, err
	}
	if ntf.AutoSend {
		go svc.broadcast(ntf)
	}
	return ntf, nil
}

func (svc *Service) QueryAll() ([]Notification, error) {
	return svc.repo.QueryAllNotifications()
}

func (svc *Service) Get(id string) (Notification, error) {
	return svc.repo.GetNotificationByID(id)
}

// Published returns the student-facing feed: published and not yet expired.
func (svc *Service) Published() ([]Notification, error) {
	return svc.repo.FilterPublishedNotifications(time.Now().UTC(), PublishedFeedLimit)
}

func (svc *Service) Update(id string, un UpdateNotification) (Notification, error) {
	ntf, err := svc.repo.GetNotificationByID(id)
	if err != nil {
		return Notification{}, err
	}
	if un.Title != "" {
		ntf.Title = un.Title
	}
	if un.Message != "" {
		ntf.Message = un.Message
	}
	if !un.ExpiryDate.IsZero() {
		ntf.ExpiryDate = un.ExpiryDate
	}
	ntf.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateNotification(ntf)
}

func (svc *Service) Delete(id string) error {
	return svc.repo.DeleteNotification(id)
}

// Toggle flips the publication flag. Transitioning to published broadcasts
// the notification to every student by email in the background; a failed
// broadcast is logged, never surfaced.
func (svc *Service) Toggle(id string) (Notification, error) {
	ntf, err := svc.repo.GetNotificationByID(id)
	if err != nil {
		return Notification{}, err
	}
	ntf.IsPublished = !ntf.IsPublished
	ntf.UpdatedAt = time.Now().UTC()
	ntf, err = svc.repo.UpdateNotification(ntf)
	if err != nil {
		return Notification{}, err
	}
	if ntf.IsPublished {
		go svc.broadcast(ntf)
	}
	return ntf, nil
}

func (svc *Service) broadcast(ntf Notification) {
	students, err := svc.stuDir.QueryAllStudents()
	if err != nil {
		svc.log.Error("listing notification recipients", err)
		return
	}
	if len(students) == 0 {
		return
	}
	msg := &core.EmailMessage{
		Subject:  ntf.Title,
		BodyText: ntf.Message,
	}
	for _, stu := range students {
		msg.To = append(msg.To, mail.Address{Name: stu.Name, Address: stu.Email})
	}
	if err = svc.mailSvc.SendMessages(msg); err != nil {
		svc.log.Error("broadcasting notification", err)
	}
}

// StartSweeper periodically removes expired notifications until ctx is done.
// It stands in for a storage-engine TTL index; the published feed filters on
// expiry anyway, so sweep timing never leaks expired rows.
func (svc *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := svc.repo.DeleteExpiredNotifications(time.Now().UTC()); err != nil {
					svc.log.Error("sweeping expired notifications", err)
				} else if n > 0 {
					svc.log.Info("swept expired notifications", n)
				}
			}
		}
	}()
}
