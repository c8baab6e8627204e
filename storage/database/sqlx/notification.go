package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

type notificationRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Message     string      `db:"message"`
	IsPublished bool        `db:"is_published"`
	ExpiryDate  time.Time   `db:"expiry_date"`
	AutoSend    bool        `db:"auto_send"`
	ExamID      null.String `db:"exam_id"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (row notificationRow) domain() notification.Notification {
	return notification.Notification{
		ID:          row.ID,
		Title:       row.Title,
		Message:     row.Message,
		IsPublished: row.IsPublished,
		ExpiryDate:  row.ExpiryDate,
		AutoSend:    row.AutoSend,
		ExamID:      row.ExamID.String,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (repo *notificationRepository) CreateNotification(ntf notification.Notification) (notification.Notification, error) {
	ntf.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO notification (id, title, message, is_published, expiry_date, auto_send, exam_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ntf.ID, ntf.Title, ntf.Message, ntf.IsPublished, ntf.ExpiryDate, ntf.AutoSend,
		null.NewString(ntf.ExamID, ntf.ExamID != ""), ntf.CreatedAt, ntf.UpdatedAt,
	)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return ntf, nil
}

func (repo *notificationRepository) GetNotificationByID(id string) (notification.Notification, error) {
	var row notificationRow
	err := repo.db.Get(&row, "SELECT * FROM notification WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "getting notification by ID")
	}
	return row.domain(), nil
}

func (repo *notificationRepository) QueryAllNotifications() ([]notification.Notification, error) {
	return repo.selectNotifications("SELECT * FROM notification ORDER BY created_at DESC")
}

func (repo *notificationRepository) FilterPublishedNotifications(now time.Time, limit int) ([]notification.Notification, error) {
	return repo.selectNotifications(
		`SELECT * FROM notification
		 WHERE is_published AND expiry_date >= $1
		 ORDER BY created_at DESC
		 LIMIT $2`, now, limit)
}

func (repo *notificationRepository) selectNotifications(query string, args ...interface{}) ([]notification.Notification, error) {
	var rows []notificationRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	ntfs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		ntfs = append(ntfs, row.domain())
	}
	return ntfs, nil
}

func (repo *notificationRepository) UpdateNotification(ntf notification.Notification) (notification.Notification, error) {
	res, err := repo.db.Exec(
		`UPDATE notification SET title = $2, message = $3, is_published = $4, expiry_date = $5, updated_at = $6
		 WHERE id = $1`,
		ntf.ID, ntf.Title, ntf.Message, ntf.IsPublished, ntf.ExpiryDate, ntf.UpdatedAt,
	)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	return repo.GetNotificationByID(ntf.ID)
}

func (repo *notificationRepository) DeleteNotification(id string) error {
	res, err := repo.db.Exec("DELETE FROM notification WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (repo *notificationRepository) DeleteExpiredNotifications(now time.Time) (int, error) {
	res, err := repo.db.Exec("DELETE FROM notification WHERE expiry_date < $1", now)
	if err != nil {
		return 0, errors.Wrap(err, "deleting expired notifications")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
