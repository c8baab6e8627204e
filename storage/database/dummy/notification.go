package dummydb

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotification(ntf notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ntf.ID = uuid.New().String()
	repo.db.table[ntf.ID] = &ntf
	return ntf, nil
}

func (repo *notificationRepository) GetNotificationByID(id string) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ntf, ok := repo.db.table[id]; ok {
		return *ntf, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) QueryAllNotifications() ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return sortByCreatedDesc(repo.query()), nil
}

func (repo *notificationRepository) FilterPublishedNotifications(now time.Time, limit int) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var published []notification.Notification
	for _, ntf := range repo.query() {
		if ntf.IsPublished && !ntf.Expired(now) {
			published = append(published, ntf)
		}
	}
	published = sortByCreatedDesc(published)
	if len(published) > limit {
		published = published[:limit]
	}
	return published, nil
}

func (repo *notificationRepository) UpdateNotification(ntf notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cur, ok := repo.db.table[ntf.ID]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	ntf.CreatedAt = cur.CreatedAt
	repo.db.table[ntf.ID] = &ntf
	return ntf, nil
}

func (repo *notificationRepository) DeleteNotification(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return notification.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *notificationRepository) DeleteExpiredNotifications(now time.Time) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var deleted int
	for id, ntf := range repo.db.table {
		if ntf.Expired(now) {
			delete(repo.db.table, id)
			deleted++
		}
	}
	return deleted, nil
}

func (repo *notificationRepository) query() []notification.Notification {
	notifications := make([]notification.Notification, 0, len(repo.db.table))
	for _, ntf := range repo.db.table {
		notifications = append(notifications, *ntf)
	}
	return notifications
}

func sortByCreatedDesc(notifications []notification.Notification) []notification.Notification {
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications
}
