// Package dummydb provides thread-safe in-memory repositories used in DEV
// mode and by the test suites.
package dummydb

import (
	"sync"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/notification"
)

type (
	DB struct {
		admin        *adminTable
		teacher      *teacherTable
		student      *studentTable
		exam         *examTable
		result       *resultTable
		notification *notificationTable
	}

	adminTable struct {
		sync.RWMutex
		table map[string]*account.Admin
	}

	teacherTable struct {
		sync.RWMutex
		table map[string]*account.Teacher
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*account.Student
	}

	examTable struct {
		sync.RWMutex
		table map[string]*exam.Exam
	}

	resultTable struct {
		sync.RWMutex
		table map[string]*exam.Result
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}
)

func Open() (*DB, error) {
	db := &DB{
		admin:        &adminTable{table: make(map[string]*account.Admin)},
		teacher:      &teacherTable{table: make(map[string]*account.Teacher)},
		student:      &studentTable{table: make(map[string]*account.Student)},
		exam:         &examTable{table: make(map[string]*exam.Exam)},
		result:       &resultTable{table: make(map[string]*exam.Result)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
	}
	return db, nil
}
