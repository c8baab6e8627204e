package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/notification"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/stats"
	dummydb "github.com/JUSAIR-JSR/MEA-Student-portal/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

const testAdminEmail = "boss@mea.test"

func newTestConfig() *core.Config {
	return &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "MEA Student Portal",
		SecretKey: []byte("test-secret-key"),
		PassMark:  35,
		Server: core.ServerConfig{
			JWTExpirationDelta: 24 * time.Hour,
			AllowedOrigins:     []string{"https://portal.mea.test"},
			AllowedOriginRegex: `^https://mea-portal-[a-z0-9]+\.vercel\.app$`,
		},
		Google: core.GoogleConfig{
			ClientID:    "test-client-id",
			AdminEmails: []string{testAdminEmail},
		},
	}
}

type testApp struct {
	app  Server
	conf *core.Config

	accountRepo account.Repository
	examRepo    exam.Repository
	ntfRepo     notification.Repository

	accountSvc *account.Service
	examSvc    *exam.Service
	ntfSvc     *notification.Service
	mailSvc    *mailSvcMock
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := newTestConfig()

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	accountRepo := dummydb.NewAccountRepository(db)
	examRepo := dummydb.NewExamRepository(db)
	ntfRepo := dummydb.NewNotificationRepository(db)
	statsRepo := dummydb.NewStatsRepository(db)

	// set up services
	mailSvc := &mailSvcMock{}
	logger := core.NewStdLogger(testLogger(t))
	accountSvc := account.NewService(accountRepo, conf.Google.AdminEmails)
	examSvc := exam.NewService(examRepo, accountRepo)
	ntfSvc := notification.NewService(ntfRepo, mailSvc, accountRepo, logger)
	statsSvc := stats.NewService(statsRepo, conf.PassMark)

	// set up server
	app := NewServer(&Options{
		Conf:            conf,
		Logger:          logger,
		DisableReqLogs:  true,
		AccountSvc:      accountSvc,
		ExamSvc:         examSvc,
		NotificationSvc: ntfSvc,
		StatsSvc:        statsSvc,
	})

	return &testApp{
		app:         app,
		conf:        conf,
		accountRepo: accountRepo,
		examRepo:    examRepo,
		ntfRepo:     ntfRepo,
		accountSvc:  accountSvc,
		examSvc:     examSvc,
		ntfSvc:      ntfSvc,
		mailSvc:     mailSvc,
	}
}

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.New(io.Discard, "", 0)
}

// mailSvcMock captures outgoing messages. Broadcasts run in a goroutine, so
// reads and writes are guarded.
type mailSvcMock struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

var _ core.EmailService = (*mailSvcMock)(nil)

func (svc *mailSvcMock) SendMessages(messages ...*core.EmailMessage) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = append(svc.sent, messages...)
	return nil
}

func (svc *mailSvcMock) sentCount() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return len(svc.sent)
}

func (svc *mailSvcMock) lastMessage() *core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.sent) == 0 {
		return nil
	}
	return svc.sent[len(svc.sent)-1]
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, ident account.Identity, conf *core.Config) string {
	t.Helper()
	token, err := GenerateToken(GetIdentityClaims(ident, conf), conf)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

// seeding helpers

func (ta *testApp) createAdmin(t *testing.T, name, email, pwd string) account.Admin {
	t.Helper()
	adm := account.Admin{Name: name, Email: email}
	if pwd != "" {
		if err := adm.SetPassword(pwd); err != nil {
			t.Fatalf("SetPassword(): %v", err)
		}
	} else {
		adm.AuthType = account.AuthTypeGoogle
	}
	adm, err := ta.accountSvc.CreateAdmin(adm)
	if err != nil {
		t.Fatalf("CreateAdmin(): %v", err)
	}
	return adm
}

func (ta *testApp) createTeacher(t *testing.T, name, email, pwd, subject string) account.Teacher {
	t.Helper()
	tch, err := ta.accountSvc.CreateTeacher(account.NewTeacher{Name: name, Email: email, Password: pwd, Subject: subject})
	if err != nil {
		t.Fatalf("CreateTeacher(): %v", err)
	}
	return tch
}

func (ta *testApp) createStudent(t *testing.T, name, email, pwd, rollNo, dept string) account.Student {
	t.Helper()
	stu, err := ta.accountSvc.CreateStudent(account.NewStudent{
		Name: name, Email: email, Password: pwd, RollNo: rollNo, Department: dept,
	})
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return stu
}

func (ta *testApp) createExam(t *testing.T, createdBy, title, subject string, date time.Time) exam.Exam {
	t.Helper()
	exm, err := ta.examSvc.Create(createdBy, exam.NewExam{Title: title, Subject: subject, Date: date})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	return exm
}

func (ta *testApp) assignExam(t *testing.T, examID string, teacherIDs, studentIDs []string) exam.Exam {
	t.Helper()
	exm, err := ta.examSvc.Assign(examID, exam.AssignExam{TeacherIDs: teacherIDs, StudentIDs: studentIDs})
	if err != nil {
		t.Fatalf("Assign(): %v", err)
	}
	return exm
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
