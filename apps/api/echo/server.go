package echoapi

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/notification"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/stats"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		AccountSvc      *account.Service
		ExamSvc         *exam.Service
		NotificationSvc *notification.Service
		StatsSvc        *stats.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc:  newOriginChecker(conf),
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true
	s.app.Server.ReadTimeout = 15 * time.Second
	s.app.Server.WriteTimeout = 30 * time.Second

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerAuthAPI(api, jwt, s.opts.AccountSvc, conf)
	registerAdminAPI(api, jwt, s.opts.AccountSvc, s.opts.ExamSvc, s.opts.StatsSvc)
	registerExamAPI(api, jwt, s.opts.ExamSvc)
	registerStudentAPI(api, jwt, s.opts.AccountSvc, s.opts.ExamSvc)
	registerTeacherAPI(api, jwt, s.opts.ExamSvc)
	registerNotificationAPI(api, jwt, s.opts.NotificationSvc)
}

// newOriginChecker allows the configured origins plus anything matching the
// configured origin pattern (preview deployments).
func newOriginChecker(conf *core.Config) func(string) (bool, error) {
	var pattern *regexp.Regexp
	if conf.Server.AllowedOriginRegex != "" {
		pattern = regexp.MustCompile(conf.Server.AllowedOriginRegex)
	}
	return func(origin string) (bool, error) {
		for _, allowed := range conf.Server.AllowedOrigins {
			if origin == allowed {
				return true, nil
			}
		}
		if pattern != nil && pattern.MatchString(origin) {
			return true, nil
		}
		return false, nil
	}
}

func (s *server) Start() error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Start(s.opts.Conf.Server.Address()) }()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server error")
	case <-s.shutdown:
		return core.NewShutdownError("integrity issue caught by the error handler")
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	s.shutdown <- struct{}{}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "MEA Student Portal API is running")
}
