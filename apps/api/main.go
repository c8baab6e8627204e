package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/JUSAIR-JSR/MEA-Student-portal/apps/api/echo"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/notification"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/stats"
	emailsvc "github.com/JUSAIR-JSR/MEA-Student-portal/services/email"
	logsvc "github.com/JUSAIR-JSR/MEA-Student-portal/services/logger"
	"github.com/JUSAIR-JSR/MEA-Student-portal/storage/database"
	sqlxrepos "github.com/JUSAIR-JSR/MEA-Student-portal/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		std.Fatalf("loading config: %+v", err)
	}

	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = core.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	if err = run(conf, logger, std); err != nil {
		logger.Error("startup failed", err)
		os.Exit(1)
	}
}

func run(conf *core.Config, logger core.Logger, std *log.Logger) error {
	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err = database.Migrate(db); err != nil {
		return err
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf)
	}

	accountRepo := sqlxrepos.NewAccountRepository(db)
	accountSvc := account.NewService(accountRepo, conf.Google.AdminEmails)
	examSvc := exam.NewService(sqlxrepos.NewExamRepository(db), accountRepo)
	notificationSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), mailSvc, accountRepo, logger)
	statsSvc := stats.NewService(sqlxrepos.NewStatsRepository(db), conf.PassMark)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationSvc.StartSweeper(ctx, conf.Notification.SweepInterval)

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Conf:            conf,
		Logger:          logger,
		AccountSvc:      accountSvc,
		ExamSvc:         examSvc,
		NotificationSvc: notificationSvc,
		StatsSvc:        statsSvc,
	})

	serverErrs := make(chan error, 1)
	go func() { serverErrs <- app.Start() }()
	std.Printf("API server listening on %s", conf.Server.Address())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrs:
		return err
	case sig := <-quit:
		std.Printf("received %v, shutting down", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err = app.Stop(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
