package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/bouncearound/daycare/apps/api/echo"
	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/activity"
	"github.com/bouncearound/daycare/core/attendance"
	"github.com/bouncearound/daycare/core/child"
	"github.com/bouncearound/daycare/core/compliance"
	"github.com/bouncearound/daycare/core/parent"
	"github.com/bouncearound/daycare/core/user"
	emailsvc "github.com/bouncearound/daycare/services/email"
	sendgridmail "github.com/bouncearound/daycare/services/email/sendgrid"
	logsvc "github.com/bouncearound/daycare/services/logger"
	"github.com/bouncearound/daycare/storage/database"
	"github.com/bouncearound/daycare/storage/database/sqlxrepos"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		rollbar := logsvc.NewRollbarLogger(std, conf)
		rollbar.Enable(true)
		logger = rollbar
	}

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = sendgridmail.NewService(conf, logger)
	}

	usrSvc := user.NewService(conf, sqlxrepos.NewUserRepository(db), mailSvc)
	childSvc := child.NewService(conf, sqlxrepos.NewChildRepository(db))
	parentSvc := parent.NewService(sqlxrepos.NewParentRepository(db), childSvc)
	attendanceSvc := attendance.NewService(conf, sqlxrepos.NewAttendanceRepository(db), childSvc)
	activitySvc := activity.NewService(sqlxrepos.NewActivityRepository(db), childSvc)
	complianceSvc := compliance.NewService(conf, sqlxrepos.NewComplianceRepository(db), childSvc)

	validate, translator := core.NewValidator()

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:          conf.Server.Address(),
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			ChildSvc:      childSvc,
			ParentSvc:     parentSvc,
			AttendanceSvc: attendanceSvc,
			ActivitySvc:   activitySvc,
			ComplianceSvc: complianceSvc,
			Validate:      validate,
			Translator:    translator,
		},
		func() { shutdownCh <- syscall.SIGTERM },
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.Start()
	}()

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdownCh:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = app.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
