package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/activity"
	"github.com/bouncearound/daycare/core/attendance"
	"github.com/bouncearound/daycare/core/child"
	"github.com/bouncearound/daycare/core/compliance"
	"github.com/bouncearound/daycare/core/parent"
	"github.com/bouncearound/daycare/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Conf          *core.Config
		Logger        core.Logger
		UserSvc       *user.Service
		ChildSvc      *child.Service
		ParentSvc     *parent.Service
		AttendanceSvc *attendance.Service
		ActivitySvc   *activity.Service
		ComplianceSvc *compliance.Service
		Validate      *validator.Validate
		Translator    ut.Translator

		signalShutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options, signalShutdown func()) Server {
	opts.signalShutdown = signalShutdown
	s := &server{
		opts: opts,
		app:  echo.New(),
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

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)
	s.app.GET("/health", health)

	v1 := s.app.Group("/api/v1")
	auth := bearerAuthMiddleware(conf)

	registerUserAPI(v1, auth, s.opts)
	registerChildAPI(v1, auth, s.opts)
	registerParentAPI(v1, auth, s.opts)
	registerAttendanceAPI(v1, auth, s.opts)
	registerActivityAPI(v1, auth, s.opts)
	registerComplianceAPI(v1, auth, s.opts)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Bounce Around Daycare API!")
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
