package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	. "github.com/bouncearound/daycare/apps/api/echo"
	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/activity"
	"github.com/bouncearound/daycare/core/attendance"
	"github.com/bouncearound/daycare/core/child"
	"github.com/bouncearound/daycare/core/compliance"
	"github.com/bouncearound/daycare/core/parent"
	"github.com/bouncearound/daycare/core/user"
	emailsvc "github.com/bouncearound/daycare/services/email"
	logsvc "github.com/bouncearound/daycare/services/logger"
	inmemdb "github.com/bouncearound/daycare/storage/database/inmem"
)

var (
	errMissingToken     = httpErr{Detail: "missing or malformed token"}
	errInvalidToken     = httpErr{Detail: "invalid or expired token"}
	errPermissionDenied = httpErr{Detail: "permission denied"}
)

const testPassword = "s3cr3t-Pa55"

type testEnv struct {
	conf *core.Config
	app  Server

	usrRepo       user.Repository
	usrSvc        *user.Service
	childSvc      *child.Service
	parentSvc     *parent.Service
	attendanceSvc *attendance.Service
	activitySvc   *activity.Service
	complianceSvc *compliance.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf, err := core.NewConfig()
	if err != nil {
		t.Fatalf("core.NewConfig(): %v", err)
	}
	conf.TestMode = true

	// set up DB & repos
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	childRepo := inmemdb.NewChildRepository(db)
	parentRepo := inmemdb.NewParentRepository(db)
	attendanceRepo := inmemdb.NewAttendanceRepository(db)
	activityRepo := inmemdb.NewActivityRepository(db)
	complianceRepo := inmemdb.NewComplianceRepository(db)

	// set up services
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(conf, usrRepo, mailSvc)
	childSvc := child.NewService(conf, childRepo)
	parentSvc := parent.NewService(parentRepo, childSvc)
	attendanceSvc := attendance.NewService(conf, attendanceRepo, childSvc)
	activitySvc := activity.NewService(activityRepo, childSvc)
	complianceSvc := compliance.NewService(conf, complianceRepo, childSvc)

	validate, translator := core.NewValidator()

	// set up server
	app := NewServer(
		&Options{
			DisableReqLogs: true,
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			ChildSvc:       childSvc,
			ParentSvc:      parentSvc,
			AttendanceSvc:  attendanceSvc,
			ActivitySvc:    activitySvc,
			ComplianceSvc:  complianceSvc,
			Validate:       validate,
			Translator:     translator,
		},
		func() {}, /* shutdown */
	)

	return &testEnv{
		conf:          conf,
		app:           app,
		usrRepo:       usrRepo,
		usrSvc:        usrSvc,
		childSvc:      childSvc,
		parentSvc:     parentSvc,
		attendanceSvc: attendanceSvc,
		activitySvc:   activitySvc,
		complianceSvc: complianceSvc,
	}
}

func (env *testEnv) createUser(t *testing.T, first, last, email, role string, isActive bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Email:     email,
		FirstName: first,
		LastName:  last,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(testPassword); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func (env *testEnv) createChild(t *testing.T, first, last, createdBy string) child.Child {
	t.Helper()

	c, err := env.childSvc.Create(
		context.Background(),
		child.NewChild{
			FirstName:      first,
			LastName:       last,
			DateOfBirth:    "2022-04-15",
			EnrollmentDate: "2025-09-02",
		},
		createdBy,
	)
	if err != nil {
		t.Fatalf("childSvc.Create(): %v", err)
	}
	return c
}

func (env *testEnv) createContact(t *testing.T, childID, name string, priority int) child.EmergencyContact {
	t.Helper()

	ec, err := env.childSvc.CreateContact(context.Background(), child.NewEmergencyContact{
		ChildID:          childID,
		Name:             name,
		RelationshipType: "guardian",
		PhonePrimary:     "312-555-0100",
		PriorityOrder:    priority,
	})
	if err != nil {
		t.Fatalf("childSvc.CreateContact(): %v", err)
	}
	return ec
}

func (env *testEnv) getToken(t *testing.T, usr user.User) string {
	t.Helper()

	claims := GetUserClaims(env.conf, usr)
	token, err := GenerateToken(env.conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

type httpErr struct {
	Detail interface{} `json:"detail"`
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
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
