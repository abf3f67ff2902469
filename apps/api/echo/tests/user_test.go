package tests

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	echoapi "github.com/bouncearound/daycare/apps/api/echo"
	"github.com/bouncearound/daycare/core/user"
	emailsvc "github.com/bouncearound/daycare/services/email"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)

	env.createUser(t, "Dana", "Admin", "dana@daycare.test", user.RoleAdmin, true)
	env.createUser(t, "N", "Dog", "ndog@daycare.test", user.RoleParent, false)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Detail: map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marshalObj(t, echoapi.LoginRequest{Email: "nobody@daycare.test", Password: testPassword}),
			wantData: marshalObj(t, httpErr{Detail: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marshalObj(t, echoapi.LoginRequest{Email: "dana@daycare.test", Password: "wr0ng-Pa55"}),
			wantData: marshalObj(t, httpErr{Detail: "authentication failed"}),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     marshalObj(t, echoapi.LoginRequest{Email: "ndog@daycare.test", Password: testPassword}),
			wantData: marshalObj(t, httpErr{Detail: "account deactivated"}),
		},
		{
			name: "login ok", wantCode: http.StatusOK,
			body: marshalObj(t, echoapi.LoginRequest{Email: "dana@daycare.test", Password: testPassword}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)

			// cannot guess the token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_me(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)

	staleClaims := echoapi.GetUserClaims(env.conf, staff)
	staleClaims.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
	staleClaims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	expiredToken, err := echoapi.GenerateToken(env.conf, staleClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "tampered token", token: token + "x", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errInvalidToken)},
		{name: "expired token", token: expiredToken, wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errInvalidToken)},
		{name: "me", token: token, wantCode: http.StatusOK, wantData: marshalObj(t, staff)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/v1/users/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_adminOnly(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Dana", "Admin", "dana@daycare.test", user.RoleAdmin, true)
	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	prnt := env.createUser(t, "Pat", "Parent", "pat@daycare.test", user.RoleParent, true)

	forbidden := marshalObj(t, errPermissionDenied)

	tests := []httpTest{
		{name: "staff forbidden", token: env.getToken(t, staff), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "parent forbidden", token: env.getToken(t, prnt), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "admin allowed", token: env.getToken(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/v1/users"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var page struct {
					Items []user.User `json:"items"`
					Total int         `json:"total"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if page.Total != 3 || len(page.Items) != 3 {
					t.Errorf("failed! total = %d, items = %d; want 3", page.Total, len(page.Items))
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_register(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Dana", "Admin", "dana@daycare.test", user.RoleAdmin, true)
	adminToken := env.getToken(t, admin)

	newUsr := user.NewUser{
		Email:           "rosa@daycare.test",
		FirstName:       "Rosa",
		LastName:        "Reyes",
		Role:            user.RoleStaff,
		Password:        testPassword,
		PasswordConfirm: testPassword,
	}

	t.Run("register ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/users/register", adminToken, marshalObj(t, newUsr))
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if usr.ID == "" || usr.Email != newUsr.Email || usr.Role != user.RoleStaff || !usr.IsActive {
			t.Errorf("failed! unexpected user %+v", usr)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/users/register", adminToken, marshalObj(t, newUsr))
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})
}

func Test_userApi_resetPassword(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	successData := marshalObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Detail: map[string]string{"email": "this field is required"}}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body:     marshalObj(t, echoapi.PasswordResetRequest{Email: "lol"}),
			wantData: marshalObj(t, httpErr{Detail: map[string]string{"email": "email must be a valid email address"}}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK,
			body:     marshalObj(t, echoapi.PasswordResetRequest{Email: "lol@daycare.test"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK,
			body:     marshalObj(t, echoapi.PasswordResetRequest{Email: staff.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: mail.Address{Name: "Sam Staff", Address: staff.Email}},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/v1/users/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if !extra.emailSent {
					if len(emailsvc.SentMessages) != 0 {
						t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
					}
					return
				}
				if len(emailsvc.SentMessages) != 1 {
					t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
				}
				if msg := emailsvc.SentMessages[0]; msg.To[0] != extra.to {
					t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
				}
			}
		})
	}
}
