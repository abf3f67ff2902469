package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/bouncearound/daycare/core/child"
	"github.com/bouncearound/daycare/core/user"
)

func Test_childApi_create(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	prnt := env.createUser(t, "Pat", "Parent", "pat@daycare.test", user.RoleParent, true)
	staffToken := env.getToken(t, staff)

	newChild := child.NewChild{
		FirstName:      "Mia",
		LastName:       "Lopez",
		DateOfBirth:    "2022-06-10",
		Gender:         "female",
		Allergies:      "peanuts",
		EnrollmentDate: "2025-09-02",
	}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "staff required", token: env.getToken(t, prnt), body: marshalObj(t, newChild),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errPermissionDenied),
		},
		{
			name: "required fields", token: staffToken, wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Detail: map[string]string{
				"first_name":      "this field is required",
				"last_name":       "this field is required",
				"date_of_birth":   "this field is required",
				"enrollment_date": "this field is required",
			}}),
		},
		{
			name: "invalid date", token: staffToken, wantCode: http.StatusBadRequest,
			body: marshalObj(t, child.NewChild{FirstName: "Mia", LastName: "Lopez", DateOfBirth: "n/a", EnrollmentDate: "2025-09-02"}),
			wantData: marshalObj(t, httpErr{Detail: map[string]string{
				"date_of_birth": "must be a valid YYYY-MM-DD date",
			}}),
		},
		{name: "create ok", token: staffToken, body: marshalObj(t, newChild), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/v1/children"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var c child.Child
				if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if c.ID == "" || c.FirstName != "Mia" || c.Allergies != "peanuts" || !c.IsActive || c.CreatedBy != staff.ID {
					t.Errorf("failed! unexpected child %+v", c)
				}

				// the created child can be fetched back
				getReq, getRec := newAuthRequest(http.MethodGet, "/api/v1/children/"+c.ID, staffToken)
				env.app.ServeHTTP(getRec, getReq)
				checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: rec.Body.Bytes()}, getRec)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_childApi_listPagination(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)

	for i := 0; i < 3; i++ {
		env.createChild(t, fmt.Sprintf("Kid%d", i), "Tester", staff.ID)
	}

	getPage := func(t *testing.T, path string) (items []child.Child, total, page, pageSize int) {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp struct {
			Items    []child.Child `json:"items"`
			Total    int           `json:"total"`
			Page     int           `json:"page"`
			PageSize int           `json:"page_size"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return resp.Items, resp.Total, resp.Page, resp.PageSize
	}

	t.Run("oversized page_size is clamped", func(t *testing.T) {
		items, total, page, pageSize := getPage(t, "/api/v1/children?page_size=1000")
		if pageSize != 100 {
			t.Errorf("failed! page_size = %d; want 100", pageSize)
		}
		if page != 1 || total != 3 || len(items) != 3 {
			t.Errorf("failed! page = %d, total = %d, items = %d", page, total, len(items))
		}
	})

	t.Run("second page", func(t *testing.T) {
		items, total, page, _ := getPage(t, "/api/v1/children?page=2&page_size=2")
		if page != 2 || total != 3 || len(items) != 1 {
			t.Errorf("failed! page = %d, total = %d, items = %d", page, total, len(items))
		}
	})
}

func Test_childApi_softDelete(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Dana", "Admin", "dana@daycare.test", user.RoleAdmin, true)
	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	staffToken := env.getToken(t, staff)
	c := env.createChild(t, "Mia", "Lopez", staff.ID)

	setActive := func(t *testing.T, active bool) child.Child {
		t.Helper()
		body := marshalObj(t, map[string]bool{"is_active": active})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/children/"+c.ID+"/active", staffToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got child.Child
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return got
	}

	att := checkInChild(t, env, staffToken, c.ID, "08:30")

	t.Run("deactivate", func(t *testing.T) {
		if got := setActive(t, false); got.IsActive {
			t.Error("failed! child still active")
		}
	})

	t.Run("deactivated child is still readable", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/children/"+c.ID, staffToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
	})

	t.Run("attendance history survives deactivation", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/attendance/"+att.ID, staffToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}

		req, rec = newAuthRequest(http.MethodGet, "/api/v1/attendance/child/"+c.ID, staffToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var page struct {
			Total int `json:"total"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if page.Total != 1 {
			t.Errorf("failed! total = %d; want 1", page.Total)
		}
	})

	t.Run("reactivate", func(t *testing.T) {
		if got := setActive(t, true); !got.IsActive {
			t.Error("failed! child still inactive")
		}
	})

	t.Run("hard delete is admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/children/"+c.ID, staffToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, errPermissionDenied)}, rec)

		req, rec = newAuthRequest(http.MethodDelete, "/api/v1/children/"+c.ID, env.getToken(t, admin))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}

		req, rec = newAuthRequest(http.MethodGet, "/api/v1/children/"+c.ID, staffToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Detail: "child not found"})}, rec)
	})
}

func Test_childApi_emergencyContacts(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)
	c := env.createChild(t, "Mia", "Lopez", staff.ID)

	ec1 := env.createContact(t, c.ID, "Ana Lopez", 1)
	env.createContact(t, c.ID, "Luis Lopez", 2)

	t.Run("duplicate priority rejected", func(t *testing.T) {
		body := marshalObj(t, child.NewEmergencyContact{
			ChildID:          c.ID,
			Name:             "Rosa Lopez",
			RelationshipType: "aunt",
			PhonePrimary:     "312-555-0199",
			PriorityOrder:    1,
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/emergency-contacts", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("delete below DCFS minimum rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/emergency-contacts/"+ec1.ID, token)
		env.app.ServeHTTP(rec, req)
		wantData := marshalObj(t, httpErr{Detail: "DCFS requires a minimum of 2 emergency contacts per child; deletion would leave 1"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	t.Run("delete allowed above minimum", func(t *testing.T) {
		ec3 := env.createContact(t, c.ID, "Rosa Lopez", 3)

		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/emergency-contacts/"+ec3.ID, token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}
	})

	t.Run("list child contacts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/children/"+c.ID+"/emergency-contacts", token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var contacts []child.EmergencyContact
		if err := json.Unmarshal(rec.Body.Bytes(), &contacts); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(contacts) != 2 {
			t.Fatalf("failed! len(contacts) = %d; want 2", len(contacts))
		}
		if contacts[0].PriorityOrder != 1 || contacts[1].PriorityOrder != 2 {
			t.Errorf("failed! contacts not ordered by priority: %+v", contacts)
		}
	})
}

func Test_childApi_authorizedPickups(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Dana", "Admin", "dana@daycare.test", user.RoleAdmin, true)
	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)
	c := env.createChild(t, "Mia", "Lopez", staff.ID)

	var pickup child.AuthorizedPickup

	t.Run("create", func(t *testing.T) {
		body := marshalObj(t, child.NewAuthorizedPickup{
			ChildID:          c.ID,
			Name:             "Gloria Lopez",
			RelationshipType: "grandparent",
			Phone:            "312-555-0142",
			RequiresPassword: true,
			PasswordHint:     "favorite flower",
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/authorized-pickups", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &pickup); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if !pickup.IsActive || !pickup.RequiresPassword {
			t.Errorf("failed! unexpected pickup %+v", pickup)
		}
	})

	t.Run("revoke", func(t *testing.T) {
		body := marshalObj(t, map[string]bool{"is_active": false})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/authorized-pickups/"+pickup.ID+"/active", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got child.AuthorizedPickup
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if got.IsActive {
			t.Error("failed! pickup still active")
		}
	})

	t.Run("hard delete is admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/authorized-pickups/"+pickup.ID, token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, errPermissionDenied)}, rec)

		req, rec = newAuthRequest(http.MethodDelete, "/api/v1/authorized-pickups/"+pickup.ID, env.getToken(t, admin))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}
	})
}
