package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bouncearound/daycare/core/activity"
	"github.com/bouncearound/daycare/core/user"
)

func Test_activityApi(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	prnt := env.createUser(t, "Pat", "Parent", "pat@daycare.test", user.RoleParent, true)
	token := env.getToken(t, staff)

	c1 := env.createChild(t, "Mia", "Lopez", staff.ID)
	c2 := env.createChild(t, "Leo", "Nguyen", staff.ID)

	logActivity := func(t *testing.T, childID, actType, name string) activity.Activity {
		t.Helper()
		body := marshalObj(t, activity.NewActivity{
			ChildID: childID,
			Date:    "2026-08-31",
			Time:    "12:15",
			Type:    actType,
			Name:    name,
			Mood:    "happy",
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/activities", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("logging activity failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		var a activity.Activity
		if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return a
	}

	a1 := logActivity(t, c1.ID, "meal", "Lunch")
	logActivity(t, c1.ID, "nap", "Afternoon nap")
	logActivity(t, c2.ID, "meal", "Lunch")

	t.Run("parent cannot log activities", func(t *testing.T) {
		body := marshalObj(t, activity.NewActivity{ChildID: c1.ID, Date: "2026-08-31", Time: "12:15", Type: "meal", Name: "Lunch"})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/activities", env.getToken(t, prnt), body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, errPermissionDenied)}, rec)
	})

	t.Run("invalid type rejected", func(t *testing.T) {
		body := marshalObj(t, activity.NewActivity{ChildID: c1.ID, Date: "2026-08-31", Time: "12:15", Type: "screen_time", Name: "TV"})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/activities", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	list := func(t *testing.T, path string) []activity.Activity {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Items []activity.Activity `json:"items"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return resp.Items
	}

	t.Run("filter by child", func(t *testing.T) {
		if items := list(t, "/api/v1/activities?child_id="+c1.ID); len(items) != 2 {
			t.Errorf("failed! len(items) = %d; want 2", len(items))
		}
	})

	t.Run("filter by type", func(t *testing.T) {
		if items := list(t, "/api/v1/activities?activity_type=meal"); len(items) != 2 {
			t.Errorf("failed! len(items) = %d; want 2", len(items))
		}
	})

	t.Run("update mood", func(t *testing.T) {
		body := marshalObj(t, activity.UpdateActivity{Mood: "tired"})
		req, rec := newAuthRequest(http.MethodPut, "/api/v1/activities/"+a1.ID, token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		var got activity.Activity
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if got.Mood != "tired" || got.Name != "Lunch" {
			t.Errorf("failed! unexpected activity %+v", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/activities/"+a1.ID, token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/api/v1/activities/"+a1.ID, token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Detail: "activity not found"})}, rec)
	})
}
