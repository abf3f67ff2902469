package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bouncearound/daycare/core/attendance"
	"github.com/bouncearound/daycare/core/user"
)

func checkInChild(t *testing.T, env *testEnv, token, childID, at string) attendance.Attendance {
	t.Helper()

	body := marshalObj(t, attendance.CheckIn{
		ChildID:       childID,
		CheckInTime:   at,
		CheckInByName: "Ana Lopez",
	})
	req, rec := newAuthRequest(http.MethodPost, "/api/v1/attendance/check-in", token, body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("check-in failed! code = %v: %s", rec.Code, rec.Body.String())
	}
	var a attendance.Attendance
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	return a
}

func checkOutChild(t *testing.T, env *testEnv, token, attendanceID, at string) *httptest.ResponseRecorder {
	t.Helper()

	body := marshalObj(t, attendance.CheckOut{
		CheckOutTime:   at,
		CheckOutByName: "Ana Lopez",
	})
	req, rec := newAuthRequest(http.MethodPost, "/api/v1/attendance/"+attendanceID+"/check-out", token, body)
	env.app.ServeHTTP(rec, req)
	return rec
}

func Test_attendanceApi_checkIn(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	prnt := env.createUser(t, "Pat", "Parent", "pat@daycare.test", user.RoleParent, true)
	token := env.getToken(t, staff)
	c := env.createChild(t, "Mia", "Lopez", staff.ID)

	t.Run("staff required", func(t *testing.T) {
		body := marshalObj(t, attendance.CheckIn{ChildID: c.ID, CheckInTime: "08:30", CheckInByName: "Ana Lopez"})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/attendance/check-in", env.getToken(t, prnt), body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, errPermissionDenied)}, rec)
	})

	t.Run("check-in ok", func(t *testing.T) {
		a := checkInChild(t, env, token, c.ID, "08:30")
		if a.ID == "" || a.ChildID != c.ID || a.RecordedBy != staff.ID || a.CheckedOut() {
			t.Errorf("failed! unexpected attendance %+v", a)
		}
		if a.CheckInAt.Format("15:04") != "08:30" {
			t.Errorf("failed! CheckInAt = %v; want 08:30", a.CheckInAt)
		}
	})

	t.Run("double check-in same day rejected", func(t *testing.T) {
		body := marshalObj(t, attendance.CheckIn{ChildID: c.ID, CheckInTime: "08:45", CheckInByName: "Luis Lopez"})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/attendance/check-in", token, body)
		env.app.ServeHTTP(rec, req)
		wantData := marshalObj(t, httpErr{Detail: "child already checked in today at 08:30"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	t.Run("inactive child rejected", func(t *testing.T) {
		inactive := env.createChild(t, "Leo", "Lopez", staff.ID)
		if _, err := env.childSvc.SetActive(context.Background(), inactive.ID, false); err != nil {
			t.Fatalf("SetActive(): %v", err)
		}

		body := marshalObj(t, attendance.CheckIn{ChildID: inactive.ID, CheckInTime: "08:30", CheckInByName: "Ana Lopez"})
		request, rec := newAuthRequest(http.MethodPost, "/api/v1/attendance/check-in", token, body)
		env.app.ServeHTTP(rec, request)
		wantData := marshalObj(t, httpErr{Detail: map[string]string{"child_id": "cannot check in inactive child"}})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})
}

func Test_attendanceApi_checkOutLateFee(t *testing.T) {
	env := setup(t)

	// defaults: 18:00 cutoff, 15min grace, $1.00/min
	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)

	tests := []struct {
		name        string
		checkOut    string
		wantLate    bool
		wantMinutes int
		wantFee     float64
	}{
		{name: "before cutoff", checkOut: "17:59"},
		{name: "within grace", checkOut: "18:10"},
		{name: "past grace", checkOut: "18:20", wantLate: true, wantMinutes: 5, wantFee: 5.00},
		{name: "an hour late", checkOut: "19:00", wantLate: true, wantMinutes: 45, wantFee: 45.00},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := env.createChild(t, "Kid", string(rune('A'+i)), staff.ID)
			a := checkInChild(t, env, token, c.ID, "08:30")

			rec := checkOutChild(t, env, token, a.ID, tt.checkOut)
			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
			}
			var got attendance.Attendance
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("json.Unmarshal(): %v", err)
			}
			if !got.CheckedOut() {
				t.Fatal("failed! record not checked out")
			}
			if got.IsLatePickup != tt.wantLate || got.LateMinutes != tt.wantMinutes || got.LateFee != tt.wantFee {
				t.Errorf("failed! late = %v/%dmin/$%.2f; want %v/%dmin/$%.2f",
					got.IsLatePickup, got.LateMinutes, got.LateFee, tt.wantLate, tt.wantMinutes, tt.wantFee)
			}
		})
	}

	t.Run("double check-out rejected", func(t *testing.T) {
		c := env.createChild(t, "Mia", "Lopez", staff.ID)
		a := checkInChild(t, env, token, c.ID, "08:30")

		if rec := checkOutChild(t, env, token, a.ID, "17:30"); rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		rec := checkOutChild(t, env, token, a.ID, "17:45")
		wantData := marshalObj(t, httpErr{Detail: "child already checked out at 17:30"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	t.Run("unknown record", func(t *testing.T) {
		rec := checkOutChild(t, env, token, "1e0bb945-dead-4beb-a640-67f9e2fd1fe7", "17:30")
		wantData := marshalObj(t, httpErr{Detail: "attendance record not found"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: wantData}, rec)
	})
}

func Test_attendanceApi_today(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)

	c1 := env.createChild(t, "Mia", "Lopez", staff.ID)
	c2 := env.createChild(t, "Leo", "Nguyen", staff.ID)

	checkInChild(t, env, token, c1.ID, "08:00")
	a2 := checkInChild(t, env, token, c2.ID, "08:15")
	if rec := checkOutChild(t, env, token, a2.ID, "16:30"); rec.Code != http.StatusOK {
		t.Fatalf("check-out failed! code = %v: %s", rec.Code, rec.Body.String())
	}

	getToday := func(t *testing.T, path string) []attendance.Attendance {
		t.Helper()
		request, rec := newAuthRequest(http.MethodGet, path, token)
		env.app.ServeHTTP(rec, request)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Items []attendance.Attendance `json:"items"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return resp.Items
	}

	t.Run("all of today", func(t *testing.T) {
		if items := getToday(t, "/api/v1/attendance/today"); len(items) != 2 {
			t.Errorf("failed! len(items) = %d; want 2", len(items))
		}
	})

	t.Run("still on premises", func(t *testing.T) {
		items := getToday(t, "/api/v1/attendance/today?open_only=true")
		if len(items) != 1 {
			t.Fatalf("failed! len(items) = %d; want 1", len(items))
		}
		if items[0].ChildID != c1.ID {
			t.Errorf("failed! ChildID = %v; want %v", items[0].ChildID, c1.ID)
		}
	})
}

func Test_attendanceApi_latePickups(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)

	c1 := env.createChild(t, "Mia", "Lopez", staff.ID)
	c2 := env.createChild(t, "Leo", "Nguyen", staff.ID)

	a1 := checkInChild(t, env, token, c1.ID, "08:00")
	a2 := checkInChild(t, env, token, c2.ID, "08:15")
	checkOutChild(t, env, token, a1.ID, "16:30") // on time
	checkOutChild(t, env, token, a2.ID, "18:45") // late

	request, rec := newAuthRequest(http.MethodGet, "/api/v1/attendance/late-pickups", token)
	env.app.ServeHTTP(rec, request)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Items []attendance.Attendance `json:"items"`
		Total int                     `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if resp.Total != 1 || len(resp.Items) != 1 {
		t.Fatalf("failed! total = %d, items = %d; want 1", resp.Total, len(resp.Items))
	}
	if got := resp.Items[0]; got.ChildID != c2.ID || !got.IsLatePickup || got.LateMinutes != 30 {
		t.Errorf("failed! unexpected record %+v", got)
	}
}

func Test_attendanceApi_destroy(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Dana", "Admin", "dana@daycare.test", user.RoleAdmin, true)
	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)

	c := env.createChild(t, "Mia", "Lopez", staff.ID)
	a := checkInChild(t, env, token, c.ID, "08:30")

	t.Run("admin only", func(t *testing.T) {
		request, rec := newAuthRequest(http.MethodDelete, "/api/v1/attendance/"+a.ID, token)
		env.app.ServeHTTP(rec, request)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, errPermissionDenied)}, rec)
	})

	t.Run("deleted", func(t *testing.T) {
		request, rec := newAuthRequest(http.MethodDelete, "/api/v1/attendance/"+a.ID, env.getToken(t, admin))
		env.app.ServeHTTP(rec, request)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}

		request, rec = newAuthRequest(http.MethodGet, "/api/v1/attendance/"+a.ID, token)
		env.app.ServeHTTP(rec, request)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Detail: "attendance record not found"})}, rec)
	})
}
