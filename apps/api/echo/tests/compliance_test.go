package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/compliance"
	"github.com/bouncearound/daycare/core/user"
)

func Test_complianceApi_childStatus(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)
	c := env.createChild(t, "Mia", "Lopez", staff.ID)

	getStatus := func(t *testing.T) compliance.ChildStatus {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/children/"+c.ID+"/compliance", token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		var status compliance.ChildStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return status
	}

	t.Run("fresh child is not compliant", func(t *testing.T) {
		status := getStatus(t)
		if status.IsCompliant || status.HasMinimumContacts || status.EmergencyContactCount != 0 {
			t.Errorf("failed! unexpected status %+v", status)
		}
	})

	// DCFS minimum contacts
	env.createContact(t, c.ID, "Ana Lopez", 1)
	env.createContact(t, c.ID, "Luis Lopez", 2)

	t.Run("contacts alone are not enough", func(t *testing.T) {
		status := getStatus(t)
		if !status.HasMinimumContacts || status.EmergencyContactCount != 2 {
			t.Fatalf("failed! unexpected status %+v", status)
		}
		if status.IsCompliant || status.EnrollmentFormComplete {
			t.Errorf("failed! compliant without a completed form: %+v", status)
		}
	})

	// enrollment form
	formBody := marshalObj(t, compliance.NewEnrollmentForm{ChildID: c.ID, EnrollmentDate: "2025-09-02"})
	req, rec := newAuthRequest(http.MethodPost, "/api/v1/enrollment-forms", token, formBody)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating form failed! code = %v: %s", rec.Code, rec.Body.String())
	}
	var form compliance.EnrollmentForm
	if err := json.Unmarshal(rec.Body.Bytes(), &form); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}

	t.Run("duplicate form rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/enrollment-forms", token, formBody)
		env.app.ServeHTTP(rec, req)
		wantData := marshalObj(t, httpErr{Detail: "an enrollment form already exists for this child"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	t.Run("signing and completing the form", func(t *testing.T) {
		y := true
		body := marshalObj(t, compliance.UpdateEnrollmentForm{ParentSigned: &y, StaffSigned: &y, IsComplete: &y})
		req, rec := newAuthRequest(http.MethodPut, "/api/v1/enrollment-forms/"+form.ID, token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		var got compliance.EnrollmentForm
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if !got.IsComplete || got.ParentSignedAt == nil || got.StaffSignedAt == nil || got.CompletedBy != staff.ID {
			t.Errorf("failed! unexpected form %+v", got)
		}
	})

	t.Run("compliant once contacts and form are in place", func(t *testing.T) {
		status := getStatus(t)
		if !status.IsCompliant || !status.EnrollmentFormComplete {
			t.Errorf("failed! unexpected status %+v", status)
		}
	})

	t.Run("expired immunization breaks compliance", func(t *testing.T) {
		body := marshalObj(t, compliance.NewImmunization{
			ChildID:            c.ID,
			VaccineName:        "DTaP",
			AdministrationDate: "2024-01-10",
			ExpirationDate:     "2025-01-10", // in the past
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/immunizations", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("creating immunization failed! code = %v: %s", rec.Code, rec.Body.String())
		}

		status := getStatus(t)
		if status.IsCompliant || len(status.ExpiredImmunizations) != 1 {
			t.Errorf("failed! unexpected status %+v", status)
		}
	})
}

func Test_complianceApi_expiringImmunizations(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)
	c := env.createChild(t, "Mia", "Lopez", staff.ID)

	createImmunization := func(t *testing.T, vaccine, expires string) {
		t.Helper()
		body := marshalObj(t, compliance.NewImmunization{
			ChildID:            c.ID,
			VaccineName:        vaccine,
			AdministrationDate: "2025-01-10",
			ExpirationDate:     expires,
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/immunizations", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("creating immunization failed! code = %v: %s", rec.Code, rec.Body.String())
		}
	}

	soon := time.Now().AddDate(0, 0, 10).Format(core.DateLayout)
	farOut := time.Now().AddDate(1, 0, 0).Format(core.DateLayout)
	createImmunization(t, "DTaP", soon)
	createImmunization(t, "MMR", farOut)

	listExpiring := func(t *testing.T, path string) []compliance.ImmunizationRecord {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		var records []compliance.ImmunizationRecord
		if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return records
	}

	t.Run("default window", func(t *testing.T) {
		records := listExpiring(t, "/api/v1/immunizations/expiring")
		if len(records) != 1 || records[0].VaccineName != "DTaP" {
			t.Errorf("failed! unexpected records %+v", records)
		}
	})

	t.Run("custom window catches both", func(t *testing.T) {
		if records := listExpiring(t, "/api/v1/immunizations/expiring?window_days=400"); len(records) != 2 {
			t.Errorf("failed! len(records) = %d; want 2", len(records))
		}
	})
}

func Test_complianceApi_staffCredentials(t *testing.T) {
	env := setup(t)

	admin := env.createUser(t, "Dana", "Admin", "dana@daycare.test", user.RoleAdmin, true)
	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	adminToken := env.getToken(t, admin)
	staffToken := env.getToken(t, staff)

	body := marshalObj(t, compliance.NewCredential{
		UserID:         staff.ID,
		CredentialType: "cpr",
		IssueDate:      "2025-06-01",
		ExpirationDate: time.Now().AddDate(0, 0, 10).Format(core.DateLayout),
	})

	t.Run("create is admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/staff-credentials", staffToken, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, errPermissionDenied)}, rec)

		req, rec = newAuthRequest(http.MethodPost, "/api/v1/staff-credentials", adminToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("expiring report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/staff-credentials/expiring", staffToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		var creds []compliance.StaffCredential
		if err := json.Unmarshal(rec.Body.Bytes(), &creds); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(creds) != 1 || creds[0].UserID != staff.ID || creds[0].CredentialType != "cpr" {
			t.Errorf("failed! unexpected credentials %+v", creds)
		}
	})

	t.Run("user credential listing", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/users/"+staff.ID+"/credentials", staffToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		var creds []compliance.StaffCredential
		if err := json.Unmarshal(rec.Body.Bytes(), &creds); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(creds) != 1 {
			t.Errorf("failed! len(creds) = %d; want 1", len(creds))
		}
	})
}
