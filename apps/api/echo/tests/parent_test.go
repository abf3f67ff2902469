package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bouncearound/daycare/core/parent"
	"github.com/bouncearound/daycare/core/user"
)

func Test_parentApi_crud(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)

	var created parent.Parent

	t.Run("create", func(t *testing.T) {
		body := marshalObj(t, parent.NewParent{
			FirstName:        "Ana",
			LastName:         "Lopez",
			Email:            "ana@lopez.test",
			PhonePrimary:     "312-555-0100",
			AddressState:     "IL",
			IsPrimaryContact: true,
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/parents", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if created.ID == "" || created.FirstName != "Ana" || !created.IsPrimaryContact {
			t.Errorf("failed! unexpected parent %+v", created)
		}
	})

	t.Run("invalid state code", func(t *testing.T) {
		body := marshalObj(t, parent.NewParent{
			FirstName:    "Ana",
			LastName:     "Lopez",
			PhonePrimary: "312-555-0100",
			AddressState: "Illinois",
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/parents", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/parents/"+created.ID, token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshalObj(t, created)}, rec)
	})

	t.Run("unknown parent", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/parents/b2b3b945-dead-4beb-a640-67f9e2fd1fe7", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Detail: "parent not found"})}, rec)
	})
}

func Test_parentApi_childLinks(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "Sam", "Staff", "sam@daycare.test", user.RoleStaff, true)
	token := env.getToken(t, staff)
	c := env.createChild(t, "Mia", "Lopez", staff.ID)

	createBody := marshalObj(t, parent.NewParent{FirstName: "Ana", LastName: "Lopez", PhonePrimary: "312-555-0100"})
	req, rec := newAuthRequest(http.MethodPost, "/api/v1/parents", token, createBody)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating parent failed! code = %v: %s", rec.Code, rec.Body.String())
	}
	var prnt parent.Parent
	if err := json.Unmarshal(rec.Body.Bytes(), &prnt); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}

	linkBody := marshalObj(t, parent.NewChildLink{ChildID: c.ID, RelationshipType: "mother", IsPrimary: true})
	var link parent.ChildLink

	t.Run("link child", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/parents/"+prnt.ID+"/children", token, linkBody)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &link); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		// custody & pickup default to true
		if !link.HasCustody || !link.CanPickup || !link.IsPrimary {
			t.Errorf("failed! unexpected link %+v", link)
		}
	})

	t.Run("duplicate link rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/parents/"+prnt.ID+"/children", token, linkBody)
		env.app.ServeHTTP(rec, req)
		wantData := marshalObj(t, httpErr{Detail: "this parent is already linked to this child"})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: wantData}, rec)
	})

	t.Run("list links", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/parents/"+prnt.ID+"/children", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshalObj(t, []parent.ChildLink{link})}, rec)
	})

	t.Run("unlink", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/parents/"+prnt.ID+"/children/"+link.ID, token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/api/v1/parents/"+prnt.ID+"/children", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshalObj(t, []parent.ChildLink{})}, rec)
	})
}
