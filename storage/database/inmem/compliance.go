package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/compliance"
)

type complianceRepository struct {
	db *DB
}

var _ compliance.Repository = (*complianceRepository)(nil)

func NewComplianceRepository(db *DB) *complianceRepository {
	return &complianceRepository{db: db}
}

func (repo *complianceRepository) CreateImmunization(ctx context.Context, rec compliance.ImmunizationRecord) (compliance.ImmunizationRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec.ID = uuid.New().String()
	repo.db.immunizations[rec.ID] = &rec
	return rec, nil
}

func (repo *complianceRepository) GetImmunizationByID(ctx context.Context, id string) (compliance.ImmunizationRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.immunizations[id]; ok {
		return *rec, nil
	}
	return compliance.ImmunizationRecord{}, compliance.ErrImmunizationNotFound
}

func (repo *complianceRepository) ListImmunizationsByChild(ctx context.Context, childID string) ([]compliance.ImmunizationRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]compliance.ImmunizationRecord, 0)
	for _, rec := range repo.db.immunizations {
		if rec.ChildID == childID {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].AdministrationDate.After(records[j].AdministrationDate) })
	return records, nil
}

func (repo *complianceRepository) ListExpiringImmunizations(ctx context.Context, deadline time.Time) ([]compliance.ImmunizationRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	day := core.DateOf(deadline)
	records := make([]compliance.ImmunizationRecord, 0)
	for _, rec := range repo.db.immunizations {
		if rec.ExpirationDate != nil && !rec.ExpirationDate.After(day) {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ExpirationDate.Before(*records[j].ExpirationDate) })
	return records, nil
}

func (repo *complianceRepository) UpdateImmunization(ctx context.Context, rec compliance.ImmunizationRecord) (compliance.ImmunizationRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.immunizations[rec.ID]; !ok {
		return compliance.ImmunizationRecord{}, compliance.ErrImmunizationNotFound
	}
	repo.db.immunizations[rec.ID] = &rec
	return rec, nil
}

func (repo *complianceRepository) DeleteImmunization(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.immunizations[id]; !ok {
		return compliance.ErrImmunizationNotFound
	}
	delete(repo.db.immunizations, id)
	return nil
}

func (repo *complianceRepository) CreateCredential(ctx context.Context, cred compliance.StaffCredential) (compliance.StaffCredential, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cred.ID = uuid.New().String()
	repo.db.credentials[cred.ID] = &cred
	return cred, nil
}

func (repo *complianceRepository) GetCredentialByID(ctx context.Context, id string) (compliance.StaffCredential, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cred, ok := repo.db.credentials[id]; ok {
		return *cred, nil
	}
	return compliance.StaffCredential{}, compliance.ErrCredentialNotFound
}

func (repo *complianceRepository) ListCredentialsByUser(ctx context.Context, userID string) ([]compliance.StaffCredential, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	creds := make([]compliance.StaffCredential, 0)
	for _, cred := range repo.db.credentials {
		if cred.UserID == userID {
			creds = append(creds, *cred)
		}
	}
	sort.Slice(creds, func(i, j int) bool { return creds[i].IssueDate.After(creds[j].IssueDate) })
	return creds, nil
}

func (repo *complianceRepository) ListExpiringCredentials(ctx context.Context, deadline time.Time) ([]compliance.StaffCredential, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	day := core.DateOf(deadline)
	creds := make([]compliance.StaffCredential, 0)
	for _, cred := range repo.db.credentials {
		if cred.ExpirationDate != nil && !cred.ExpirationDate.After(day) {
			creds = append(creds, *cred)
		}
	}
	sort.Slice(creds, func(i, j int) bool { return creds[i].ExpirationDate.Before(*creds[j].ExpirationDate) })
	return creds, nil
}

func (repo *complianceRepository) UpdateCredential(ctx context.Context, cred compliance.StaffCredential) (compliance.StaffCredential, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.credentials[cred.ID]; !ok {
		return compliance.StaffCredential{}, compliance.ErrCredentialNotFound
	}
	repo.db.credentials[cred.ID] = &cred
	return cred, nil
}

func (repo *complianceRepository) DeleteCredential(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.credentials[id]; !ok {
		return compliance.ErrCredentialNotFound
	}
	delete(repo.db.credentials, id)
	return nil
}

func (repo *complianceRepository) CreateForm(ctx context.Context, form compliance.EnrollmentForm) (compliance.EnrollmentForm, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	form.ID = uuid.New().String()
	repo.db.forms[form.ID] = &form
	return form, nil
}

func (repo *complianceRepository) GetFormByID(ctx context.Context, id string) (compliance.EnrollmentForm, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if form, ok := repo.db.forms[id]; ok {
		return *form, nil
	}
	return compliance.EnrollmentForm{}, compliance.ErrFormNotFound
}

func (repo *complianceRepository) GetFormByChild(ctx context.Context, childID string) (compliance.EnrollmentForm, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, form := range repo.db.forms {
		if form.ChildID == childID {
			return *form, nil
		}
	}
	return compliance.EnrollmentForm{}, compliance.ErrFormNotFound
}

func (repo *complianceRepository) ListIncompleteForms(ctx context.Context) ([]compliance.EnrollmentForm, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	forms := make([]compliance.EnrollmentForm, 0)
	for _, form := range repo.db.forms {
		if !form.IsComplete {
			forms = append(forms, *form)
		}
	}
	sort.Slice(forms, func(i, j int) bool { return forms[i].EnrollmentDate.Before(forms[j].EnrollmentDate) })
	return forms, nil
}

func (repo *complianceRepository) UpdateForm(ctx context.Context, form compliance.EnrollmentForm) (compliance.EnrollmentForm, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.forms[form.ID]; !ok {
		return compliance.EnrollmentForm{}, compliance.ErrFormNotFound
	}
	repo.db.forms[form.ID] = &form
	return form, nil
}
