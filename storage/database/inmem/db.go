// Package inmemdb is a map-backed implementation of the core repositories
// used by tests. Filtering and ordering mirror the SQL repositories.
package inmemdb

import (
	"sync"

	"github.com/bouncearound/daycare/core/activity"
	"github.com/bouncearound/daycare/core/attendance"
	"github.com/bouncearound/daycare/core/child"
	"github.com/bouncearound/daycare/core/compliance"
	"github.com/bouncearound/daycare/core/parent"
	"github.com/bouncearound/daycare/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users         map[string]*user.User
	children      map[string]*child.Child
	contacts      map[string]*child.EmergencyContact
	pickups       map[string]*child.AuthorizedPickup
	parents       map[string]*parent.Parent
	links         map[string]*parent.ChildLink
	attendance    map[string]*attendance.Attendance
	activities    map[string]*activity.Activity
	immunizations map[string]*compliance.ImmunizationRecord
	credentials   map[string]*compliance.StaffCredential
	forms         map[string]*compliance.EnrollmentForm
}

func NewDB() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		children:      make(map[string]*child.Child),
		contacts:      make(map[string]*child.EmergencyContact),
		pickups:       make(map[string]*child.AuthorizedPickup),
		parents:       make(map[string]*parent.Parent),
		links:         make(map[string]*parent.ChildLink),
		attendance:    make(map[string]*attendance.Attendance),
		activities:    make(map[string]*activity.Activity),
		immunizations: make(map[string]*compliance.ImmunizationRecord),
		credentials:   make(map[string]*compliance.StaffCredential),
		forms:         make(map[string]*compliance.EnrollmentForm),
	}
}
