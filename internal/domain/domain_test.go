package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoleIsValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleDoctor, RoleSecretary, RolePatient} {
		assert.True(t, r.IsValid())
	}
	assert.False(t, Role("nurse").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestDelegationStatusIsValid(t *testing.T) {
	for _, s := range []DelegationStatus{DelegationNone, DelegationPending, DelegationApproved, DelegationRejected} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, DelegationStatus("revoked").IsValid())
}

func TestFullName(t *testing.T) {
	u := &User{FirstName: "Salma", LastName: "Gharbi"}
	assert.Equal(t, "Salma Gharbi", u.FullName())

	assert.Equal(t, "Salma", (&User{FirstName: "Salma"}).FullName())
	assert.Equal(t, "", (&User{}).FullName())
}

func TestHasApprovedDelegationTo(t *testing.T) {
	doctorID := uuid.New()
	otherID := uuid.New()

	secretary := &User{
		Role:             RoleSecretary,
		AssignedDoctorID: &doctorID,
		DelegationStatus: DelegationApproved,
	}
	assert.True(t, secretary.HasApprovedDelegationTo(doctorID))
	assert.False(t, secretary.HasApprovedDelegationTo(otherID))

	secretary.DelegationStatus = DelegationPending
	assert.False(t, secretary.HasApprovedDelegationTo(doctorID))

	secretary.DelegationStatus = DelegationApproved
	secretary.AssignedDoctorID = nil
	assert.False(t, secretary.HasApprovedDelegationTo(doctorID))

	// A doctor never holds a delegation, whatever the fields say.
	doctor := &User{
		Role:             RoleDoctor,
		AssignedDoctorID: &doctorID,
		DelegationStatus: DelegationApproved,
	}
	assert.False(t, doctor.HasApprovedDelegationTo(doctorID))
}
