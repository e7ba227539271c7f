package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/notification"
)

func newDelegationFixture(users ...*domain.User) (*DelegationService, *fakeUserRepo, *recordingNotifier) {
	userRepo := newFakeUserRepo(users...)
	notifier := &recordingNotifier{}
	return NewDelegationService(userRepo, notifier, testLogger), userRepo, notifier
}

func TestApply(t *testing.T) {
	doctor := newDoctor()
	secretary := newSecretaryFor(doctor.ID, domain.DelegationNone)
	svc, _, notifier := newDelegationFixture(doctor, secretary)

	updated, err := svc.Apply(context.Background(), secretary.ID, doctor.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.DelegationPending, updated.DelegationStatus)
	require.NotNil(t, updated.AssignedDoctorID)
	assert.Equal(t, doctor.ID, *updated.AssignedDoctorID)

	sent := notifier.sentTo(doctor.ID)
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TypeApplication, sent[0].Type)
}

func TestApplyGuards(t *testing.T) {
	doctorA := newDoctor()
	doctorB := newDoctor()
	patient := newPatient()
	approved := newSecretaryFor(doctorA.ID, domain.DelegationApproved)
	free := newSecretaryFor(doctorA.ID, domain.DelegationNone)
	svc, _, _ := newDelegationFixture(doctorA, doctorB, patient, approved, free)

	// Only secretaries apply.
	_, err := svc.Apply(context.Background(), patient.ID, doctorA.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// An approved secretary cannot apply elsewhere without being removed.
	_, err = svc.Apply(context.Background(), approved.ID, doctorB.ID)
	assert.ErrorIs(t, err, ErrAlreadyDelegated)

	// The target must be a doctor.
	_, err = svc.Apply(context.Background(), free.ID, patient.ID)
	assert.ErrorIs(t, err, ErrNotADoctor)
}

func TestDecideApprove(t *testing.T) {
	doctor := newDoctor()
	secretary := newSecretaryFor(doctor.ID, domain.DelegationPending)
	svc, _, notifier := newDelegationFixture(doctor, secretary)

	updated, err := svc.Decide(context.Background(), doctor.ID, secretary.ID, domain.DelegationApproved)
	require.NoError(t, err)

	assert.Equal(t, domain.DelegationApproved, updated.DelegationStatus)
	require.NotNil(t, updated.AssignedDoctorID)
	assert.True(t, updated.HasApprovedDelegationTo(doctor.ID))

	sent := notifier.sentTo(secretary.ID)
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TypeApplicationResponse, sent[0].Type)
}

func TestDecideRejectClearsDoctor(t *testing.T) {
	doctor := newDoctor()
	secretary := newSecretaryFor(doctor.ID, domain.DelegationPending)
	svc, _, _ := newDelegationFixture(doctor, secretary)

	updated, err := svc.Decide(context.Background(), doctor.ID, secretary.ID, domain.DelegationRejected)
	require.NoError(t, err)

	assert.Equal(t, domain.DelegationRejected, updated.DelegationStatus)
	assert.Nil(t, updated.AssignedDoctorID)
}

func TestDecideGuards(t *testing.T) {
	doctor := newDoctor()
	otherDoctor := newDoctor()
	pending := newSecretaryFor(doctor.ID, domain.DelegationPending)
	approved := newSecretaryFor(doctor.ID, domain.DelegationApproved)
	svc, _, _ := newDelegationFixture(doctor, otherDoctor, pending, approved)

	// Only the targeted doctor decides.
	_, err := svc.Decide(context.Background(), otherDoctor.ID, pending.ID, domain.DelegationApproved)
	assert.ErrorIs(t, err, ErrNoPendingApplication)

	// Deciding twice is rejected.
	_, err = svc.Decide(context.Background(), doctor.ID, approved.ID, domain.DelegationApproved)
	assert.ErrorIs(t, err, ErrNoPendingApplication)

	// Outcome must be approved or rejected.
	var validErr *ValidationError
	_, err = svc.Decide(context.Background(), doctor.ID, pending.ID, domain.DelegationNone)
	assert.ErrorAs(t, err, &validErr)
}

func TestRemove(t *testing.T) {
	doctor := newDoctor()
	secretary := newSecretaryFor(doctor.ID, domain.DelegationApproved)
	svc, _, notifier := newDelegationFixture(doctor, secretary)

	updated, err := svc.Remove(context.Background(), doctor.ID, secretary.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.DelegationNone, updated.DelegationStatus)
	assert.Nil(t, updated.AssignedDoctorID)

	sent := notifier.sentTo(secretary.ID)
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TypeSecretaryRemoved, sent[0].Type)
}

func TestRemoveGuards(t *testing.T) {
	doctor := newDoctor()
	otherDoctor := newDoctor()
	secretary := newSecretaryFor(doctor.ID, domain.DelegationApproved)
	svc, _, _ := newDelegationFixture(doctor, otherDoctor, secretary)

	_, err := svc.Remove(context.Background(), otherDoctor.ID, secretary.ID)
	assert.ErrorIs(t, err, ErrNotAssigned)
}

func TestAssignDirect(t *testing.T) {
	doctor := newDoctor()
	secretary := newSecretaryFor(doctor.ID, domain.DelegationNone)
	svc, _, _ := newDelegationFixture(doctor, secretary)

	updated, err := svc.AssignDirect(context.Background(), doctor.ID, secretary.ID)
	require.NoError(t, err)

	// Straight to approved, no pending round-trip.
	assert.True(t, updated.HasApprovedDelegationTo(doctor.ID))
}

func TestAssignDirectGuards(t *testing.T) {
	doctorA := newDoctor()
	doctorB := newDoctor()
	patient := newPatient()
	taken := newSecretaryFor(doctorA.ID, domain.DelegationApproved)
	svc, _, _ := newDelegationFixture(doctorA, doctorB, patient, taken)

	_, err := svc.AssignDirect(context.Background(), doctorB.ID, patient.ID)
	assert.ErrorIs(t, err, ErrNotASecretary)

	_, err = svc.AssignDirect(context.Background(), doctorB.ID, taken.ID)
	assert.ErrorIs(t, err, ErrAlreadyDelegated)
}

func TestDelegationListings(t *testing.T) {
	doctor := newDoctor()
	pending := newSecretaryFor(doctor.ID, domain.DelegationPending)
	approved := newSecretaryFor(doctor.ID, domain.DelegationApproved)
	patient := newPatient()
	svc, _, _ := newDelegationFixture(doctor, pending, approved, patient)

	applications, err := svc.PendingApplications(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.Len(t, applications, 1)
	assert.Equal(t, pending.ID, applications[0].ID)

	team, err := svc.AssignedSecretaries(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, approved.ID, team[0].ID)

	assigned, err := svc.AssignedDoctor(context.Background(), approved.ID)
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, assigned.ID)

	_, err = svc.PendingApplications(context.Background(), patient.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
