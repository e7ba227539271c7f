package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
	"github.com/dentavia/dentavia/internal/domain/prescription"
)

type fakePrescriptionRepo struct {
	prescriptions map[uuid.UUID]*prescription.Prescription
}

func newFakePrescriptionRepo() *fakePrescriptionRepo {
	return &fakePrescriptionRepo{prescriptions: make(map[uuid.UUID]*prescription.Prescription)}
}

func (r *fakePrescriptionRepo) Create(_ context.Context, p *prescription.Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.prescriptions[p.ID] = p
	return nil
}

func (r *fakePrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	p, ok := r.prescriptions[id]
	if !ok {
		return nil, prescription.ErrPrescriptionNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePrescriptionRepo) Update(_ context.Context, p *prescription.Prescription) error {
	r.prescriptions[p.ID] = p
	return nil
}

func (r *fakePrescriptionRepo) ListByAppointment(_ context.Context, appointmentID uuid.UUID) ([]*prescription.Prescription, error) {
	var out []*prescription.Prescription
	for _, p := range r.prescriptions {
		if p.AppointmentID == appointmentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePrescriptionRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*prescription.Prescription, error) {
	var out []*prescription.Prescription
	for _, p := range r.prescriptions {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, nil
}

type prescriptionFixture struct {
	svc      *PrescriptionService
	repo     *fakePrescriptionRepo
	notifier *recordingNotifier
	users    *fakeUserRepo
	appts    *fakeAppointmentRepo
}

func newPrescriptionFixture(users *fakeUserRepo, appts *fakeAppointmentRepo) *prescriptionFixture {
	repo := newFakePrescriptionRepo()
	notifier := &recordingNotifier{}
	return &prescriptionFixture{
		svc:      NewPrescriptionService(repo, appts, users, notifier, testLogger),
		repo:     repo,
		notifier: notifier,
		users:    users,
		appts:    appts,
	}
}

func TestCreatePrescription(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	users := newFakeUserRepo(doctor, patient)
	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(10), appointment.StatusAccepted)
	appts := newFakeAppointmentRepo(users, appt)
	f := newPrescriptionFixture(users, appts)

	p, err := f.svc.Create(context.Background(), appt.ID, prescription.CreateCommand{
		Treatments:  "Détartrage complet, contrôle dans 6 mois",
		Medications: []string{"Paracétamol 1g"},
		Signature:   "Dr. Ben Salah",
	}, doctor.ID)
	require.NoError(t, err)

	assert.Equal(t, prescription.StatusActive, p.Status)
	assert.Equal(t, patient.ID, p.PatientID)
	assert.Equal(t, doctor.ID, p.DoctorID)

	sent := f.notifier.sentTo(patient.ID)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Message, "ordonnance")
	assert.Contains(t, sent[0].Message, doctor.LastName)
}

func TestCreatePrescriptionRejections(t *testing.T) {
	doctor := newDoctor()
	otherDoctor := newDoctor()
	patient := newPatient()
	users := newFakeUserRepo(doctor, otherDoctor, patient)
	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(10), appointment.StatusAccepted)
	appts := newFakeAppointmentRepo(users, appt)
	f := newPrescriptionFixture(users, appts)

	cmd := prescription.CreateCommand{Treatments: "Soin de carie"}

	_, err := f.svc.Create(context.Background(), appt.ID, cmd, otherDoctor.ID)
	assert.ErrorIs(t, err, ErrForbidden, "another doctor cannot sign")

	_, err = f.svc.Create(context.Background(), appt.ID, cmd, patient.ID)
	assert.ErrorIs(t, err, ErrForbidden, "the patient cannot sign")

	var validErr *ValidationError
	_, err = f.svc.Create(context.Background(), appt.ID, prescription.CreateCommand{}, doctor.ID)
	require.ErrorAs(t, err, &validErr)
	assert.Contains(t, validErr.Fields, "treatments")

	assert.Empty(t, f.notifier.sent)
}

func TestPrescriptionReadFollowsFicheAccess(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	secretary := newSecretaryFor(doctor.ID, domain.DelegationApproved)
	outsider := newPatient()
	users := newFakeUserRepo(doctor, patient, secretary, outsider)

	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(9), appointment.StatusAccepted)
	appt.SecretaryID = &secretary.ID
	appts := newFakeAppointmentRepo(users, appt)
	f := newPrescriptionFixture(users, appts)

	p, err := f.svc.Create(context.Background(), appt.ID, prescription.CreateCommand{Treatments: "Extraction dent 38"}, doctor.ID)
	require.NoError(t, err)

	for _, actor := range []uuid.UUID{patient.ID, doctor.ID, secretary.ID} {
		got, err := f.svc.Get(context.Background(), p.ID, actor)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)

		list, err := f.svc.ForAppointment(context.Background(), appt.ID, actor)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}

	_, err = f.svc.Get(context.Background(), p.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.ForAppointment(context.Background(), appt.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPrescriptionsForPatient(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	users := newFakeUserRepo(doctor, patient)
	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(11), appointment.StatusAccepted)
	appts := newFakeAppointmentRepo(users, appt)
	f := newPrescriptionFixture(users, appts)

	_, err := f.svc.Create(context.Background(), appt.ID, prescription.CreateCommand{Treatments: "Bain de bouche"}, doctor.ID)
	require.NoError(t, err)

	list, err := f.svc.ForPatient(context.Background(), patient.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.ForPatient(context.Background(), doctor.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPrescriptionExpiryIsDerivedOnRead(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	users := newFakeUserRepo(doctor, patient)
	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(8), appointment.StatusAccepted)
	appts := newFakeAppointmentRepo(users, appt)
	f := newPrescriptionFixture(users, appts)

	yesterday := time.Now().Add(-24 * time.Hour)
	p, err := f.svc.Create(context.Background(), appt.ID, prescription.CreateCommand{
		Treatments: "Gel fluoré, application quotidienne",
		ExpiresAt:  &yesterday,
	}, doctor.ID)
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), p.ID, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, prescription.StatusExpired, got.Status)

	// The stored row keeps ACTIVE; only the read view reports expiry.
	assert.Equal(t, prescription.StatusActive, f.repo.prescriptions[p.ID].Status)
}

func TestCancelPrescription(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	users := newFakeUserRepo(doctor, patient)
	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(14), appointment.StatusAccepted)
	appts := newFakeAppointmentRepo(users, appt)
	f := newPrescriptionFixture(users, appts)

	p, err := f.svc.Create(context.Background(), appt.ID, prescription.CreateCommand{Treatments: "Antibiotique 7 jours"}, doctor.ID)
	require.NoError(t, err)

	canceled, err := f.svc.Cancel(context.Background(), p.ID, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, prescription.StatusCanceled, canceled.Status)

	sent := f.notifier.sentTo(patient.ID)
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1].Message, "annulée")

	_, err = f.svc.Cancel(context.Background(), p.ID, doctor.ID)
	assert.ErrorIs(t, err, prescription.ErrPrescriptionCanceled)

	_, err = f.svc.Cancel(context.Background(), p.ID, patient.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
