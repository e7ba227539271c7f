package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
)

type fakeFileStore struct {
	files map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[string][]byte)}
}

func (f *fakeFileStore) Save(subdir, filename string, data []byte) (string, error) {
	path := subdir + "/" + filename
	f.files[path] = data
	return path, nil
}

func (f *fakeFileStore) Load(path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, appointment.ErrDocumentNotFound
	}
	return data, nil
}

func (f *fakeFileStore) Delete(path string) error {
	delete(f.files, path)
	return nil
}

func newFicheFixture(users []*domain.User, appts ...*appointment.Appointment) (*FicheService, *fakeAppointmentRepo, *fakeFileStore, *recordingNotifier) {
	userRepo := newFakeUserRepo(users...)
	apptRepo := newFakeAppointmentRepo(userRepo, appts...)
	files := newFakeFileStore()
	notifier := &recordingNotifier{}
	svc := NewFicheService(apptRepo, userRepo, files, notifier, testLogger)
	return svc, apptRepo, files, notifier
}

func TestGetFicheAccess(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	stamped := newSecretaryFor(doctor.ID, domain.DelegationApproved)
	unstamped := newSecretaryFor(doctor.ID, domain.DelegationApproved)

	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(10), appointment.StatusAccepted)
	appt.SecretaryID = &stamped.ID
	svc, _, _, _ := newFicheFixture([]*domain.User{doctor, patient, stamped, unstamped}, appt)

	for _, actor := range []*domain.User{patient, doctor, stamped} {
		fiche, err := svc.GetFiche(context.Background(), appt.ID, actor.ID)
		require.NoError(t, err)
		assert.Equal(t, appt.ID, fiche.Appointment.ID)
	}

	// Delegation alone is not enough; the fiche requires the stamp.
	_, err := svc.GetFiche(context.Background(), appt.ID, unstamped.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSaveFichePartialUpdate(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(10), appointment.StatusAccepted)
	appt.MedicalHistory = "diabète type 2"
	appt.Allergies = "pénicilline"
	svc, apptRepo, _, notifier := newFicheFixture([]*domain.User{doctor, patient}, appt)

	obs := "carie sur 36"
	updated, err := svc.SaveFiche(context.Background(), appt.ID, appointment.SaveFicheCommand{
		DentalObservations: &obs,
	}, doctor.ID)
	require.NoError(t, err)

	// Nil fields stay untouched.
	assert.Equal(t, "diabète type 2", updated.MedicalHistory)
	assert.Equal(t, "pénicilline", updated.Allergies)
	assert.Equal(t, "carie sur 36", updated.DentalObservations)
	assert.Equal(t, "carie sur 36", apptRepo.appointments[appt.ID].DentalObservations)

	// The party who did not edit gets told.
	assert.Len(t, notifier.sentTo(patient.ID), 1)
	assert.Empty(t, notifier.sentTo(doctor.ID))
}

func TestSaveFicheForbidden(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	stranger := newPatient()
	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(10), appointment.StatusAccepted)
	svc, _, _, _ := newFicheFixture([]*domain.User{doctor, patient, stranger}, appt)

	history := "rien à signaler"
	_, err := svc.SaveFiche(context.Background(), appt.ID, appointment.SaveFicheCommand{
		MedicalHistory: &history,
	}, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAddIntervention(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(10), appointment.StatusCompleted)
	svc, _, _, notifier := newFicheFixture([]*domain.User{doctor, patient}, appt)

	tooth := 36
	iv, err := svc.AddIntervention(context.Background(), appt.ID, appointment.AddInterventionCommand{
		Name:        "Extraction",
		Description: "extraction simple",
		ToothNumber: &tooth,
		Price:       120,
	}, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, iv.AppointmentID)

	list, err := svc.ListInterventions(context.Background(), appt.ID, patient.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Extraction", list[0].Name)

	assert.Len(t, notifier.sentTo(patient.ID), 1)
}

func TestAddInterventionDoctorOnly(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	stamped := newSecretaryFor(doctor.ID, domain.DelegationApproved)
	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(10), appointment.StatusCompleted)
	appt.SecretaryID = &stamped.ID
	svc, _, _, _ := newFicheFixture([]*domain.User{doctor, patient, stamped}, appt)

	cmd := appointment.AddInterventionCommand{Name: "Soin"}

	_, err := svc.AddIntervention(context.Background(), appt.ID, cmd, patient.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// The stamped secretary reads the fiche but never writes interventions.
	_, err = svc.AddIntervention(context.Background(), appt.ID, cmd, stamped.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	var validErr *ValidationError
	_, err = svc.AddIntervention(context.Background(), appt.ID, appointment.AddInterventionCommand{}, doctor.ID)
	assert.ErrorAs(t, err, &validErr)
}

func TestAttachAndDownloadDocument(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(10), appointment.StatusAccepted)
	svc, _, files, _ := newFicheFixture([]*domain.User{doctor, patient}, appt)

	doc, err := svc.AttachDocument(context.Background(), appt.ID, appointment.DocumentAppointment,
		"radio.png", "image/png", []byte{0x89, 0x50, 0x4e, 0x47}, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, "radio.png", doc.Name)
	assert.Equal(t, int64(4), doc.Size)
	assert.Contains(t, files.files, doc.Path)

	got, data, err := svc.DocumentBytes(context.Background(), appt.ID, doc.ID, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, data)

	_, _, err = svc.DocumentBytes(context.Background(), appt.ID, doc.ID, newPatient().ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAttachDocumentValidation(t *testing.T) {
	doctor := newDoctor()
	patient := newPatient()
	appt := newAppointment(patient.ID, doctor.ID, tomorrowAt(10), appointment.StatusAccepted)
	svc, _, _, _ := newFicheFixture([]*domain.User{doctor, patient}, appt)

	var validErr *ValidationError
	_, err := svc.AttachDocument(context.Background(), appt.ID, appointment.DocumentAppointment,
		"empty.pdf", "application/pdf", nil, doctor.ID)
	assert.ErrorAs(t, err, &validErr)
}
