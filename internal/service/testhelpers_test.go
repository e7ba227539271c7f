package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
	"github.com/dentavia/dentavia/internal/domain/notification"
)

// In-memory fakes for the repository interfaces. They reproduce the store
// guarantees the services rely on: the same-day uniqueness guard on create
// and the delegation re-check on delegated writes.

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) ListSecretariesByDoctor(_ context.Context, doctorID uuid.UUID, status domain.DelegationStatus) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.Role == domain.RoleSecretary &&
			u.AssignedDoctorID != nil && *u.AssignedDoctorID == doctorID &&
			u.DelegationStatus == status {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	users         *fakeUserRepo
	appointments  map[uuid.UUID]*appointment.Appointment
	interventions []*appointment.Intervention
	documents     []*appointment.Document

	// revokeOnWrite simulates a delegation revoked between the service guard
	// and the transactional re-check.
	revokeOnWrite bool
}

func newFakeAppointmentRepo(users *fakeUserRepo, appts ...*appointment.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{users: users, appointments: make(map[uuid.UUID]*appointment.Appointment)}
	for _, a := range appts {
		r.appointments[a.ID] = a
	}
	return r
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	if r.hasActiveSameDay(a.PatientID, a.Day(), nil) {
		return appointment.ErrSameDayConflict
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.appointments[a.ID] = a
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, a *appointment.Appointment) error {
	r.appointments[a.ID] = a
	return nil
}

func (r *fakeAppointmentRepo) UpdateDelegated(_ context.Context, a *appointment.Appointment, secretaryID, doctorID uuid.UUID) error {
	secretary, ok := r.users.users[secretaryID]
	if r.revokeOnWrite || !ok || !secretary.HasApprovedDelegationTo(doctorID) {
		return appointment.ErrDelegationRevoked
	}
	a.SecretaryID = &secretaryID
	r.appointments[a.ID] = a
	return nil
}

func (r *fakeAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) HasActiveSameDay(_ context.Context, patientID uuid.UUID, day time.Time, excludeID *uuid.UUID) (bool, error) {
	return r.hasActiveSameDay(patientID, day, excludeID), nil
}

func (r *fakeAppointmentRepo) hasActiveSameDay(patientID uuid.UUID, day time.Time, excludeID *uuid.UUID) bool {
	for _, a := range r.appointments {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.PatientID == patientID && a.Status.IsActive() && a.Day().Equal(day) {
			return true
		}
	}
	return false
}

func (r *fakeAppointmentRepo) CreateIntervention(_ context.Context, iv *appointment.Intervention) error {
	if iv.ID == uuid.Nil {
		iv.ID = uuid.New()
	}
	r.interventions = append(r.interventions, iv)
	return nil
}

func (r *fakeAppointmentRepo) ListInterventions(_ context.Context, appointmentID uuid.UUID) ([]*appointment.Intervention, error) {
	var out []*appointment.Intervention
	for _, iv := range r.interventions {
		if iv.AppointmentID == appointmentID {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CreateDocument(_ context.Context, d *appointment.Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.documents = append(r.documents, d)
	return nil
}

func (r *fakeAppointmentRepo) ListDocuments(_ context.Context, appointmentID uuid.UUID) ([]*appointment.Document, error) {
	var out []*appointment.Document
	for _, d := range r.documents {
		if d.AppointmentID != nil && *d.AppointmentID == appointmentID {
			out = append(out, d)
		}
	}
	return out, nil
}

type sentNotification struct {
	Recipient uuid.UUID
	Message   string
	Type      notification.Type
	Link      string
}

type recordingNotifier struct {
	sent []sentNotification
}

func (n *recordingNotifier) Notify(recipient uuid.UUID, message string, t notification.Type, link string) {
	n.sent = append(n.sent, sentNotification{Recipient: recipient, Message: message, Type: t, Link: link})
}

func (n *recordingNotifier) sentTo(recipient uuid.UUID) []sentNotification {
	var out []sentNotification
	for _, s := range n.sent {
		if s.Recipient == recipient {
			out = append(out, s)
		}
	}
	return out
}

func newDoctor() *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		Email:     "doctor-" + uuid.NewString()[:8] + "@clinic.test",
		FirstName: "Hela",
		LastName:  "Ben Salah",
		Role:      domain.RoleDoctor,
		IsActive:  true,
	}
}

func newPatient() *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		Email:     "patient-" + uuid.NewString()[:8] + "@clinic.test",
		FirstName: "Amine",
		LastName:  "Trabelsi",
		Role:      domain.RolePatient,
		IsActive:  true,
	}
}

func newSecretaryFor(doctorID uuid.UUID, status domain.DelegationStatus) *domain.User {
	s := &domain.User{
		ID:        uuid.New(),
		Email:     "secretary-" + uuid.NewString()[:8] + "@clinic.test",
		FirstName: "Ines",
		LastName:  "Gharbi",
		Role:      domain.RoleSecretary,
		IsActive:  true,
	}
	if status != domain.DelegationNone {
		s.AssignedDoctorID = &doctorID
		s.DelegationStatus = status
	} else {
		s.DelegationStatus = domain.DelegationNone
	}
	return s
}

func newAppointment(patientID, doctorID uuid.UUID, at time.Time, status appointment.Status) *appointment.Appointment {
	return &appointment.Appointment{
		ID:            uuid.New(),
		PatientID:     patientID,
		DoctorID:      doctorID,
		ScheduledAt:   at,
		CaseType:      appointment.CaseNormal,
		ProcedureType: appointment.ProcedureSoin,
		Status:        status,
	}
}

func tomorrowAt(hour int) time.Time {
	return time.Now().UTC().AddDate(0, 0, 1).Truncate(24 * time.Hour).Add(time.Duration(hour) * time.Hour)
}

var testLogger = zap.NewNop()
