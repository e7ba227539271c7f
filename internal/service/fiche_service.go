package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
	"github.com/dentavia/dentavia/internal/domain/notification"
)

// FileStore persists uploaded document bytes outside the database and
// returns the path handle stored on the Document row.
type FileStore interface {
	Save(subdir, filename string, data []byte) (string, error)
	Load(path string) ([]byte, error)
	Delete(path string) error
}

// Fiche bundles an appointment's clinical sheet with its interventions and
// attached documents.
type Fiche struct {
	Appointment   *appointment.Appointment    `json:"appointment"`
	Interventions []*appointment.Intervention `json:"interventions"`
	Documents     []*appointment.Document     `json:"documents"`
}

// FicheService guards access to clinical sheets. Readable and writable by
// the patient, the appointment's doctor, and the secretary stamped on the
// appointment; interventions are doctor-only.
type FicheService struct {
	appointments appointment.Repository
	users        UserRepository
	files        FileStore
	notifier     Notifier
	log          *zap.Logger
}

func NewFicheService(appointments appointment.Repository, users UserRepository, files FileStore, notifier Notifier, log *zap.Logger) *FicheService {
	return &FicheService{appointments: appointments, users: users, files: files, notifier: notifier, log: log}
}

func (s *FicheService) GetFiche(ctx context.Context, appointmentID, actorID uuid.UUID) (*Fiche, error) {
	a, actor, err := s.load(ctx, appointmentID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAuthorizedForFiche(actor, a) {
		return nil, ErrForbidden
	}

	interventions, err := s.appointments.ListInterventions(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	documents, err := s.appointments.ListDocuments(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return &Fiche{Appointment: a, Interventions: interventions, Documents: documents}, nil
}

// SaveFiche applies a partial update to the clinical sheet. Nil fields are
// left untouched.
func (s *FicheService) SaveFiche(ctx context.Context, appointmentID uuid.UUID, cmd appointment.SaveFicheCommand, actorID uuid.UUID) (*appointment.Appointment, error) {
	a, actor, err := s.load(ctx, appointmentID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAuthorizedForFiche(actor, a) {
		return nil, ErrForbidden
	}

	if cmd.MedicalHistory != nil {
		a.MedicalHistory = *cmd.MedicalHistory
	}
	if cmd.Allergies != nil {
		a.Allergies = *cmd.Allergies
	}
	if cmd.DentalObservations != nil {
		a.DentalObservations = *cmd.DentalObservations
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}

	s.notifyFicheUpdated(a, actor)
	return a, nil
}

func (s *FicheService) ListInterventions(ctx context.Context, appointmentID, actorID uuid.UUID) ([]*appointment.Intervention, error) {
	a, actor, err := s.load(ctx, appointmentID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAuthorizedForFiche(actor, a) {
		return nil, ErrForbidden
	}
	return s.appointments.ListInterventions(ctx, a.ID)
}

// AddIntervention records a performed procedure. Only the appointment's
// doctor may add one; interventions are immutable once written.
func (s *FicheService) AddIntervention(ctx context.Context, appointmentID uuid.UUID, cmd appointment.AddInterventionCommand, actorID uuid.UUID) (*appointment.Intervention, error) {
	a, actor, err := s.load(ctx, appointmentID, actorID)
	if err != nil {
		return nil, err
	}
	if err := canAddIntervention(actor, a); err != nil {
		return nil, err
	}
	if cmd.Name == "" {
		return nil, &ValidationError{Fields: []string{"name"}}
	}

	iv := &appointment.Intervention{
		AppointmentID: a.ID,
		Name:          cmd.Name,
		Description:   cmd.Description,
		ToothNumber:   cmd.ToothNumber,
		Price:         cmd.Price,
	}
	if err := s.appointments.CreateIntervention(ctx, iv); err != nil {
		return nil, err
	}

	s.notifier.Notify(a.PatientID,
		fmt.Sprintf("Une intervention \"%s\" a été ajoutée à votre fiche par le Dr. %s.", iv.Name, actor.LastName),
		notification.TypeAppointmentUpdated,
		"/patient/appointments/"+a.ID.String(),
	)
	return iv, nil
}

// AttachDocument stores an uploaded file and links it to the appointment's
// fiche. Same access rule as the fiche itself.
func (s *FicheService) AttachDocument(ctx context.Context, appointmentID uuid.UUID, kind appointment.DocumentKind, filename, contentType string, data []byte, actorID uuid.UUID) (*appointment.Document, error) {
	a, actor, err := s.load(ctx, appointmentID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAuthorizedForFiche(actor, a) {
		return nil, ErrForbidden
	}
	if len(data) == 0 || filename == "" {
		return nil, &ValidationError{Fields: []string{"file"}}
	}

	path, err := s.files.Save("documents", filename, data)
	if err != nil {
		return nil, fmt.Errorf("storing document: %w", err)
	}
	doc := &appointment.Document{
		Kind:          kind,
		AppointmentID: &a.ID,
		PatientID:     &a.PatientID,
		Name:          filename,
		Path:          path,
		ContentType:   contentType,
		Size:          int64(len(data)),
	}
	if err := s.appointments.CreateDocument(ctx, doc); err != nil {
		// best effort: do not leave an orphan file behind
		if derr := s.files.Delete(path); derr != nil {
			s.log.Warn("orphan document file left on disk", zap.String("path", path), zap.Error(derr))
		}
		return nil, err
	}
	return doc, nil
}

// DocumentBytes streams a stored document back to an authorized party.
func (s *FicheService) DocumentBytes(ctx context.Context, appointmentID, documentID, actorID uuid.UUID) (*appointment.Document, []byte, error) {
	a, actor, err := s.load(ctx, appointmentID, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !isAuthorizedForFiche(actor, a) {
		return nil, nil, ErrForbidden
	}
	docs, err := s.appointments.ListDocuments(ctx, a.ID)
	if err != nil {
		return nil, nil, err
	}
	for _, doc := range docs {
		if doc.ID == documentID {
			data, err := s.files.Load(doc.Path)
			if err != nil {
				return nil, nil, fmt.Errorf("loading document: %w", err)
			}
			return doc, data, nil
		}
	}
	return nil, nil, appointment.ErrDocumentNotFound
}

func (s *FicheService) load(ctx context.Context, appointmentID, actorID uuid.UUID) (*appointment.Appointment, *domain.User, error) {
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	return a, actor, nil
}

// notifyFicheUpdated tells the parties who did not make the change.
func (s *FicheService) notifyFicheUpdated(a *appointment.Appointment, actor *domain.User) {
	msg := fmt.Sprintf("La fiche du rendez-vous du %s a été mise à jour.", a.ScheduledAt.Format("02/01/2006"))
	if actor.ID != a.PatientID {
		s.notifier.Notify(a.PatientID, msg, notification.TypeAppointmentUpdated, "/patient/appointments/"+a.ID.String())
	}
	if actor.ID != a.DoctorID {
		s.notifier.Notify(a.DoctorID, msg, notification.TypeAppointmentUpdated, "/doctor/appointments/"+a.ID.String())
	}
	if a.SecretaryID != nil && actor.ID != *a.SecretaryID {
		s.notifier.Notify(*a.SecretaryID, msg, notification.TypeAppointmentUpdated, "/secretary/appointments/"+a.ID.String())
	}
}
