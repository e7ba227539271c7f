package service

import (
	"github.com/google/uuid"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
	"github.com/dentavia/dentavia/internal/domain/message"
)

// Authorization guards for the appointment lifecycle. Each guard is a pure
// function over the actor and the targeted state so the rules can be tested
// without a database or transport.

// canBook decides booking eligibility: a patient books only for themself, a
// doctor only under their own id, a secretary only for the doctor they hold
// an approved delegation to.
func canBook(actor *domain.User, patientID, doctorID uuid.UUID) error {
	switch actor.Role {
	case domain.RolePatient:
		if actor.ID == patientID {
			return nil
		}
	case domain.RoleDoctor:
		if actor.ID == doctorID {
			return nil
		}
	case domain.RoleSecretary:
		if actor.HasApprovedDelegationTo(doctorID) {
			return nil
		}
	}
	return ErrForbidden
}

// canMutate gates time-only mutations (reschedule by doctor or secretary).
func canMutate(actor *domain.User, appt *appointment.Appointment) error {
	switch actor.Role {
	case domain.RoleDoctor:
		if actor.ID == appt.DoctorID {
			return nil
		}
	case domain.RoleSecretary:
		if actor.HasApprovedDelegationTo(appt.DoctorID) {
			return nil
		}
	}
	return ErrForbidden
}

// canSetStatus implements the status guard table: a patient may only cancel
// their own appointment, a doctor may set any status on their own, and a
// secretary may set any status when delegated and approved for the
// appointment's doctor.
func canSetStatus(actor *domain.User, appt *appointment.Appointment, target appointment.Status) error {
	switch actor.Role {
	case domain.RolePatient:
		if actor.ID == appt.PatientID && target == appointment.StatusCanceled {
			return nil
		}
	case domain.RoleDoctor:
		if actor.ID == appt.DoctorID {
			return nil
		}
	case domain.RoleSecretary:
		if actor.HasApprovedDelegationTo(appt.DoctorID) {
			return nil
		}
	}
	return ErrForbidden
}

// isAuthorizedForFiche gates read/write of the fiche patient and its
// documents, and read of interventions: the appointment's patient, its
// doctor, or the stamped secretary.
func isAuthorizedForFiche(actor *domain.User, appt *appointment.Appointment) bool {
	if actor.ID == appt.PatientID || actor.ID == appt.DoctorID {
		return true
	}
	return appt.SecretaryID != nil && actor.ID == *appt.SecretaryID
}

// canAddIntervention is stricter than the fiche guard: only the
// appointment's doctor records interventions, even though the patient and
// the stamped secretary may read them.
func canAddIntervention(actor *domain.User, appt *appointment.Appointment) error {
	if actor.ID == appt.DoctorID && actor.Role == domain.RoleDoctor {
		return nil
	}
	return ErrForbidden
}

// canWritePrescription follows the intervention rule: the ordonnance is
// signed by the appointment's doctor, nobody else.
func canWritePrescription(actor *domain.User, appt *appointment.Appointment) error {
	return canAddIntervention(actor, appt)
}

// canModifyMessage is sender-only. Message authorship and appointment
// delegation are distinct policies; a delegation never grants message
// rights.
func canModifyMessage(actor *domain.User, m *message.Message) error {
	if actor.ID == m.SenderID {
		return nil
	}
	return ErrForbidden
}
