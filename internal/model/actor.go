package model

import (
	"github.com/google/uuid"
)

type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// Actor is the authenticated party performing an operation. It is supplied
// per call by the identity oracle and never persisted.
type Actor struct {
	UserID    uuid.UUID
	Role      Role
	PatientID uuid.UUID // uuid.Nil unless Role is PATIENT
	DoctorID  uuid.UUID // uuid.Nil unless Role is DOCTOR
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// OwnsPatient reports whether the actor is the patient side of an appointment.
func (a Actor) OwnsPatient(patientID uuid.UUID) bool {
	return a.Role == RolePatient && a.PatientID == patientID
}

// OwnsDoctor reports whether the actor is the doctor side of an appointment.
func (a Actor) OwnsDoctor(doctorID uuid.UUID) bool {
	return a.Role == RoleDoctor && a.DoctorID == doctorID
}

// RecipientID is the identity notifications are addressed to: the linked
// patient or doctor record, falling back to the user id for admins.
func (a Actor) RecipientID() uuid.UUID {
	switch a.Role {
	case RolePatient:
		return a.PatientID
	case RoleDoctor:
		return a.DoctorID
	}
	return a.UserID
}

// CanAccess reports whether the actor is a party to the appointment or
// an admin. Actors that are neither get NotFound-level visibility.
func (a Actor) CanAccess(appt *Appointment) bool {
	return a.IsAdmin() || a.OwnsPatient(appt.PatientID) || a.OwnsDoctor(appt.DoctorID)
}
