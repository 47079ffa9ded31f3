package scheduling

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medipoint/scheduler-api/internal/model"
	apperrors "github.com/medipoint/scheduler-api/pkg/errors"
)

func statusPtr(s model.AppointmentStatus) *model.AppointmentStatus { return &s }

func strPtr(s string) *string { return &s }

func testAppointment(status model.AppointmentStatus) (*model.Appointment, model.Actor, model.Actor, model.Actor) {
	patientID := uuid.New()
	doctorID := uuid.New()
	appt := &model.Appointment{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Status:    status,
	}
	patient := model.Actor{UserID: uuid.New(), Role: model.RolePatient, PatientID: patientID}
	doctor := model.Actor{UserID: uuid.New(), Role: model.RoleDoctor, DoctorID: doctorID}
	admin := model.Actor{UserID: uuid.New(), Role: model.RoleAdmin}
	return appt, patient, doctor, admin
}

func TestValidate_TransitionTable(t *testing.T) {
	v := NewTransitionValidator()

	tests := []struct {
		name     string
		from     model.AppointmentStatus
		to       model.AppointmentStatus
		asRole   model.Role
		wantCode apperrors.ErrorCode // zero value means approved
	}{
		{"doctor confirms pending", model.AppointmentStatusPending, model.AppointmentStatusConfirmed, model.RoleDoctor, 0},
		{"admin confirms pending", model.AppointmentStatusPending, model.AppointmentStatusConfirmed, model.RoleAdmin, 0},
		{"patient cannot confirm", model.AppointmentStatusPending, model.AppointmentStatusConfirmed, model.RolePatient, apperrors.ErrUnauthorized},
		{"patient cancels pending", model.AppointmentStatusPending, model.AppointmentStatusCancelled, model.RolePatient, 0},
		{"doctor cancels pending", model.AppointmentStatusPending, model.AppointmentStatusCancelled, model.RoleDoctor, 0},
		{"patient cancels confirmed", model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled, model.RolePatient, 0},
		{"doctor completes confirmed", model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted, model.RoleDoctor, 0},
		{"patient cannot complete", model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted, model.RolePatient, apperrors.ErrUnauthorized},
		{"cannot complete pending", model.AppointmentStatusPending, model.AppointmentStatusCompleted, model.RoleDoctor, apperrors.ErrInvalidTransition},
		{"doctor marks no-show", model.AppointmentStatusConfirmed, model.AppointmentStatusNoShow, model.RoleDoctor, 0},
		{"patient cannot mark no-show", model.AppointmentStatusConfirmed, model.AppointmentStatusNoShow, model.RolePatient, apperrors.ErrUnauthorized},
		{"no-show only from confirmed", model.AppointmentStatusPending, model.AppointmentStatusNoShow, model.RoleDoctor, apperrors.ErrInvalidTransition},
		{"completed is terminal", model.AppointmentStatusCompleted, model.AppointmentStatusConfirmed, model.RoleAdmin, apperrors.ErrInvalidTransition},
		{"cancelled is terminal", model.AppointmentStatusCancelled, model.AppointmentStatusPending, model.RoleAdmin, apperrors.ErrInvalidTransition},
		{"no-show is terminal", model.AppointmentStatusNoShow, model.AppointmentStatusConfirmed, model.RoleAdmin, apperrors.ErrInvalidTransition},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			appt, patient, doctor, admin := testAppointment(tc.from)
			actor := admin
			switch tc.asRole {
			case model.RolePatient:
				actor = patient
			case model.RoleDoctor:
				actor = doctor
			}

			approved, err := v.Validate(actor, appt, ChangeRequest{Status: statusPtr(tc.to)})
			if tc.wantCode == 0 {
				require.NoError(t, err)
				require.NotNil(t, approved.Status)
				assert.Equal(t, tc.to, *approved.Status)
			} else {
				require.Error(t, err)
				assert.Equal(t, tc.wantCode, apperrors.CodeOf(err))
			}
		})
	}
}

func TestValidate_SameStatusIsIdempotentNoOp(t *testing.T) {
	v := NewTransitionValidator()
	appt, patient, _, _ := testAppointment(model.AppointmentStatusPending)

	approved, err := v.Validate(patient, appt, ChangeRequest{Status: statusPtr(model.AppointmentStatusPending)})
	require.NoError(t, err)
	assert.Nil(t, approved.Status)
}

func TestValidate_UnrecognizedStatus(t *testing.T) {
	v := NewTransitionValidator()
	appt, _, doctor, _ := testAppointment(model.AppointmentStatusPending)

	bogus := model.AppointmentStatus("ARCHIVED")
	_, err := v.Validate(doctor, appt, ChangeRequest{Status: &bogus})
	assert.Equal(t, apperrors.ErrInvalidStatus, apperrors.CodeOf(err))
}

func TestValidate_StrangerIsRejected(t *testing.T) {
	v := NewTransitionValidator()
	appt, _, _, _ := testAppointment(model.AppointmentStatusPending)

	stranger := model.Actor{UserID: uuid.New(), Role: model.RolePatient, PatientID: uuid.New()}
	_, err := v.Validate(stranger, appt, ChangeRequest{Status: statusPtr(model.AppointmentStatusCancelled)})
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))

	otherDoctor := model.Actor{UserID: uuid.New(), Role: model.RoleDoctor, DoctorID: uuid.New()}
	_, err = v.Validate(otherDoctor, appt, ChangeRequest{Status: statusPtr(model.AppointmentStatusConfirmed)})
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
}

func TestValidate_PatientClinicalFieldsStripped(t *testing.T) {
	v := NewTransitionValidator()
	appt, patient, doctor, _ := testAppointment(model.AppointmentStatusConfirmed)

	req := ChangeRequest{
		Symptoms:     strPtr("headache"),
		Diagnosis:    strPtr("self-diagnosed migraine"),
		Prescription: strPtr("ibuprofen"),
	}

	// Patient payloads lose diagnosis and prescription silently.
	approved, err := v.Validate(patient, appt, req)
	require.NoError(t, err)
	assert.NotNil(t, approved.Symptoms)
	assert.Nil(t, approved.Diagnosis)
	assert.Nil(t, approved.Prescription)

	// Doctors keep them.
	approved, err = v.Validate(doctor, appt, req)
	require.NoError(t, err)
	assert.NotNil(t, approved.Diagnosis)
	assert.NotNil(t, approved.Prescription)
}

func TestValidate_Reschedulability(t *testing.T) {
	v := NewTransitionValidator()
	newStart := mondayAt(10, 0)

	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusPending,
		model.AppointmentStatusConfirmed,
	} {
		appt, patient, _, _ := testAppointment(status)
		approved, err := v.Validate(patient, appt, ChangeRequest{StartTime: &newStart})
		require.NoError(t, err, "status %s should be reschedulable", status)
		assert.NotNil(t, approved.StartTime)
	}

	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow,
	} {
		appt, _, _, admin := testAppointment(status)
		_, err := v.Validate(admin, appt, ChangeRequest{StartTime: &newStart})
		assert.Equal(t, apperrors.ErrNotReschedulable, apperrors.CodeOf(err), "status %s", status)
	}
}
