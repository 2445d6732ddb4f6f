package utils

import (
	"OPDQueue/models"
	"log"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// AdmissionRequest is the wire shape of a booking request. UserID is optional;
// walk-in patients book with name and phone only.
type AdmissionRequest struct {
	PatientName     string    `json:"patientName"`
	Phone           string    `json:"phone"`
	UserID          *int64    `json:"userId"`
	AppointmentTime time.Time `json:"appointmentTime"`
	Department      string    `json:"department"`
	Doctor          string    `json:"doctor"`
}

// ValidateAdmissionRequest checks field presence for an admission. Business
// rules (doctor activity, break window, capacity) are enforced atomically in
// the repository; this only rejects structurally incomplete requests.
func ValidateAdmissionRequest(req AdmissionRequest) error {
	err := validation.Errors{
		"patientName":     validation.Validate(req.PatientName, validation.Required, validation.Length(1, 100)),
		"phone":           validation.Validate(req.Phone, validation.Required, validation.Length(5, 20)),
		"appointmentTime": validation.Validate(req.AppointmentTime, validation.Required),
		"department":      validation.Validate(req.Department, validation.Required),
		"doctor":          validation.Validate(req.Doctor, validation.Required),
	}.Filter()
	if err != nil {
		log.Printf("Validation error: %v\n", err)
	}
	return err
}

// ValidateAccountData validates a registration payload using ozzo-validation.
func ValidateAccountData(user models.User) error {
	err := validation.ValidateStruct(&user,
		validation.Field(&user.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&user.Email, validation.Required, is.Email),
		validation.Field(&user.Password, validation.Required.Error("password cannot be blank"), validation.Length(8, 128)),
		validation.Field(&user.Role, validation.Required, validation.In(models.RoleStaff, models.RolePatient)),
	)
	if err != nil {
		log.Printf("Validation error: %v\n", err)
	}
	return err
}

// ValidateReportRequest checks a staff report request payload.
func ValidateReportRequest(tokenNumber int, department string) error {
	err := validation.Errors{
		"tokenNumber": validation.Validate(tokenNumber, validation.Required, validation.Min(1)),
		"department":  validation.Validate(department, validation.Required),
	}.Filter()
	if err != nil {
		log.Printf("Validation error: %v\n", err)
	}
	return err
}
