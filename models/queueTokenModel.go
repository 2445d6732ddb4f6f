package models

import (
	"time"
)

// Visit stages, in the order a patient physically moves through the OPD.
const (
	StageRegistration = "Registration"
	StageConsultation = "Consultation"
	StageLab          = "Lab"
	StagePharmacy     = "Pharmacy"
	StageCompleted    = "Completed"
)

// Booking lifecycle states, independent of the visit stage.
const (
	StatusWaiting    = "Waiting"
	StatusInProgress = "InProgress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// stageOrder fixes the forward direction of stage transitions.
var stageOrder = map[string]int{
	StageRegistration: 0,
	StageConsultation: 1,
	StageLab:          2,
	StagePharmacy:     3,
	StageCompleted:    4,
}

var statusTransitions = map[string][]string{
	StatusWaiting:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// ValidStage reports whether s is a known visit stage.
func ValidStage(s string) bool {
	_, ok := stageOrder[s]
	return ok
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidStageTransition allows a stage to stay put or move forward, never back.
func ValidStageTransition(from, to string) bool {
	fromOrder, ok := stageOrder[from]
	if !ok {
		return false
	}
	toOrder, ok := stageOrder[to]
	if !ok {
		return false
	}
	return toOrder >= fromOrder
}

// ValidStatusTransition checks the lifecycle state machine. Terminal states
// (Completed, Cancelled) have no outgoing transitions; setting the same
// status again is a no-op and allowed.
func ValidStatusTransition(from, to string) bool {
	if from == to {
		return ValidStatus(from)
	}
	allowed, ok := statusTransitions[from]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

// TerminalStatus reports whether a booking in this status is frozen.
func TerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// PenaltiesDue returns how many full grace periods have elapsed since the
// scheduled slot. The penalty sweep raises missedCount to this value (capped
// at the configured threshold), which makes the sweep idempotent: re-running
// it inside the same overdue window computes the same number.
func PenaltiesDue(appointmentTime, now time.Time, grace time.Duration) int {
	if grace <= 0 {
		return 0
	}
	elapsed := now.Sub(appointmentTime)
	if elapsed <= grace {
		return 0
	}
	return int(elapsed / grace)
}

// QueueToken is one admitted OPD booking. TokenNumber is the only identifier
// shown to patients and staff; it is issued sequentially and never reused.
type QueueToken struct {
	ID              uint       `gorm:"primaryKey;autoIncrement;column:id;index" json:"id"`
	TokenNumber     int        `gorm:"column:token_number;not null;uniqueIndex" json:"token_number"`
	UserID          *int64     `gorm:"column:user_id;index" json:"user_id"`
	PatientName     string     `gorm:"column:patient_name;not null" json:"patient_name"`
	Phone           string     `gorm:"column:phone;not null" json:"phone"`
	DepartmentID    string     `gorm:"column:department_id;not null;index" json:"department_id"`
	DoctorID        string     `gorm:"column:doctor_id;not null;index" json:"doctor_id"`
	AppointmentTime time.Time  `gorm:"column:appointment_time;not null;index" json:"appointment_time"`
	Stage           string     `gorm:"column:stage;check:stage IN ('Registration', 'Consultation', 'Lab', 'Pharmacy', 'Completed');not null" json:"stage"`
	Status          string     `gorm:"column:status;check:status IN ('Waiting', 'InProgress', 'Completed', 'Cancelled');not null" json:"status"`
	IsCheckedIn     bool       `gorm:"column:is_checked_in;not null" json:"is_checked_in"`
	MissedCount     int        `gorm:"column:missed_count;not null" json:"missed_count"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	User            *User      `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Department      Department `gorm:"foreignKey:DepartmentID;references:ID" json:"department"`
	Doctor          Doctor     `gorm:"foreignKey:DoctorID;references:ID" json:"doctor"`
}

func (QueueToken) TableName() string {
	return "queue_token"
}

// Terminal reports whether the booking has reached a final status.
func (t *QueueToken) Terminal() bool {
	return TerminalStatus(t.Status)
}

// MedicalReport is a report record attached to a booking by token number.
// Report content management lives outside this service; rows here exist so
// that deleting a booking can cascade and the patient feed can list them.
type MedicalReport struct {
	ID          uint      `gorm:"primaryKey;autoIncrement;column:id;index" json:"id"`
	TokenNumber int       `gorm:"column:token_number;not null;index" json:"token_number"`
	Department  string    `gorm:"column:department;not null" json:"department"`
	ReportType  string    `gorm:"column:report_type" json:"report_type"`
	Notes       string    `gorm:"column:notes" json:"notes"`
	ReportURL   string    `gorm:"column:report_url" json:"report_url"`
	Status      string    `gorm:"column:status;check:status IN ('pending', 'uploaded', 'reviewed');not null" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MedicalReport) TableName() string {
	return "medical_report"
}

// Report statuses.
const (
	ReportPending  = "pending"
	ReportUploaded = "uploaded"
	ReportReviewed = "reviewed"
)
