package models

import (
	"time"

	"gorm.io/gorm"
)

// Department model
type Department struct {
	ID          string    `gorm:"primaryKey;column:id" json:"id"`
	Name        string    `gorm:"column:name;unique;not null" json:"name"`
	Description string    `gorm:"type:text;column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Doctors     []Doctor  `gorm:"foreignKey:DepartmentID;references:ID" json:"-"`
}

func (Department) TableName() string {
	return "department"
}

// Doctor model. The admission path only ever reads doctors; IsActive gates
// whether new bookings may be admitted against them.
type Doctor struct {
	ID             string       `gorm:"primaryKey;column:id" json:"id"`
	Name           string       `gorm:"column:name;not null;index" json:"name"`
	DepartmentID   string       `gorm:"column:department_id;not null;index" json:"department_id"`
	Specialization string       `gorm:"column:specialization" json:"specialization"`
	IsActive       bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt      time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Department     Department   `gorm:"foreignKey:DepartmentID;references:ID" json:"-"`
	QueueTokens    []QueueToken `gorm:"foreignKey:DoctorID;references:ID" json:"-"`
}

func (Doctor) TableName() string {
	return "doctor"
}

// SeedDepartments inserts the initial OPD departments into the database.
func SeedDepartments(db *gorm.DB) error {
	initialDepartments := []Department{
		{ID: "DEP-000001", Name: "General Medicine", Description: "General outpatient consultations"},
		{ID: "DEP-000002", Name: "Cardiology", Description: "Heart and circulatory system"},
		{ID: "DEP-000003", Name: "Orthopedics", Description: "Bones, joints and muscles"},
		{ID: "DEP-000004", Name: "Pediatrics", Description: "Child health"},
		{ID: "DEP-000005", Name: "ENT", Description: "Ear, nose and throat"},
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, department := range initialDepartments {
			if err := tx.FirstOrCreate(&department, Department{Name: department.Name}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
