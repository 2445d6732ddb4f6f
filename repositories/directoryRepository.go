package repositories

import (
	"OPDQueue/cache"
	"OPDQueue/database"
	"OPDQueue/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	DirectoryCacheExpiry = 7 * 24 * time.Hour
)

// DirectoryRepository manages the doctor/department directory. The queue core
// treats this data as read-only; the write paths exist for administrative
// upkeep of the collaborator.
type DirectoryRepository struct {
	cache *cache.Cache
}

func NewDirectoryRepository(cache *cache.Cache) *DirectoryRepository {
	return &DirectoryRepository{cache: cache}
}

func (r *DirectoryRepository) CreateDoctor(ctx context.Context, doctor *models.Doctor) error {
	return withLock(ctx, fmt.Sprintf("doctor_lock:%s_%s", doctor.Name, doctor.DepartmentID), func() error {
		var existing models.Doctor
		if err := database.DB.Where("name = ? AND department_id = ?", doctor.Name, doctor.DepartmentID).
			First(&existing).Error; err == nil {
			return errors.New("doctor with the same name already exists in this department")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for existing doctor: %w", err)
		}

		var nextID string
		if err := database.DB.Raw("SELECT 'DR-' || LPAD(nextval('doctor_id_seq')::TEXT, 6, '0')").Scan(&nextID).Error; err != nil {
			return fmt.Errorf("failed to obtain next sequence value: %w", err)
		}
		doctor.ID = nextID

		return database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(doctor).Error; err != nil {
				if rollbackErr := database.DB.Exec("SELECT setval('doctor_id_seq', (SELECT last_value FROM doctor_id_seq) - 1, false)").Error; rollbackErr != nil {
					return fmt.Errorf("transaction failed and sequence rollback failed: %v, rollback error: %v", err, rollbackErr)
				}
				return fmt.Errorf("failed to create doctor: %w", err)
			}
			return r.invalidateDoctor(ctx)
		})
	})
}

func (r *DirectoryRepository) GetDoctorByID(ctx context.Context, id string) (*models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.getDoctorCacheKey(id)
	cachedDoctor, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		var doctor models.Doctor
		if err := json.Unmarshal([]byte(cachedDoctor), &doctor); err == nil {
			return &doctor, nil
		}
	} else if err != redis.Nil {
		log.Printf("Failed to get doctor from cache: %v", err)
	}

	var doctor models.Doctor
	err = database.DB.
		Preload("Department", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name")
		}).
		First(&doctor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	doctorJSON, err := json.Marshal(doctor)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal doctor: %w", err)
	}
	if err := r.cache.Set(ctx, cacheKey, doctorJSON, DirectoryCacheExpiry); err != nil {
		log.Printf("Failed to set doctor in cache: %v", err)
	}

	return &doctor, nil
}

func (r *DirectoryRepository) GetAllDoctors(ctx context.Context) ([]models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := "doctors_cache"
	cachedDoctors, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		var doctors []models.Doctor
		if err := json.Unmarshal([]byte(cachedDoctors), &doctors); err == nil {
			return doctors, nil
		}
	} else if err != redis.Nil {
		log.Printf("Failed to get doctors from cache: %v", err)
	}

	var doctors []models.Doctor
	err = database.DB.
		Preload("Department", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name")
		}).
		Order("created_at DESC").
		Find(&doctors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all doctors: %w", err)
	}

	doctorsJSON, err := json.Marshal(doctors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal doctors: %w", err)
	}
	if err := r.cache.Set(ctx, cacheKey, doctorsJSON, DirectoryCacheExpiry); err != nil {
		log.Printf("Failed to set doctors in cache: %v", err)
	}

	return doctors, nil
}

func (r *DirectoryRepository) UpdateDoctor(ctx context.Context, doctor *models.Doctor) error {
	return withLock(ctx, fmt.Sprintf("doctor_lock:%s", doctor.ID), func() error {
		if err := database.DB.Save(doctor).Error; err != nil {
			return fmt.Errorf("failed to update doctor: %w", err)
		}
		return r.invalidateDoctor(ctx)
	})
}

func (r *DirectoryRepository) DeleteDoctor(ctx context.Context, id string) error {
	return withLock(ctx, fmt.Sprintf("doctor_lock:%s", id), func() error {
		result := database.DB.Delete(&models.Doctor{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete doctor: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrDoctorNotFound
		}
		return r.invalidateDoctor(ctx)
	})
}

func (r *DirectoryRepository) CreateDepartment(ctx context.Context, department *models.Department) error {
	return withLock(ctx, fmt.Sprintf("department_lock:%s", department.Name), func() error {
		var nextID string
		if err := database.DB.Raw("SELECT 'DEP-' || LPAD(nextval('department_id_seq')::TEXT, 6, '0')").Scan(&nextID).Error; err != nil {
			return fmt.Errorf("failed to obtain next sequence value: %w", err)
		}
		department.ID = nextID

		return database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(department).Error; err != nil {
				if rollbackErr := database.DB.Exec("SELECT setval('department_id_seq', (SELECT last_value FROM department_id_seq) - 1, false)").Error; rollbackErr != nil {
					return fmt.Errorf("transaction failed and sequence rollback failed: %v, rollback error: %v", err, rollbackErr)
				}
				return fmt.Errorf("failed to create department: %w", err)
			}
			return r.cache.Delete(ctx, "departments_cache")
		})
	})
}

func (r *DirectoryRepository) GetAllDepartments(ctx context.Context) ([]models.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := "departments_cache"
	cachedDepartments, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		var departments []models.Department
		if err := json.Unmarshal([]byte(cachedDepartments), &departments); err == nil {
			return departments, nil
		}
	} else if err != redis.Nil {
		log.Printf("Failed to get departments from cache: %v", err)
	}

	var departments []models.Department
	if err := database.DB.Order("name ASC").Find(&departments).Error; err != nil {
		return nil, fmt.Errorf("failed to get all departments: %w", err)
	}

	departmentsJSON, err := json.Marshal(departments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal departments: %w", err)
	}
	if err := r.cache.Set(ctx, cacheKey, departmentsJSON, DirectoryCacheExpiry); err != nil {
		log.Printf("Failed to set departments in cache: %v", err)
	}

	return departments, nil
}

func (r *DirectoryRepository) GetDepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	var department models.Department
	err := database.DB.WithContext(ctx).First(&department, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &department, nil
}

// invalidateDoctor drops every per-doctor entry plus the list view. A write
// can change what other cached entries display (renames, activity flips seen
// through the list), so the whole pattern goes.
func (r *DirectoryRepository) invalidateDoctor(ctx context.Context) error {
	if err := r.cache.DeleteAll(ctx, "doctor_cache:*"); err != nil {
		return fmt.Errorf("failed to invalidate doctor cache: %w", err)
	}
	return r.cache.Delete(ctx, "doctors_cache")
}

func (r *DirectoryRepository) getDoctorCacheKey(id string) string {
	return fmt.Sprintf("doctor_cache:%s", id)
}
