package repositories

import (
	"OPDQueue/cache"
	"OPDQueue/config"
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
	TokenCacheExpiry = 24 * time.Hour

	// admissionLockKey serializes every admission globally: token numbering is
	// a single sequence, so slot and duplicate checks ride the same lock.
	admissionLockKey = "opd_lock:admission"
	// penaltyLockKey keeps concurrent sweeps (queue reads + the background
	// ticker) from walking the overdue set at the same time.
	penaltyLockKey = "opd_lock:penalty"
)

var terminalStatuses = []string{models.StatusCompleted, models.StatusCancelled}

// AdmissionInput is a validated booking request. All reference fields are
// required; UserID is nil for walk-in patients.
type AdmissionInput struct {
	PatientName     string
	Phone           string
	UserID          *int64
	DepartmentID    string
	DoctorID        string
	AppointmentTime time.Time
}

// TokenUpdate names the only booking fields mutable after admission. A nil
// field is left untouched.
type TokenUpdate struct {
	Status      *string
	Stage       *string
	IsCheckedIn *bool
}

// Empty reports whether the update touches no mutable field.
func (u TokenUpdate) Empty() bool {
	return u.Status == nil && u.Stage == nil && u.IsCheckedIn == nil
}

// CancellationNotifier is invoked after the penalty sweep auto-cancels a
// booking linked to an account. Best effort; failures are logged, never fatal.
type CancellationNotifier func(email, patientName string, tokenNumber int)

type TokenRepository struct {
	cache  *cache.Cache
	policy config.AdmissionPolicy
	notify CancellationNotifier
}

func NewTokenRepository(cache *cache.Cache, policy config.AdmissionPolicy, notify CancellationNotifier) *TokenRepository {
	return &TokenRepository{cache: cache, policy: policy, notify: notify}
}

// Admit runs the full admission sequence as one atomic unit: doctor check,
// break window, slot capacity, duplicate booking, token numbering and the
// insert all happen inside the admission lock and a single transaction, so
// concurrent requests can never oversubscribe a slot or share a token number.
func (r *TokenRepository) Admit(ctx context.Context, input AdmissionInput) (*models.QueueToken, error) {
	// Stored in UTC so every encoding of the same instant lands on the same
	// slot; the break window is judged on the clinic's wall clock.
	appointmentTime := input.AppointmentTime.UTC()

	var token *models.QueueToken
	err := withLock(ctx, admissionLockKey, func() error {
		return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var doctor models.Doctor
			if err := tx.First(&doctor, "id = ? AND is_active = ?", input.DoctorID, true).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return Reject(ReasonInvalidDoctor, "doctor does not exist or is not accepting bookings")
				}
				return fmt.Errorf("failed to look up doctor: %w", err)
			}

			if r.policy.InBreakWindow(appointmentTime) {
				return Reject(ReasonBreakTime, fmt.Sprintf("slot unavailable during break (%02d:00-%02d:00)",
					r.policy.BreakStartHour, r.policy.BreakEndHour))
			}

			var occupied int64
			if err := tx.Model(&models.QueueToken{}).
				Where("doctor_id = ? AND appointment_time = ? AND status NOT IN ?",
					input.DoctorID, appointmentTime, terminalStatuses).
				Count(&occupied).Error; err != nil {
				return fmt.Errorf("failed to count slot occupancy: %w", err)
			}
			if r.policy.SlotFull(occupied) {
				return Reject(ReasonSlotFull, "slot full, please choose another time")
			}

			if input.UserID != nil {
				var existing models.QueueToken
				err := tx.Where("user_id = ? AND status NOT IN ?", *input.UserID, terminalStatuses).
					First(&existing).Error
				if err == nil {
					rejection := Reject(ReasonDuplicateActive, "an active token already exists for this patient")
					rejection.Existing = &existing
					return rejection
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("failed to check for active token: %w", err)
				}
			}

			// Token numbers are max+1 under the admission lock: gapless and
			// strictly increasing, and a rolled-back insert leaves no hole.
			var lastNumber int
			if err := tx.Model(&models.QueueToken{}).
				Select("COALESCE(MAX(token_number), 0)").Scan(&lastNumber).Error; err != nil {
				return fmt.Errorf("failed to read last token number: %w", err)
			}

			token = &models.QueueToken{
				TokenNumber:     lastNumber + 1,
				UserID:          input.UserID,
				PatientName:     input.PatientName,
				Phone:           input.Phone,
				DepartmentID:    input.DepartmentID,
				DoctorID:        input.DoctorID,
				AppointmentTime: appointmentTime,
				Stage:           models.StageRegistration,
				Status:          models.StatusWaiting,
				IsCheckedIn:     false,
				MissedCount:     0,
			}
			if err := tx.Create(token).Error; err != nil {
				return fmt.Errorf("failed to create queue token: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (r *TokenRepository) GetByID(ctx context.Context, id uint) (*models.QueueToken, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.getTokenCacheKey(id)
	cachedToken, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		var token models.QueueToken
		if err := json.Unmarshal([]byte(cachedToken), &token); err == nil {
			return &token, nil
		}
	} else if err != redis.Nil {
		log.Printf("Failed to get token from cache: %v", err)
	}

	token, err := r.fetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tokenJSON, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := r.cache.Set(ctx, cacheKey, tokenJSON, TokenCacheExpiry); err != nil {
		log.Printf("Failed to set token in cache: %v", err)
	}

	return token, nil
}

func (r *TokenRepository) fetchByID(ctx context.Context, id uint) (*models.QueueToken, error) {
	var token models.QueueToken
	err := database.DB.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, insured")
		}).
		Preload("Department", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name")
		}).
		Preload("Doctor", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, is_active")
		}).
		First(&token, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get queue token: %w", err)
	}
	return &token, nil
}

// ApplyUpdate moves a booking through the stage/status/check-in state machine.
// Any rejected transition leaves the row untouched. Terminal bookings accept
// only no-op updates (same value again), which keeps client-initiated and
// sweep-initiated cancellation from ever conflicting.
func (r *TokenRepository) ApplyUpdate(ctx context.Context, id uint, update TokenUpdate) (*models.QueueToken, error) {
	if update.Empty() {
		return nil, ErrNoValidFields
	}

	var token models.QueueToken
	err := withLock(ctx, tokenLockKey(id), func() error {
		return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&token, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTokenNotFound
				}
				return fmt.Errorf("failed to load queue token: %w", err)
			}

			if update.Status != nil {
				if !models.ValidStatus(*update.Status) {
					return Reject(ReasonInvalidTransition, fmt.Sprintf("unknown status %q", *update.Status))
				}
				if !models.ValidStatusTransition(token.Status, *update.Status) {
					return Reject(ReasonInvalidTransition,
						fmt.Sprintf("cannot move status from %s to %s", token.Status, *update.Status))
				}
			}
			if update.Stage != nil {
				if !models.ValidStage(*update.Stage) {
					return Reject(ReasonInvalidTransition, fmt.Sprintf("unknown stage %q", *update.Stage))
				}
				if token.Terminal() && *update.Stage != token.Stage {
					return Reject(ReasonInvalidTransition, "booking is in a terminal state")
				}
				if !models.ValidStageTransition(token.Stage, *update.Stage) {
					return Reject(ReasonInvalidTransition,
						fmt.Sprintf("cannot move stage from %s back to %s", token.Stage, *update.Stage))
				}
			}
			if update.IsCheckedIn != nil {
				if token.Terminal() && *update.IsCheckedIn != token.IsCheckedIn {
					return Reject(ReasonInvalidTransition, "booking is in a terminal state")
				}
				// One-way latch.
				if !*update.IsCheckedIn && token.IsCheckedIn {
					return Reject(ReasonInvalidTransition, "check-in cannot be undone")
				}
			}

			if update.Status != nil {
				token.Status = *update.Status
			}
			if update.Stage != nil {
				token.Stage = *update.Stage
			}
			if update.IsCheckedIn != nil {
				token.IsCheckedIn = *update.IsCheckedIn
			}

			if err := tx.Save(&token).Error; err != nil {
				return fmt.Errorf("failed to update queue token: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if err := r.cache.Delete(ctx, r.getTokenCacheKey(id)); err != nil {
		log.Printf("Failed to delete token cache: %v", err)
	}
	return &token, nil
}

// CheckIn latches the booking as physically arrived.
func (r *TokenRepository) CheckIn(ctx context.Context, id uint) (*models.QueueToken, error) {
	checkedIn := true
	return r.ApplyUpdate(ctx, id, TokenUpdate{IsCheckedIn: &checkedIn})
}

// Delete removes the booking and every report record keyed by its token
// number in one transaction, so an orphaned report is never observable.
func (r *TokenRepository) Delete(ctx context.Context, id uint) error {
	err := withLock(ctx, tokenLockKey(id), func() error {
		return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var token models.QueueToken
			if err := tx.First(&token, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTokenNotFound
				}
				return fmt.Errorf("failed to load queue token: %w", err)
			}
			if err := tx.Delete(&models.MedicalReport{}, "token_number = ?", token.TokenNumber).Error; err != nil {
				return fmt.Errorf("failed to delete reports for token %d: %w", token.TokenNumber, err)
			}
			if err := tx.Delete(&models.QueueToken{}, "id = ?", id).Error; err != nil {
				return fmt.Errorf("failed to delete queue token: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, r.getTokenCacheKey(id)); err != nil {
		log.Printf("Failed to delete token cache: %v", err)
	}
	return nil
}

// ProcessPenalties sweeps overdue bookings: anyone still Waiting and not
// checked in past the grace period has missedCount raised to the number of
// grace periods elapsed, and is cancelled once the threshold is reached.
// Safe to call from the read path and the background ticker concurrently;
// a sweep already in progress makes this call a no-op.
func (r *TokenRepository) ProcessPenalties(ctx context.Context, now time.Time) error {
	err := withLock(ctx, penaltyLockKey, func() error {
		cutoff := now.Add(-r.policy.GracePeriod)
		var overdue []models.QueueToken
		if err := database.DB.WithContext(ctx).
			Where("status = ? AND is_checked_in = ? AND appointment_time < ?",
				models.StatusWaiting, false, cutoff).
			Find(&overdue).Error; err != nil {
			return fmt.Errorf("failed to find overdue tokens: %w", err)
		}

		for i := range overdue {
			token := &overdue[i]
			write, needed := sweepOutcome(token, now, r.policy)
			if !needed {
				continue
			}

			updates := map[string]interface{}{"missed_count": write.MissedCount}
			if write.Cancel {
				updates["status"] = models.StatusCancelled
			}

			// Each write holds the booking's own lock so it cannot interleave
			// with an ApplyUpdate/CheckIn read-modify-write on the same row.
			// The status/check-in predicate re-checks what committed since the
			// candidate query.
			var applied bool
			lockErr := withLock(ctx, tokenLockKey(token.ID), func() error {
				result := database.DB.WithContext(ctx).Model(&models.QueueToken{}).
					Where("id = ? AND status = ? AND is_checked_in = ?", token.ID, models.StatusWaiting, false).
					Updates(updates)
				if result.Error != nil {
					return result.Error
				}
				applied = result.RowsAffected > 0
				return nil
			})
			if errors.Is(lockErr, ErrResourceBusy) {
				// A live update owns this booking; the next pass re-evaluates.
				continue
			}
			if lockErr != nil {
				log.Printf("Failed to penalize token %d: %v", token.TokenNumber, lockErr)
				continue
			}
			if !applied {
				continue
			}

			if err := r.cache.Delete(ctx, r.getTokenCacheKey(token.ID)); err != nil {
				log.Printf("Failed to delete token cache: %v", err)
			}
			if write.Cancel {
				log.Printf("Auto-cancelled token %d after %d missed checks", token.TokenNumber, write.MissedCount)
				r.notifyCancelled(ctx, token)
			}
		}
		return nil
	})
	if errors.Is(err, ErrResourceBusy) {
		// Another sweep holds the lock; its pass covers this window.
		return nil
	}
	return err
}

func (r *TokenRepository) notifyCancelled(ctx context.Context, token *models.QueueToken) {
	if r.notify == nil || token.UserID == nil {
		return
	}
	var user models.User
	if err := database.DB.WithContext(ctx).Select("id, email, name").
		First(&user, "id = ?", *token.UserID).Error; err != nil {
		log.Printf("Failed to load account for cancellation notice: %v", err)
		return
	}
	r.notify(user.Email, token.PatientName, token.TokenNumber)
}

// ActiveQueue returns bookings that are still in flight, ordered by slot
// time, with display fields resolved. Recomputed on every call; the penalty
// sweep immediately before a read may have changed the set.
func (r *TokenRepository) ActiveQueue(ctx context.Context) ([]models.QueueToken, error) {
	var tokens []models.QueueToken
	err := database.DB.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, insured")
		}).
		Preload("Department", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name")
		}).
		Preload("Doctor", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, is_active")
		}).
		Where("status NOT IN ?", terminalStatuses).
		Order("appointment_time ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active queue: %w", err)
	}
	return tokens, nil
}

func (r *TokenRepository) getTokenCacheKey(id uint) string {
	return fmt.Sprintf("queue_token_cache:%d", id)
}

func tokenLockKey(id uint) string {
	return fmt.Sprintf("queue_token_lock:%d", id)
}
