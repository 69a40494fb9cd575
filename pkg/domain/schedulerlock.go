package domain

import "time"

// SchedulerLock is the sole cross-process coordination primitive: a unique
// row whose presence-and-freshness decides whether C8's job may run.
type SchedulerLock struct {
	LockName   string    `json:"lock_name"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// UpdateLegalCasesLockName is the single lock name C8 uses.
const UpdateLegalCasesLockName = "update_legal_cases_cron"
