package resourcemanager

import (
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// ReclamationEvent is one row of the append-only reclamation audit log.
type ReclamationEvent struct {
	ID          uint `gorm:"primaryKey"`
	FacadeID    string
	Operation   string
	Media       string
	ReclaimedAt time.Time
	Reason      string
}

// AuditStore persists reclamation events. It is optional: a Manager with
// no AuditStore attached simply skips logging. Backed by gorm with the
// pure-Go glebarez/sqlite driver so the runtime carries no cgo dependency,
// following the teacher's internal/database dialector selection for the
// sqlite case.
type AuditStore struct {
	db *gorm.DB
}

// OpenAuditStore opens (creating if necessary) a sqlite-backed audit log
// at path and migrates its schema.
func OpenAuditStore(path string) (*AuditStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ReclamationEvent{}); err != nil {
		return nil, err
	}
	return &AuditStore{db: db}, nil
}

// Record appends one reclamation event.
func (s *AuditStore) Record(ev ReclamationEvent) error {
	return s.db.Create(&ev).Error
}

// Recent returns the most recent limit events, newest first.
func (s *AuditStore) Recent(limit int) ([]ReclamationEvent, error) {
	var events []ReclamationEvent
	err := s.db.Order("reclaimed_at desc").Limit(limit).Find(&events).Error
	return events, err
}

// AttachAuditStore wires store into m so every future ReclaimInactive call
// records an event per reclaimed facade.
func (m *Manager) AttachAuditStore(store *AuditStore) {
	m.audit = store
}
