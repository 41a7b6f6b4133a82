package main

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// snapshotKey is the only key the hub writes per history entry.
const snapshotKey = "rpc-session"

// HistoryRecord is one persisted value scoped to a navigation entry.
type HistoryRecord struct {
	EntryID string `gorm:"column:entry_id;type:varchar(64);primaryKey"`
	Key     string `gorm:"column:key;type:varchar(64);primaryKey"`
	Value   []byte `gorm:"column:value;type:text;not null"`
}

func (HistoryRecord) TableName() string {
	return "history_entries"
}

// HistoryStore persists session snapshots keyed by navigation entry, so a
// reload of the same entry can resume the session. Writes are
// last-writer-wins.
type HistoryStore struct {
	db *gorm.DB
}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// SetSnapshot stores the session snapshot for the given entry, replacing any
// previous one.
func (s *HistoryStore) SetSnapshot(entryID string, snapshot *SessionSnapshot) error {
	value, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	record := HistoryRecord{EntryID: entryID, Key: snapshotKey, Value: value}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error
}

// GetSnapshot loads the session snapshot for the given entry. A missing
// snapshot yields a NotFoundError.
func (s *HistoryStore) GetSnapshot(entryID string) (*SessionSnapshot, error) {
	var record HistoryRecord
	err := s.db.Where("entry_id = ? AND key = ?", entryID, snapshotKey).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{What: "session snapshot"}
	}
	if err != nil {
		return nil, err
	}
	var snapshot SessionSnapshot
	if err := json.Unmarshal(record.Value, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ClearSnapshot removes the snapshot for the given entry, if any.
func (s *HistoryStore) ClearSnapshot(entryID string) error {
	return s.db.Where("entry_id = ? AND key = ?", entryID, snapshotKey).Delete(&HistoryRecord{}).Error
}
