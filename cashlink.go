package main

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// CashlinkState tracks a cashlink through funding and redemption.
type CashlinkState uint8

const (
	CashlinkUncharged CashlinkState = 0
	CashlinkCharging  CashlinkState = 1
	CashlinkUnclaimed CashlinkState = 2
	CashlinkClaiming  CashlinkState = 3
	CashlinkClaimed   CashlinkState = 4
)

func (s CashlinkState) String() string {
	switch s {
	case CashlinkUncharged:
		return "uncharged"
	case CashlinkCharging:
		return "charging"
	case CashlinkUnclaimed:
		return "unclaimed"
	case CashlinkClaiming:
		return "claiming"
	case CashlinkClaimed:
		return "claimed"
	}
	return "unknown"
}

// Cashlink is a shareable, fundable, redeemable payment link. It is distinct
// from a direct transaction: the funds sit on the link's own address until
// redeemed.
type Cashlink struct {
	Address     Address
	Value       uint64
	Message     string
	Theme       CashlinkTheme
	State       CashlinkState
	ContactName string
	Timestamp   int64 // creation time, epoch seconds
}

// NewCashlink creates an unfunded cashlink for the given address.
func NewCashlink(addr Address, value uint64, message string, theme CashlinkTheme) *Cashlink {
	return &Cashlink{
		Address:   addr,
		Value:     value,
		Message:   message,
		Theme:     theme,
		State:     CashlinkUncharged,
		Timestamp: time.Now().Unix(),
	}
}

// CashlinkObject is the persisted form of a cashlink, JSON-serializable for
// the session snapshot and the cashlink store.
type CashlinkObject struct {
	Address     string `json:"address"`
	Value       uint64 `json:"value"`
	Message     string `json:"message,omitempty"`
	Theme       uint8  `json:"theme"`
	State       uint8  `json:"state"`
	ContactName string `json:"contactName,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// ToObject exports the cashlink to its persisted form.
func (c *Cashlink) ToObject() *CashlinkObject {
	return &CashlinkObject{
		Address:     c.Address.UserFriendly(),
		Value:       c.Value,
		Message:     c.Message,
		Theme:       uint8(c.Theme),
		State:       uint8(c.State),
		ContactName: c.ContactName,
		Timestamp:   c.Timestamp,
	}
}

// CashlinkFromObject is the inverse of ToObject.
func CashlinkFromObject(obj *CashlinkObject) (*Cashlink, error) {
	if obj == nil {
		return nil, fmt.Errorf("cashlink object is nil")
	}
	addr, err := ParseAddress(obj.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid cashlink address: %w", err)
	}
	theme := CashlinkTheme(obj.Theme)
	if !theme.IsValid() {
		return nil, fmt.Errorf("invalid cashlink theme: %d", obj.Theme)
	}
	return &Cashlink{
		Address:     addr,
		Value:       obj.Value,
		Message:     obj.Message,
		Theme:       theme,
		State:       CashlinkState(obj.State),
		ContactName: obj.ContactName,
		Timestamp:   obj.Timestamp,
	}, nil
}

// ShareURL renders the link a recipient opens to claim the funds.
func (c *Cashlink) ShareURL(baseURL string) string {
	values := url.Values{}
	values.Set("value", strconv.FormatUint(c.Value, 10))
	if c.Message != "" {
		values.Set("message", c.Message)
	}
	if c.Theme != ThemeUnspecified {
		values.Set("theme", strconv.Itoa(int(c.Theme)))
	}
	return baseURL + "/cashlink/#" + c.Address.UserFriendly() + "&" + values.Encode()
}

// CashlinkRecord is the database row of a stored cashlink.
type CashlinkRecord struct {
	Address     string `gorm:"column:address;type:varchar(64);primaryKey"`
	Value       uint64 `gorm:"column:value;not null"`
	Message     string `gorm:"column:message;type:varchar(255)"`
	Theme       uint8  `gorm:"column:theme;not null"`
	State       uint8  `gorm:"column:state;not null"`
	ContactName string `gorm:"column:contact_name;type:varchar(255)"`
	Timestamp   int64  `gorm:"column:timestamp;not null"`
}

func (CashlinkRecord) TableName() string {
	return "cashlinks"
}

// CashlinkStore persists cashlinks across sessions.
type CashlinkStore struct {
	db *gorm.DB
}

func NewCashlinkStore(db *gorm.DB) *CashlinkStore {
	return &CashlinkStore{db: db}
}

// Put inserts or replaces the stored state of a cashlink.
func (s *CashlinkStore) Put(c *Cashlink) error {
	obj := c.ToObject()
	record := CashlinkRecord{
		Address:     obj.Address,
		Value:       obj.Value,
		Message:     obj.Message,
		Theme:       obj.Theme,
		State:       obj.State,
		ContactName: obj.ContactName,
		Timestamp:   obj.Timestamp,
	}
	return s.db.Save(&record).Error
}

// Get loads a cashlink by its address. A missing row yields a NotFoundError.
func (s *CashlinkStore) Get(addr Address) (*Cashlink, error) {
	var record CashlinkRecord
	err := s.db.Where("address = ?", addr.UserFriendly()).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{What: "cashlink"}
	}
	if err != nil {
		return nil, err
	}
	return CashlinkFromObject(&CashlinkObject{
		Address:     record.Address,
		Value:       record.Value,
		Message:     record.Message,
		Theme:       record.Theme,
		State:       record.State,
		ContactName: record.ContactName,
		Timestamp:   record.Timestamp,
	})
}

// List returns all stored cashlinks, newest first.
func (s *CashlinkStore) List() ([]*Cashlink, error) {
	var records []CashlinkRecord
	if err := s.db.Order("timestamp desc").Find(&records).Error; err != nil {
		return nil, err
	}
	links := make([]*Cashlink, 0, len(records))
	for _, record := range records {
		link, err := CashlinkFromObject(&CashlinkObject{
			Address:     record.Address,
			Value:       record.Value,
			Message:     record.Message,
			Theme:       record.Theme,
			State:       record.State,
			ContactName: record.ContactName,
			Timestamp:   record.Timestamp,
		})
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

// Remove deletes a stored cashlink.
func (s *CashlinkStore) Remove(addr Address) error {
	return s.db.Where("address = ?", addr.UserFriendly()).Delete(&CashlinkRecord{}).Error
}
