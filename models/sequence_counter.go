// Package models contains domain entities and business models for the serial number allocator
package models

import "time"

// SequenceCounter holds the last issued number for one prefix.
// Table: sequence_counters
// The row is created with CurrentNumber = 1 by the first allocation and afterwards only
// incremented by one inside an allocation transaction. Rows are never deleted.
type SequenceCounter struct {
	Prefix        string    `gorm:"primaryKey;size:5" json:"prefix"`
	CurrentNumber uint64    `gorm:"not null" json:"current_number"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }
