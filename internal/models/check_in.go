package models

import "time"

// LeaderCheckIn is one row of the append-only attendance interval log
// for a leader. An open interval has CheckedOutAt = nil; at most one
// interval per leader may be open at a time.
type LeaderCheckIn struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	LeaderID     uint64     `gorm:"not null;index" json:"leader_id"`
	CheckedInAt  time.Time  `gorm:"not null" json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at"`
	UserID       uint64     `gorm:"not null" json:"user_id"`

	Leader Leader `gorm:"foreignKey:LeaderID" json:"-"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
}

// VoterCheckIn mirrors LeaderCheckIn for voters.
type VoterCheckIn struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	VoterID      uint64     `gorm:"not null;index" json:"voter_id"`
	CheckedInAt  time.Time  `gorm:"not null" json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at"`
	UserID       uint64     `gorm:"not null" json:"user_id"`

	Voter Voter `gorm:"foreignKey:VoterID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}
