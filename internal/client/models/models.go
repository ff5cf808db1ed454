// Package models holds the client-side views of server responses.
package models

import "time"

type Ciphertext struct {
	Handle  string
	Viewers []string
}

type Jar struct {
	ID             uint64
	Owner          string
	Name           string
	Description    string
	Category       string
	Active         bool
	TipCount       uint64
	CreatedAt      time.Time
	EncryptedTotal Ciphertext
}

type Standing struct {
	Rank     uint64
	JarID    uint64
	Name     string
	Category string
	Owner    string
	TipCount uint64
}

// Tip is a received tip with its amount already revealed to the owner.
type Tip struct {
	Seq       uint64
	Sender    string
	Amount    uint64
	Message   string
	CreatedAt time.Time
}

type Exchange struct {
	Rate    uint64
	Reserve uint64
	Supply  uint64
}
