package session

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

const (
	tokenBytes = 32
)

// Session represents a payment session
//
// A payment session correlates one pledge attempt of a user on a project
// with a specific gateway checkout. The gateway and unique key fields are
// set once the gateway has accepted the charge and are read-only afterwards.
type Session struct {
	ID         int64
	LocalToken string
	UserID     int64
	ProjectID  int64
	RewardID   int64
	Anonymous  bool
	Gateway    sql.NullString
	UniqueKey  sql.NullString
	Created    time.Time
}

// NewSession creates a payment session for a pledge attempt
func NewSession(userID, projectID, rewardID int64, anonymous bool) (*Session, error) {
	if projectID == 0 {
		return nil, errors.New("session without project id")
	}
	s := &Session{
		UserID:    userID,
		ProjectID: projectID,
		RewardID:  rewardID,
		Anonymous: anonymous,
		Created:   time.Now(),
	}
	err := s.GenerateLocalToken()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GenerateLocalToken sets a new random local session token
func (s *Session) GenerateLocalToken() error {
	bin := make([]byte, tokenBytes)
	_, err := rand.Read(bin)
	if err != nil {
		return err
	}
	s.LocalToken = hex.EncodeToString(bin)
	return nil
}

// Empty returns true if the session is considered empty/uninitialized
func (s Session) Empty() bool {
	return s.ID == 0
}

// Bound returns true once a gateway charge has been bound onto the session
func (s Session) Bound() bool {
	return s.UniqueKey.Valid && s.UniqueKey.String != ""
}

// EffectiveRewardID returns the reward id of the pledge attempt
//
// Anonymous pledges carry no reward.
func (s Session) EffectiveRewardID() int64 {
	if s.Anonymous {
		return 0
	}
	return s.RewardID
}
