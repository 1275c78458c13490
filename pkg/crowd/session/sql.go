package session

import (
	"database/sql"
	"errors"
)

var (
	// ErrSessionNotFound will be returned by select functions when the
	// requested payment session was not found
	ErrSessionNotFound = errors.New("payment session not found")
	// ErrSessionAlreadyBound is returned when attempting to bind a charge
	// onto a session which already carries a unique key
	ErrSessionAlreadyBound = errors.New("payment session already bound")
)

const selectSession = `
SELECT
	s.id,
	s.local_token,
	s.user_id,
	s.project_id,
	s.reward_id,
	s.anonymous,
	s.gateway,
	s.unique_key,
	s.created
FROM payment_session AS s
`

const selectSessionByID = selectSession + `
WHERE
	s.id = ?
`

const selectSessionByLocalToken = selectSession + `
WHERE
	s.local_token = ?
`

func scanSession(row *sql.Row) (*Session, error) {
	s := &Session{}
	err := row.Scan(
		&s.ID,
		&s.LocalToken,
		&s.UserID,
		&s.ProjectID,
		&s.RewardID,
		&s.Anonymous,
		&s.Gateway,
		&s.UniqueKey,
		&s.Created,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return s, ErrSessionNotFound
		}
		return s, err
	}
	return s, nil
}

// SessionByIDDB selects a payment session by the given session id
func SessionByIDDB(db *sql.DB, sessionID int64) (*Session, error) {
	row := db.QueryRow(selectSessionByID, sessionID)
	return scanSession(row)
}

// SessionByIDTx selects a payment session by the given session id
func SessionByIDTx(db *sql.Tx, sessionID int64) (*Session, error) {
	row := db.QueryRow(selectSessionByID, sessionID)
	return scanSession(row)
}

// SessionByLocalTokenDB selects a payment session by the local session token
func SessionByLocalTokenDB(db *sql.DB, localToken string) (*Session, error) {
	row := db.QueryRow(selectSessionByLocalToken, localToken)
	return scanSession(row)
}

const insertSession = `
INSERT INTO payment_session
(local_token, user_id, project_id, reward_id, anonymous, created)
VALUES
(?, ?, ?, ?, ?, ?)
`

// InsertSessionDB inserts a payment session
//
// This will modify the given session, setting the ID field.
func InsertSessionDB(db *sql.DB, s *Session) error {
	insert, err := db.Prepare(insertSession)
	if err != nil {
		return err
	}
	res, err := insert.Exec(
		s.LocalToken,
		s.UserID,
		s.ProjectID,
		s.RewardID,
		s.Anonymous,
		s.Created,
	)
	if err != nil {
		insert.Close()
		return err
	}
	s.ID, err = res.LastInsertId()
	insert.Close()
	return err
}

const bindCharge = `
UPDATE payment_session
SET gateway = ?, unique_key = ?
WHERE
	id = ?
	AND
	unique_key IS NULL
`

// BindChargeDB binds the gateway name and the gateway charge id onto the
// given payment session
//
// The binding is write-once. ErrSessionAlreadyBound is returned when the
// session already carries a unique key.
func BindChargeDB(db *sql.DB, sessionID int64, gateway, uniqueKey string) error {
	stmt, err := db.Prepare(bindCharge)
	if err != nil {
		return err
	}
	res, err := stmt.Exec(gateway, uniqueKey, sessionID)
	stmt.Close()
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionAlreadyBound
	}
	return nil
}

const deleteSession = `
DELETE FROM payment_session
WHERE id = ?
`

// CloseSessionTx removes a payment session once the corresponding
// transaction reached a terminal state
func CloseSessionTx(db *sql.Tx, sessionID int64) error {
	stmt, err := db.Prepare(deleteSession)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(sessionID)
	stmt.Close()
	return err
}

// CloseSessionDB removes a payment session once the corresponding
// transaction reached a terminal state
func CloseSessionDB(db *sql.DB, sessionID int64) error {
	stmt, err := db.Prepare(deleteSession)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(sessionID)
	stmt.Close()
	return err
}
