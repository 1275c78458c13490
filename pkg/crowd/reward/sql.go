package reward

import (
	"database/sql"
	"errors"
)

var (
	// ErrRewardNotFound will be returned by select functions when the
	// requested reward was not found
	ErrRewardNotFound = errors.New("reward not found")
	// ErrRewardExhausted is returned when a reward tier has no claimable
	// units left
	ErrRewardExhausted = errors.New("reward exhausted")
)

const selectReward = `
SELECT
	r.id,
	r.project_id,
	r.title,
	r.state,
	r.number,
	r.distributed
FROM reward AS r
`

const selectRewardByID = selectReward + `
WHERE
	r.id = ?
`

func scanReward(row *sql.Row) (*Reward, error) {
	r := &Reward{}
	err := row.Scan(
		&r.ID,
		&r.ProjectID,
		&r.Title,
		&r.State,
		&r.Number,
		&r.Distributed,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return r, ErrRewardNotFound
		}
		return r, err
	}
	return r, nil
}

// RewardByIDDB selects a reward by the given reward id
func RewardByIDDB(db *sql.DB, rewardID int64) (*Reward, error) {
	row := db.QueryRow(selectRewardByID, rewardID)
	return scanReward(row)
}

// RewardByIDTx selects a reward by the given reward id
func RewardByIDTx(db *sql.Tx, rewardID int64) (*Reward, error) {
	row := db.QueryRow(selectRewardByID, rewardID)
	return scanReward(row)
}

const insertReward = `
INSERT INTO reward
(project_id, title, state, number, distributed)
VALUES
(?, ?, ?, ?, ?)
`

// InsertRewardDB inserts a reward
//
// This will modify the given reward, setting the ID field.
func InsertRewardDB(db *sql.DB, r *Reward) error {
	insert, err := db.Prepare(insertReward)
	if err != nil {
		return err
	}
	res, err := insert.Exec(
		r.ProjectID,
		r.Title,
		r.State,
		r.Number,
		r.Distributed,
	)
	if err != nil {
		insert.Close()
		return err
	}
	r.ID, err = res.LastInsertId()
	insert.Close()
	return err
}

const incrementDistributed = `
UPDATE reward
SET distributed = distributed + 1
WHERE
	id = ?
	AND
	(number = 0 OR distributed < number)
`

// IncrementDistributedTx increments the distributed count of the given
// reward tier
//
// It returns ErrRewardExhausted when the tier has no claimable units left.
func IncrementDistributedTx(db *sql.Tx, rewardID int64) error {
	stmt, err := db.Prepare(incrementDistributed)
	if err != nil {
		return err
	}
	res, err := stmt.Exec(rewardID)
	stmt.Close()
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRewardExhausted
	}
	return nil
}
