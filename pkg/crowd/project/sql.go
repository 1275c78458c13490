package project

import (
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrProjectNotFound will be returned by select functions when the
	// requested project was not found
	ErrProjectNotFound = errors.New("project not found")
)

const selectProject = `
SELECT
	p.id,
	p.user_id,
	p.title,
	p.state,
	p.goal,
	p.funds,
	p.currency_code,
	p.created
FROM project AS p
`

const selectProjectByID = selectProject + `
WHERE
	p.id = ?
`

func scanProject(row *sql.Row) (*Project, error) {
	p := &Project{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.State,
		&p.Goal,
		&p.Funds,
		&p.CurrencyCode,
		&p.Created,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return p, ErrProjectNotFound
		}
		return p, err
	}
	return p, nil
}

// ProjectByIDDB selects a project by the given project id
func ProjectByIDDB(db *sql.DB, projectID int64) (*Project, error) {
	row := db.QueryRow(selectProjectByID, projectID)
	return scanProject(row)
}

// ProjectByIDTx selects a project by the given project id
func ProjectByIDTx(db *sql.Tx, projectID int64) (*Project, error) {
	row := db.QueryRow(selectProjectByID, projectID)
	return scanProject(row)
}

const insertProject = `
INSERT INTO project
(user_id, title, state, goal, funds, currency_code, created)
VALUES
(?, ?, ?, ?, ?, ?, ?)
`

// InsertProjectDB inserts a project
//
// This will modify the given project, setting the ID field.
func InsertProjectDB(db *sql.DB, p *Project) error {
	insert, err := db.Prepare(insertProject)
	if err != nil {
		return err
	}
	res, err := insert.Exec(
		p.UserID,
		p.Title,
		p.State,
		p.Goal,
		p.Funds,
		p.CurrencyCode,
		p.Created,
	)
	if err != nil {
		insert.Close()
		return err
	}
	p.ID, err = res.LastInsertId()
	insert.Close()
	return err
}

const addProjectFunds = `
UPDATE project
SET funds = funds + ?
WHERE id = ?
`

// AddFundsTx increases the accumulated funding total of the given project
// by the given major-unit amount
func AddFundsTx(db *sql.Tx, projectID int64, amount decimal.Decimal) error {
	stmt, err := db.Prepare(addProjectFunds)
	if err != nil {
		return err
	}
	// no affected-rows check here: a zero amount leaves the row unchanged
	// and the driver reports changed rows, not matched rows
	_, err = stmt.Exec(amount, projectID)
	stmt.Close()
	return err
}
