package transaction

import (
	"database/sql"
	"errors"
)

var (
	// ErrTransactionNotFound will be returned by select functions when the
	// requested transaction was not found
	ErrTransactionNotFound = errors.New("transaction not found")
)

const selectTransaction = `
SELECT
	t.id,
	t.investor_id,
	t.project_id,
	t.reward_id,
	t.txn_id,
	t.txn_amount,
	t.txn_currency,
	t.txn_status,
	t.txn_date,
	t.service_provider,
	t.service_alias,
	t.receiver_id,
	t.extra_data
FROM payment_transaction AS t
`

const selectTransactionByTxnID = selectTransaction + `
WHERE
	t.txn_id = ?
`

// selected with a row lock so concurrent deliveries for the same txn id
// serialize on the storage layer
const selectTransactionByTxnIDForUpdate = selectTransactionByTxnID + `
FOR UPDATE
`

func scanTransaction(row *sql.Row) (*Transaction, error) {
	t := &Transaction{}
	err := row.Scan(
		&t.ID,
		&t.InvestorID,
		&t.ProjectID,
		&t.RewardID,
		&t.TxnID,
		&t.Amount,
		&t.Currency,
		&t.Status,
		&t.Date,
		&t.ServiceProvider,
		&t.ServiceAlias,
		&t.ReceiverID,
		&t.ExtraData,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return t, ErrTransactionNotFound
		}
		return t, err
	}
	return t, nil
}

// TransactionByTxnIDDB selects a transaction by the external transaction id
func TransactionByTxnIDDB(db *sql.DB, txnID string) (*Transaction, error) {
	row := db.QueryRow(selectTransactionByTxnID, txnID)
	return scanTransaction(row)
}

// TransactionByTxnIDForUpdateTx selects a transaction by the external
// transaction id, locking the row for the duration of the enclosing
// database transaction
func TransactionByTxnIDForUpdateTx(db *sql.Tx, txnID string) (*Transaction, error) {
	row := db.QueryRow(selectTransactionByTxnIDForUpdate, txnID)
	return scanTransaction(row)
}

const insertTransaction = `
INSERT INTO payment_transaction
(investor_id, project_id, reward_id, txn_id, txn_amount, txn_currency, txn_status, txn_date, service_provider, service_alias, receiver_id, extra_data)
VALUES
(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// InsertTransactionTx inserts a transaction
//
// This will modify the given transaction, setting the ID field. The
// payment_transaction table carries a unique key on txn_id as the
// correctness backstop against concurrent duplicate deliveries.
func InsertTransactionTx(db *sql.Tx, t *Transaction) error {
	stmt, err := db.Prepare(insertTransaction)
	if err != nil {
		return err
	}
	res, err := stmt.Exec(
		t.InvestorID,
		t.ProjectID,
		t.RewardID,
		t.TxnID,
		t.Amount,
		t.Currency,
		t.Status,
		t.Date,
		t.ServiceProvider,
		t.ServiceAlias,
		t.ReceiverID,
		t.ExtraData,
	)
	stmt.Close()
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

const updateTransaction = `
UPDATE payment_transaction
SET
	investor_id = ?,
	reward_id = ?,
	txn_amount = ?,
	txn_currency = ?,
	txn_status = ?,
	txn_date = ?,
	service_provider = ?,
	service_alias = ?,
	receiver_id = ?,
	extra_data = ?
WHERE id = ?
`

// UpdateTransactionTx updates the mutable fields of a transaction row
func UpdateTransactionTx(db *sql.Tx, t *Transaction) error {
	stmt, err := db.Prepare(updateTransaction)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(
		t.InvestorID,
		t.RewardID,
		t.Amount,
		t.Currency,
		t.Status,
		t.Date,
		t.ServiceProvider,
		t.ServiceAlias,
		t.ReceiverID,
		t.ExtraData,
		t.ID,
	)
	stmt.Close()
	return err
}

const clearTransactionReward = `
UPDATE payment_transaction
SET reward_id = 0
WHERE id = ?
`

// ClearRewardTx removes the reward assignment from a transaction
//
// Used when the assigned reward became unavailable between pledge and
// completion.
func ClearRewardTx(db *sql.Tx, transactionID int64) error {
	stmt, err := db.Prepare(clearTransactionReward)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(transactionID)
	stmt.Close()
	return err
}
