package notify

import (
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/transaction"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/testutil"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/inconshreveable/log15.v2"
)

var sessionColumns = []string{
	"id", "local_token", "user_id", "project_id", "reward_id",
	"anonymous", "gateway", "unique_key", "created",
}

var projectColumns = []string{
	"id", "user_id", "title", "state", "goal", "funds", "currency_code", "created",
}

var rewardColumns = []string{
	"id", "project_id", "title", "state", "number", "distributed",
}

func WithNotifyService(ctx *service.Context, f func(s *Service, mock sqlmock.Sqlmock)) func() {
	return func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		ctx.SetCrowdDB(db, nil)

		s, err := NewService(ctx)
		So(err, ShouldBeNil)

		f(s, mock)

		So(mock.ExpectationsWereMet(), ShouldBeNil)
		db.Close()
	}
}

func TestProcessNotification(t *testing.T) {
	Convey("Given a service context", t, testutil.WithContext(func(ctx *service.Context, logs <-chan *log15.Record) {
		Convey("Given a notification service", WithNotifyService(ctx, func(s *Service, mock sqlmock.Sqlmock) {

			Convey("When processing a paid charge notification", func() {
				mock.ExpectQuery("SELECT(.+)FROM payment_session(.+)id = ?").
					WithArgs(int64(42)).
					WillReturnRows(sqlmock.NewRows(sessionColumns).
						AddRow(42, "token", 7, 1, 3, false, "Stripe", "ch_00000000000001", time.Unix(1409046000, 0)))
				mock.ExpectQuery("SELECT(.+)FROM project(.+)id = ?").
					WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows(projectColumns).
						AddRow(1, 9, "Test Project", 1, "1000", "250", "USD", time.Unix(1400000000, 0)))
				mock.ExpectQuery("SELECT(.+)FROM currency(.+)code_iso_4217 = ?").
					WithArgs("USD").
					WillReturnRows(sqlmock.NewRows([]string{"code_iso_4217"}).AddRow("USD"))
				// referential checks
				mock.ExpectQuery("SELECT(.+)FROM project(.+)id = ?").
					WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows(projectColumns).
						AddRow(1, 9, "Test Project", 1, "1000", "250", "USD", time.Unix(1400000000, 0)))
				mock.ExpectQuery("SELECT(.+)FROM reward(.+)id = ?").
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows(rewardColumns).
						AddRow(3, 1, "Tier One", 1, 10, 2))
				// atomic reconciliation unit
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT(.+)FROM payment_transaction(.+)FOR UPDATE").
					WithArgs("ch_00000000000001").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectPrepare("INSERT INTO payment_transaction").
					ExpectExec().
					WillReturnResult(sqlmock.NewResult(10, 1))
				mock.ExpectPrepare("UPDATE project SET funds = funds").
					ExpectExec().
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectPrepare("UPDATE reward SET distributed = distributed").
					ExpectExec().
					WithArgs(int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
				// result reward and session close
				mock.ExpectQuery("SELECT(.+)FROM reward(.+)id = ?").
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows(rewardColumns).
						AddRow(3, 1, "Tier One", 1, 10, 3))
				mock.ExpectPrepare("DELETE FROM payment_session").
					ExpectExec().
					WithArgs(int64(42)).
					WillReturnResult(sqlmock.NewResult(0, 1))

				result, err := s.ProcessNotification([]byte(notificationPayload))

				Convey("It should complete the transaction and close the session", func() {
					So(err, ShouldBeNil)
					So(result, ShouldNotBeNil)
					So(result.ServiceProvider, ShouldEqual, "Stripe")
					So(result.Transaction, ShouldNotBeNil)
					So(result.Transaction.Status, ShouldEqual, transaction.StatusCompleted)
					So(result.Transaction.Amount.Equal(decimal.RequireFromString("123.45")), ShouldBeTrue)
					So(result.Transaction.ReceiverID, ShouldEqual, 9)
					So(result.Project, ShouldNotBeNil)
					So(result.Reward, ShouldNotBeNil)
					So(result.Session, ShouldNotBeNil)
				})
			})

			Convey("When processing an unpaid charge notification", func() {
				mock.ExpectQuery("SELECT(.+)FROM payment_session(.+)id = ?").
					WithArgs(int64(42)).
					WillReturnRows(sqlmock.NewRows(sessionColumns).
						AddRow(42, "token", 7, 1, 0, false, "Stripe", "ch_00000000000001", time.Unix(1409046000, 0)))
				mock.ExpectQuery("SELECT(.+)FROM project(.+)id = ?").
					WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows(projectColumns).
						AddRow(1, 9, "Test Project", 1, "1000", "250", "USD", time.Unix(1400000000, 0)))
				mock.ExpectQuery("SELECT(.+)FROM currency(.+)code_iso_4217 = ?").
					WithArgs("USD").
					WillReturnRows(sqlmock.NewRows([]string{"code_iso_4217"}).AddRow("USD"))
				mock.ExpectQuery("SELECT(.+)FROM project(.+)id = ?").
					WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows(projectColumns).
						AddRow(1, 9, "Test Project", 1, "1000", "250", "USD", time.Unix(1400000000, 0)))
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT(.+)FROM payment_transaction(.+)FOR UPDATE").
					WithArgs("ch_00000000000001").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectPrepare("INSERT INTO payment_transaction").
					ExpectExec().
					WillReturnResult(sqlmock.NewResult(11, 1))
				mock.ExpectCommit()

				payload := []byte(`{
					"id": "evt_00000000000002",
					"type": "charge.pending",
					"data": {
						"object": {
							"id": "ch_00000000000001",
							"created": 1409046851,
							"paid": false,
							"amount": 12345,
							"currency": "usd",
							"metadata": {"payment_session_id": "42"}
						}
					}
				}`)
				result, err := s.ProcessNotification(payload)

				Convey("It should persist the pending state and keep the session open", func() {
					So(err, ShouldBeNil)
					So(result, ShouldNotBeNil)
					So(result.Transaction, ShouldBeNil)
					So(result.Session, ShouldBeNil)
				})
			})

			Convey("When the notification references an unknown session", func() {
				mock.ExpectQuery("SELECT(.+)FROM payment_session(.+)id = ?").
					WithArgs(int64(42)).
					WillReturnError(sql.ErrNoRows)

				result, err := s.ProcessNotification([]byte(notificationPayload))

				Convey("It should discard the notification without an error", func() {
					So(err, ShouldBeNil)
					So(result, ShouldNotBeNil)
					So(result.Transaction, ShouldBeNil)
				})
			})

			Convey("When the payload is not JSON", func() {
				result, err := s.ProcessNotification([]byte("not json"))

				Convey("It should discard the notification without an error", func() {
					So(err, ShouldBeNil)
					So(result, ShouldNotBeNil)
					So(result.Transaction, ShouldBeNil)
				})
			})

			Convey("When the session lookup fails", func() {
				mock.ExpectQuery("SELECT(.+)FROM payment_session(.+)id = ?").
					WithArgs(int64(42)).
					WillReturnError(sql.ErrConnDone)

				result, err := s.ProcessNotification([]byte(notificationPayload))

				Convey("It should report a persistence error for redelivery", func() {
					So(err, ShouldEqual, ErrPersistence)
					So(result, ShouldBeNil)
				})
			})
		}))
	}))
}
