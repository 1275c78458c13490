package stripe

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/testutil"
	"github.com/gorilla/mux"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/inconshreveable/log15.v2"
)

func WithDriver(ctx *service.Context, f func(d *Driver, mock sqlmock.Sqlmock)) func() {
	return func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		ctx.SetCrowdDB(db, nil)

		d := &Driver{}
		err = d.Attach(ctx, mux.NewRouter())
		So(err, ShouldBeNil)

		f(d, mock)

		So(mock.ExpectationsWereMet(), ShouldBeNil)
		db.Close()
	}
}

func TestNotifyHandler(t *testing.T) {
	Convey("Given a service context", t, testutil.WithContext(func(ctx *service.Context, logs <-chan *log15.Record) {
		Convey("Given an attached driver", WithDriver(ctx, func(d *Driver, mock sqlmock.Sqlmock) {
			handler := d.NotifyHandler()

			Convey("When the payload is malformed", func() {
				w := testutil.NewResponseWriter()
				r := httptest.NewRequest("POST", "/payment/stripe/notify", strings.NewReader("not json"))
				handler.ServeHTTP(w, r)

				Convey("It should acknowledge so the gateway stops redelivering", func() {
					So(w.StatusCode, ShouldEqual, http.StatusOK)
				})
			})

			Convey("When the payload references an unknown payment session", func() {
				mock.ExpectQuery("SELECT(.+)FROM payment_session(.+)id = ?").
					WillReturnError(sql.ErrNoRows)

				w := testutil.NewResponseWriter()
				r := httptest.NewRequest("POST", "/payment/stripe/notify",
					strings.NewReader(`{"data":{"object":{"id":"ch_1","paid":true,"amount":100,"metadata":{"payment_session_id":"999"}}}}`))
				handler.ServeHTTP(w, r)

				Convey("It should acknowledge so the gateway stops redelivering", func() {
					So(w.StatusCode, ShouldEqual, http.StatusOK)
				})
			})

			Convey("When the session lookup fails", func() {
				mock.ExpectQuery("SELECT(.+)FROM payment_session(.+)id = ?").
					WillReturnError(sql.ErrConnDone)

				w := testutil.NewResponseWriter()
				r := httptest.NewRequest("POST", "/payment/stripe/notify",
					strings.NewReader(`{"data":{"object":{"id":"ch_1","paid":true,"amount":100,"metadata":{"payment_session_id":"42"}}}}`))
				handler.ServeHTTP(w, r)

				Convey("It should request a redelivery", func() {
					So(w.StatusCode, ShouldEqual, http.StatusInternalServerError)
				})
			})
		}))
	}))
}

func TestCheckoutHandler(t *testing.T) {
	Convey("Given a service context", t, testutil.WithContext(func(ctx *service.Context, logs <-chan *log15.Record) {
		Convey("Given an attached driver", WithDriver(ctx, func(d *Driver, mock sqlmock.Sqlmock) {
			handler := d.CheckoutHandler()

			post := func(form url.Values) *testutil.ResponseWriter {
				w := testutil.NewResponseWriter()
				r := httptest.NewRequest("POST", "/payment/stripe/checkout",
					strings.NewReader(form.Encode()))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				handler.ServeHTTP(w, r)
				return w
			}

			Convey("When the amount is malformed", func() {
				w := post(url.Values{
					"project_id":    []string{"1"},
					"amount":        []string{"not-a-number"},
					"currency_code": []string{"USD"},
					"session_token": []string{"token"},
					"card_token":    []string{"tok_1"},
				})

				Convey("It should respond bad request", func() {
					So(w.StatusCode, ShouldEqual, http.StatusBadRequest)
				})
			})

			Convey("When the project id is malformed", func() {
				w := post(url.Values{
					"project_id":    []string{"0"},
					"amount":        []string{"100"},
					"currency_code": []string{"USD"},
					"session_token": []string{"token"},
					"card_token":    []string{"tok_1"},
				})

				Convey("It should respond bad request", func() {
					So(w.StatusCode, ShouldEqual, http.StatusBadRequest)
				})
			})

			Convey("When the card token is missing", func() {
				w := post(url.Values{
					"project_id":    []string{"1"},
					"amount":        []string{"100"},
					"currency_code": []string{"USD"},
					"session_token": []string{"token"},
				})

				Convey("It should respond bad request", func() {
					So(w.StatusCode, ShouldEqual, http.StatusBadRequest)
				})
			})
		}))
	}))
}
