package transaction

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStatusTransitions(t *testing.T) {
	Convey("Given the transaction status state machine", t, func() {
		Convey("A new transaction may take any delivered status", func() {
			So(StatusNone.CanTransitionTo(StatusPending), ShouldBeTrue)
			So(StatusNone.CanTransitionTo(StatusCompleted), ShouldBeTrue)
			So(StatusNone.CanTransitionTo(StatusFailed), ShouldBeTrue)
		})

		Convey("A pending transaction may advance", func() {
			So(StatusPending.CanTransitionTo(StatusCompleted), ShouldBeTrue)
			So(StatusPending.CanTransitionTo(StatusFailed), ShouldBeTrue)

			Convey("And may be re-written as pending", func() {
				So(StatusPending.CanTransitionTo(StatusPending), ShouldBeTrue)
			})
		})

		Convey("A completed transaction is absorbing", func() {
			So(StatusCompleted.Terminal(), ShouldBeTrue)
			So(StatusCompleted.CanTransitionTo(StatusPending), ShouldBeFalse)
			So(StatusCompleted.CanTransitionTo(StatusCompleted), ShouldBeFalse)
			So(StatusCompleted.CanTransitionTo(StatusFailed), ShouldBeFalse)
		})

		Convey("A failed transaction accepts no further writes", func() {
			So(StatusFailed.Terminal(), ShouldBeTrue)
			So(StatusFailed.CanTransitionTo(StatusCompleted), ShouldBeFalse)
			So(StatusFailed.CanTransitionTo(StatusPending), ShouldBeFalse)
		})
	})
}

func TestStatusSQLMapping(t *testing.T) {
	Convey("Given a status", t, func() {
		Convey("When scanning from a byte slice", func() {
			var s Status
			err := s.Scan([]byte("completed"))
			So(err, ShouldBeNil)
			So(s, ShouldEqual, StatusCompleted)
		})

		Convey("When scanning a NULL", func() {
			var s Status
			err := s.Scan(nil)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, StatusNone)
		})

		Convey("When producing a driver value", func() {
			v, err := StatusPending.Value()
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "pending")
		})
	})
}

func TestCandidateValidity(t *testing.T) {
	Convey("Given a transaction candidate", t, func() {
		c := Candidate{ProjectID: 1, TxnID: "ch_1"}

		Convey("With correlation fields present it should be valid", func() {
			So(c.Valid(), ShouldBeTrue)
		})

		Convey("Without a project id it should be invalid", func() {
			c.ProjectID = 0
			So(c.Valid(), ShouldBeFalse)
		})

		Convey("Without an external transaction id it should be invalid", func() {
			c.TxnID = ""
			So(c.Valid(), ShouldBeFalse)
		})
	})
}
