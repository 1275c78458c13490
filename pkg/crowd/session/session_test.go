package session

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewSession(t *testing.T) {
	Convey("Given a pledge attempt", t, func() {
		Convey("When the project id is missing", func() {
			_, err := NewSession(1, 0, 0, false)

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When creating a session", func() {
			s, err := NewSession(1, 2, 3, false)
			So(err, ShouldBeNil)

			Convey("It should carry a local token", func() {
				So(s.LocalToken, ShouldNotBeBlank)
				So(len(s.LocalToken), ShouldEqual, tokenBytes*2)
			})

			Convey("It should not be bound yet", func() {
				So(s.Bound(), ShouldBeFalse)
			})

			Convey("Token regeneration should produce a different token", func() {
				prev := s.LocalToken
				err := s.GenerateLocalToken()
				So(err, ShouldBeNil)
				So(s.LocalToken, ShouldNotEqual, prev)
			})
		})
	})
}

func TestEffectiveRewardID(t *testing.T) {
	Convey("Given a session with a reward", t, func() {
		s := Session{UserID: 1, ProjectID: 2, RewardID: 3}

		Convey("When the pledge is not anonymous", func() {
			Convey("The reward should be carried", func() {
				So(s.EffectiveRewardID(), ShouldEqual, 3)
			})
		})

		Convey("When the pledge is anonymous", func() {
			s.Anonymous = true

			Convey("The reward should be dropped", func() {
				So(s.EffectiveRewardID(), ShouldEqual, 0)
			})
		})
	})
}
