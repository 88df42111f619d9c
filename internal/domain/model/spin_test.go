package model_test

import (
	"testing"
	"time"

	model "github.com/okian/spindle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestColorFromNumber(t *testing.T) {
	Convey("Given the wheel color mapping", t, func() {
		Convey("When the number is zero", func() {
			So(model.ColorFromNumber(0), ShouldEqual, model.ColorWhite)
		})

		Convey("When the number is in the red range", func() {
			for n := 1; n <= 7; n++ {
				So(model.ColorFromNumber(n), ShouldEqual, model.ColorRed)
			}
		})

		Convey("When the number is in the black range", func() {
			for n := 8; n <= 14; n++ {
				So(model.ColorFromNumber(n), ShouldEqual, model.ColorBlack)
			}
		})

		Convey("When the number is outside the wheel domain", func() {
			So(model.ColorFromNumber(15), ShouldEqual, model.ColorUnknown)
			So(model.ColorFromNumber(100), ShouldEqual, model.ColorUnknown)
			So(model.ColorFromNumber(-1), ShouldEqual, model.ColorUnknown)
		})
	})
}

func TestSpinID(t *testing.T) {
	Convey("Given a source timestamp", t, func() {
		Convey("Then the identifier derives deterministically from it", func() {
			So(model.SpinID("2026-08-29T10:00:00.000Z"), ShouldEqual, "spin_2026-08-29T10:00:00.000Z")
			So(model.SpinID("x"), ShouldEqual, "spin_x")
		})
	})
}

func TestSpinFromFeed(t *testing.T) {
	Convey("Given a raw feed result", t, func() {
		now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
		raw := model.FeedResult{Roll: 7, CreatedAt: "2026-08-29T09:59:58.123Z"}

		Convey("When normalizing it into a spin", func() {
			spin := model.SpinFromFeed(raw, now)

			Convey("Then every derived field is filled", func() {
				So(spin.ID, ShouldEqual, "spin_2026-08-29T09:59:58.123Z")
				So(spin.Number, ShouldEqual, 7)
				So(spin.Color, ShouldEqual, model.ColorRed)
				So(spin.Timestamp, ShouldEqual, raw.CreatedAt)
				So(spin.CollectedAt, ShouldEqual, now)
				So(spin.CollectedBy, ShouldEqual, model.SourceServer)
			})
		})
	})
}

func TestCanonicalize(t *testing.T) {
	Convey("Given an externally submitted spin", t, func() {
		now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

		Convey("When the identifier is absent", func() {
			s := model.Spin{Number: 3, Timestamp: "ts-1"}
			s.Canonicalize(now)

			Convey("Then it derives from the timestamp", func() {
				So(s.ID, ShouldEqual, "spin_ts-1")
			})
		})

		Convey("When the identifier is present", func() {
			s := model.Spin{ID: "custom", Number: 3, Timestamp: "ts-1"}
			s.Canonicalize(now)

			Convey("Then it is kept verbatim", func() {
				So(s.ID, ShouldEqual, "custom")
			})
		})

		Convey("When the submitted color contradicts the number", func() {
			s := model.Spin{Number: 0, Color: model.ColorRed, Timestamp: "ts-1"}
			s.Canonicalize(now)

			Convey("Then the color is recomputed from the number", func() {
				So(s.Color, ShouldEqual, model.ColorWhite)
			})
		})

		Convey("When collection fields are absent", func() {
			s := model.Spin{Number: 9, Timestamp: "ts-1"}
			s.Canonicalize(now)

			Convey("Then they default to client-side collection now", func() {
				So(s.CollectedAt, ShouldEqual, now)
				So(s.CollectedBy, ShouldEqual, model.SourceClient)
			})
		})

		Convey("When collection fields are present", func() {
			earlier := now.Add(-time.Hour)
			s := model.Spin{Number: 9, Timestamp: "ts-1", CollectedAt: earlier, CollectedBy: model.SourceServer}
			s.Canonicalize(now)

			Convey("Then they are preserved", func() {
				So(s.CollectedAt, ShouldEqual, earlier)
				So(s.CollectedBy, ShouldEqual, model.SourceServer)
			})
		})
	})
}
