package repository_test

import (
	"context"
	"strconv"
	"testing"

	repository "github.com/okian/spindle/internal/adapters/repository"
	dedupe "github.com/okian/spindle/internal/domain/dedupe"
	model "github.com/okian/spindle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newSpin(i int) model.Spin {
	ts := "t" + strconv.Itoa(i)
	return model.Spin{ID: model.SpinID(ts), Timestamp: ts, Number: i % 15}
}

func TestSpinLedger(t *testing.T) {
	Convey("Given an empty spin ledger", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		l := repository.NewSpinLedger(d)

		Convey("When inserting a new spin", func() {
			ok := l.Insert(ctx, newSpin(1))

			Convey("Then it is stored", func() {
				So(ok, ShouldBeTrue)
				So(l.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When inserting the same spin twice", func() {
			l.Insert(ctx, newSpin(1))
			ok := l.Insert(ctx, newSpin(1))

			Convey("Then the second insert is rejected", func() {
				So(ok, ShouldBeFalse)
				So(l.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When inserting several spins", func() {
			for i := 1; i <= 5; i++ {
				So(l.Insert(ctx, newSpin(i)), ShouldBeTrue)
			}

			Convey("Then Latest returns the last inserted one", func() {
				latest, ok := l.Latest(ctx)
				So(ok, ShouldBeTrue)
				So(latest.Timestamp, ShouldEqual, "t5")
			})

			Convey("And List returns newest-first", func() {
				spins := l.List(ctx, 0)
				So(len(spins), ShouldEqual, 5)
				So(spins[0].Timestamp, ShouldEqual, "t5")
				So(spins[4].Timestamp, ShouldEqual, "t1")
			})

			Convey("And List honors the limit", func() {
				spins := l.List(ctx, 2)
				So(len(spins), ShouldEqual, 2)
				So(spins[0].Timestamp, ShouldEqual, "t5")
				So(spins[1].Timestamp, ShouldEqual, "t4")
			})

			Convey("And a limit beyond the contents returns everything", func() {
				So(len(l.List(ctx, 100)), ShouldEqual, 5)
			})
		})

		Convey("When the ledger is empty", func() {
			_, ok := l.Latest(ctx)

			Convey("Then Latest reports absence", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When inserting a batch with duplicates", func() {
			batch := []model.Spin{newSpin(1), newSpin(2), newSpin(1), newSpin(3)}
			inserted := l.InsertBatch(ctx, batch)

			Convey("Then only distinct spins survive", func() {
				So(inserted, ShouldEqual, 3)
				So(l.Count(ctx), ShouldEqual, 3)
			})
		})

		Convey("When clearing the ledger", func() {
			l.Insert(ctx, newSpin(1))
			l.Insert(ctx, newSpin(2))
			l.Clear(ctx)

			Convey("Then contents and dedupe index reset together", func() {
				So(l.Count(ctx), ShouldEqual, 0)
				So(d.Size(), ShouldEqual, 0)
				So(l.Insert(ctx, newSpin(1)), ShouldBeTrue)
			})
		})
	})
}

func TestSpinLedgerCapacity(t *testing.T) {
	Convey("Given a ledger with capacity 3", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		l := repository.NewSpinLedger(d, repository.WithLedgerCapacity(3))

		Convey("When inserting past capacity", func() {
			for i := 1; i <= 5; i++ {
				l.Insert(ctx, newSpin(i))
			}

			Convey("Then only the newest 3 remain", func() {
				spins := l.List(ctx, 0)
				So(len(spins), ShouldEqual, 3)
				So(spins[0].Timestamp, ShouldEqual, "t5")
				So(spins[2].Timestamp, ShouldEqual, "t3")
			})

			Convey("And the dedupe index follows the evictions", func() {
				So(d.Size(), ShouldEqual, 3)

				Convey("So an evicted spin can be ingested again", func() {
					So(l.Insert(ctx, newSpin(1)), ShouldBeTrue)
				})
			})
		})
	})
}

func TestSpinLedgerSeed(t *testing.T) {
	Convey("Given a ledger with capacity 3", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		l := repository.NewSpinLedger(d, repository.WithLedgerCapacity(3))

		Convey("When seeding from a snapshot with duplicates and overflow", func() {
			snapshot := []model.Spin{
				newSpin(9), newSpin(8), newSpin(9), newSpin(7), newSpin(6),
			}
			l.Seed(ctx, snapshot)

			Convey("Then duplicates collapse and the capacity holds", func() {
				spins := l.List(ctx, 0)
				So(len(spins), ShouldEqual, 3)
				So(spins[0].Timestamp, ShouldEqual, "t9")
				So(spins[1].Timestamp, ShouldEqual, "t8")
				So(spins[2].Timestamp, ShouldEqual, "t7")
				So(d.Size(), ShouldEqual, 3)
			})
		})

		Convey("When seeding over existing contents", func() {
			l.Insert(ctx, newSpin(1))
			l.Seed(ctx, []model.Spin{newSpin(2)})

			Convey("Then the previous contents are replaced", func() {
				spins := l.List(ctx, 0)
				So(len(spins), ShouldEqual, 1)
				So(spins[0].Timestamp, ShouldEqual, "t2")
				So(l.Insert(ctx, newSpin(1)), ShouldBeTrue)
			})
		})
	})
}
