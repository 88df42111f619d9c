package repository_test

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	repository "github.com/okian/spindle/internal/adapters/repository"
	model "github.com/okian/spindle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newPattern(id string, body string) model.Pattern {
	return model.Pattern{
		ID:           id,
		Pattern:      json.RawMessage(body),
		ExpectedNext: "red",
		Type:         "streak",
		Confidence:   75,
		Occurrences:  1,
	}
}

func TestPatternTable(t *testing.T) {
	Convey("Given an empty pattern table", t, func() {
		ctx := context.Background()
		tbl := repository.NewPatternTable()

		Convey("When upserting a new pattern", func() {
			inserted := tbl.Upsert(ctx, newPattern("p-1", `["red"]`))

			Convey("Then it is inserted", func() {
				So(inserted, ShouldBeTrue)
				So(tbl.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When upserting a pattern without identifier or discovery time", func() {
			tbl.Upsert(ctx, model.Pattern{Pattern: json.RawMessage(`["black"]`), ExpectedNext: "red"})

			Convey("Then both are filled in", func() {
				got := tbl.List(ctx, 0)[0]
				So(got.ID, ShouldNotBeEmpty)
				So(got.FoundAt.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When resubmitting a pattern by identifier", func() {
			first := newPattern("p-1", `["red","red"]`)
			first.TotalWins = 2
			first.TotalLosses = 1
			first.Occurrences = 5
			tbl.Upsert(ctx, first)

			second := newPattern("p-1", `["red","red"]`)
			second.TotalWins = 1
			second.TotalLosses = 1
			second.Occurrences = 3
			inserted := tbl.Upsert(ctx, second)

			Convey("Then it merges instead of duplicating", func() {
				So(inserted, ShouldBeFalse)
				So(tbl.Count(ctx), ShouldEqual, 1)

				got := tbl.List(ctx, 0)[0]
				So(got.TotalWins, ShouldEqual, 3)
				So(got.TotalLosses, ShouldEqual, 2)
				So(got.Occurrences, ShouldEqual, 5)
			})
		})

		Convey("When two identifiers share a structural key", func() {
			tbl.Upsert(ctx, newPattern("p-1", `["red","black"]`))
			inserted := tbl.Upsert(ctx, newPattern("p-2", `["red","black"]`))

			Convey("Then the structural match wins and the table stays at one entry", func() {
				So(inserted, ShouldBeFalse)
				So(tbl.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When upserting a batch", func() {
			batch := []model.Pattern{
				newPattern("p-1", `["a"]`),
				newPattern("p-2", `["b"]`),
				newPattern("p-1", `["a"]`),
			}
			inserted := tbl.UpsertBatch(ctx, batch)

			Convey("Then only distinct patterns insert", func() {
				So(inserted, ShouldEqual, 2)
				So(tbl.Count(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the merge preserves the discovery time", func() {
			foundAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			first := newPattern("p-1", `["red"]`)
			first.FoundAt = foundAt
			tbl.Upsert(ctx, first)

			second := newPattern("p-1", `["red"]`)
			second.FoundAt = foundAt.Add(time.Hour)
			tbl.Upsert(ctx, second)

			got := tbl.List(ctx, 0)[0]
			So(got.FoundAt, ShouldEqual, foundAt)
		})

		Convey("When clearing the table", func() {
			tbl.Upsert(ctx, newPattern("p-1", `["red"]`))
			tbl.Clear(ctx)

			So(tbl.Count(ctx), ShouldEqual, 0)
		})
	})
}

func TestPatternTableCapacity(t *testing.T) {
	Convey("Given a pattern table with capacity 3", t, func() {
		ctx := context.Background()
		tbl := repository.NewPatternTable(repository.WithPatternCapacity(3))

		Convey("When inserting past capacity", func() {
			for i := 1; i <= 5; i++ {
				id := "p-" + strconv.Itoa(i)
				tbl.Upsert(ctx, newPattern(id, `["body-`+strconv.Itoa(i)+`"]`))
			}

			Convey("Then only the newest 3 remain", func() {
				got := tbl.List(ctx, 0)
				So(len(got), ShouldEqual, 3)
				So(got[0].ID, ShouldEqual, "p-5")
				So(got[2].ID, ShouldEqual, "p-3")
			})
		})

		Convey("Then the capacity is reported for stats", func() {
			So(tbl.Capacity(), ShouldEqual, 3)
		})
	})
}

func TestPatternTableSeed(t *testing.T) {
	Convey("Given a pattern table with capacity 2", t, func() {
		ctx := context.Background()
		tbl := repository.NewPatternTable(repository.WithPatternCapacity(2))

		Convey("When seeding from an oversized snapshot", func() {
			tbl.Seed(ctx, []model.Pattern{
				newPattern("p-1", `["a"]`),
				newPattern("p-2", `["b"]`),
				newPattern("p-3", `["c"]`),
			})

			Convey("Then the capacity bound applies", func() {
				got := tbl.List(ctx, 0)
				So(len(got), ShouldEqual, 2)
				So(got[0].ID, ShouldEqual, "p-1")
			})
		})
	})
}
