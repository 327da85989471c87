package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/speechwell/speechwell/internal/adapters/repository"
	"github.com/speechwell/speechwell/internal/domain/analysis"
	. "github.com/smartystreets/goconvey/convey"
)

func summaryFor(id string) analysis.SessionSummary {
	return analysis.SessionSummary{
		ConversationID: id,
		AgentID:        "agent_1",
		Status:         "done",
		TotalWords:     10,
	}
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a bounded assessment store", t, func() {
		store := repository.NewMemStore(repository.WithMaxEntries(3))

		Convey("When a summary is recorded", func() {
			So(store.Put(ctx, summaryFor("conv_a")), ShouldBeNil)

			Convey("Then it can be fetched by conversation id", func() {
				got, err := store.Get(ctx, "conv_a")
				So(err, ShouldBeNil)
				So(got.ConversationID, ShouldEqual, "conv_a")
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("And an unknown conversation returns ErrNotFound", func() {
				_, err := store.Get(ctx, "conv_missing")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When several summaries are recorded", func() {
			for _, id := range []string{"conv_a", "conv_b", "conv_c"} {
				So(store.Put(ctx, summaryFor(id)), ShouldBeNil)
			}

			Convey("Then Recent returns most recent first", func() {
				got, err := store.Recent(ctx, 2)
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(got[0].ConversationID, ShouldEqual, "conv_c")
				So(got[1].ConversationID, ShouldEqual, "conv_b")
			})

			Convey("And asking for more than stored returns all of them", func() {
				got, err := store.Recent(ctx, 10)
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 3)
			})

			Convey("And a non-positive limit is rejected", func() {
				_, err := store.Recent(ctx, 0)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})

			Convey("And re-recording a conversation refreshes its recency", func() {
				So(store.Put(ctx, summaryFor("conv_a")), ShouldBeNil)
				got, err := store.Recent(ctx, 1)
				So(err, ShouldBeNil)
				So(got[0].ConversationID, ShouldEqual, "conv_a")
				So(store.Count(ctx), ShouldEqual, 3)
			})
		})

		Convey("When the store overflows", func() {
			for i := 0; i < 5; i++ {
				So(store.Put(ctx, summaryFor(fmt.Sprintf("conv_%d", i))), ShouldBeNil)
			}

			Convey("Then the oldest conversations were evicted", func() {
				So(store.Count(ctx), ShouldEqual, 3)
				_, err := store.Get(ctx, "conv_0")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = store.Get(ctx, "conv_4")
				So(err, ShouldBeNil)
			})
		})
	})
}
