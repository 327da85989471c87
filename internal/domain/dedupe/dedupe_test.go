package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/speechwell/speechwell/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When recording a new delivery id", func() {
			seen := d.SeenAndRecord(ctx, "conv_a")

			Convey("Then it is not seen the first time", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And it is seen on redelivery", func() {
				So(d.SeenAndRecord(ctx, "conv_a"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording a failed delivery", func() {
			d.SeenAndRecord(ctx, "conv_a")
			d.Unrecord(ctx, "conv_a")

			Convey("Then the id can be retried", func() {
				So(d.SeenAndRecord(ctx, "conv_a"), ShouldBeFalse)
			})
		})

		Convey("When the cache overflows", func() {
			for i := 0; i < 4; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("conv_%d", i))
			}

			Convey("Then the oldest id was evicted and the size stays bounded", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "conv_0"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "conv_3"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		Convey("When recording many ids", func() {
			for i := 0; i < 1000; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("conv_%d", i)), ShouldBeFalse)
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 1000)
				So(d.SeenAndRecord(ctx, "conv_0"), ShouldBeTrue)
			})
		})
	})
}
