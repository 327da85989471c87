package analysis_test

import (
	"encoding/json"
	"testing"

	"github.com/speechwell/speechwell/internal/domain/analysis"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetric(t *testing.T) {
	Convey("Given the tagged metric type", t, func() {
		Convey("When a metric is applicable", func() {
			m := analysis.Applicable(56.25)

			Convey("Then it serializes to its value", func() {
				b, err := json.Marshal(m)
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "56.25")
			})

			Convey("And threshold comparisons see the value", func() {
				So(m.Below(100), ShouldBeTrue)
				So(m.Below(50), ShouldBeFalse)
				So(m.Above(50), ShouldBeTrue)
				So(m.Above(100), ShouldBeFalse)
			})
		})

		Convey("When a metric is not applicable", func() {
			m := analysis.NotApplicable()

			Convey("Then it serializes to null", func() {
				b, err := json.Marshal(m)
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "null")
			})

			Convey("And no threshold comparison ever fires", func() {
				So(m.Below(1e9), ShouldBeFalse)
				So(m.Above(-1e9), ShouldBeFalse)
			})
		})

		Convey("When round-tripping through JSON", func() {
			Convey("Then an applicable value survives", func() {
				var out analysis.Metric
				So(json.Unmarshal([]byte("42.5"), &out), ShouldBeNil)
				So(out.Valid, ShouldBeTrue)
				So(out.Value, ShouldEqual, 42.5)
			})

			Convey("And null decodes back to not-applicable", func() {
				out := analysis.Applicable(1)
				So(json.Unmarshal([]byte("null"), &out), ShouldBeNil)
				So(out.Valid, ShouldBeFalse)
			})
		})
	})
}
