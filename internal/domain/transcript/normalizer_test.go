package transcript_test

import (
	"errors"
	"testing"

	"github.com/speechwell/speechwell/internal/domain/model"
	"github.com/speechwell/speechwell/internal/domain/transcript"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given a well-formed transcript", t, func() {
		turns := []model.Turn{
			{Role: model.RoleAgent, Words: []model.Word{
				{Text: "hello", Start: 0.0, End: 0.4},
				{Text: "there", Start: 0.5, End: 0.9},
			}},
			{Role: model.RoleUser, Words: []model.Word{
				{Text: "good", Start: 1.5, End: 1.9},
				{Text: "morning", Start: 2.0, End: 2.5},
			}},
			{Role: model.RoleUser, Words: []model.Word{
				{Text: "yes", Start: 4.0, End: 4.3},
			}},
		}

		Convey("When normalizing", func() {
			utts, err := transcript.Normalize(turns)

			Convey("Then every turn becomes an utterance in order", func() {
				So(err, ShouldBeNil)
				So(utts, ShouldHaveLength, 3)
				So(utts[0].Role, ShouldEqual, model.RoleAgent)
				So(utts[1].Role, ShouldEqual, model.RoleUser)
				So(utts[1].Text(), ShouldEqual, "good morning")
				So(utts[1].Duration(), ShouldAlmostEqual, 1.0)
			})

			Convey("And filtering keeps only the user's turns in order", func() {
				user := transcript.UserUtterances(utts)
				So(user, ShouldHaveLength, 2)
				So(user[0].Text(), ShouldEqual, "good morning")
				So(user[1].Text(), ShouldEqual, "yes")
			})

			Convey("And the input turns are not aliased", func() {
				turns[1].Words[0].Text = "mutated"
				So(utts[1].Words[0].Text, ShouldEqual, "good")
			})
		})
	})

	Convey("Given malformed transcripts", t, func() {
		cases := []struct {
			name  string
			turns []model.Turn
		}{
			{
				name:  "a turn with no word timestamps",
				turns: []model.Turn{{Role: model.RoleUser, Words: nil}},
			},
			{
				name: "a turn with a missing role",
				turns: []model.Turn{{Role: "", Words: []model.Word{{Text: "hi", Start: 0, End: 0.2}}}},
			},
			{
				name: "a turn with an unrecognized role",
				turns: []model.Turn{{Role: "narrator", Words: []model.Word{{Text: "hi", Start: 0, End: 0.2}}}},
			},
			{
				name: "a word ending before it starts",
				turns: []model.Turn{{Role: model.RoleUser, Words: []model.Word{{Text: "hi", Start: 1.0, End: 0.4}}}},
			},
			{
				name: "a word starting before the previous one ended",
				turns: []model.Turn{{Role: model.RoleUser, Words: []model.Word{
					{Text: "hi", Start: 0.0, End: 0.6},
					{Text: "there", Start: 0.4, End: 0.9},
				}}},
			},
			{
				name: "a negative start time",
				turns: []model.Turn{{Role: model.RoleUser, Words: []model.Word{{Text: "hi", Start: -0.1, End: 0.2}}}},
			},
		}

		for _, tc := range cases {
			Convey("When normalizing "+tc.name, func() {
				_, err := transcript.Normalize(tc.turns)

				Convey("Then it fails with the malformed-transcript kind", func() {
					So(err, ShouldNotBeNil)
					So(errors.Is(err, transcript.ErrMalformedTranscript), ShouldBeTrue)
				})
			})
		}
	})

	Convey("Given an empty transcript", t, func() {
		Convey("When normalizing", func() {
			utts, err := transcript.Normalize(nil)

			Convey("Then it yields no utterances and no error", func() {
				So(err, ShouldBeNil)
				So(utts, ShouldBeEmpty)
			})
		})
	})
}
