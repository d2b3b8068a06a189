package tracker_test

import (
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/ucrl/experiment/tracker"
	ts "github.com/samuelfneumann/ucrl/timestep"
	. "github.com/smartystreets/goconvey/convey"
)

// steps returns consecutive TimeSteps with the argument rewards. A new
// episode starts at each index in firsts.
func steps(rewards []float64, firsts ...int) []ts.TimeStep {
	first := make(map[int]bool)
	for _, i := range firsts {
		first[i] = true
	}

	out := make([]ts.TimeStep, len(rewards))
	episode := 0
	for i, r := range rewards {
		t := ts.Mid
		if first[i] {
			t = ts.First
			episode++
		}
		out[i] = ts.New(t, 0, 0, r, 0, i+1, episode)
	}
	return out
}

func TestRegret(t *testing.T) {
	Convey("Given a Regret tracker with gain 1 sampling every 2 steps", t,
		func() {
			filename := filepath.Join(t.TempDir(), "regret.bin")
			r, err := tracker.NewRegret(filename, 1, 2)
			So(err, ShouldBeNil)

			for _, step := range steps([]float64{1, 0, 0.5, 0.5, 0}, 0) {
				r.Track(step)
			}

			Convey("The regret accumulates gain - reward", func() {
				So(r.Regret(), ShouldAlmostEqual, 3)
				So(r.Data(), ShouldResemble, []float64{1, 2})
				So(r.AverageReward(), ShouldAlmostEqual, 0.4)
			})

			Convey("The summary describes the sampled increments", func() {
				mean, std := r.Summary()
				So(mean, ShouldAlmostEqual, 1)
				So(std, ShouldAlmostEqual, 0)
			})

			Convey("The samples can be saved and loaded", func() {
				So(r.Save(), ShouldBeNil)
				data, err := tracker.LoadData(filename)
				So(err, ShouldBeNil)
				So(data, ShouldResemble, []float64{1, 2})
			})

			Convey("Non-sequential steps panic", func() {
				So(func() { r.Track(ts.New(ts.Mid, 0, 0, 0, 0, 9, 1)) },
					ShouldPanic)
			})
		})

	Convey("The sampling interval must be positive", t, func() {
		_, err := tracker.NewRegret("", 1, 0)
		So(err, ShouldNotBeNil)
	})
}

func TestEpisodeTrackers(t *testing.T) {
	Convey("Given three episodes of lengths 2, 3 and 1", t, func() {
		rewards := []float64{1, 2, 0, 0, 3, 4}
		lengths := tracker.NewEpisodeLength(filepath.Join(t.TempDir(),
			"lengths.bin"))
		returns := tracker.NewReturn(filepath.Join(t.TempDir(), "returns.bin"))

		for _, step := range steps(rewards, 0, 2, 5) {
			lengths.Track(step)
			returns.Track(step)
		}

		Convey("Only finished episodes are recorded", func() {
			So(lengths.Data(), ShouldResemble, []float64{2, 3})
			So(returns.Data(), ShouldResemble, []float64{3, 3})
		})

		Convey("The data can be saved and loaded", func() {
			So(lengths.Save(), ShouldBeNil)
			So(returns.Save(), ShouldBeNil)
		})
	})

	Convey("Loading a missing file fails", t, func() {
		_, err := tracker.LoadData(filepath.Join(t.TempDir(), "missing.bin"))
		So(err, ShouldNotBeNil)
	})
}
