package envconfig_test

import (
	"testing"

	"github.com/samuelfneumann/ucrl/environment/envconfig"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestCreate(t *testing.T) {
	Convey("Given environment configurations", t, func() {
		Convey("Names are case-insensitive", func() {
			c := envconfig.Config{Environment: "riverswim"}
			So(c.Validate(), ShouldBeNil)

			env, err := c.Create(1)
			So(err, ShouldBeNil)
			So(env.NumStates(), ShouldEqual, 6)
		})

		Convey("Zero values select the defaults", func() {
			env, err := envconfig.Config{Environment: envconfig.Garnet}.Create(1)
			So(err, ShouldBeNil)
			So(env.NumStates(), ShouldEqual, 20)
			So(len(env.StateActions()[0]), ShouldEqual, 4)

			env, err = envconfig.Config{Environment: envconfig.Toy3D1}.Create(1)
			So(err, ShouldBeNil)
			So(env.NumStates(), ShouldEqual, 3)
		})

		Convey("Sizes can be configured", func() {
			env, err := envconfig.Config{Environment: envconfig.RiverSwim,
				NumStates: 10}.Create(1)
			So(err, ShouldBeNil)
			So(env.NumStates(), ShouldEqual, 10)

			env, err = envconfig.Config{Environment: envconfig.Garnet,
				NumStates: 5, NumActions: 2, Branching: 2}.Create(1)
			So(err, ShouldBeNil)
			So(env.NumStates(), ShouldEqual, 5)
		})

		Convey("Invalid configurations are rejected", func() {
			c := envconfig.Config{Environment: "CartPole"}
			So(c.Validate(), ShouldNotBeNil)
			_, err := c.Create(1)
			So(err, ShouldNotBeNil)

			_, err = envconfig.Config{Environment: envconfig.Garnet,
				NumStates: 2, Branching: 3}.Create(1)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDecode(t *testing.T) {
	Convey("A Config can be decoded from YAML", t, func() {
		var c envconfig.Config
		doc := []byte("name: FourRooms\ndimension: 9\nsuccess_probability: 0.7\n")
		So(yaml.Unmarshal(doc, &c), ShouldBeNil)
		So(c.Environment, ShouldEqual, envconfig.FourRooms)
		So(c.Dimension, ShouldEqual, 9)
		So(c.SuccessProbability, ShouldEqual, 0.7)

		env, err := c.Create(3)
		So(err, ShouldBeNil)
		So(env.NumStates(), ShouldBeGreaterThan, 0)
	})
}
