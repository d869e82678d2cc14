package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/agegrader/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseGender(t *testing.T) {
	convey.Convey("Given gender strings", t, func() {
		convey.Convey("When parsing male spellings", func() {
			for _, s := range []string{"M", "m", "male", "MALE", " Male ", "men"} {
				g, err := model.ParseGender(s)

				convey.So(err, convey.ShouldBeNil)
				convey.So(g, convey.ShouldEqual, model.Male)
			}
		})

		convey.Convey("When parsing female spellings", func() {
			for _, s := range []string{"F", "f", "female", "Female", "W", "women"} {
				g, err := model.ParseGender(s)

				convey.So(err, convey.ShouldBeNil)
				convey.So(g, convey.ShouldEqual, model.Female)
			}
		})

		convey.Convey("When parsing an unsupported value", func() {
			g, err := model.ParseGender("x")

			convey.Convey("Then it should return ErrUnknownGender", func() {
				convey.So(errors.Is(err, model.ErrUnknownGender), convey.ShouldBeTrue)
				convey.So(g, convey.ShouldEqual, model.GenderUnknown)
			})
		})

		convey.Convey("When parsing an empty value", func() {
			_, err := model.ParseGender("")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestGenderString(t *testing.T) {
	convey.Convey("Given genders", t, func() {
		convey.So(model.Male.String(), convey.ShouldEqual, "M")
		convey.So(model.Female.String(), convey.ShouldEqual, "F")
		convey.So(model.GenderUnknown.String(), convey.ShouldEqual, "unknown")
	})
}
