package inputval

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/metacode22/study-somoim/internal/app/system/recruitment"
	"github.com/metacode22/study-somoim/internal/app/system/schedule"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

// Activity period bounds, in whole days from start date to end date.
const (
	MinActivityDays = 50
	MaxActivityDays = 70
)

var timeType = reflect.TypeOf(time.Time{})

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("activityspan", activitySpan)
	_ = v.RegisterValidation("scheduleday", func(fl validator.FieldLevel) bool {
		_, ok := schedule.ParseDay(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		for _, c := range recruitment.Categories {
			if c == s {
				return true
			}
		}
		return false
	})
	_ = v.RegisterValidation("grouptype", func(fl validator.FieldLevel) bool {
		return models.GroupType(fl.Field().String()).AppType() != ""
	})
}

// activitySpan checks the tagged end date against the sibling ActivityStart.
func activitySpan(fl validator.FieldLevel) bool {
	end, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	startField := fl.Parent().FieldByName("ActivityStart")
	if !startField.IsValid() || startField.Type() != timeType {
		return false
	}
	start := startField.Interface().(time.Time)
	if start.IsZero() || end.IsZero() {
		return true
	}
	days := DaysBetween(start, end)
	return days >= MinActivityDays && days <= MaxActivityDays
}

// DaysBetween counts calendar days from start's date to end's date, both read
// in start's location.
func DaysBetween(start, end time.Time) int {
	loc := start.Location()
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := end.In(loc)
	eu := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	return int(eu.Sub(s).Hours() / 24)
}
