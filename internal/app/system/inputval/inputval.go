// internal/app/system/inputval/inputval.go
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on one field. Field is the form field name
// (the `form` tag when present, else the struct field name).
type FieldError struct {
	Field   string
	Message string
}

// Result collects validation failures in struct field order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// ByField maps each form field to its first message.
func (r *Result) ByField() map[string]string {
	out := map[string]string{}
	if r == nil {
		return out
	}
	for _, e := range r.Errors {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Add appends a message for field.
func (r *Result) Add(field, msg string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		registerCustom(validate)
	})
	return validate
}

// Validate runs the `validate` struct tags on v. Messages use the `label`
// tag to name fields.
func Validate(v any) *Result {
	res := &Result{}
	err := engine().Struct(v)
	if err == nil {
		return res
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Add("", err.Error())
		return res
	}
	meta := fieldMeta(v)
	for _, fe := range verrs {
		m := meta[fe.StructField()]
		res.Add(m.form, message(fe, m.label, meta))
	}
	return res
}

type fieldInfo struct {
	label string
	form  string
}

func fieldMeta(v any) map[string]fieldInfo {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]fieldInfo{}
	if t.Kind() != reflect.Struct {
		return out
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		info := fieldInfo{label: f.Tag.Get("label"), form: f.Tag.Get("form")}
		if info.label == "" {
			info.label = f.Name
		}
		if info.form == "" {
			info.form = f.Name
		}
		out[f.Name] = info
	}
	return out
}

func message(fe validator.FieldError, label string, meta map[string]fieldInfo) string {
	other := func() string {
		if m, ok := meta[fe.Param()]; ok {
			return m.label
		}
		return fe.Param()
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s을(를) 입력해 주세요.", label)
	case "max":
		return fmt.Sprintf("%s은(는) 최대 %s자까지 입력할 수 있습니다.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s은(는) 최소 %s자 이상 입력해 주세요.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s은(는) %s 이상이어야 합니다.", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s은(는) %s 이하여야 합니다.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s 값이 올바르지 않습니다.", label)
	case "email":
		return "올바른 이메일 주소를 입력해 주세요."
	case "gtefield":
		return fmt.Sprintf("%s은(는) %s보다 빠를 수 없습니다.", label, other())
	case "gtfield":
		return fmt.Sprintf("%s은(는) %s 이후여야 합니다.", label, other())
	case "activityspan":
		return fmt.Sprintf("활동 기간은 %d일 이상 %d일 이하여야 합니다.", MinActivityDays, MaxActivityDays)
	case "scheduleday":
		return fmt.Sprintf("%s을(를) 목록에서 선택해 주세요.", label)
	case "category":
		return fmt.Sprintf("%s을(를) 목록에서 선택해 주세요.", label)
	case "grouptype":
		return fmt.Sprintf("%s을(를) 목록에서 선택해 주세요.", label)
	}
	return fmt.Sprintf("%s 값이 올바르지 않습니다.", label)
}
