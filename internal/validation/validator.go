package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
)

const uuidLength = 36

// Result is the outcome of validating one interaction input
type Result struct {
	Valid  bool
	Errors []domain.FieldError
}

// Err returns a *domain.ValidationError when the result is not valid
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &domain.ValidationError{Fields: r.Errors}
}

// Validator checks structural and business rules of interaction inputs.
// It holds no state besides its rule set and clock and is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New creates a validator that compares timestamps against now
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}

	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}

	v.validate.RegisterTagNameFunc(jsonFieldName)
	// Registration only fails on empty tags or nil funcs.
	_ = v.validate.RegisterValidation("canonical_uuid", isCanonicalUUID)
	_ = v.validate.RegisterValidation("rfc3339", isRFC3339)
	_ = v.validate.RegisterValidation("not_future", v.isNotFuture)
	_ = v.validate.RegisterValidation("notblank", isNotBlank)
	v.validate.RegisterStructValidation(contentRequired, domain.InteractionInput{})

	return v
}

// Validate evaluates every rule against in and reports all violations together.
// in is never mutated.
func (v *Validator) Validate(in domain.InteractionInput) Result {
	err := v.validate.Struct(in)
	if err == nil {
		return Result{Valid: true}
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []domain.FieldError{{Field: "interaction", Message: err.Error()}}}
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}

	return Result{Errors: fields}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "canonical_uuid":
		return field + " must be a valid UUID"
	case "rfc3339":
		return field + " must be an RFC 3339 datetime"
	case "not_future":
		return field + " cannot be in the future"
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "notblank":
		return field + " must not be blank"
	case "required_for_channel":
		return fmt.Sprintf("%s is required for channel %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed rule %s", field, fe.Tag())
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

func isCanonicalUUID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != uuidLength {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func isRFC3339(fl validator.FieldLevel) bool {
	_, err := domain.ParseTimestamp(fl.Field().String())
	return err == nil
}

func (v *Validator) isNotFuture(fl validator.FieldLevel) bool {
	ts, err := domain.ParseTimestamp(fl.Field().String())
	if err != nil {
		// reported by rfc3339
		return true
	}
	return !ts.After(v.now())
}

func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func contentRequired(sl validator.StructLevel) {
	in := sl.Current().Interface().(domain.InteractionInput)
	if !domain.Channel(in.Channel).TextBased() {
		return
	}
	if strings.TrimSpace(in.Content) == "" {
		sl.ReportError(in.Content, "content", "Content", "required_for_channel", in.Channel)
	}
}
