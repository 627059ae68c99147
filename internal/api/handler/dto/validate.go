package dto

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"loan-desk/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// Validate runs the struct tags and reports the first failure as a
// ValidationError naming the wire field.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	fe := fieldErrs[0]
	return apperrors.NewValidationError(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func parseInt64Field(values url.Values, field string) (int64, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(field, fmt.Sprintf("%s must be a whole number", field))
	}
	return n, nil
}

func parseIntField(values url.Values, field string) (int, error) {
	n, err := parseInt64Field(values, field)
	if err != nil {
		return 0, err
	}
	if int64(int(n)) != n {
		return 0, apperrors.NewValidationError(field, fmt.Sprintf("%s is out of range", field))
	}
	return int(n), nil
}

// loanTerms reads the three loan term fields shared by the quote query and
// the submission form.
func loanTerms(values url.Values) (loanType string, amount int64, tenure int, err error) {
	loanType = strings.TrimSpace(values.Get("loanType"))
	if amount, err = parseInt64Field(values, "loanAmount"); err != nil {
		return "", 0, 0, err
	}
	if tenure, err = parseIntField(values, "tenure"); err != nil {
		return "", 0, 0, err
	}
	return loanType, amount, tenure, nil
}

func BindQuoteEMIRequest(values url.Values) (QuoteEMIRequest, error) {
	loanType, amount, tenure, err := loanTerms(values)
	if err != nil {
		return QuoteEMIRequest{}, err
	}
	req := QuoteEMIRequest{LoanType: loanType, LoanAmount: amount, Tenure: tenure}
	return req, Validate(req)
}

func BindSubmitApplicationForm(values url.Values) (SubmitApplicationForm, error) {
	loanType, amount, tenure, err := loanTerms(values)
	if err != nil {
		return SubmitApplicationForm{}, err
	}
	form := SubmitApplicationForm{LoanType: loanType, LoanAmount: amount, Tenure: tenure}
	return form, Validate(form)
}
