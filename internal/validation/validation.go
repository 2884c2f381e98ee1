// Package validation checks client input before anything is persisted.
// Each check returns a Result instead of relying on the document store to
// reject bad documents.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/apperrors"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
)

// Messages returned to clients
const (
	MsgAllFieldsRequired  = "All fields are required"
	MsgInvalidRange       = "Maximum order value must be greater than minimum order value"
	MsgMissingFields      = "Missing required fields"
	MsgImageRequired      = "At least one product image is required"
	MsgEmptyUpdate        = "No updatable fields supplied"
	MsgShopImageRequired  = "Image file is required"
	MsgInvalidRequestBody = "Invalid request body"
)

// Result is the outcome of a validation pass
type Result struct {
	Valid   bool
	Reasons []string
}

func ok() Result { return Result{Valid: true} }

func fail(reasons ...string) Result { return Result{Valid: false, Reasons: reasons} }

// Err converts a failed result into a validation error, nil otherwise
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return apperrors.Validation(r.Reasons...)
}

var (
	once     sync.Once
	validate *validator.Validate
)

func structValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// PackageCreate validates a new delivery package configuration.
//
// The numeric top-level fields are checked with falsy semantics: a value of
// 0 is reported as missing, as the service has always done. An omitted or
// null orderValueRanges is missing; an empty list is accepted.
func PackageCreate(in models.PackageSettingsInput) Result {
	if isFalsy(in.DeliveryTime) || isFalsy(in.DeliveryRadius) ||
		isFalsy(in.FreeDeliveryRadius) || in.OrderValueRanges == nil {
		return fail(MsgAllFieldsRequired)
	}

	if res := checkRanges(in.OrderValueRanges); !res.Valid {
		return res
	}

	return checkStruct(in, nil)
}

// PackageUpdate validates the fields present in an update request.
func PackageUpdate(patch models.PackageSettingsPatch) Result {
	if patch.IsEmpty() {
		return fail(MsgEmptyUpdate)
	}

	if res := checkStruct(patch, nil); !res.Valid {
		return res
	}

	return checkRanges(patch.OrderValueRanges)
}

// ProductCreate validates a product create request, including the image
// URLs of the files saved for it.
func ProductCreate(in models.ProductInput) Result {
	if strings.TrimSpace(in.Name) == "" || in.Description == "" || in.FoodPreference == "" {
		return fail(MsgMissingFields)
	}
	if len(in.Images) == 0 {
		return fail(MsgImageRequired)
	}

	return checkStruct(in, productMessages)
}

// checkRanges enforces min < max on every range whose bounds are present.
// Ranges are not compared with each other.
func checkRanges(ranges []models.OrderValueRangeInput) Result {
	for _, r := range ranges {
		if r.MinOrderValue == nil || r.MaxOrderValue == nil {
			continue
		}
		if *r.MinOrderValue >= *r.MaxOrderValue {
			return fail(MsgInvalidRange)
		}
	}
	return ok()
}

func isFalsy(f *float64) bool {
	return f == nil || *f == 0
}

var productMessages = map[string]string{
	"foodPreference.oneof":         "Food preference must be one of: " + strings.Join(models.FoodPreferences, ", "),
	"servingSize.required":         "Serving size is required",
	"servingPerContainer.required": "Servings per container is required",
	"servingPerContainer.number":   "Servings per container must be a whole number",
	"preparationTime.required":     "Preparation time is required",
	"preparationTime.number":       "Preparation time must be a whole number",
	"inStock.boolean":              "inStock must be true or false",
	"images.max":                   "A product can have at most 5 images",
	"images.min":                   MsgImageRequired,
	"description.required":         MsgMissingFields,
	"name.required":                MsgMissingFields,
	"foodPreference.required":      MsgMissingFields,
}

func checkStruct(s interface{}, messages map[string]string) Result {
	err := structValidator().Struct(s)
	if err == nil {
		return ok()
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fail(err.Error())
	}

	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if msg, found := messages[fe.Field()+"."+fe.Tag()]; found {
			reasons = append(reasons, msg)
			continue
		}
		reasons = append(reasons, describe(fe))
	}
	return fail(reasons...)
}

// describe renders a field error as "orderValueRanges[0].minOrderValue must be >= 0"
func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
	}
}
