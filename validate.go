package apillon

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ipfs/go-cid"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("cid", func(fl validator.FieldLevel) bool {
			return IsValidCID(fl.Field().String())
		})
		_ = validate.RegisterValidation("vpath", func(fl validator.FieldLevel) bool {
			return IsValidVirtualPath(fl.Field().String())
		})
	})
	return validate
}

// ValidateRequest checks the `validate` tags of a request body before it is
// sent. Failures wrap ErrInvalidInput and name the first offending field.
//
// Besides the stock validator tags, "cid" accepts an IPFS content identifier
// and "vpath" a bucket virtual path.
func ValidateRequest(req any) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%s: failed %q validation: %w", fe.Namespace(), fe.Tag(), ErrInvalidInput)
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

// IsValidCID reports whether s parses as a CIDv0 or CIDv1.
func IsValidCID(s string) bool {
	if s == "" {
		return false
	}
	_, err := cid.Decode(s)
	return err == nil
}

// ParseCID parses s as a content identifier.
func ParseCID(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("parse cid %q: %w", s, ErrInvalidInput)
	}
	return c, nil
}
