package user

import (
	"fmt"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/darasa/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// RegisterValidators registers this package's custom validations; must be
// called once on the app's validator instance.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	validate.RegisterStructValidation(resetPasswordStructValidation, ResetUserPassword{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

func roleValidation(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	for _, r := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

func newUserStructValidation(sl validator.StructLevel) {
	nu := sl.Current().Interface().(NewUser)
	validatePassword(sl, nu.Password, "Password", nu.Name, nu.Email)
}

func resetPasswordStructValidation(sl validator.StructLevel) {
	rp := sl.Current().Interface().(ResetUserPassword)
	validatePassword(sl, rp.Password, "Password")
}

func validatePassword(sl validator.StructLevel, pwd, fieldName string, userAttrs ...string) {
	if pwd == "" {
		return // `required` catches this
	}
	if len(pwd) < pwdMinLen {
		sl.ReportError(pwd, "password", fieldName, pwdMinLenTag, "")
	}
	if strings.IndexFunc(pwd, unicode.IsSpace) >= 0 {
		sl.ReportError(pwd, "password", fieldName, pwdNoSpaceTag, "")
	}
	if isAllNumeric(pwd) {
		sl.ReportError(pwd, "password", fieldName, pwdNotAllNumTag, "")
	}
	for _, attr := range userAttrs {
		if attr == "" {
			continue
		}
		matcher := difflib.NewMatcher(
			strings.Split(strings.ToLower(pwd), ""),
			strings.Split(strings.ToLower(attr), ""),
		)
		if matcher.Ratio() > pwdMaxSim {
			sl.ReportError(pwd, "password", fieldName, pwdAttrSimTag, "")
			break
		}
	}
}

func isAllNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
