package web

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vbonduro/estatedocs/internal/domain"
)

var formValidate = validator.New()

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Estate   string `validate:"required,oneof=LIMA BIZHUB TARI MEZ2 WEST_CEBU"`
}

type registerForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type adminLoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type locatorForm struct {
	Name         string  `validate:"required,max=200"`
	Address      string  `validate:"max=500"`
	LotArea      float64 `validate:"gte=0"`
	IndustryType string  `validate:"max=200"`
}

type contractForm struct {
	ContractType string `validate:"required,oneof=LOI RA CTS DOAS LTLA Other"`
}

func parseLoginForm(r *http.Request) loginForm {
	return loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Estate:   r.PostFormValue("estate"),
	}
}

func parseRegisterForm(r *http.Request) registerForm {
	return registerForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
}

func parseAdminLoginForm(r *http.Request) adminLoginForm {
	return adminLoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
}

var errLotArea = errors.New("lot area must be a number")

func parseLocatorForm(r *http.Request) (locatorForm, error) {
	f := locatorForm{
		Name:         strings.TrimSpace(r.PostFormValue("name")),
		Address:      strings.TrimSpace(r.PostFormValue("address")),
		IndustryType: strings.TrimSpace(r.PostFormValue("industryType")),
	}
	area, err := parseLotArea(r.PostFormValue("lotArea"))
	if err != nil {
		return f, err
	}
	f.LotArea = area
	return f, nil
}

// parseLotArea accepts plain or comma-grouped numbers; blank means zero.
func parseLotArea(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errLotArea
	}
	return v, nil
}

func (f locatorForm) fields(estate domain.Estate) domain.LocatorFields {
	return domain.LocatorFields{
		Estate:       estate,
		Name:         f.Name,
		Address:      f.Address,
		LotArea:      f.LotArea,
		IndustryType: f.IndustryType,
	}
}

// validationMessage turns a validator error into a sentence fit for a form.
func validationMessage(err error) string {
	if errors.Is(err, errLotArea) {
		return "Lot area must be a number."
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check the form and try again."
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Email":
		if fe.Tag() == "required" {
			return "Email is required."
		}
		return "Enter a valid email address."
	case "Password":
		return "Password is required."
	case "Estate":
		return "Choose a valid estate."
	case "Name":
		if fe.Tag() == "max" {
			return "Locator name is too long."
		}
		return "Locator name is required."
	case "LotArea":
		return "Lot area cannot be negative."
	case "ContractType":
		return "Choose a contract type."
	default:
		return fe.Field() + " is invalid."
	}
}
