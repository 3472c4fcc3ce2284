package domain

import "fmt"

// Estate identifies one of the fixed set of sites the portal manages.
type Estate string

const (
	EstateLima     Estate = "LIMA"
	EstateBizHub   Estate = "BIZHUB"
	EstateTari     Estate = "TARI"
	EstateMez2     Estate = "MEZ2"
	EstateWestCebu Estate = "WEST_CEBU"
)

// Estates lists every estate in display order.
var Estates = []Estate{EstateLima, EstateBizHub, EstateTari, EstateMez2, EstateWestCebu}

var estateNames = map[Estate]string{
	EstateLima:     "Lima Estate",
	EstateBizHub:   "BizHub",
	EstateTari:     "TARI Estate",
	EstateMez2:     "MEZ2",
	EstateWestCebu: "WEST CEBU Estate",
}

// DisplayName returns the human-readable estate name, or the raw identifier
// for an unknown value.
func (e Estate) DisplayName() string {
	if name, ok := estateNames[e]; ok {
		return name
	}
	return string(e)
}

func (e Estate) Valid() bool {
	_, ok := estateNames[e]
	return ok
}

// ParseEstate converts a wire or form value into an Estate.
func ParseEstate(s string) (Estate, error) {
	e := Estate(s)
	if !e.Valid() {
		return "", fmt.Errorf("unknown estate %q", s)
	}
	return e, nil
}

type ContractType string

const (
	ContractLOI   ContractType = "LOI"
	ContractRA    ContractType = "RA"
	ContractCTS   ContractType = "CTS"
	ContractDOAS  ContractType = "DOAS"
	ContractLTLA  ContractType = "LTLA"
	ContractOther ContractType = "Other"
)

// ContractTypes lists every contract type in grouping order.
var ContractTypes = []ContractType{ContractLOI, ContractRA, ContractCTS, ContractDOAS, ContractLTLA, ContractOther}

func (t ContractType) Valid() bool {
	for _, ct := range ContractTypes {
		if ct == t {
			return true
		}
	}
	return false
}

func ParseContractType(s string) (ContractType, error) {
	t := ContractType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown contract type %q", s)
	}
	return t, nil
}

// User is an estate-scoped identity returned by a successful user login.
type User struct {
	SessionID string
	Email     string
}

type Admin struct {
	Email string
}

type Contract struct {
	ID          string       `json:"id"`
	Type        ContractType `json:"type"`
	FileName    string       `json:"fileName"`
	DocumentURL string       `json:"driveUrl"`
}

type Locator struct {
	ID           string     `json:"id"`
	Estate       Estate     `json:"estate"`
	Name         string     `json:"locatorName"`
	Address      string     `json:"address"`
	LotArea      float64    `json:"lotArea"`
	IndustryType string     `json:"industryType"`
	Contracts    []Contract `json:"contracts"`
}

// LocatorFields is the client-supplied part of a new locator; the remote
// store assigns the id and starts with no contracts.
type LocatorFields struct {
	Estate       Estate  `json:"estate"`
	Name         string  `json:"locatorName"`
	Address      string  `json:"address"`
	LotArea      float64 `json:"lotArea"`
	IndustryType string  `json:"industryType"`
}

// View names the top-level screens.
type View string

const (
	ViewHome           View = "Home"
	ViewUserDashboard  View = "UserDashboard"
	ViewAdminDashboard View = "AdminDashboard"
)
