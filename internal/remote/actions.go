package remote

import (
	"net/url"

	"github.com/vbonduro/estatedocs/internal/domain"
)

// Action is the discriminator the remote endpoint dispatches on.
type Action string

const (
	ActionCreateUser     Action = "createUser"
	ActionLoginUser      Action = "loginUser"
	ActionLoginAdmin     Action = "loginAdmin"
	ActionGetLocators    Action = "getLocators"
	ActionAddLocator     Action = "addLocator"
	ActionDeleteLocator  Action = "deleteLocator"
	ActionUploadContract Action = "uploadContract"
	ActionDeleteContract Action = "deleteContract"
	ActionExportToSheet  Action = "exportToSheet"
)

// Request is implemented by every action payload. Requests that also
// implement queryRequest are sent as GET; all others are POSTed as the
// envelope's data field.
type Request interface {
	Action() Action
}

type queryRequest interface {
	Request
	query() url.Values
}

// postOptions controls which deployment identifiers accompany a POST body.
type postOptions interface {
	withSpreadsheet() bool
	withDriveFolder() bool
}

type CreateUserRequest struct {
	SSID     string `json:"ssid"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (CreateUserRequest) Action() Action { return ActionCreateUser }

type LoginUserRequest struct {
	Email    string
	Password string
	Estate   domain.Estate
}

func (LoginUserRequest) Action() Action { return ActionLoginUser }

func (r LoginUserRequest) query() url.Values {
	return url.Values{
		"email":    {r.Email},
		"password": {r.Password},
		"estate":   {string(r.Estate)},
	}
}

type LoginAdminRequest struct {
	Email    string
	Password string
}

func (LoginAdminRequest) Action() Action { return ActionLoginAdmin }

func (r LoginAdminRequest) query() url.Values {
	return url.Values{
		"email":    {r.Email},
		"password": {r.Password},
	}
}

type GetLocatorsRequest struct {
	Estate domain.Estate
}

func (GetLocatorsRequest) Action() Action { return ActionGetLocators }

func (r GetLocatorsRequest) query() url.Values {
	return url.Values{"estate": {string(r.Estate)}}
}

type AddLocatorRequest struct {
	domain.LocatorFields
}

func (AddLocatorRequest) Action() Action { return ActionAddLocator }

type DeleteLocatorRequest struct {
	LocatorID string `json:"locatorId"`
}

func (DeleteLocatorRequest) Action() Action { return ActionDeleteLocator }

type UploadContractRequest struct {
	LocatorID    string              `json:"locatorId"`
	ContractType domain.ContractType `json:"contractType"`
	FileName     string              `json:"fileName"`
	MimeType     string              `json:"mimeType"`
	FileData     string              `json:"fileData"`
}

func (UploadContractRequest) Action() Action { return ActionUploadContract }

func (UploadContractRequest) withSpreadsheet() bool { return true }
func (UploadContractRequest) withDriveFolder() bool { return true }

type DeleteContractRequest struct {
	ContractID string `json:"contractId"`
}

func (DeleteContractRequest) Action() Action { return ActionDeleteContract }

type ExportToSheetRequest struct {
	Locators   []domain.Locator `json:"locators"`
	EstateName domain.Estate    `json:"estateName"`
}

func (ExportToSheetRequest) Action() Action { return ActionExportToSheet }

// The export action runs against a fresh spreadsheet, so it carries no
// deployment identifiers.
func (ExportToSheetRequest) withSpreadsheet() bool { return false }
func (ExportToSheetRequest) withDriveFolder() bool { return false }
