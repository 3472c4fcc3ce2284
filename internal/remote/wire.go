package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vbonduro/estatedocs/internal/domain"
)

const statusSuccess = "success"

// postBody is the JSON document POSTed to the endpoint.
type postBody struct {
	Action        Action `json:"action"`
	SpreadsheetID string `json:"spreadsheetId,omitempty"`
	DriveFolderID string `json:"driveFolderId,omitempty"`
	Data          any    `json:"data"`
}

// envelope wraps every response from the endpoint.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

var (
	// ErrTransport marks failures to complete the HTTP round trip or to read
	// a well-formed envelope from it.
	ErrTransport = errors.New("remote transport failure")

	// ErrInvalidResponse marks a success envelope whose data does not match
	// the shape the action promises.
	ErrInvalidResponse = errors.New("invalid remote response")
)

// RemoteError is returned when the endpoint answers with a non-success
// status. Message is the endpoint's own human-readable explanation.
type RemoteError struct {
	Action  Action
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

const (
	genericTransportMessage = "Could not reach the contracts service. Please try again."
	genericInvalidMessage   = "The contracts service returned an unexpected response."
	genericRemoteMessage    = "The contracts service reported an error."
	attachmentMessage       = "The contract file could not be read. Choose a non-empty file and try again."
)

// UserMessage returns the text to show a user for err: the endpoint's message
// for remote errors, a generic sentence otherwise.
func UserMessage(err error) string {
	var re *RemoteError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &re):
		return re.Message
	case errors.Is(err, ErrAttachment):
		return attachmentMessage
	case errors.Is(err, ErrInvalidResponse):
		return genericInvalidMessage
	default:
		return genericTransportMessage
	}
}

type wireUser struct {
	SessionID string `json:"sessionId"`
	SSID      string `json:"ssid"`
	Email     string `json:"email"`
}

func (w wireUser) toDomain() (*domain.User, error) {
	id := w.SessionID
	if id == "" {
		id = w.SSID
	}
	if id == "" {
		return nil, fmt.Errorf("%w: login result has no session id", ErrInvalidResponse)
	}
	if w.Email == "" {
		return nil, fmt.Errorf("%w: login result has no email", ErrInvalidResponse)
	}
	return &domain.User{SessionID: id, Email: w.Email}, nil
}

type wireContract struct {
	ID       flexString `json:"id"`
	Type     string     `json:"type"`
	FileName string     `json:"fileName"`
	DriveURL string     `json:"driveUrl"`
}

func (w wireContract) toDomain() (domain.Contract, error) {
	if w.ID == "" {
		return domain.Contract{}, fmt.Errorf("%w: contract has no id", ErrInvalidResponse)
	}
	ct := domain.ContractType(w.Type)
	if !ct.Valid() {
		ct = domain.ContractOther
	}
	return domain.Contract{
		ID:          string(w.ID),
		Type:        ct,
		FileName:    w.FileName,
		DocumentURL: w.DriveURL,
	}, nil
}

type wireLocator struct {
	ID           flexString     `json:"id"`
	Estate       string         `json:"estate"`
	LocatorName  string         `json:"locatorName"`
	Address      string         `json:"address"`
	LotArea      lotArea        `json:"lotArea"`
	IndustryType string         `json:"industryType"`
	Contracts    []wireContract `json:"contracts"`
}

// toDomain converts a wire locator, filling a missing estate from the
// estate the collection was requested for.
func (w wireLocator) toDomain(estate domain.Estate) (domain.Locator, error) {
	id := string(w.ID)
	if id == "" {
		return domain.Locator{}, fmt.Errorf("%w: locator %q has no id", ErrInvalidResponse, w.LocatorName)
	}
	if w.LotArea < 0 {
		return domain.Locator{}, fmt.Errorf("%w: locator %s has negative lot area", ErrInvalidResponse, id)
	}
	e := domain.Estate(w.Estate)
	if w.Estate == "" {
		e = estate
	}
	if estate != "" && e != estate {
		return domain.Locator{}, fmt.Errorf("%w: locator %s belongs to estate %s, not %s", ErrInvalidResponse, id, e, estate)
	}

	contracts := make([]domain.Contract, 0, len(w.Contracts))
	for _, wc := range w.Contracts {
		c, err := wc.toDomain()
		if err != nil {
			return domain.Locator{}, fmt.Errorf("locator %s: %w", id, err)
		}
		contracts = append(contracts, c)
	}

	return domain.Locator{
		ID:           id,
		Estate:       e,
		Name:         w.LocatorName,
		Address:      w.Address,
		LotArea:      float64(w.LotArea),
		IndustryType: w.IndustryType,
		Contracts:    contracts,
	}, nil
}

// lotArea accepts a JSON number, a numeric string (optionally with thousands
// separators) or an empty string, which spreadsheet cells produce for blanks.
type lotArea float64

func (a *lotArea) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*a = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("lot area %q is not a number", s)
	}
	*a = lotArea(f)
	return nil
}

// flexString accepts a JSON string or number. Spreadsheet-backed ids come
// back as numbers when the id column holds numeric values.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = flexString(n.String())
	}
	return nil
}

type wireExport struct {
	URL string `json:"url"`
}
