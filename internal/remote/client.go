package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/estatedocs/internal/domain"
)

// Client talks to the spreadsheet-backed action-dispatch endpoint. Every
// call is a single attempt; there are no retries and no client timeout.
type Client struct {
	endpoint      string
	spreadsheetID string
	driveFolderID string
	client        *http.Client
	logger        *slog.Logger
	newSSID       func() string
}

func NewClient(endpoint, spreadsheetID, driveFolderID string, logger *slog.Logger) *Client {
	return &Client{
		endpoint:      endpoint,
		spreadsheetID: spreadsheetID,
		driveFolderID: driveFolderID,
		client:        &http.Client{},
		logger:        logger,
		newSSID:       uuid.NewString,
	}
}

// CreateUser registers a new account. The remote store rejects duplicate
// emails with a RemoteError.
func (c *Client) CreateUser(ctx context.Context, email, password string) error {
	return c.do(ctx, CreateUserRequest{SSID: c.newSSID(), Email: email, Password: password}, nil)
}

// LoginUser authenticates a user for one estate.
func (c *Client) LoginUser(ctx context.Context, email, password string, estate domain.Estate) (*domain.User, error) {
	var w wireUser
	if err := c.do(ctx, LoginUserRequest{Email: email, Password: password, Estate: estate}, &w); err != nil {
		return nil, err
	}
	return w.toDomain()
}

func (c *Client) LoginAdmin(ctx context.Context, email, password string) (*domain.Admin, error) {
	var w struct {
		Email string `json:"email"`
	}
	if err := c.do(ctx, LoginAdminRequest{Email: email, Password: password}, &w); err != nil {
		return nil, err
	}
	if w.Email == "" {
		return nil, fmt.Errorf("%w: admin login result has no email", ErrInvalidResponse)
	}
	return &domain.Admin{Email: w.Email}, nil
}

// ListLocators returns the estate's locators in the order the remote store
// holds them. An estate with no locators yields an empty, non-nil slice.
func (c *Client) ListLocators(ctx context.Context, estate domain.Estate) ([]domain.Locator, error) {
	var ws []wireLocator
	if err := c.do(ctx, GetLocatorsRequest{Estate: estate}, &ws); err != nil {
		return nil, err
	}
	locators := make([]domain.Locator, 0, len(ws))
	for _, w := range ws {
		l, err := w.toDomain(estate)
		if err != nil {
			return nil, err
		}
		locators = append(locators, l)
	}
	return locators, nil
}

func (c *Client) AddLocator(ctx context.Context, fields domain.LocatorFields) (*domain.Locator, error) {
	var w wireLocator
	if err := c.do(ctx, AddLocatorRequest{LocatorFields: fields}, &w); err != nil {
		return nil, err
	}
	l, err := w.toDomain(fields.Estate)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) DeleteLocator(ctx context.Context, locatorID string) error {
	return c.do(ctx, DeleteLocatorRequest{LocatorID: locatorID}, nil)
}

// UploadContract reads the attachment to completion, encodes it and submits
// it. Nothing is sent if the read fails.
func (c *Client) UploadContract(ctx context.Context, locatorID string, contractType domain.ContractType, file Attachment) (*domain.Contract, error) {
	req, err := encodeAttachment(locatorID, contractType, file)
	if err != nil {
		return nil, err
	}
	var w wireContract
	if err := c.do(ctx, req, &w); err != nil {
		return nil, err
	}
	contract, err := w.toDomain()
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (c *Client) DeleteContract(ctx context.Context, contractID string) error {
	return c.do(ctx, DeleteContractRequest{ContractID: contractID}, nil)
}

// ExportToSheet materialises locators into a new spreadsheet and returns
// its URL.
func (c *Client) ExportToSheet(ctx context.Context, locators []domain.Locator, estate domain.Estate) (string, error) {
	if locators == nil {
		locators = []domain.Locator{}
	}
	var w wireExport
	if err := c.do(ctx, ExportToSheetRequest{Locators: locators, EstateName: estate}, &w); err != nil {
		return "", err
	}
	if w.URL == "" {
		return "", fmt.Errorf("%w: export result has no url", ErrInvalidResponse)
	}
	return w.URL, nil
}

// do performs one round trip for req and decodes the envelope's data into
// out when out is non-nil.
func (c *Client) do(ctx context.Context, req Request, out any) error {
	start := time.Now()
	action := req.Action()

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: build %s request: %v", ErrTransport, action, err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("remote call failed", "action", action, "error", err)
		return fmt.Errorf("%w: call %s: %v", ErrTransport, action, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close remote response body", "action", action, "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("remote call returned http error", "action", action, "status", resp.StatusCode)
		return fmt.Errorf("%w: %s returned status %d: %s", ErrTransport, action, resp.StatusCode, errBody)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrTransport, action, err)
	}
	c.logger.Debug("remote call complete", "action", action, "status", env.Status, "duration_ms", time.Since(start).Milliseconds())

	if env.Status != statusSuccess {
		msg := env.Message
		if msg == "" {
			msg = genericRemoteMessage
		}
		return &RemoteError{Action: action, Message: msg}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		// A collection action with no data is an empty collection; anything
		// else is missing its result.
		if _, ok := req.(GetLocatorsRequest); ok {
			return nil
		}
		return fmt.Errorf("%w: %s response has no data", ErrInvalidResponse, action)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %v", ErrInvalidResponse, action, err)
	}
	return nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	if q, ok := req.(queryRequest); ok {
		u, err := url.Parse(c.endpoint)
		if err != nil {
			return nil, err
		}
		params := u.Query()
		params.Set("action", string(q.Action()))
		params.Set("spreadsheetId", c.spreadsheetID)
		for k, vs := range q.query() {
			for _, v := range vs {
				params.Add(k, v)
			}
		}
		u.RawQuery = params.Encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}

	body := postBody{Action: req.Action(), SpreadsheetID: c.spreadsheetID, Data: req}
	if opts, ok := req.(postOptions); ok {
		if !opts.withSpreadsheet() {
			body.SpreadsheetID = ""
		}
		if opts.withDriveFolder() {
			body.DriveFolderID = c.driveFolderID
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	// The endpoint only accepts simple CORS requests, so JSON travels as text.
	httpReq.Header.Set("Content-Type", "text/plain;charset=utf-8")
	return httpReq, nil
}
