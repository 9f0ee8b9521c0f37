package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/upb/parking-console/config"
)

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=80"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse is the parking backend's answer to a successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Username    string `json:"username"`
}

// RegisterRequest is the body of POST /api/register
type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=80"`
	Email    string `json:"email" form:"email" validate:"required,email,max=120"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

// backendMessage is the error envelope returned by the parking backend
type backendMessage struct {
	Message string `json:"message"`
}

// BackendClient calls the parking REST backend on behalf of the console
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewBackendClient creates a new backend client
func NewBackendClient(cfg config.BackendConfig) *BackendClient {
	return &BackendClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// BaseURL returns the backend root the client talks to
func (c *BackendClient) BaseURL() string {
	return c.baseURL
}

// Login exchanges a username and password for an access token
func (c *BackendClient) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	status, body, err := c.postJSON(ctx, "/api/login", req)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, NewDomainError(ErrorTypeUnauthorized, ErrInvalidCredentials.Message, nil)
	default:
		return nil, statusError(status, body, ErrInvalidInput)
	}

	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, WrapExternal(ErrBackendResponse.Message, fmt.Errorf("parse login response: %w", err))
	}
	if resp.AccessToken == "" {
		return nil, WrapExternal(ErrBackendResponse.Message, fmt.Errorf("no access_token in response"))
	}

	return &resp, nil
}

// Register creates a new parking user
func (c *BackendClient) Register(ctx context.Context, req RegisterRequest) error {
	status, body, err := c.postJSON(ctx, "/api/register", req)
	if err != nil {
		return err
	}

	if status == http.StatusCreated || status == http.StatusOK {
		return nil
	}
	return statusError(status, body, ErrRegistrationFailed)
}

func (c *BackendClient) postJSON(ctx context.Context, path string, payload interface{}) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, WrapInternal("encode backend request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, WrapInternal("create backend request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, WrapExternal(ErrBackendUnavailable.Message, fmt.Errorf("POST %s: %w", path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, WrapExternal(ErrBackendResponse.Message, fmt.Errorf("read %s response: %w", path, err))
	}

	return resp.StatusCode, body, nil
}

// statusError maps a non-success backend status onto a DomainError carrying
// the backend's message. rejected is the cause recorded for a 400.
func statusError(status int, body []byte, rejected *DomainError) error {
	var msg backendMessage
	_ = json.Unmarshal(body, &msg)
	if msg.Message == "" {
		msg.Message = http.StatusText(status)
	}

	var err *DomainError
	switch status {
	case http.StatusBadRequest:
		err = NewDomainError(ErrorTypeValidation, msg.Message, rejected)
	case http.StatusUnauthorized:
		err = NewDomainError(ErrorTypeUnauthorized, msg.Message, ErrUnauthorized)
	case http.StatusForbidden:
		err = NewDomainError(ErrorTypeForbidden, msg.Message, ErrForbidden)
	case http.StatusConflict:
		err = NewDomainError(ErrorTypeConflict, msg.Message, ErrDuplicateUser)
	default:
		err = NewDomainError(ErrorTypeExternal, ErrBackendResponse.Message, fmt.Errorf("status %d: %s", status, msg.Message))
	}
	return err.WithDetail("backend_status", status)
}
