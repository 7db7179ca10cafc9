package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RESTClient speaks the server's auxiliary HTTP surface: room creation and
// the health probe used for diagnostics.
type RESTClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewRESTClient creates a RESTClient.
//
// Precondition: baseURL must be non-empty; timeout must be > 0; logger must
// be non-nil.
func NewRESTClient(baseURL string, timeout time.Duration, logger *zap.Logger) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type createRoomResponse struct {
	Success bool   `json:"success"`
	RoomID  string `json:"roomId"`
	Message string `json:"message,omitempty"`
}

// CreateRoom asks the server to create a new room.
//
// Postcondition: Returns the new room id, or an error when the server
// declines or the response is malformed.
func (c *RESTClient) CreateRoom(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/rooms", nil)
	if err != nil {
		return "", fmt.Errorf("building create-room request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("creating room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("creating room: unexpected status %d", resp.StatusCode)
	}

	var body createRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding create-room response: %w", err)
	}
	if !body.Success || body.RoomID == "" {
		return "", fmt.Errorf("creating room: server declined: %s", body.Message)
	}

	c.logger.Info("room created", zap.String("room_id", body.RoomID))
	return body.RoomID, nil
}

// Health probes the server liveness endpoint.
//
// Postcondition: Returns nil iff the server answered with a 2xx status.
func (c *RESTClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health probe: unexpected status %d", resp.StatusCode)
	}
	return nil
}
