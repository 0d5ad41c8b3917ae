package api

import (
	"context"
	"fmt"
	"net/http"

	"linguacall/internal/domain/call"
)

// CustomerInfo is the optional caller identity attached to a started call.
type CustomerInfo struct {
	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
}

type startCallRequest struct {
	RoomName     string        `json:"roomName"`
	CustomerInfo *CustomerInfo `json:"customerInfo,omitempty"`
}

type endCallRequest struct {
	CallID string `json:"callId"`
}

// ActiveCalls fetches the server-ordered set of live calls.
func (c *Client) ActiveCalls(ctx context.Context) ([]call.Call, error) {
	var out []call.Call
	if err := c.do(ctx, http.MethodGet, "/calls/active", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartCall asks the server to open a call in the given room.
func (c *Client) StartCall(ctx context.Context, roomName string, info *CustomerInfo) (*call.Call, error) {
	var out call.Call
	if err := c.do(ctx, http.MethodPost, "/calls/start", startCallRequest{RoomName: roomName, CustomerInfo: info}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EndCall terminates the call server-side.
func (c *Client) EndCall(ctx context.Context, callID string) error {
	return c.do(ctx, http.MethodPost, "/calls/end", endCallRequest{CallID: callID}, nil)
}

// CallHistory fetches up to limit finished calls, most recent first.
func (c *Client) CallHistory(ctx context.Context, limit int) ([]call.Call, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []call.Call
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/calls/history?limit=%d", limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Queue fetches the current waiting queue in server order.
func (c *Client) Queue(ctx context.Context) ([]call.QueueItem, error) {
	var out []call.QueueItem
	if err := c.do(ctx, http.MethodGet, "/queue", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QueueMetrics fetches the aggregate snapshot.
func (c *Client) QueueMetrics(ctx context.Context) (*call.Metrics, error) {
	var out call.Metrics
	if err := c.do(ctx, http.MethodGet, "/queue/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
