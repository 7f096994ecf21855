package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Chat operations against the assistant endpoint.

// SendMessage sends one user utterance and returns the assistant's reply,
// including any inferred task action.
func (c *Client) SendMessage(ctx context.Context, message string) (r *ChatReply, err error) {
	defer func() { observe("send_message", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateMessage(message); err != nil {
		return nil, err
	}
	body, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return nil, err
	}
	url := c.baseURL + "/chat/message"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("send message", resp)
	}

	var reply ChatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("send message: decode response: %w", err)
	}
	return &reply, nil
}

// ChatHistory retrieves up to limit persisted exchanges, oldest first.
func (c *Client) ChatHistory(ctx context.Context, limit int) (msgs []ChatHistoryMessage, err error) {
	defer func() { observe("chat_history", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be a positive number")
	}
	url := fmt.Sprintf("%s/chat/history?limit=%d", c.baseURL, limit)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("chat history", resp)
	}

	var hr chatHistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return nil, fmt.Errorf("chat history: decode response: %w", err)
	}
	return hr.Messages, nil
}

// ClearChatHistory deletes the server-held transcript.
func (c *Client) ClearChatHistory(ctx context.Context) (err error) {
	defer func() { observe("clear_chat_history", err) }()
	if err := ctx.Err(); err != nil {
		return err
	}
	url := c.baseURL + "/chat/history"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return responseError("clear chat history", resp)
	}
	return nil
}
