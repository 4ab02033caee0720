package checkout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxErrorBody caps how much of a rejection body is read.
const maxErrorBody = 64 << 10

// HTTPDetails posts the details form to the merchant backend.
type HTTPDetails struct {
	URL    string
	Client *http.Client
	// Header is added to every request (cookies, CSRF tokens).
	Header http.Header
}

func (h *HTTPDetails) UpdateDetails(ctx context.Context, form url.Values) (ServerResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return ServerResponse{}, err
	}
	for k, vs := range h.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return ServerResponse{}, fmt.Errorf("post order details: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return ServerResponse{}, fmt.Errorf("read order details response: %w", err)
	}
	return ServerResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
