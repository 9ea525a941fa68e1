package staging

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// HandleAPIGateway serves the same operations as Router behind API Gateway.
func (h *Handler) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := h.corsHeaders(header(req.Headers, "Origin"))

	switch {
	case req.HTTPMethod == http.MethodOptions:
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: headers}, nil
	case req.HTTPMethod == http.MethodGet && strings.HasSuffix(req.Path, "/health"):
		return jsonResponse(http.StatusOK, map[string]string{"status": "ok"}, headers)
	case req.HTTPMethod != http.MethodPost:
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse("method not allowed"), headers)
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return jsonResponse(http.StatusBadRequest, errorResponse("invalid base64 body"), headers)
		}
		body = decoded
	}

	status, resp := h.Search(ctx, body)
	return jsonResponse(status, resp, headers)
}

func (h *Handler) corsHeaders(origin string) map[string]string {
	headers := map[string]string{
		"Content-Type":                 "application/json; charset=utf-8",
		"Access-Control-Allow-Methods": "POST,OPTIONS",
		"Access-Control-Allow-Headers": "Origin,Content-Type,Accept",
	}
	switch {
	case len(h.allowOrigins) == 0:
		headers["Access-Control-Allow-Origin"] = "*"
	case slices.Contains(h.allowOrigins, origin):
		headers["Access-Control-Allow-Origin"] = origin
		headers["Vary"] = "Origin"
	}
	return headers
}

// header looks name up case-insensitively, as API Gateway keeps client casing.
func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func jsonResponse(status int, v any, headers map[string]string) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}, nil
}
