package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-trace-keeper/models"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := errorMessage(resp)

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, body)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, body)
	case http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrInternalServerError, body)
	case http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrGatewayTimeout, body)
	default:
		return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
	}
}

// errorMessage prefers the JSON error body of the server and appends its
// trace id so that a failure can be found in the server log.
func errorMessage(resp *resty.Response) string {
	raw := strings.TrimSpace(string(resp.Body()))

	var er models.ErrorResponse
	if err := json.Unmarshal([]byte(raw), &er); err == nil && er.Error != "" {
		if er.TraceID != "" {
			return fmt.Sprintf("%s (trace %s)", er.Error, er.TraceID)
		}
		return er.Error
	}

	if raw == "" {
		return http.StatusText(resp.StatusCode())
	}
	return raw
}
