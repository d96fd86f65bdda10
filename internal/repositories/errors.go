package repositories

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/BradenHooton/vigil/internal/models"
	pkghttp "github.com/BradenHooton/vigil/pkg/http"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// decodeError converts a non-2xx response into a *models.ServerError. The
// detail is taken from the JSON body when present, otherwise from a short
// plain-text body.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	serverErr := &models.ServerError{StatusCode: resp.StatusCode}

	var raw struct {
		Error   string          `json:"error"`
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &raw); err == nil {
		serverErr.Detail = pkghttp.ErrorResponse{
			Error:   raw.Error,
			Message: raw.Message,
			Detail:  detailText(raw.Detail),
		}.Text()
	} else if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") {
		serverErr.Detail = text
	}

	return serverErr
}

// detailText accepts either a plain string detail or a list of field errors
// carrying a "msg" key, in which case the first message is used.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}
