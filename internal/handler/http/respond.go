package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/errors"
	"github.com/windfall/vocal_service/pkg/response"
)

// minTextLength is the shortest text accepted for analysis and comparison.
const minTextLength = 10

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Validation("invalid request body")
	}
	return nil
}

func validateText(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextLength {
		return errors.Validation("text must be at least 10 characters")
	}
	return nil
}

// queryInt reads a positive integer query parameter, or returns def.
func queryInt(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func handleError(w http.ResponseWriter, log zerolog.Logger, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		log.Error().Err(err).Msg("Internal server error")
		response.InternalError(w, "internal server error")
		return
	}

	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("code", string(appErr.Code)).Msg("Request failed")
	}
	response.Error(w, status, &response.ErrorBody{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
