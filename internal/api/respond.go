package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/soaringjerry/EcoImpact/internal/middleware"
	"github.com/soaringjerry/EcoImpact/internal/services"
)

const maxBodyBytes = 1 << 20

// respond writes payload as JSON and attaches pending notifications in the
// request locale.
func (rt *Router) respond(w http.ResponseWriter, r *http.Request, status int, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["notifications"] = rt.drain(r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (rt *Router) drain(r *http.Request) []services.Notification {
	if rt.inbox == nil {
		return []services.Notification{}
	}
	locale := middleware.LocaleFromContext(r.Context())
	items := rt.inbox.Drain()
	for i := range items {
		items[i] = items[i].Localized(locale)
	}
	return items
}

// writeError maps err onto a status code. redirect, when set, tells the
// client where to navigate.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error, redirect string) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	payload := map[string]any{"error": err.Error(), "code": code}
	if redirect != "" {
		payload["redirect"] = redirect
	}
	rt.respond(w, r, status, payload)
}

func statusFor(err error) (int, string) {
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorInvalid:
			return http.StatusBadRequest, string(se.Code)
		case services.ErrorNotFound:
			return http.StatusNotFound, string(se.Code)
		case services.ErrorConflict:
			return http.StatusConflict, string(se.Code)
		case services.ErrorUnauthorized:
			return http.StatusUnauthorized, string(se.Code)
		case services.ErrorUnavailable:
			return http.StatusServiceUnavailable, string(se.Code)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable, string(services.ErrorUnavailable)
	}
	return http.StatusInternalServerError, "internal"
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return services.NewInvalidError("invalid JSON body: " + err.Error())
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func writeCSV(w http.ResponseWriter, filename string, b []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(b)
}
