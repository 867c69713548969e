package httphandlers

import (
	"accordee/internal/types"
	"accordee/logger"
	"encoding/json"
	"errors"
	"go.uber.org/zap"
	"net/http"
)

var lineSeparator = []byte("\n")

type (
	response struct {
		Error   bool            `json:"error"`
		Kind    types.ErrorKind `json:"kind,omitempty"`
		Message string          `json:"message"`
		Data    interface{}     `json:"data"`
	}
)

var statusByKind = map[types.ErrorKind]int{
	types.KindNotFound:           http.StatusNotFound,
	types.KindConfiguration:      http.StatusBadRequest,
	types.KindInvalidInput:       http.StatusBadRequest,
	types.KindVerificationFailed: http.StatusBadRequest,
	types.KindConflict:           http.StatusConflict,
	types.KindResolution:         http.StatusServiceUnavailable,
	types.KindProvision:          http.StatusBadGateway,
	types.KindUnauthorized:       http.StatusUnauthorized,
	types.KindForbidden:          http.StatusForbidden,
	types.KindInternal:           http.StatusInternalServerError,
}

// StatusOf returns the HTTP status an error of the given kind is reported with.
func StatusOf(kind types.ErrorKind) int {
	if status, found := statusByKind[kind]; found {
		return status
	}
	return http.StatusInternalServerError
}

func badRequest(w http.ResponseWriter, err error) {
	writeError(w, types.ErrInvalidInput(err.Error(), err), nil)
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, types.ErrUnauthorized(message), nil)
}

func ok(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusOK, response{Message: message, Data: data})
}

func created(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusCreated, response{Message: message, Data: data})
}

// writeError reports err with the status of its kind. Internal errors are logged and their details
// never reach the client.
func writeError(w http.ResponseWriter, err error, data interface{}) {
	kind := types.KindOf(err)
	if kind == types.KindInternal {
		var typed *types.Error
		if !errors.As(err, &typed) || typed.Err != nil {
			logger.Error("request failed", zap.Error(err))
		}
	}

	write(w, StatusOf(kind), response{
		Error:   true,
		Kind:    kind,
		Message: types.MessageOf(err),
		Data:    data,
	})
}

func write(w http.ResponseWriter, status int, r response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	b, _ := json.Marshal(r)
	_, _ = w.Write(b)
}

func writeSSELine(w http.ResponseWriter, data interface{}) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, _ = w.Write(bytes)
	_, _ = w.Write(lineSeparator)
	flusher, ok := w.(http.Flusher)
	if ok {
		flusher.Flush()
	}
	return nil
}
