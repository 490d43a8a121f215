// Package responses writes the JSON envelopes every handler returns.
package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/angelmondragon/gocart-backend/pkg/types"
)

// encodeFailure is sent when the real payload cannot be marshalled.
var encodeFailure = []byte(`{"status":"error","error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}` + "\n")

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, "", data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Status: types.StatusSuccess, Message: message, Data: data})
}

func WritePaginated(w http.ResponseWriter, message string, data any, meta pagination.Meta) {
	writeJSON(w, http.StatusOK, types.PaginatedEnvelope{
		Status:     types.StatusSuccess,
		Message:    message,
		Data:       data,
		Pagination: meta,
	})
}

// WriteError renders err as an error envelope. Client faults keep their own
// message while server faults only expose the code's public message. Errors
// without a code are treated as internal.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("error response without cause")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unhandled error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	body := types.APIError{Code: string(typed.Code()), Message: meta.PublicMessage}
	if meta.HTTPStatus < http.StatusInternalServerError && typed.Message() != "" {
		body.Message = typed.Message()
	}
	if meta.DetailsAllowed {
		body.Details = typed.Details()
	}

	if logg != nil {
		logFailure(ctx, logg, err, meta.HTTPStatus)
	}
	writeJSON(w, meta.HTTPStatus, types.ErrorEnvelope{Status: types.StatusError, Error: body})
}

func logFailure(ctx context.Context, logg *logger.Logger, err error, status int) {
	fields := pkgerrors.Dump(err).Fields()
	fields["http_status"] = status
	ctx = logg.WithFields(ctx, fields)
	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(ctx, "request.rejected")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status, body = http.StatusInternalServerError, encodeFailure
	} else {
		body = append(body, '\n')
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
