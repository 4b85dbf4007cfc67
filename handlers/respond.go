package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
	"github.com/alexander-edwards/asana-clone-app-fullstack/middleware"
)

const genericErrorMessage = "Something went wrong!"

// Responder writes JSON bodies and maps service errors to HTTP responses.
type Responder struct {
	// ExposeErrors adds the underlying error text to 500 responses.
	ExposeErrors bool
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Logger.Warnf("Event ID: RESPONSE_ENCODE_FAILED, Description: %v", err)
	}
}

func (rs *Responder) Message(w http.ResponseWriter, status int, message string) {
	rs.JSON(w, status, map[string]string{"message": message})
}

func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.HTTPStatus() >= http.StatusInternalServerError {
		logging.Logger.WithField("request_id", middleware.RequestIDFromContext(r.Context())).
			Errorf("Event ID: REQUEST_FAILED, Description: %s %s failed: %v", r.Method, r.URL.Path, err)
		body := map[string]string{"error": genericErrorMessage}
		if rs.ExposeErrors {
			body["message"] = err.Error()
		}
		rs.JSON(w, http.StatusInternalServerError, body)
		return
	}

	if appErr.Code == apperrors.CodeValidation && len(appErr.Fields) > 0 {
		rs.JSON(w, appErr.HTTPStatus(), map[string][]apperrors.FieldError{"errors": appErr.Fields})
		return
	}
	rs.JSON(w, appErr.HTTPStatus(), map[string]string{"error": appErr.Message})
}

// decodeJSON reads a JSON body into dst. Unknown fields are ignored.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.BadRequest("Request body is required")
		}
		return apperrors.Wrap(apperrors.CodeBadRequest, "Invalid request payload", err)
	}
	return nil
}

// pathUUID parses a mux path variable as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, apperrors.Validation(apperrors.FieldError{Field: name, Message: "Invalid ID format"})
	}
	return id, nil
}

func currentUser(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, apperrors.Unauthorized("No token, authorization denied")
	}
	return id, nil
}

// userAndPath returns the caller and the UUID path variable name.
func userAndPath(r *http.Request, name string) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUser(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := pathUUID(r, name)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, id, nil
}
