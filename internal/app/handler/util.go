package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"io"
	"net/http"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/logger"
)

var validate = validator.New()

// readBody into json struct
func readBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return apperr.ErrInvalidInput.With("body", fmt.Sprintf("read: %s", err))
	}

	err = json.Unmarshal(body, v)
	if err != nil {
		var coded *apperr.Error
		if errors.As(err, &coded) {
			return coded
		}
		return apperr.ErrInvalidInput.With("body", err.Error())
	}

	return nil
}

func jsonString(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// WriteError formatted in json, the status follows the error code.
func WriteError(w http.ResponseWriter, err error) {
	var coded *apperr.Error
	if !errors.As(err, &coded) {
		coded = apperr.New("INTERNAL", "internal error")
	}
	WriteResponse(w, coded, apperr.HTTPStatus(err))
}

// WriteResponse formatted in json
func WriteResponse(w http.ResponseWriter, v interface{}, statusCode int) {
	resBody, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(resBody)
}

// writeError logs err at a level matching its status and writes it.
func writeError(w http.ResponseWriter, l logger.Logger, err error) {
	if apperr.HTTPStatus(err) >= http.StatusInternalServerError {
		l.Error().Err(err).Send()
	} else {
		l.Debug().Err(err).Send()
	}
	WriteError(w, err)
}

// validateData and send errors, returns true if no validation errors
func validateData(w http.ResponseWriter, v interface{}) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	res := apperr.ErrInvalidInput
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			res = res.With(fe.Field(), fe.Tag())
		}
	}
	WriteError(w, res)

	return false
}

// urlUserID reads the {userID} path parameter.
func urlUserID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "userID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.ErrInvalidInput.With("user_id", raw)
	}
	return id, nil
}
