package helpers

import (
	"encoding/json"
	"net/http"

	"campuseventhub/internal/domain"
)

// Validator is implemented by request DTOs that support validation.
// Validate returns field errors; nil or empty means valid.
type Validator interface {
	Validate() []domain.FieldError
}

// DecodeAndValidate decodes the request body into dest (with
// DisallowUnknownFields) and, if dest implements Validator, runs Validate().
// On decode failure it writes a 400 JSON error; on validation failure it
// writes the per-field errors. Callers should return immediately when it
// returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteValidationError(w, errs)
			return false
		}
	}
	return true
}
