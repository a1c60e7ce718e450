package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soukly/marketplace/internal/fault"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the error taxonomy onto HTTP. Stock shortages echo the
// requested/available pair; coupon failures echo the specific reason.
func writeErr(w http.ResponseWriter, err error) {
	body := map[string]any{"error": err.Error()}
	var code int
	switch fault.KindOf(err) {
	case fault.KindValidation:
		code = http.StatusBadRequest
	case fault.KindNotFound:
		code = http.StatusNotFound
	case fault.KindUnverified:
		code = http.StatusForbidden
	case fault.KindUnavailable, fault.KindIllegalTransition:
		code = http.StatusConflict
	case fault.KindInsufficientStock:
		code = http.StatusConflict
		var fe *fault.Error
		if ok := asFault(err, &fe); ok {
			body["requested"] = fe.Requested
			body["available"] = fe.Available
		}
	case fault.KindInvalidCoupon:
		code = http.StatusUnprocessableEntity
		var fe *fault.Error
		if ok := asFault(err, &fe); ok {
			body["reason"] = fe.Reason
		}
	default:
		code = http.StatusInternalServerError
		body = map[string]any{"error": "internal error"}
	}
	writeJSON(w, code, body)
}

func asFault(err error, target **fault.Error) bool { return errors.As(err, target) }
