package response

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	})
}

// ErrorDetails is Error with a details object for field level context.
func ErrorDetails(w http.ResponseWriter, status int, code string, message string, details map[string]any) {
	if len(details) == 0 {
		Error(w, status, code, message)
		return
	}
	JSON(w, status, map[string]any{
		"success": false,
		"error":   code,
		"message": message,
		"details": details,
	})
}

// SuccessMessage is Success with a human readable message alongside the data.
func SuccessMessage(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, map[string]any{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// Bytes writes a binary body such as a PDF, optionally as a download.
func Bytes(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
