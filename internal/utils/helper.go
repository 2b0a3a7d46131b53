package utils

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
)

var nonPhoneRegex = regexp.MustCompile(`[^\d+]`)

// NormalizePhoneIL strips formatting from a phone number and rewrites
// local Israeli numbers to international form (+972...).
func NormalizePhoneIL(phone string) string {
	p := nonPhoneRegex.ReplaceAllString(phone, "")

	if strings.HasPrefix(p, "+") {
		return p
	}
	if strings.HasPrefix(p, "00") {
		return "+" + p[2:]
	}
	if strings.HasPrefix(p, "0") {
		return "+972" + p[1:]
	}
	return p
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, map[string]string{"error": message})
}

func StrPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
