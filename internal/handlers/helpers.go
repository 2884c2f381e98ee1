package handlers

import (
	"encoding/json"
	"net/http"
)

// maxJSONBody caps JSON request bodies
const maxJSONBody = 1 << 20

// decodeJSON decodes a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return json.NewDecoder(r.Body).Decode(dst)
}
