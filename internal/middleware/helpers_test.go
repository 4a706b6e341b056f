package middleware_test

import (
	"encoding/json"
	"net/http"
)

func decodeJSON(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}
