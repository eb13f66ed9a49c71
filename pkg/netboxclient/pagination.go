package netboxclient

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// decodePage extracts the "results" array and "next" link from one page of
// a NetBox list response using gjson, avoiding a second full json.Unmarshal
// pass just to read the pagination envelope.
func decodePage(body []byte) ([]map[string]any, string, error) {
	if !gjson.ValidBytes(body) {
		return nil, "", fmt.Errorf("response is not valid JSON")
	}
	parsed := gjson.ParseBytes(body)

	var next string
	if n := parsed.Get("next"); n.Exists() && n.Type != gjson.Null {
		next = n.String()
	}

	results := parsed.Get("results")
	if !results.Exists() {
		return nil, "", fmt.Errorf("response has no results array")
	}

	var page []map[string]any
	for _, item := range results.Array() {
		var obj map[string]any
		if err := json.Unmarshal([]byte(item.Raw), &obj); err != nil {
			return nil, "", fmt.Errorf("decoding result item: %w", err)
		}
		page = append(page, obj)
	}
	return page, next, nil
}
