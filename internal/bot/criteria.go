package bot

import (
	"encoding/json"
	"strconv"
	"strings"

	"music-chatter/internal/music"
)

// extractJSON pulls the first top-level JSON object out of free-form model
// output. Models wrap the object in prose or markdown often enough that a
// strict unmarshal of the whole text is useless.
func extractJSON(text string) (map[string]interface{}, bool) {
	text = collapseWhitespace(text)

	open := strings.IndexByte(text, '{')
	if open < 0 {
		return nil, false
	}
	end := strings.IndexByte(text[open+1:], '}')
	if end < 0 {
		return nil, false
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(text[open:open+end+2]), &out); err != nil {
		return nil, false
	}
	return out, true
}

// parseCriteria maps a loosely-typed attribute object onto lookup criteria.
// Null and absent attributes are wildcards; the year survives arriving as a
// number or a string.
func parseCriteria(attrs map[string]interface{}) music.Criteria {
	var c music.Criteria
	c.Title = stringAttr(attrs, "title")
	c.Genre = stringAttr(attrs, "genre")
	c.Authors = stringAttr(attrs, "authors")
	c.Country = stringAttr(attrs, "country")

	switch v := attrs["year"].(type) {
	case float64:
		c.Year = int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Year = n
		}
	}
	return c
}

func stringAttr(attrs map[string]interface{}, key string) string {
	if v, ok := attrs[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
