package web

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item is one listed entry of a data API payload.
type Item struct {
	Title    string
	Subtitle string
	Body     string
}

var (
	titleKeys    = []string{"name", "monument_name", "Monument_name", "title"}
	subtitleKeys = []string{"Username", "username", "location", "city"}
	bodyKeys     = []string{"description", "Description", "Review", "review"}
)

// describe fills the payload fields of data. The payload itself is opaque:
// arrays of objects (or {"posts": [...]}) are listed, a {"message": ...}
// object is shown as a message, anything else is pretty-printed.
func describe(raw json.RawMessage, data *PageData) {
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		data.Items = itemsFrom(list)
		return
	}

	var obj struct {
		Posts   []map[string]any `json:"posts"`
		Message string           `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.Posts != nil || obj.Message != "") {
		data.Items = itemsFrom(obj.Posts)
		data.Message = obj.Message
		return
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		data.Raw = string(raw)
		return
	}
	data.Raw = buf.String()
}

func itemsFrom(list []map[string]any) []Item {
	items := make([]Item, 0, len(list))
	for _, m := range list {
		it := Item{
			Title:    firstString(m, titleKeys),
			Subtitle: firstString(m, subtitleKeys),
			Body:     firstString(m, bodyKeys),
		}
		if it.Title == "" {
			if id, ok := m["id"]; ok {
				it.Title = fmt.Sprint(id)
			}
		}
		items = append(items, it)
	}
	return items
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
