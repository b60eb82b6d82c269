package domain

import "strings"

const (
	itemSeparator  = ","
	fieldSeparator = "|"
)

// ParseRecords splits a list3 response body such as "01|北京,02|上海" into
// regions. Items without exactly two fields, or with an empty code or name
// after trimming, are skipped. Output order matches input order.
func ParseRecords(raw string) []Region {
	if raw == "" {
		return nil
	}

	var out []Region
	for _, item := range strings.Split(raw, itemSeparator) {
		if !strings.Contains(item, fieldSeparator) {
			continue
		}
		parts := strings.Split(item, fieldSeparator)
		if len(parts) != 2 {
			continue
		}
		code := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])
		if code == "" || name == "" {
			continue
		}
		out = append(out, Region{Code: code, Name: name})
	}
	return out
}

// LooksLikeRecords reports whether a response body could hold at least one
// record. Bodies that fail this check are treated as a failed fetch.
func LooksLikeRecords(body string) bool {
	return body != "" && strings.Contains(body, fieldSeparator)
}
