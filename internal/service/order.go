package service

import "strings"

var allowedSortBy = map[string]string{
	"name":        "name",
	"size":        "size",
	"uploadedat":  "uploaded_at",
	"uploaded_at": "uploaded_at",
	"updatedat":   "updated_at",
	"type":        "type",
}

func sanitizeSortBy(sortBy string) string {
	key := strings.ToLower(strings.TrimSpace(sortBy))
	return allowedSortBy[key]
}

func sortDirection(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), "asc") {
		return "ASC"
	}
	return "DESC"
}
