package repository

import "strings"

func normalizeColumn(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
