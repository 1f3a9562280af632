package models

import "strings"

// openRows returns an n x n open grid with S at (0,0) and E at (n-1,n-1).
func openRows(n int) []string {
	rows := make([]string, n)
	for y := range rows {
		rows[y] = strings.Repeat(".", n)
	}
	rows[0] = "S" + rows[0][1:]
	rows[n-1] = rows[n-1][:n-1] + "E"
	return rows
}
