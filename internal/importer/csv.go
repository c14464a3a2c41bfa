package importer

import (
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ParseCSV maps raw CSV text to canonical sales events.
//
// Splitting is naive comma splitting with surrounding quotes stripped
// per field: quoted fields containing embedded commas or escaped quotes
// are not handled. This matches the tolerant behavior of the upstream
// marketplace exports this pipeline was built for.
func (m *Mapper) ParseCSV(text string, orgID snowflake.ID) *Result {
	lines := strings.Split(text, "\n")

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, ","))
	}

	return m.mapRows(rows, orgID)
}
