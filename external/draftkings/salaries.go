package draftkings

import (
	"strconv"
	"strings"

	"github.com/GGarrido28/dk-scraper/internal/usecase"
)

// The salary export is not strict CSV: rows are padded with leading
// commas and the Game Info column may itself contain a comma, which
// shifts every later column right by one. Lines are cleaned field by
// field and the shift repaired against the header width.
func parsePlayerSalaryCSV(draftGroupID int64, raw []byte) ([]usecase.ExternalPlayerSalary, int, error) {
	var headers []string
	var out []usecase.ExternalPlayerSalary
	skipped := 0

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimLeft(line, ",")
		line = strings.ReplaceAll(line, ",", ";")
		line = strings.ReplaceAll(line, "\r", "")

		if headers == nil {
			if strings.Contains(line, "Position") {
				headers = strings.Split(line, ";")
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		values := strings.Split(line, ";")
		if len(values) == len(headers)+1 {
			idx := indexOf(headers, "Game Info")
			if idx >= 0 && idx+1 < len(values) {
				values[idx] = values[idx] + values[idx+1]
				values = append(values[:idx+1], values[idx+2:]...)
			}
		}
		if len(values) != len(headers) {
			continue
		}

		fields := make(map[string]string, len(headers))
		for i, header := range headers {
			fields[header] = values[i]
		}

		row, ok := buildSalaryRow(draftGroupID, fields)
		if !ok {
			skipped++
			continue
		}
		out = append(out, row)
	}

	return out, skipped, nil
}

func buildSalaryRow(draftGroupID int64, fields map[string]string) (usecase.ExternalPlayerSalary, bool) {
	playerID, err := strconv.ParseInt(strings.TrimSpace(fields["ID"]), 10, 64)
	if err != nil || playerID <= 0 {
		return usecase.ExternalPlayerSalary{}, false
	}
	salary, err := strconv.ParseFloat(strings.TrimSpace(fields["Salary"]), 64)
	if err != nil {
		salary = 0
	}
	avgPoints, err := strconv.ParseFloat(strings.TrimSpace(fields["AvgPointsPerGame"]), 64)
	if err != nil {
		return usecase.ExternalPlayerSalary{}, false
	}

	return usecase.ExternalPlayerSalary{
		DraftGroupID:     draftGroupID,
		PlayerID:         playerID,
		Position:         strings.TrimSpace(fields["Position"]),
		NameWithID:       strings.TrimSpace(fields["Name + ID"]),
		Name:             strings.TrimSpace(fields["Name"]),
		RosterPosition:   strings.TrimSpace(fields["Roster Position"]),
		Salary:           salary,
		GameInfo:         strings.TrimSpace(fields["Game Info"]),
		TeamAbbrev:       strings.TrimSpace(fields["TeamAbbrev"]),
		AvgPointsPerGame: avgPoints,
	}, true
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}
