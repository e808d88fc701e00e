package normalize

// Trim drops lead rows from the front and trail rows from the back.
// Over-trimming yields an empty slice.
func Trim(rows [][]string, lead, trail int) [][]string {
	if lead < 0 {
		lead = 0
	}
	if trail < 0 {
		trail = 0
	}
	end := len(rows) - trail
	if lead >= end {
		return [][]string{}
	}
	return rows[lead:end]
}
