package database

import "time"

// ApplyRetention deletes closed history records whose valid_to is older than
// maxDays. Open records are never pruned regardless of age. Returns the
// number of rows removed.
func ApplyRetention(maxDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -maxDays).Format(time.RFC3339)

	res, err := DB.Exec(`DELETE FROM disponibilidade WHERE valid_to IS NOT NULL AND valid_to < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
