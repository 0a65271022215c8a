package compound

import (
	"errors"
	"time"
)

// GetBlockByTime period number of t since genesis
func GetBlockByTime(t time.Time, genesis, secondsPerBlock int64) (int64, error) {
	if secondsPerBlock <= 0 {
		return 0, errors.New("secondsPerBlock should not be less than or equal zero")
	}

	seconds := t.UTC().Unix() - genesis
	if seconds <= 0 {
		return 0, errors.New("invalid blocks")
	}

	return seconds / secondsPerBlock, nil
}
