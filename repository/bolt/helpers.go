package bolt

import (
	"encoding/json"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/powertimer/domain"
)

func putJSON(b *bbolt.Bucket, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), payload)
}

func paginate(timers []domain.Timer, limit, offset int) []domain.Timer {
	if offset > 0 {
		if offset >= len(timers) {
			return timers[:0]
		}
		timers = timers[offset:]
	}
	if limit > 0 && limit < len(timers) {
		timers = timers[:limit]
	}
	return timers
}
