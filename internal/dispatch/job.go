package dispatch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// hourBucket is the time granularity folded into the idempotency key.
// Identical payloads submitted within the same hour collapse to one
// delivered notification; an hour later they count as new.
const hourBucket = "2006-01-02T15"

// Job is one logical notification. Retries mutate Attempt in place; the
// idempotency key never changes so the downstream can collapse a retry
// whose first attempt actually landed.
type Job struct {
	IdempotencyKey string
	Payload        json.RawMessage
	Attempt        int
}

// NewJob derives the idempotency key from a content hash of the payload
// plus the coarse time bucket.
func NewJob(payload interface{}, now time.Time) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	h := sha256.New()
	h.Write(raw)
	h.Write([]byte(now.UTC().Format(hourBucket)))

	return &Job{
		IdempotencyKey: hex.EncodeToString(h.Sum(nil)),
		Payload:        raw,
	}, nil
}
