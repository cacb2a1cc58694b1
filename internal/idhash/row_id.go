package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeRowID computes a deterministic id for one result row.
// Formula: SHA256(config_id|day|box)
// Returns hex-encoded hash (64 characters).
func ComputeRowID(configID string, day time.Time, box int) string {
	data := fmt.Sprintf("%s|%s|%d",
		configID,
		day.Format(dateLayout),
		box,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
