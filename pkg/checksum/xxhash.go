package checksum

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// CalculateRowHash digests a row by its canonical JSON form. encoding/json
// sorts map keys, so equal rows hash equally regardless of column order.
func CalculateRowHash(row map[string]any) (string, error) {
	content, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("failed to encode row for hashing: %w", err)
	}

	digest := xxhash.New()
	digest.Write(content)

	return hex.EncodeToString(digest.Sum(nil)), nil
}
