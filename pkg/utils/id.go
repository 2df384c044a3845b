package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID generates a run ID with a timestamp prefix. Run IDs
// identify one optimization run; they are not used for row identity.
func GenerateRunID() string {
	timestamp := time.Now().Format("20060102-150405")
	return fmt.Sprintf("run-%s-%s", timestamp, uuid.NewString()[:8])
}

// MemberName builds the stable name of a population member created in
// the given generation. Generation 0 is the initial population.
func MemberName(generation, index int) string {
	if generation == 0 {
		return fmt.Sprintf("member-%d", index)
	}
	return fmt.Sprintf("gen-%d-member-%d", generation, index)
}

// RealizationName builds the stable name of a sampled realization row.
func RealizationName(index int) string {
	return fmt.Sprintf("real-%d", index)
}
