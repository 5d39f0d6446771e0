package kafka

import (
	"encoding/json"
	"fmt"

	"stash/types"
)

// DecodeJob unmarshals an import job message.
func DecodeJob(message []byte) (types.ImportJob, error) {
	var job types.ImportJob
	if err := json.Unmarshal(message, &job); err != nil {
		return types.ImportJob{}, fmt.Errorf("unmarshaling import job: %w", err)
	}
	return job, nil
}
