package shared

import (
	"fmt"
	"time"
)

// StatusDone marks a completed job in the result cache.
const StatusDone = "done"

// JobParams are the per-request inputs of a coordinator job.
type JobParams struct {
	TxID      string `json:"txid"`
	Vout      int    `json:"vout"`
	Threshold int    `json:"threshold"`
}

// Challenge returns the challenge string bound to the transaction output.
func (p JobParams) Challenge() string {
	return fmt.Sprintf("%s:%d", p.TxID, p.Vout)
}

// Key returns the identity used for caching and exclusivity.
func (p JobParams) Key() string {
	return fmt.Sprintf("%s:%d", p.Challenge(), p.Threshold)
}

// CacheEntry is the persisted result of a completed job.
type CacheEntry struct {
	Status     string    `json:"status"`
	JobKey     string    `json:"job_key"`
	Challenge  string    `json:"challenge"`
	Params     JobParams `json:"params"`
	Result     Candidate `json:"result"`
	BatchesRun uint64    `json:"batches_run"`
	Timestamp  time.Time `json:"timestamp"`
}
