// Package enrichment implements the asynchronous lead enrichment pipeline:
// the durable summarize queue, its producer client, and the worker that
// orchestrates store, cache, and the AI summarizer.
package enrichment

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskLeadSummarize is the queue message type for lead enrichment jobs.
const TaskLeadSummarize = "lead:summarize"

// LeadSummarizePayload carries the target lead. Jobs have no idempotency
// token; duplicate enqueues for the same lead both run and the last write wins.
type LeadSummarizePayload struct {
	LeadID string `json:"leadId"`
}

// NewLeadSummarizeTask builds an asynq task for the given payload.
func NewLeadSummarizeTask(payload LeadSummarizePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadSummarize, data), nil
}

// ParseLeadSummarizePayload decodes a summarize task payload.
func ParseLeadSummarizePayload(task *asynq.Task) (LeadSummarizePayload, error) {
	var payload LeadSummarizePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadSummarizePayload{}, err
	}
	return payload, nil
}
