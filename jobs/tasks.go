// Package jobs contains background tasks processed by the Asynq worker.
package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeLowStockScan is the task type for the periodic low-stock scan.
	TaskTypeLowStockScan = "reports:low_stock_scan"
)

// LowStockScanPayload describes one scan request.
type LowStockScanPayload struct {
	ScanID      string `json:"scan_id"`
	RequestedBy string `json:"requested_by"`
}

// NewLowStockScanTask constructs an Asynq task. A fresh scan id is
// generated when absent so log lines from one scan can be correlated.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	if payload.ScanID == "" {
		payload.ScanID = uuid.NewString()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLowStockScan, data), nil
}
