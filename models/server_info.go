package models

// ServerInfo describes the protocol limits of a remote store. Clients read it
// to size their batches and pages.
type ServerInfo struct {
	Version         string      `json:"version"`
	Tables          []TableName `json:"tables"`
	MaxBatchRecords int         `json:"max_batch_records"`
	MaxPageLimit    int         `json:"max_page_limit"`
}
