package domain

type RejectReason string

const (
	RejectMissingToken    RejectReason = "missing_token"
	RejectInvalidPayload  RejectReason = "invalid_payload"
	RejectUnresolvedToken RejectReason = "unresolved_token"
)

// IngestResult is either Created (Record set) or Rejected (Reason set).
type IngestResult struct {
	Record  *DeviceDataRecord
	Reason  RejectReason
	Message string
}

func Created(record *DeviceDataRecord) IngestResult {
	return IngestResult{Record: record}
}

func Rejected(reason RejectReason, message string) IngestResult {
	return IngestResult{Reason: reason, Message: message}
}

func (r IngestResult) IsCreated() bool {
	return r.Record != nil
}
