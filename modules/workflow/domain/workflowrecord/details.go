package workflowrecord

import (
	"encoding/json"
)

// Details is the closed tagged union over the known payload shapes. Matching
// on the concrete variant replaces string-keyed lookups into the raw blob;
// RawDetails is the forward-compatibility fallback for unknown shapes.
type Details interface {
	isDetails()
}

// TransferDetails is the payload of transfer-typed records.
type TransferDetails struct {
	OldDepartmentID   uint   `json:"oldDepartmentId,omitempty"`
	NewDepartmentID   uint   `json:"newDepartmentId,omitempty"`
	OldDepartmentName string `json:"oldDepartmentName,omitempty"`
	NewDepartmentName string `json:"newDepartmentName,omitempty"`
}

func (TransferDetails) isDetails() {}

// RequestApprovalDetails is the payload of "Request Approval" and the other
// request-linked record types.
type RequestApprovalDetails struct {
	RequestID   uint     `json:"requestId,omitempty"`
	RequestType string   `json:"requestType,omitempty"`
	Items       []string `json:"items,omitempty"`
}

func (RequestApprovalDetails) isDetails() {}

// RawDetails carries payloads of unknown or untyped shapes verbatim.
type RawDetails struct {
	Payload json.RawMessage
}

func (RawDetails) isDetails() {}

// DecodeDetails interprets payload according to the record type. A payload
// that fails to decode into the expected shape degrades to RawDetails rather
// than erroring: the store accepts open payloads, so reads must too.
func DecodeDetails(recordType string, payload json.RawMessage) Details {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	switch {
	case IsTransferType(recordType):
		var d TransferDetails
		if err := json.Unmarshal(payload, &d); err != nil {
			return RawDetails{Payload: payload}
		}
		return d
	case recordType == TypeRequestApproval,
		recordType == TypeRequestCreated,
		recordType == TypeRequestStatusUpdate:
		var d RequestApprovalDetails
		if err := json.Unmarshal(payload, &d); err != nil {
			return RawDetails{Payload: payload}
		}
		return d
	default:
		return RawDetails{Payload: payload}
	}
}

// AnnotateDetails merges the given derived fields into the raw payload,
// preserving every caller-supplied field. Keys already present are
// overwritten only if they name derived fields being refreshed.
func AnnotateDetails(payload json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	merged := map[string]any{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &merged); err != nil {
			return nil, err
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}
