package events

import "time"

const (
	TypeComplaintFiled        = "COMPLAINT_FILED"
	TypeComplaintSubmitFailed = "COMPLAINT_SUBMIT_FAILED"
	TypeDocumentsIndexed      = "DOCUMENTS_INDEXED"
)

func NewComplaintFiled(sessionID, complaintID, name, phone, email, details string) BaseEvent {
	return BaseEvent{
		Type: TypeComplaintFiled,
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"complaint_id": complaintID,
			"name":         name,
			"phone_number": phone,
			"email":        email,
			"details":      details,
		},
		OccurredAt: time.Now(),
	}
}

func NewComplaintSubmitFailed(sessionID, name, email string, cause error) BaseEvent {
	return BaseEvent{
		Type: TypeComplaintSubmitFailed,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"name":       name,
			"email":      email,
			"error":      cause.Error(),
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentsIndexed(source string, chunks int) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentsIndexed,
		Data: map[string]interface{}{
			"source": source,
			"chunks": chunks,
		},
		OccurredAt: time.Now(),
	}
}
