package records

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// PhoneNumber accepts either a JSON number or a string of digits.
type PhoneNumber int64

func (p *PhoneNumber) UnmarshalJSON(data []byte) error {
	n, err := decodeNumeric(data, "phone_number")
	if err != nil {
		return err
	}
	*p = PhoneNumber(n)
	return nil
}

// ClientID is a client reference in a request body. Like PhoneNumber it
// accepts a JSON number or a numeric string.
type ClientID int64

func (id *ClientID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	n, err := decodeNumeric(data, "client_id")
	if err != nil {
		return err
	}
	*id = ClientID(n)
	return nil
}

// decodeNumeric reads a non-negative integer given either bare or quoted.
func decodeNumeric(data []byte, field string) (int64, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		data = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil || n < 0 {
		return 0, &ValidationError{Field: field, Reason: "must be numeric"}
	}
	return n, nil
}

// ClientInput is the request body of the client create, replace and update
// operations. Absent and null fields decode to nil.
type ClientInput struct {
	FirstName    *string      `json:"first_name"`
	LastName     *string      `json:"last_name"`
	Email        *string      `json:"email"`
	PhoneNumber  *PhoneNumber `json:"phone_number"`
	OtherDetails *string      `json:"other_details"`
}

// CreateFields validates a creation request. Every field is required.
func (in ClientInput) CreateFields() (ClientFields, error) {
	fields, err := in.requiredFields()
	if err != nil {
		return ClientFields{}, err
	}
	details := present(in.OtherDetails)
	if details == nil {
		return ClientFields{}, &ValidationError{Field: "other_details", Reason: "is required"}
	}
	fields.OtherDetails = details
	return fields, nil
}

// ReplaceFields validates a full replace request. other_details may be
// omitted, in which case it is cleared.
func (in ClientInput) ReplaceFields() (ClientFields, error) {
	fields, err := in.requiredFields()
	if err != nil {
		return ClientFields{}, err
	}
	fields.OtherDetails = present(in.OtherDetails)
	return fields, nil
}

// Patch converts a partial update request. Empty strings count as absent.
func (in ClientInput) Patch() (ClientPatch, error) {
	patch := ClientPatch{
		FirstName:    present(in.FirstName),
		LastName:     present(in.LastName),
		Email:        present(in.Email),
		OtherDetails: present(in.OtherDetails),
	}
	if in.PhoneNumber != nil {
		n := int64(*in.PhoneNumber)
		patch.PhoneNumber = &n
	}
	if patch.Empty() {
		return ClientPatch{}, &ValidationError{Field: "body", Reason: "has no update fields"}
	}
	return patch, nil
}

func (in ClientInput) requiredFields() (ClientFields, error) {
	required := []struct {
		name  string
		value *string
	}{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"email", in.Email},
	}
	for _, f := range required {
		if present(f.value) == nil {
			return ClientFields{}, &ValidationError{Field: f.name, Reason: "is required"}
		}
	}
	if in.PhoneNumber == nil {
		return ClientFields{}, &ValidationError{Field: "phone_number", Reason: "is required"}
	}
	return ClientFields{
		FirstName:   strings.TrimSpace(*in.FirstName),
		LastName:    strings.TrimSpace(*in.LastName),
		Email:       strings.TrimSpace(*in.Email),
		PhoneNumber: int64(*in.PhoneNumber),
	}, nil
}

// present returns a trimmed copy of v, or nil when v is nil or blank.
func present(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// SessionInput is the request body for recording a session.
type SessionInput struct {
	ClientID  ClientID   `json:"client_id"`
	Duration  Duration   `json:"duration"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Comments  *string    `json:"comments"`
}

func (in SessionInput) Fields() (SessionFields, error) {
	switch {
	case in.ClientID <= 0:
		return SessionFields{}, &ValidationError{Field: "client_id", Reason: "is required"}
	case in.Duration <= 0:
		return SessionFields{}, &ValidationError{Field: "duration", Reason: "is required"}
	case in.StartedAt == nil || in.StartedAt.IsZero():
		return SessionFields{}, &ValidationError{Field: "started_at", Reason: "is required"}
	case in.EndedAt == nil || in.EndedAt.IsZero():
		return SessionFields{}, &ValidationError{Field: "ended_at", Reason: "is required"}
	case in.EndedAt.Before(*in.StartedAt):
		return SessionFields{}, &ValidationError{Field: "ended_at", Reason: "must not precede started_at"}
	}
	return SessionFields{
		ClientID:  int64(in.ClientID),
		Duration:  in.Duration,
		StartedAt: in.StartedAt.UTC(),
		EndedAt:   in.EndedAt.UTC(),
		Comments:  present(in.Comments),
	}, nil
}
