package state

import "time"

// Field identifies one piece of complaint data collected from the user.
type Field string

const (
	FieldName    Field = "name"
	FieldPhone   Field = "phone"
	FieldEmail   Field = "email"
	FieldDetails Field = "details"
	// FieldNone marks a draft with every required field filled.
	FieldNone Field = "none"
)

// RequiredFields is the order in which fields are collected.
var RequiredFields = []Field{FieldName, FieldPhone, FieldEmail, FieldDetails}

// Valid reports whether f is one of RequiredFields.
func (f Field) Valid() bool {
	switch f {
	case FieldName, FieldPhone, FieldEmail, FieldDetails:
		return true
	}
	return false
}

// Draft is an in-progress complaint. An empty value means the field has
// not been collected yet.
type Draft struct {
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Details      string    `json:"details"`
	CurrentField Field     `json:"current_field"`
	StartedAt    time.Time `json:"started_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (d Draft) Value(f Field) string {
	switch f {
	case FieldName:
		return d.Name
	case FieldPhone:
		return d.Phone
	case FieldEmail:
		return d.Email
	case FieldDetails:
		return d.Details
	}
	return ""
}

func (d *Draft) set(f Field, value string) {
	switch f {
	case FieldName:
		d.Name = value
	case FieldPhone:
		d.Phone = value
	case FieldEmail:
		d.Email = value
	case FieldDetails:
		d.Details = value
	}
}

// Next returns the first required field without a value, or FieldNone.
func (d Draft) Next() Field {
	for _, f := range RequiredFields {
		if d.Value(f) == "" {
			return f
		}
	}
	return FieldNone
}

func (d Draft) Complete() bool {
	return d.Next() == FieldNone
}
