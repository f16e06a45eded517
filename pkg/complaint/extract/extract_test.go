package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"plain ten digits", "1234567890", true},
		{"dashes", "123-456-7890", true},
		{"parens and space", "(123) 456-7890", true},
		{"dots", "123.456.7890", true},
		{"country code", "+911234567890", true},
		{"country code with spaces", "+1 123 456 7890", true},
		{"nine digits", "123456789", false},
		{"eleven digits", "12345678901", false},
		{"letters", "abc", false},
		{"empty", "", false},
		{"four digit country code", "+12341234567890", false},
		{"us e164", "+14155551234", true},
		{"five digits", "12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePhone(tt.phone))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"jane@example.com", true},
		{"jane.doe+tag@mail.example.co", true},
		{"a.b+c@example.co", true},
		{"not-an-email", false},
		{"a@b", false},
		{"jane@example.c", false},
		{"@example.com", false},
		{"jane example@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateEmail(tt.email))
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantEmail string
		wantPhone string
	}{
		{
			name:      "both present",
			text:      "reach me at jane@example.com or 1234567890",
			wantEmail: "jane@example.com",
			wantPhone: "1234567890",
		},
		{
			name:      "formatted phone",
			text:      "my number is (123) 456-7890",
			wantPhone: "(123) 456-7890",
		},
		{
			name:      "international phone",
			text:      "call +91 9876543210 please",
			wantPhone: "+91 9876543210",
		},
		{
			name: "nothing",
			text: "hello there",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			assert.Equal(t, tt.wantEmail, got.Email)
			assert.Equal(t, tt.wantPhone, got.Phone)
			assert.Empty(t, got.Name)
		})
	}
}

func TestComplaintID(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantID string
		wantOK bool
	}{
		{"bare id", "622A9F6E", "622A9F6E", true},
		{"bare id with whitespace", "  622a9f6e \n", "622a9f6e", true},
		{"my complaint id is", "My complaint ID is ABC123", "ABC123", true},
		{"status of complaint id", "status of complaint id: XYZ789", "XYZ789", true},
		{"complaint number", "what happened to complaint number 99AB12", "99AB12", true},
		{"complaint followed by id", "show complaint 4F5A6B7C", "4F5A6B7C", true},
		{"mixed token fallback", "can you look at 7QX91Z for me", "7QX91Z", true},
		{"stop words only", "details about the status everywhere", "", false},
		{"letters only token", "please check something", "", false},
		{"digits only token", "it happened at 123456 street", "", false},
		{"no id", "hello there", "", false},
		{"trailing period", "My complaint ID is 7B3K9Q1Z.", "7B3K9Q1Z", true},
		{"stop word sentence", "I reported an issue everywhere", "", false},
		{"filing request", "I want to file a complaint", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ComplaintID(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
