// Package domain contains core concepts of the message board.
// This file defines MessageRecord, the immutable unit of the feed,
// and its mapping to the field-name keyed form stored remotely.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// PlaceholderAvatarURL is shown whenever a record carries no profile image.
// The renderer and the live avatar preview must use the same value.
const PlaceholderAvatarURL = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

// Field names of a stored record. They are case-sensitive.
const (
	FieldUsername        = "username"
	FieldMessage         = "message"
	FieldEmail           = "email"
	FieldProfileImageURL = "profileImageUrl"
	FieldDate            = "date"
	FieldTime            = "time"
)

// Layouts used to capture date and time at submission.
const (
	DateLayout = "1/2/2006"
	TimeLayout = "3:04:05 PM"
)

// Fields is the unordered field-name to value mapping delivered by the store.
type Fields map[string]any

// MessageRecord is a persisted unit of the feed. It is never edited once appended.
type MessageRecord struct {
	Username        string
	Message         string
	Email           string
	ProfileImageURL string
	Date            string
	Time            string
}

// NewMessageRecord builds the record submitted for the given input.
// Fields are trimmed and the profile image falls back to the placeholder.
func NewMessageRecord(input InputState, now time.Time) MessageRecord {
	return MessageRecord{
		Username:        strings.TrimSpace(input.Username),
		Message:         strings.TrimSpace(input.Message),
		Email:           strings.TrimSpace(input.Email),
		ProfileImageURL: AvatarURL(input.ProfileURL),
		Date:            now.Format(DateLayout),
		Time:            now.Format(TimeLayout),
	}
}

// AvatarURL returns url trimmed, or the placeholder when it is blank.
func AvatarURL(url string) string {
	if trimmed := strings.TrimSpace(url); trimmed != "" {
		return trimmed
	}
	return PlaceholderAvatarURL
}

// Fields returns the stored representation of the record.
func (m MessageRecord) Fields() Fields {
	return Fields{
		FieldUsername:        m.Username,
		FieldMessage:         m.Message,
		FieldEmail:           m.Email,
		FieldProfileImageURL: m.ProfileImageURL,
		FieldDate:            m.Date,
		FieldTime:            m.Time,
	}
}

// RecordFromFields reads a record delivered by the store.
// Absent or nil fields become empty strings, non-string values are formatted.
func RecordFromFields(fields Fields) MessageRecord {
	return MessageRecord{
		Username:        fields.String(FieldUsername),
		Message:         fields.String(FieldMessage),
		Email:           fields.String(FieldEmail),
		ProfileImageURL: fields.String(FieldProfileImageURL),
		Date:            fields.String(FieldDate),
		Time:            fields.String(FieldTime),
	}
}

// String returns the value stored under name as a string.
func (f Fields) String(name string) string {
	switch v := f[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
