// Package chat models the platform boundary: inbound updates, callback
// payload encoding, button menus, and the Messenger capability set the core
// uses to talk to the user.
package chat

import "strings"

// Purpose tags route a callback to the menu that owns it. Handlers ignore
// callbacks tagged for menus they don't own.
const (
	PurposeQuestion = "qm"  // accept/decline a pending poll
	PurposeRate     = "scm" // 1-10 rating selector
)

// Question menu answers.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
)

const payloadDelimiter = "|"

// Payload is the decoded callback data attached to a button press.
type Payload struct {
	Purpose string
	ID      string
	Data    string
}

// EncodePayload joins purpose tag, correlation id and data value into a
// callback string.
func EncodePayload(purpose, id, data string) string {
	return strings.Join([]string{purpose, id, data}, payloadDelimiter)
}

// ParsePayload decodes a callback string. Undelimited values are tolerated by
// using the raw string for all three fields, so unencoded buttons still route
// by purpose.
func ParsePayload(raw string) Payload {
	parts := strings.SplitN(raw, payloadDelimiter, 3)
	if len(parts) != 3 {
		return Payload{Purpose: raw, ID: raw, Data: raw}
	}
	return Payload{Purpose: parts[0], ID: parts[1], Data: parts[2]}
}

// MessageRef identifies a delivered message and, for callbacks, the pending
// interaction to acknowledge.
type MessageRef struct {
	ChannelID  string
	MessageID  string
	CallbackID string
}

// UpdateKind discriminates inbound updates.
type UpdateKind int

const (
	UpdateText UpdateKind = iota
	UpdateCallback
)

// Update is one inbound event from the platform: a plain text message or a
// button-press callback.
type Update struct {
	Kind     UpdateKind
	AuthorID string
	Text     string
	Payload  Payload
	Ref      MessageRef
}

// IsText reports whether the update is a non-empty text message.
func (u *Update) IsText() bool {
	return u != nil && u.Kind == UpdateText && u.Text != ""
}

// IsCallback reports whether the update is a button-press callback.
func (u *Update) IsCallback() bool {
	return u != nil && u.Kind == UpdateCallback
}

// Button is one labeled selectable option carrying an encoded payload.
type Button struct {
	Label   string
	Payload string
}

// Menu is a set of buttons laid out in rows.
type Menu struct {
	Rows [][]Button
}

// Messenger is the capability set the core needs from the chat platform.
// Implementations log and swallow delivery failures; a failed send never
// feeds back into conversation logic.
type Messenger interface {
	SendText(text string)
	SendMenu(text string, menu Menu)
	EditMessage(ref MessageRef, text string)
	AckCallback(ref MessageRef)
}
