package domain

import "encoding/json"

// ============================================================
// WhatsApp Cloud API webhook payload (inbound)
// ============================================================

// WebhookObject is the top-level object tag Meta sends for
// WhatsApp Business Account webhooks. Anything else is ignored.
const WebhookObject = "whatsapp_business_account"

// MessageTypeText is the only message type the bot can answer.
const MessageTypeText = "text"

// WebhookEvent is one webhook delivery from Meta. A single delivery
// can batch multiple entries, each with multiple changes.
type WebhookEvent struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one business-account entry within a delivery.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a single change notification. Only field == "messages"
// carries user messages; other fields (statuses, account updates) are
// delivered on the same endpoint and skipped.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue holds the message data of a "messages" change.
type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata identifies the receiving phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the WhatsApp profile of the sender.
type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

// ContactProfile carries the sender's display name.
type ContactProfile struct {
	Name string `json:"name"`
}

// Message is one inbound user message. Non-text payloads are kept as
// raw JSON so an unknown type never fails decoding; the processor
// answers those with a fixed fallback instead.
type Message struct {
	From      string           `json:"from"`
	ID        string           `json:"id"`
	Timestamp string           `json:"timestamp"`
	Type      string           `json:"type"`
	Text      *TextContent     `json:"text,omitempty"`
	Image     *json.RawMessage `json:"image,omitempty"`
	Audio     *json.RawMessage `json:"audio,omitempty"`
	Video     *json.RawMessage `json:"video,omitempty"`
	Document  *json.RawMessage `json:"document,omitempty"`
	Location  *json.RawMessage `json:"location,omitempty"`
	Sticker   *json.RawMessage `json:"sticker,omitempty"`
}

// TextContent holds a text message body.
type TextContent struct {
	Body string `json:"body"`
}

// Status is a delivery-status update (sent/delivered/read). The bot
// does not act on these.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}
