package domain

// ============================================================
// WhatsApp Cloud API outbound payloads
// ============================================================

// MessagingProduct is the fixed product tag required on every
// Graph API messages call.
const MessagingProduct = "whatsapp"

// TextMessageRequest is the payload for sending a plain text reply.
type TextMessageRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             TextContent `json:"text"`
}

// ReadReceiptRequest marks an inbound message as read and shows a
// typing indicator in one combined call.
type ReadReceiptRequest struct {
	MessagingProduct string          `json:"messaging_product"`
	Status           string          `json:"status"`
	MessageID        string          `json:"message_id"`
	TypingIndicator  TypingIndicator `json:"typing_indicator"`
}

// TypingIndicator selects the indicator style shown to the user.
type TypingIndicator struct {
	Type string `json:"type"`
}

// SendMessageResponse is the (partial) Graph API response for a send.
// Only used for debug logging; success is decided by the HTTP status.
type SendMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}
