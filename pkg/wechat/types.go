package wechat

// MessageType is the webhook msgtype
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeMarkdown MessageType = "markdown"
)

// WebhookMessage is the group robot request body
type WebhookMessage struct {
	MsgType  MessageType  `json:"msgtype"`
	Text     *TextMsg     `json:"text,omitempty"`
	Markdown *MarkdownMsg `json:"markdown,omitempty"`
}

// TextMsg is a plain text message
type TextMsg struct {
	Content             string   `json:"content"`
	MentionedList       []string `json:"mentioned_list,omitempty"`        // user IDs, "@all" for everyone
	MentionedMobileList []string `json:"mentioned_mobile_list,omitempty"` // phone numbers
}

// MarkdownMsg is a markdown message
type MarkdownMsg struct {
	Content string `json:"content"`
}

// WebhookResponse is the group robot reply
type WebhookResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// IsSuccess reports errcode 0
func (r *WebhookResponse) IsSuccess() bool {
	return r.ErrCode == 0
}
