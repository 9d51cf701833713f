package chat

import "sync"

// Role 消息角色
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 对话中的一条消息
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation 有序的对话消息序列
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
}

// NewConversation 创建对话，可选系统提示词
func NewConversation(systemPrompt string) *Conversation {
	c := &Conversation{}
	if systemPrompt != "" {
		c.Append(RoleSystem, systemPrompt)
	}
	return c
}

// Append 追加一条消息
func (c *Conversation) Append(role Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Role: role, Content: content})
}

// Messages 返回消息副本
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len 消息数量
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// BeginReply 在末尾追加一个空的 assistant 占位消息
func (c *Conversation) BeginReply() *Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Role: RoleAssistant})
	return &Reply{conv: c, index: len(c.messages) - 1}
}

// Reply 正在生成中的 assistant 消息，内容只追加
type Reply struct {
	conv  *Conversation
	index int
}

// Write 追加增量内容
func (r *Reply) Write(delta string) {
	if delta == "" {
		return
	}
	r.conv.mu.Lock()
	defer r.conv.mu.Unlock()
	r.conv.messages[r.index].Content += delta
}

// Content 当前内容
func (r *Reply) Content() string {
	r.conv.mu.RLock()
	defer r.conv.mu.RUnlock()
	return r.conv.messages[r.index].Content
}
