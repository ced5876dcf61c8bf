package domain

// Role は会話ターンの発話者です。
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage は会話ログの1エントリです。追加されるだけで、変更や削除はされません。
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
