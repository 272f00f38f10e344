package models

import "time"

// PostedMessage はこのサービス経由で送信したメッセージの監査レコード。
// 追記専用で、作成後に更新・削除されることはない。
type PostedMessage struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	WorkspaceID    string    `gorm:"index" json:"workspace_id"`
	SlackChannelID string    `gorm:"index" json:"slack_channel_id"`
	ChannelName    string    `json:"channel_name"`
	MessageText    string    `json:"message_text"`
	SlackTS        string    `json:"slack_ts"` // Slackが採番したメッセージタイムスタンプ（文字列のまま保持）
	SlackMessageID string    `json:"slack_message_id,omitempty"`
	PostedByUserID string    `json:"posted_by_user_id"`
	CreatedAt      time.Time `json:"created_at"`
}
