package models

import (
	"time"

	"gorm.io/gorm"
)

// Workspace は1テナント分のSlack連携情報を保持する。
// SlackTeamID を自然キーとして再登録時はupsertされる。
type Workspace struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	SlackTeamID    string         `gorm:"uniqueIndex" json:"slack_team_id"` // Slackが報告するチームID
	TeamName       string         `json:"team_name"`
	TeamURL        string         `json:"team_url"`
	EncryptedToken string         `json:"-"` // AES-GCMで暗号化したbotトークン。読み取りAPIには一切出さない
	OwnerUserID    string         `gorm:"index" json:"owner_user_id"` // メンション検知対象の人間のSlackユーザーID
	BotUserID      string         `json:"bot_user_id"`
	Description    string         `json:"description,omitempty"`
	IsActive       bool           `json:"is_active"` // falseは論理削除。管理系以外の検索から除外される
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
