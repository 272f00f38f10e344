package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"slack-workspace-hub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultLedgerPageSize = 20
	maxLedgerPageSize     = 100
)

// LedgerService はメッセージの送信と、その追記専用の監査記録を担う
type LedgerService struct {
	db         *gorm.DB
	workspaces *WorkspaceService
}

func NewLedgerService(db *gorm.DB, workspaces *WorkspaceService) *LedgerService {
	return &LedgerService{db: db, workspaces: workspaces}
}

// PostInput は送信リクエスト
type PostInput struct {
	WorkspaceID string
	ChannelID   string
	Text        string
	ThreadTS    string // 指定があればスレッドへの返信として送る
	UserID      string // 送信操作を行ったユーザー
}

// PostAndRecord はメッセージを送信し、成功が確認できたら台帳に1行記録する。
// 送信が成功したのに記録に失敗した場合は ConsistencyError を返す。
// この場合Slack側には既にメッセージがあるので、黙って握りつぶすことも
// 通常の失敗として再送させることもしない
func (s *LedgerService) PostAndRecord(ctx context.Context, in PostInput) (*models.PostedMessage, error) {
	if in.ChannelID == "" {
		return nil, fmt.Errorf("%w: channel id is required", ErrInvalidArgument)
	}
	if in.Text == "" {
		return nil, fmt.Errorf("%w: message text is required", ErrInvalidArgument)
	}

	ws, api, err := s.workspaces.ResolveClient(in.WorkspaceID)
	if err != nil {
		return nil, err
	}

	// チャンネル名が引けなくても投稿は止めない。生のIDで代用する
	channelName := in.ChannelID
	if info, infoErr := api.GetChannel(ctx, in.ChannelID); infoErr == nil && info.Name != "" {
		channelName = info.Name
	} else if infoErr != nil {
		log.Printf("channel lookup failed, using raw id (channel: %s): %v", in.ChannelID, infoErr)
	}

	sent, err := api.PostMessage(ctx, in.ChannelID, in.Text, in.ThreadTS)
	if err != nil {
		// Slackのエラーコードをそのまま呼び出し側に見せる
		return nil, &DeliveryError{Code: err.Error()}
	}

	record := models.PostedMessage{
		ID:             uuid.NewString(),
		WorkspaceID:    ws.ID,
		SlackChannelID: in.ChannelID,
		ChannelName:    channelName,
		MessageText:    in.Text,
		SlackTS:        sent.Timestamp,
		SlackMessageID: sent.MessageID,
		PostedByUserID: in.UserID,
		CreatedAt:      time.Now(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		cErr := &ConsistencyError{SlackTS: sent.Timestamp, Err: err}
		log.Printf("CONSISTENCY WARNING: workspace=%s channel=%s: %v", ws.ID, in.ChannelID, cErr)
		return nil, cErr
	}

	return &record, nil
}

// LedgerFilter は台帳検索の条件
type LedgerFilter struct {
	WorkspaceID string
	ChannelID   string
	Limit       int
	Offset      int
}

// ListPosted は台帳を新しい順にページングして返す。副作用はない
func (s *LedgerService) ListPosted(f LedgerFilter) ([]models.PostedMessage, error) {
	limit := f.Limit
	if limit < 1 {
		limit = defaultLedgerPageSize
	}
	if limit > maxLedgerPageSize {
		limit = maxLedgerPageSize
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	q := s.db.Order("posted_messages.created_at DESC").Limit(limit).Offset(offset)

	if f.WorkspaceID != "" {
		// ワークスペース指定の読み取りもレジストリ経由の解決を通す
		if _, err := s.workspaces.Get(f.WorkspaceID); err != nil {
			return nil, err
		}
		q = q.Where("workspace_id = ?", f.WorkspaceID)
	} else {
		// 論理削除されたワークスペースの記録は巻き添えで見えなくなる
		q = q.Joins("JOIN workspaces ON workspaces.id = posted_messages.workspace_id").
			Where("workspaces.is_active = ?", true)
	}
	if f.ChannelID != "" {
		q = q.Where("slack_channel_id = ?", f.ChannelID)
	}

	var records []models.PostedMessage
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
