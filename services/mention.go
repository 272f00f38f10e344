package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slack-workspace-hub/models"
)

const (
	maxDaysBack     = 365
	maxMentionLimit = 100
)

// チャンネル全体への一斉通知トークン
var broadcastTokens = []string{"<!channel>", "<!here>", "<!everyone>"}

// MentionService はチャンネル履歴からオーナー宛てメンションを拾い出す
type MentionService struct {
	workspaces *WorkspaceService
}

func NewMentionService(workspaces *WorkspaceService) *MentionService {
	return &MentionService{workspaces: workspaces}
}

// MentionHit は検知したメンション1件分
type MentionHit struct {
	Text      string `json:"text"`
	UserID    string `json:"user_id"` // 発言者。不明なら "unknown"
	Timestamp string `json:"timestamp"`
	ThreadTS  string `json:"thread_ts,omitempty"`
	Permalink string `json:"permalink"`
}

// FindMentions は直近daysBack日分の履歴をカーソルを辿りながら走査し、
// オーナーへの直接メンションか一斉通知を含むメッセージを新しい順で返す。
// ヒット0件は正常な結果で、取得失敗（UpstreamError）とは区別される
func (s *MentionService) FindMentions(ctx context.Context, workspaceID, channelID string, daysBack, limit int) ([]MentionHit, error) {
	if channelID == "" {
		return nil, fmt.Errorf("%w: channel id is required", ErrInvalidArgument)
	}
	if daysBack < 1 || daysBack > maxDaysBack {
		return nil, fmt.Errorf("%w: days_back must be between 1 and %d", ErrInvalidArgument, maxDaysBack)
	}
	if limit < 1 || limit > maxMentionLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidArgument, maxMentionLimit)
	}

	ws, api, err := s.workspaces.ResolveClient(workspaceID)
	if err != nil {
		return nil, err
	}

	tokens := mentionTokens(ws)
	oldest := fmt.Sprintf("%d.000000", time.Now().AddDate(0, 0, -daysBack).Unix())

	hits := []MentionHit{}
	cursor := ""
	for {
		// 1ページで足りる前提は置かない。カーソルが尽きるかlimitに達するまで辿る
		page, err := api.ListMessages(ctx, channelID, oldest, cursor)
		if err != nil {
			return nil, &UpstreamError{Op: "conversations.history", Err: err}
		}

		for _, msg := range page.Messages {
			if !containsAny(msg.Text, tokens) {
				continue
			}

			userID := msg.UserID
			if userID == "" {
				userID = "unknown"
			}

			hits = append(hits, MentionHit{
				Text:      msg.Text,
				UserID:    userID,
				Timestamp: msg.Timestamp,
				ThreadTS:  msg.ThreadTS,
				Permalink: buildPermalink(ws.TeamURL, channelID, msg.Timestamp),
			})
			if len(hits) >= limit {
				return hits, nil
			}
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return hits, nil
}

// オーナー未設定のワークスペースでは一斉通知だけを対象にする
func mentionTokens(ws *models.Workspace) []string {
	if ws.OwnerUserID == "" {
		return broadcastTokens
	}
	return append([]string{fmt.Sprintf("<@%s>", ws.OwnerUserID)}, broadcastTokens...)
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

// メッセージへのパーマリンクを組み立てる。
// 形式: {teamURL}archives/{channelID}/p{tsのドット抜き}
func buildPermalink(teamURL, channelID, ts string) string {
	if teamURL != "" && !strings.HasSuffix(teamURL, "/") {
		teamURL += "/"
	}
	return fmt.Sprintf("%sarchives/%s/p%s", teamURL, channelID, strings.ReplaceAll(ts, ".", ""))
}
