package services

import (
	"context"
	"net/http"

	"github.com/slack-go/slack"
)

// 1ページあたりの conversations.history 取得件数
const historyPageSize = 100

// VerifiedIdentity は auth.test が報告するチーム識別情報
type VerifiedIdentity struct {
	TeamID        string
	TeamName      string
	TeamURL       string
	BotUserID     string
	SubjectUserID string // トークン自身のsubject。人間のオーナーとは区別する
}

// ChannelInfo はチャンネル参照・一覧の結果
type ChannelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
	IsMember  bool   `json:"is_member"`
	Topic     string `json:"topic,omitempty"`
}

// HistoryMessage は履歴取得の1メッセージ分
type HistoryMessage struct {
	Text      string
	UserID    string
	Timestamp string
	ThreadTS  string // スレッド返信ならその親ts。フィルタせずそのまま通す
}

// HistoryPage は履歴1ページとその継続カーソル
type HistoryPage struct {
	Messages   []HistoryMessage
	NextCursor string
}

// SentMessage は送信成功時にSlackが返す値
type SentMessage struct {
	Timestamp string
	MessageID string
}

// SlackAPI はコアが利用するSlack API呼び出しの境界。
// 応答はここで型付きの結果に正規化し、奥には生のレスポンスを持ち込まない
type SlackAPI interface {
	Verify(ctx context.Context) (VerifiedIdentity, error)
	ListMessages(ctx context.Context, channelID, oldest, cursor string) (HistoryPage, error)
	GetChannel(ctx context.Context, channelID string) (ChannelInfo, error)
	PostMessage(ctx context.Context, channelID, text, threadTS string) (SentMessage, error)
	ListChannels(ctx context.Context, kinds []string, limit int) ([]ChannelInfo, error)
}

// SlackClientFactory は復号済みトークンからAPIクライアントを作る。
// リクエストごとに対象ワークスペースのトークンでクライアントを組み立てる
type SlackClientFactory func(token string) SlackAPI

type slackClient struct {
	api *slack.Client
}

// NewSlackClient は slack-go ベースの本番クライアントを返す
func NewSlackClient(token string) SlackAPI {
	return &slackClient{api: slack.New(token)}
}

// NewSlackClientWithHTTPClient はHTTPクライアントを差し替えたクライアントを返す（テスト用）
func NewSlackClientWithHTTPClient(token string, httpClient *http.Client) SlackAPI {
	return &slackClient{api: slack.New(token, slack.OptionHTTPClient(httpClient))}
}

func (c *slackClient) Verify(ctx context.Context) (VerifiedIdentity, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return VerifiedIdentity{}, err
	}

	return VerifiedIdentity{
		TeamID:        resp.TeamID,
		TeamName:      resp.Team,
		TeamURL:       resp.URL,
		BotUserID:     resp.BotID,
		SubjectUserID: resp.UserID,
	}, nil
}

func (c *slackClient) ListMessages(ctx context.Context, channelID, oldest, cursor string) (HistoryPage, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    oldest,
		Cursor:    cursor,
		Limit:     historyPageSize,
		Inclusive: true,
	})
	if err != nil {
		return HistoryPage{}, err
	}

	page := HistoryPage{NextCursor: resp.ResponseMetaData.NextCursor}
	for _, msg := range resp.Messages {
		page.Messages = append(page.Messages, HistoryMessage{
			Text:      msg.Text,
			UserID:    msg.User,
			Timestamp: msg.Timestamp,
			ThreadTS:  msg.ThreadTimestamp,
		})
	}

	return page, nil
}

func (c *slackClient) GetChannel(ctx context.Context, channelID string) (ChannelInfo, error) {
	ch, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return ChannelInfo{}, err
	}

	return ChannelInfo{
		ID:        ch.ID,
		Name:      ch.Name,
		IsPrivate: ch.IsPrivate,
		IsMember:  ch.IsMember,
		Topic:     ch.Topic.Value,
	}, nil
}

func (c *slackClient) PostMessage(ctx context.Context, channelID, text, threadTS string) (SentMessage, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	_, ts, err := c.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return SentMessage{}, err
	}

	// Slackにtsと独立したメッセージIDは無いので、MessageIDは空のまま返す
	return SentMessage{Timestamp: ts}, nil
}

func (c *slackClient) ListChannels(ctx context.Context, kinds []string, limit int) ([]ChannelInfo, error) {
	channels, _, err := c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
		Types:           kinds,
		Limit:           limit,
		ExcludeArchived: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]ChannelInfo, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ChannelInfo{
			ID:        ch.ID,
			Name:      ch.Name,
			IsPrivate: ch.IsPrivate,
			IsMember:  ch.IsMember,
			Topic:     ch.Topic.Value,
		})
	}

	return out, nil
}
