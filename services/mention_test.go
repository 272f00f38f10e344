package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
)

func newMentionServiceForTest(t *testing.T) (*MentionService, *WorkspaceService) {
	db := setupTestDB(t)
	workspaces := NewWorkspaceService(db, testSecretKey, newGockSlackFactory())
	return NewMentionService(workspaces), workspaces
}

func TestFindMentionsFiltersByToken(t *testing.T) {
	defer gock.Off()
	svc, workspaces := newMentionServiceForTest(t)
	ws := createTestWorkspace(t, workspaces.db, uuid.NewString(), "T0001", "U1", "xoxb-1")

	gock.New("https://slack.com").
		Post("/api/conversations.history").
		Reply(200).
		JSON(map[string]interface{}{
			"ok": true,
			"messages": []map[string]interface{}{
				{"type": "message", "user": "U2", "text": "hello", "ts": "1717000003.000100"},
				{"type": "message", "user": "U3", "text": "<@U1> ping", "ts": "1717000002.000100"},
				{"type": "message", "text": "<!channel> standup", "ts": "1717000001.000100"},
			},
		})

	hits, err := svc.FindMentions(context.Background(), ws.ID, "C123", 7, 20)
	assert.NoError(t, err)
	assert.Len(t, hits, 2)

	// ストリーム順（新しい順）のままで、ヒットしない行は落ちる
	assert.Equal(t, "<@U1> ping", hits[0].Text)
	assert.Equal(t, "U3", hits[0].UserID)
	assert.Equal(t, "<!channel> standup", hits[1].Text)
	assert.Equal(t, "unknown", hits[1].UserID) // 発言者不明のメッセージ

	assert.Equal(t, "https://testteam.slack.com/archives/C123/p1717000002000100", hits[0].Permalink)
}

func TestFindMentionsFollowsCursor(t *testing.T) {
	defer gock.Off()
	svc, workspaces := newMentionServiceForTest(t)
	ws := createTestWorkspace(t, workspaces.db, uuid.NewString(), "T0001", "U1", "xoxb-1")

	gock.New("https://slack.com").
		Post("/api/conversations.history").
		Reply(200).
		JSON(map[string]interface{}{
			"ok": true,
			"messages": []map[string]interface{}{
				{"type": "message", "user": "U2", "text": "<@U1> page one", "ts": "1717000002.000100"},
			},
			"has_more":          true,
			"response_metadata": map[string]interface{}{"next_cursor": "cursor-2"},
		})

	gock.New("https://slack.com").
		Post("/api/conversations.history").
		Reply(200).
		JSON(map[string]interface{}{
			"ok": true,
			"messages": []map[string]interface{}{
				{"type": "message", "user": "U2", "text": "<!here> page two", "ts": "1717000001.000100"},
			},
		})

	hits, err := svc.FindMentions(context.Background(), ws.ID, "C123", 7, 20)
	assert.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, "<@U1> page one", hits[0].Text)
	assert.Equal(t, "<!here> page two", hits[1].Text)
	assert.True(t, gock.IsDone(), "2ページ目まで取得していない")
}

func TestFindMentionsStopsAtLimit(t *testing.T) {
	defer gock.Off()
	svc, workspaces := newMentionServiceForTest(t)
	ws := createTestWorkspace(t, workspaces.db, uuid.NewString(), "T0001", "U1", "xoxb-1")

	gock.New("https://slack.com").
		Post("/api/conversations.history").
		Reply(200).
		JSON(map[string]interface{}{
			"ok": true,
			"messages": []map[string]interface{}{
				{"type": "message", "user": "U2", "text": "<@U1> one", "ts": "1717000003.000100"},
				{"type": "message", "user": "U2", "text": "<@U1> two", "ts": "1717000002.000100"},
				{"type": "message", "user": "U2", "text": "<@U1> three", "ts": "1717000001.000100"},
			},
			"has_more":          true,
			"response_metadata": map[string]interface{}{"next_cursor": "cursor-never-used"},
		})

	hits, err := svc.FindMentions(context.Background(), ws.ID, "C123", 7, 2)
	assert.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, "<@U1> one", hits[0].Text)
	assert.Equal(t, "<@U1> two", hits[1].Text)
}

func TestFindMentionsBroadcastOnlyWithoutOwner(t *testing.T) {
	defer gock.Off()
	svc, workspaces := newMentionServiceForTest(t)
	ws := createTestWorkspace(t, workspaces.db, uuid.NewString(), "T0001", "", "xoxb-1")

	gock.New("https://slack.com").
		Post("/api/conversations.history").
		Reply(200).
		JSON(map[string]interface{}{
			"ok": true,
			"messages": []map[string]interface{}{
				{"type": "message", "user": "U2", "text": "<@U1> direct", "ts": "1717000002.000100"},
				{"type": "message", "user": "U2", "text": "<!everyone> notice", "ts": "1717000001.000100"},
			},
		})

	hits, err := svc.FindMentions(context.Background(), ws.ID, "C123", 7, 20)
	assert.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, "<!everyone> notice", hits[0].Text)
}

func TestFindMentionsZeroHitsIsNotError(t *testing.T) {
	defer gock.Off()
	svc, workspaces := newMentionServiceForTest(t)
	ws := createTestWorkspace(t, workspaces.db, uuid.NewString(), "T0001", "U1", "xoxb-1")

	gock.New("https://slack.com").
		Post("/api/conversations.history").
		Reply(200).
		JSON(map[string]interface{}{
			"ok": true,
			"messages": []map[string]interface{}{
				{"type": "message", "user": "U2", "text": "just chatting", "ts": "1717000001.000100"},
			},
		})

	hits, err := svc.FindMentions(context.Background(), ws.ID, "C123", 7, 20)
	assert.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFindMentionsRejectsOutOfRangeArguments(t *testing.T) {
	svc, _ := newMentionServiceForTest(t)

	// ワークスペース解決や外部呼び出しの前に弾かれるので、
	// 存在しないIDでも ErrInvalidArgument が返る
	cases := []struct {
		name     string
		daysBack int
		limit    int
	}{
		{"days_back too large", 366, 20},
		{"days_back zero", 0, 20},
		{"limit zero", 7, 0},
		{"limit too large", 7, 101},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.FindMentions(context.Background(), "no-such-id", "C123", tc.daysBack, tc.limit)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestFindMentionsRequiresChannel(t *testing.T) {
	svc, _ := newMentionServiceForTest(t)

	_, err := svc.FindMentions(context.Background(), "no-such-id", "", 7, 20)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFindMentionsUpstreamError(t *testing.T) {
	defer gock.Off()
	svc, workspaces := newMentionServiceForTest(t)
	ws := createTestWorkspace(t, workspaces.db, uuid.NewString(), "T0001", "U1", "xoxb-1")

	gock.New("https://slack.com").
		Post("/api/conversations.history").
		Reply(200).
		JSON(map[string]interface{}{
			"ok":    false,
			"error": "channel_not_found",
		})

	_, err := svc.FindMentions(context.Background(), ws.ID, "C123", 7, 20)

	var upstreamErr *UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "conversations.history", upstreamErr.Op)
}

func TestFindMentionsUnknownWorkspace(t *testing.T) {
	svc, _ := newMentionServiceForTest(t)

	_, err := svc.FindMentions(context.Background(), "no-such-id", "C123", 7, 20)
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}
