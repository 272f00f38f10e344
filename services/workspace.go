package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slack-workspace-hub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkspaceService はワークスペースの登録・参照と認証情報の解決を一手に担う。
// 他のサービスは必ずここを通してワークスペースとトークンを取得する
type WorkspaceService struct {
	db        *gorm.DB
	secretKey string
	newSlack  SlackClientFactory
}

func NewWorkspaceService(db *gorm.DB, secretKey string, factory SlackClientFactory) *WorkspaceService {
	return &WorkspaceService{db: db, secretKey: secretKey, newSlack: factory}
}

// RegisterInput は登録リクエスト。
// OwnerUserID は呼び出し側が明示的に指定する（トークン自身のsubjectを
// オーナーとして流用することはしない。botトークンのsubjectはbot自身であって
// 人間のオーナーではないため）。未指定の場合はオーナー不在として扱う
type RegisterInput struct {
	Token       string
	OwnerUserID string
	Description string
}

// Register はトークンを auth.test で検証し、チームIDをキーにワークスペースを
// upsertする。同じチームを再登録しても行は増えず、2回目以降は更新として扱う
func (s *WorkspaceService) Register(ctx context.Context, in RegisterInput) (*models.Workspace, error) {
	if in.Token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidArgument)
	}

	identity, err := s.newSlack(in.Token).Verify(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if identity.TeamID == "" || identity.TeamName == "" || identity.TeamURL == "" || identity.BotUserID == "" {
		return nil, fmt.Errorf("%w: auth.test response is missing identity fields", ErrInvalidCredential)
	}

	encrypted, err := EncryptToken(in.Token, s.secretKey)
	if err != nil {
		return nil, err
	}

	var ws models.Workspace
	err = s.db.Where("slack_team_id = ?", identity.TeamID).First(&ws).Error
	switch {
	case err == nil:
		// 既存チームの再登録は更新。activeも強制的に戻す
		s.applyIdentity(&ws, identity, encrypted, in)
		if err := s.db.Save(&ws).Error; err != nil {
			return nil, err
		}
		return &ws, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		ws = models.Workspace{
			ID:          uuid.NewString(),
			SlackTeamID: identity.TeamID,
			CreatedAt:   time.Now(),
		}
		s.applyIdentity(&ws, identity, encrypted, in)
		if createErr := s.db.Create(&ws).Error; createErr != nil {
			// 同時登録でユニーク制約に負けた場合は、先に入った行への更新に切り替える
			var existing models.Workspace
			if lookupErr := s.db.Where("slack_team_id = ?", identity.TeamID).First(&existing).Error; lookupErr == nil {
				s.applyIdentity(&existing, identity, encrypted, in)
				if saveErr := s.db.Save(&existing).Error; saveErr != nil {
					return nil, saveErr
				}
				return &existing, nil
			}
			return nil, createErr
		}
		return &ws, nil

	default:
		return nil, err
	}
}

func (s *WorkspaceService) applyIdentity(ws *models.Workspace, identity VerifiedIdentity, encryptedToken string, in RegisterInput) {
	ws.TeamName = identity.TeamName
	ws.TeamURL = identity.TeamURL
	ws.EncryptedToken = encryptedToken
	ws.OwnerUserID = in.OwnerUserID
	ws.BotUserID = identity.BotUserID
	ws.Description = in.Description
	ws.IsActive = true
	ws.UpdatedAt = time.Now()
}

// Get はアクティブなワークスペースだけを返す
func (s *WorkspaceService) Get(id string) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.db.Where("id = ? AND is_active = ?", id, true).First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// List は作成の新しい順で返す。includeInactive は管理用で、
// 通常の呼び出しでは非アクティブ行は見えない
func (s *WorkspaceService) List(ownerUserID string, includeInactive bool) ([]models.Workspace, error) {
	q := s.db.Order("created_at DESC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if ownerUserID != "" {
		q = q.Where("owner_user_id = ?", ownerUserID)
	}

	var workspaces []models.Workspace
	if err := q.Find(&workspaces).Error; err != nil {
		return nil, err
	}
	return workspaces, nil
}

// Deactivate は論理削除。行は残るが、以後すべての検索・操作から外れる
func (s *WorkspaceService) Deactivate(id string) error {
	ws, err := s.Get(id)
	if err != nil {
		return err
	}

	ws.IsActive = false
	ws.UpdatedAt = time.Now()
	return s.db.Save(ws).Error
}

// ResolveClient はワークスペースを解決し、復号済みトークンで組み立てた
// Slackクライアントを返す。復号できない行は ErrIntegrity で打ち切る
func (s *WorkspaceService) ResolveClient(id string) (*models.Workspace, SlackAPI, error) {
	ws, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}

	token, err := DecryptToken(ws.EncryptedToken, s.secretKey)
	if err != nil {
		return nil, nil, err
	}

	return ws, s.newSlack(token), nil
}

// ListChannels はワークスペースのトークンで conversations.list を呼ぶパススルー
func (s *WorkspaceService) ListChannels(ctx context.Context, workspaceID string, kinds []string, limit int) ([]ChannelInfo, error) {
	if len(kinds) == 0 {
		kinds = []string{"public_channel"}
	}
	if limit < 1 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	_, api, err := s.ResolveClient(workspaceID)
	if err != nil {
		return nil, err
	}

	channels, err := api.ListChannels(ctx, kinds, limit)
	if err != nil {
		return nil, &UpstreamError{Op: "conversations.list", Err: err}
	}
	return channels, nil
}
