package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument は外部呼び出しの前に弾く入力エラー
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidCredential は auth.test が失敗したか、応答に必須の識別情報が無い場合
	ErrInvalidCredential = errors.New("slack credential verification failed")

	// ErrIntegrity は暗号化blobが壊れている・鍵が合わない場合。
	// 該当ワークスペースの認証情報は復元不能として扱う
	ErrIntegrity = errors.New("credential ciphertext is corrupt")

	// ErrWorkspaceNotFound は存在しない、または非アクティブなワークスペースへの操作
	ErrWorkspaceNotFound = errors.New("workspace not found or inactive")
)

// UpstreamError は履歴取得・チャンネル一覧など読み取り系Slack APIの失敗
type UpstreamError struct {
	Op  string // 失敗したSlack APIメソッド名
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("slack %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// DeliveryError は chat.postMessage の失敗。CodeにはSlackのエラー文字列をそのまま入れる
type DeliveryError struct {
	Code string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("slack message delivery failed: %s", e.Code)
}

// ConsistencyError は送信自体は成功したのに台帳への記録に失敗した状態。
// Slack上にはメッセージが存在するので、呼び出し側はそのまま再送してはいけない
type ConsistencyError struct {
	SlackTS string
	Err     error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("message sent (ts=%s) but ledger insert failed: %v", e.SlackTS, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }
