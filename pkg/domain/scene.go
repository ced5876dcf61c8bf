package domain

import (
	"encoding/base64"
	"encoding/json"
)

// Image は Model Service が生成した画像データとそのメタデータです。
type Image struct {
	Data     []byte
	MimeType string
}

// DataURI はブラウザでそのまま表示できる data URI 形式の文字列を返します。
func (img *Image) DataURI() string {
	if img == nil || len(img.Data) == 0 {
		return ""
	}
	return "data:" + img.MimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// MarshalJSON は画像を data URI 文字列として出力します。
func (img *Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(img.DataURI())
}

// SceneDraft は台本解析の結果として得られる、ID 付与前のシーン記述です。
type SceneDraft struct {
	Description string `json:"description"`
}

// Scene はストーリーボードの1パネルを表します。
// ID はパース結果の並び順（0 始まり）と一致し、実行中は変化しません。
type Scene struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Image       *Image `json:"image,omitempty"`
	IsLoading   bool   `json:"isLoading"`
	Error       string `json:"error,omitempty"`
}

// SceneStatus はシーンの処理状況です。
type SceneStatus string

const (
	ScenePending SceneStatus = "pending"
	SceneLoading SceneStatus = "loading"
	SceneDone    SceneStatus = "done"
	SceneFailed  SceneStatus = "failed"
)

// Status は現在のフィールド値からシーンの状態を判定します。
func (s Scene) Status() SceneStatus {
	switch {
	case s.IsLoading:
		return SceneLoading
	case s.Error != "":
		return SceneFailed
	case s.Image != nil:
		return SceneDone
	default:
		return ScenePending
	}
}

// Resolved はシーンが終端状態（画像あり、またはエラーあり）に達したかを返します。
func (s Scene) Resolved() bool {
	st := s.Status()
	return st == SceneDone || st == SceneFailed
}

// NewScenes はパース結果の並び順どおりに ID を振り、初期状態のシーン一覧を作ります。
func NewScenes(drafts []SceneDraft) []Scene {
	scenes := make([]Scene, len(drafts))
	for i, d := range drafts {
		scenes[i] = Scene{ID: i, Description: d.Description}
	}
	return scenes
}

// RunStatus はパイプライン実行全体の状態です。
type RunStatus string

const (
	RunIdle       RunStatus = "idle"
	RunParsing    RunStatus = "parsing"
	RunGenerating RunStatus = "generating"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
	RunCanceled   RunStatus = "canceled"
)

// Terminal は実行がこれ以上状態遷移しないかを返します。
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed || s == RunCanceled
}

// Storyboard はある時点でのストーリーボード全体のスナップショットです。
// Version は状態遷移のたびに 1 ずつ増えます。
type Storyboard struct {
	Version int       `json:"version"`
	Status  RunStatus `json:"status"`
	Scenes  []Scene   `json:"scenes"`
	Error   string    `json:"error,omitempty"`
}

// Clone は Scenes を含めたコピーを返します。画像のバイト列は不変として共有します。
func (sb Storyboard) Clone() Storyboard {
	out := sb
	if sb.Scenes != nil {
		out.Scenes = make([]Scene, len(sb.Scenes))
		copy(out.Scenes, sb.Scenes)
	}
	return out
}

// Loading は読み込み中のシーン数を返します。
func (sb Storyboard) Loading() int {
	n := 0
	for _, s := range sb.Scenes {
		if s.IsLoading {
			n++
		}
	}
	return n
}
