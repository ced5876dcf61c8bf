package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewScenes(t *testing.T) {
	drafts := []SceneDraft{{Description: "a"}, {Description: "b"}, {Description: "c"}}
	scenes := NewScenes(drafts)

	if len(scenes) != len(drafts) {
		t.Fatalf("シーン数が一致しません: 期待 %d, 実際 %d", len(drafts), len(scenes))
	}
	for i, s := range scenes {
		if s.ID != i {
			t.Errorf("シーン %d の ID が %d になっています", i, s.ID)
		}
		if s.Description != drafts[i].Description {
			t.Errorf("シーン %d の説明が違います: %q", i, s.Description)
		}
		if s.Status() != ScenePending {
			t.Errorf("初期状態は pending のはずです: %s", s.Status())
		}
	}
}

func TestScene_Status(t *testing.T) {
	img := &Image{Data: []byte{1}, MimeType: "image/jpeg"}
	tests := []struct {
		name  string
		scene Scene
		want  SceneStatus
	}{
		{"未処理", Scene{}, ScenePending},
		{"読み込み中", Scene{IsLoading: true}, SceneLoading},
		{"画像あり", Scene{Image: img}, SceneDone},
		{"エラーあり", Scene{Error: "boom"}, SceneFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scene.Status(); got != tt.want {
				t.Errorf("期待値 %s, 実際の値 %s", tt.want, got)
			}
		})
	}
}

func TestImage_MarshalJSON(t *testing.T) {
	scene := Scene{ID: 1, Description: "door opens", Image: &Image{Data: []byte("abc"), MimeType: "image/jpeg"}}

	data, err := json.Marshal(scene)
	if err != nil {
		t.Fatalf("Marshal に失敗しました: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, `"image":"data:image/jpeg;base64,YWJj"`) {
		t.Errorf("画像が data URI として出力されていません: %s", out)
	}
	if !strings.Contains(out, `"isLoading":false`) {
		t.Errorf("isLoading が出力されていません: %s", out)
	}
	if strings.Contains(out, `"error"`) {
		t.Errorf("空のエラーは省略されるはずです: %s", out)
	}
}

func TestStoryboard_Clone(t *testing.T) {
	sb := Storyboard{Scenes: []Scene{{ID: 0}, {ID: 1}}}
	cp := sb.Clone()
	cp.Scenes[0].IsLoading = true

	if sb.Scenes[0].IsLoading {
		t.Error("Clone がシーンスライスを共有しています")
	}
	if cp.Loading() != 1 {
		t.Errorf("読み込み中のシーン数が違います: %d", cp.Loading())
	}
}
