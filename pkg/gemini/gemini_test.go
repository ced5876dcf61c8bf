package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"

	"google.golang.org/genai"
)

type fakeModels struct {
	text       string
	contentErr error
	images     *genai.GenerateImagesResponse
	imageErr   error

	gotModel  string
	gotPrompt string
	gotImgCfg *genai.GenerateImagesConfig
	gotCfg    *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotCfg = cfg
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	return textResponse(f.text), nil
}

func (f *fakeModels) GenerateImages(_ context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.gotModel = model
	f.gotPrompt = prompt
	f.gotImgCfg = cfg
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return f.images, nil
}

type fakeSender struct {
	reply string
	err   error
	sent  []string
}

func (f *fakeSender) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	for _, p := range parts {
		f.sent = append(f.sent, p.Text)
	}
	if f.err != nil {
		return nil, f.err
	}
	return textResponse(f.reply), nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func newTestClient(t *testing.T, models modelsAPI, sender messageSender) *Client {
	t.Helper()
	c, err := newClient(config.NewConfig("test-key"), models, func(context.Context, string, *genai.GenerateContentConfig) (messageSender, error) {
		return sender, nil
	})
	if err != nil {
		t.Fatalf("クライアントの初期化に失敗しました: %v", err)
	}
	return c
}

func TestParseScript(t *testing.T) {
	models := &fakeModels{text: `[{"description":"A man stands in a room."}]`}
	c := newTestClient(t, models, nil)

	drafts, err := c.ParseScript(context.Background(), "INT. ROOM - DAY. A man stands.")
	if err != nil {
		t.Fatalf("ParseScript に失敗しました: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Description != "A man stands in a room." {
		t.Errorf("解析結果が違います: %+v", drafts)
	}
	if models.gotModel != config.DefaultScriptModel {
		t.Errorf("モデル名が違います: %s", models.gotModel)
	}
	if models.gotCfg.ResponseMIMEType != "application/json" || models.gotCfg.ResponseSchema == nil {
		t.Error("JSON 応答スキーマが設定されていません")
	}
}

func TestDecodeScenes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"正常な配列", `[{"description":"a"},{"description":"b"}]`, 2, false},
		{"コードブロック付き", "```json\n[{\"description\":\"a\"}]\n```", 1, false},
		{"空配列", `[]`, 0, false},
		{"余分なキーは許容", `[{"description":"a","camera":"wide"}]`, 1, false},
		{"配列ではない", `{"description":"a"}`, 0, true},
		{"description がない", `[{"text":"a"}]`, 0, true},
		{"description が文字列ではない", `[{"description":42}]`, 0, true},
		{"要素がオブジェクトではない", `["a"]`, 0, true},
		{"JSON ではない", `not json`, 0, true},
		{"null", `null`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeScenes(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, errInvalidStructure) {
					t.Errorf("errInvalidStructure を期待しましたが %v でした", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("予期しないエラー: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("要素数 期待 %d, 実際 %d", tt.want, len(got))
			}
		})
	}
}

func TestGenerateImage(t *testing.T) {
	t.Run("プロンプトを包んで1枚生成すること", func(t *testing.T) {
		models := &fakeModels{images: &genai.GenerateImagesResponse{
			GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: []byte("jpg"), MIMEType: "image/jpeg"}}},
		}}
		c := newTestClient(t, models, nil)

		img, err := c.GenerateImage(context.Background(), "a dark alley")
		if err != nil {
			t.Fatalf("GenerateImage に失敗しました: %v", err)
		}
		if string(img.Data) != "jpg" || img.MimeType != "image/jpeg" {
			t.Errorf("画像データが違います: %+v", img)
		}
		if !strings.Contains(models.gotPrompt, "storyboard panel illustration of: a dark alley.") {
			t.Errorf("スタイル指示で包まれていません: %q", models.gotPrompt)
		}
		if models.gotImgCfg.AspectRatio != "16:9" || models.gotImgCfg.NumberOfImages != 1 {
			t.Errorf("画像設定が違います: %+v", models.gotImgCfg)
		}
	})

	t.Run("画像が空ならエラーになること", func(t *testing.T) {
		c := newTestClient(t, &fakeModels{images: &genai.GenerateImagesResponse{}}, nil)
		if _, err := c.GenerateImage(context.Background(), "x"); !errors.Is(err, errNoImage) {
			t.Errorf("errNoImage を期待しましたが %v でした", err)
		}
	})

	t.Run("429 は RateLimitError になること", func(t *testing.T) {
		apiErr := genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}
		c := newTestClient(t, &fakeModels{imageErr: apiErr}, nil)

		_, err := c.GenerateImage(context.Background(), "x")
		if !domain.IsRateLimited(err) {
			t.Errorf("RateLimitError を期待しましたが %v でした", err)
		}
	})

	t.Run("その他の失敗はレート制限扱いしないこと", func(t *testing.T) {
		apiErr := genai.APIError{Code: 500, Status: "INTERNAL", Message: "boom"}
		c := newTestClient(t, &fakeModels{imageErr: apiErr}, nil)

		_, err := c.GenerateImage(context.Background(), "x")
		if err == nil || domain.IsRateLimited(err) {
			t.Errorf("通常のエラーを期待しましたが %v でした", err)
		}
	})
}

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"APIError 429", genai.APIError{Code: 429}, true},
		{"APIError RESOURCE_EXHAUSTED", genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}, true},
		{"ラップされた APIError", fmt.Errorf("wrap: %w", genai.APIError{Code: 429}), true},
		{"APIError 503", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, false},
		{"文字列に 429", errors.New("got status 429 from upstream"), true},
		{"無関係なエラー", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRateLimit(tt.err); got != tt.want {
				t.Errorf("期待値 %v, 実際の値 %v", tt.want, got)
			}
		})
	}
}

func TestConversation(t *testing.T) {
	sender := &fakeSender{reply: "Use a wide shot."}
	c := newTestClient(t, &fakeModels{}, sender)

	conv, err := c.CreateChatSession(context.Background(), config.DefaultSystemInstruction)
	if err != nil {
		t.Fatalf("CreateChatSession に失敗しました: %v", err)
	}

	reply, err := conv.SendTurn(context.Background(), "How do I open a scene?")
	if err != nil {
		t.Fatalf("SendTurn に失敗しました: %v", err)
	}
	if reply != "Use a wide shot." {
		t.Errorf("応答が違います: %q", reply)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "How do I open a scene?" {
		t.Errorf("送信されたのは今回のターンだけのはずです: %v", sender.sent)
	}

	sender.err = errors.New("unavailable")
	if _, err := conv.SendTurn(context.Background(), "again"); err == nil {
		t.Error("送信失敗がエラーとして返りませんでした")
	}
}
