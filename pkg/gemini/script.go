package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"

	"google.golang.org/genai"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// errInvalidStructure は応答が「description を持つオブジェクトの配列」でない場合のエラーです。
var errInvalidStructure = errors.New("APIから不正なJSON構造を受信しました")

// sceneListSchema は台本解析の応答スキーマです。
var sceneListSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"description": {
				Type:        genai.TypeString,
				Description: "A concise visual description for a storyboard panel for this scene.",
			},
		},
		Required: []string{"description"},
	},
}

// ParseScript は台本を解析し、並び順を保ったシーン記述の一覧を返します。
func (c *Client) ParseScript(ctx context.Context, script string) ([]domain.SceneDraft, error) {
	prompt, err := c.scriptPrompt.Build(prompts.TemplateData{InputText: script})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Gemini API で台本を解析します", "model", c.cfg.ScriptModel)
	resp, err := c.models.GenerateContent(ctx, c.cfg.ScriptModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   sceneListSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("台本解析リクエストに失敗しました: %w", err)
	}
	if resp == nil {
		return nil, errInvalidStructure
	}

	return decodeScenes(resp.Text())
}

// decodeScenes は応答テキストを検証しながらシーン記述へ変換します。
func decodeScenes(raw string) ([]domain.SceneDraft, error) {
	raw = strings.TrimSpace(raw)
	if m := jsonBlockRegex.FindStringSubmatch(raw); len(m) > 1 {
		raw = m[1]
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w (応答抜粋: %q): %v", errInvalidStructure, truncateString(raw, 200), err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: 配列ではありません", errInvalidStructure)
	}

	drafts := make([]domain.SceneDraft, 0, len(items))
	for i, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("%w: 要素 %d がオブジェクトではありません", errInvalidStructure, i)
		}
		field, ok := obj["description"]
		if !ok {
			return nil, fmt.Errorf("%w: 要素 %d に description がありません", errInvalidStructure, i)
		}
		var desc string
		if err := json.Unmarshal(field, &desc); err != nil || string(field) == "null" {
			return nil, fmt.Errorf("%w: 要素 %d の description が文字列ではありません", errInvalidStructure, i)
		}
		drafts = append(drafts, domain.SceneDraft{Description: desc})
	}
	return drafts, nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
