package prompts

import (
	"fmt"
	"strings"
	"text/template"
)

// ScriptPromptBuilder は埋め込みテンプレートから台本解析プロンプトを構築します。
type ScriptPromptBuilder struct {
	tmpl *template.Template
}

// NewScriptPromptBuilder は ScriptPromptBuilder を初期化します。
func NewScriptPromptBuilder() (*ScriptPromptBuilder, error) {
	if StoryboardPrompt == "" {
		return nil, fmt.Errorf("プロンプトテンプレート (go:embed) の読み込みに失敗しました: 内容が空です")
	}

	tmpl, err := template.New("storyboard").Parse(StoryboardPrompt)
	if err != nil {
		return nil, fmt.Errorf("台本解析プロンプトの解析に失敗: %w", err)
	}
	return &ScriptPromptBuilder{tmpl: tmpl}, nil
}

// Build はテンプレートに台本テキストを流し込みます。
func (b *ScriptPromptBuilder) Build(data TemplateData) (string, error) {
	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("プロンプトテンプレートの実行に失敗しました: %w", err)
	}
	return sb.String(), nil
}
