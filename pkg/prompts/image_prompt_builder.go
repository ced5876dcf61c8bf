package prompts

import (
	"fmt"
	"strings"
	"text/template"
)

// ImagePromptBuilder は、シーン記述の前後に映画的なスタイル指示を付け加えます。
type ImagePromptBuilder struct {
	tmpl *template.Template
}

// NewImagePromptBuilder は format（text/template 形式）から ImagePromptBuilder を生成します。
func NewImagePromptBuilder(format string) (*ImagePromptBuilder, error) {
	if strings.TrimSpace(format) == "" {
		return nil, fmt.Errorf("画像プロンプトのテンプレートが空です")
	}
	tmpl, err := template.New("image").Option("missingkey=error").Parse(format)
	if err != nil {
		return nil, fmt.Errorf("画像プロンプトテンプレートの解析に失敗: %w", err)
	}
	return &ImagePromptBuilder{tmpl: tmpl}, nil
}

// Build は description を埋め込んだ最終的な画像プロンプトを返します。
func (pb *ImagePromptBuilder) Build(description string) (string, error) {
	var sb strings.Builder
	data := ImageTemplateData{Description: strings.TrimSpace(description)}
	if err := pb.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("画像プロンプトの生成に失敗しました: %w", err)
	}
	return sb.String(), nil
}
