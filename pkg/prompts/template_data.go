package prompts

import (
	_ "embed"
)

// TemplateData は台本解析プロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	InputText string
}

// ImageTemplateData は画像プロンプトのテンプレートに渡すデータ構造です。
type ImageTemplateData struct {
	Description string
}

//go:embed storyboard.md
var StoryboardPrompt string
