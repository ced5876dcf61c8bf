package prompts

// ScriptPrompt は、台本解析用の AI プロンプトを構築する契約です。
type ScriptPrompt interface {
	Build(data TemplateData) (string, error)
}

// ImagePrompt は、シーン記述をストーリーボード用の画像プロンプトに包む契約です。
type ImagePrompt interface {
	Build(description string) (string, error)
}
