package publisher

import (
	"fmt"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

const defaultTitle = "Storyboard"

// BuildMarkdown はシーンの説明と画像パスを Markdown にまとめます。
// 画像のないシーンはエラーメッセージ、または未生成の旨を出力します。
func BuildMarkdown(title string, scenes []domain.Scene, imagePaths map[int]string) string {
	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	for _, scene := range scenes {
		sb.WriteString(fmt.Sprintf("## Scene %d\n\n", scene.ID+1))
		sb.WriteString(strings.TrimSpace(scene.Description))
		sb.WriteString("\n\n")

		switch {
		case imagePaths[scene.ID] != "":
			sb.WriteString(fmt.Sprintf("![Scene %d](%s)\n\n", scene.ID+1, imagePaths[scene.ID]))
		case scene.Error != "":
			sb.WriteString(fmt.Sprintf("> %s\n\n", scene.Error))
		default:
			sb.WriteString("> (not generated)\n\n")
		}
	}
	return sb.String()
}
