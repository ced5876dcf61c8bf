package asset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultImageDir は生成された画像を格納するデフォルトのディレクトリ名です。
	DefaultImageDir = "images"
	// DefaultStoryboardName はストーリーボードのデフォルト Markdown ファイル名です。
	DefaultStoryboardName = "storyboard.md"
	// DefaultSceneBaseName はシーン画像の共通のベース名です。
	DefaultSceneBaseName = "scene"
)

// SceneFileRegex はシーン画像 (scene_1.jpg 等) に一致します。
var SceneFileRegex = regexp.MustCompile(`^` + regexp.QuoteMeta(DefaultSceneBaseName) + `_\d+\.[a-z]+$`)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ExtensionFor は MIME タイプに対応する拡張子を返します。未知の場合は ".png" です。
func ExtensionFor(mimeType string) string {
	if ext, ok := extensions[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return ext
	}
	return ".png"
}

// SceneFileName はシーン ID（0 始まり）から画像のファイル名を生成します。
// 例: 0, "image/jpeg" -> "scene_1.jpg"
func SceneFileName(sceneID int, mimeType string) (string, error) {
	if sceneID < 0 {
		return "", fmt.Errorf("無効なシーンIDです: %d", sceneID)
	}
	return GenerateIndexedPath(DefaultSceneBaseName+ExtensionFor(mimeType), sceneID+1)
}

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolveOutputPath(baseDir, fileName)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入し、
// 新しいパス文字列を生成します。index は1以上の整数である必要があります。
// 例: "path/to/image.png", 1 -> "path/to/image_1.png"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}

// RelativeImagePath は Markdown から参照する画像の相対パスを返します。
func RelativeImagePath(fullPath string) string {
	return DefaultImageDir + "/" + filepath.Base(fullPath)
}
