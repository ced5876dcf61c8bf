package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/shouni/go-storyboard-kit/examples"
)

// readScript は --file で指定されたファイル、"-" またはパイプされた標準入力から台本を読み込みます。
// --example が指定された場合は同梱のサンプル台本を返します。
func readScript(path string, stdin io.Reader) (string, error) {
	switch {
	case opts.UseExample:
		return examples.SampleScript, nil
	case path == "-":
		return readAll(stdin)
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("台本ファイルの読み込みに失敗しました: %w", err)
		}
		return string(data), nil
	case isStdin():
		return readAll(stdin)
	default:
		return "", fmt.Errorf("台本（--file または標準入力）を指定してください")
	}
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("標準入力の読み込みに失敗しました: %w", err)
	}
	return string(data), nil
}

func isStdin() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
