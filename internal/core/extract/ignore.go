package extract

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// defaultIgnorePatterns は常に除外するパターン
var defaultIgnorePatterns = []string{
	".git/",
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	"target/",
}

// IgnoreFilter は .gitignore と .codesearchignore のパターンマッチングを提供します
type IgnoreFilter struct {
	patterns *gitignore.GitIgnore
}

// NewIgnoreFilter は rootPath 配下の .gitignore と .codesearchignore を読み込んで
// 新しい IgnoreFilter を作成します。どちらのファイルも無い場合は
// デフォルトパターンのみで動作します
func NewIgnoreFilter(rootPath string) *IgnoreFilter {
	patterns := make([]string, 0, len(defaultIgnorePatterns))
	patterns = append(patterns, defaultIgnorePatterns...)

	for _, name := range []string{".gitignore", ".codesearchignore"} {
		patterns = append(patterns, readIgnoreFile(filepath.Join(rootPath, name))...)
	}

	return &IgnoreFilter{
		patterns: gitignore.CompileIgnoreLines(patterns...),
	}
}

// ShouldIgnore はパスが除外対象かどうかを判定します
func (f *IgnoreFilter) ShouldIgnore(path string) bool {
	if f.patterns == nil {
		return false
	}
	return f.patterns.MatchesPath(path)
}

// readIgnoreFile は ignore ファイルを読み込んでパターンのスライスを返します
// 読めない場合は空を返します
func readIgnoreFile(path string) []string {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		// 空行とコメント行をスキップ
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}
