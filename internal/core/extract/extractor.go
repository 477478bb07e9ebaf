package extract

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Extractor はディレクトリ配下のソースファイルを行単位に分解する
type Extractor struct {
	extensions map[string]struct{}
	logger     *slog.Logger
}

type extractorOptions struct {
	extensions []string
	logger     *slog.Logger
}

// ExtractorOption は Extractor のオプション設定
type ExtractorOption func(*extractorOptions)

// WithExtensions は拡張子ホワイトリストを上書きする
func WithExtensions(exts []string) ExtractorOption {
	return func(o *extractorOptions) {
		o.extensions = exts
	}
}

// WithExtractLogger は Extractor にロガーを設定する
func WithExtractLogger(logger *slog.Logger) ExtractorOption {
	return func(o *extractorOptions) {
		o.logger = logger
	}
}

// DefaultExtensions は拡張子未指定時のホワイトリスト
var DefaultExtensions = []string{".go", ".kt", ".java", ".py", ".js", ".ts", ".rs"}

// NewExtractor は新しい Extractor を作成する
func NewExtractor(opts ...ExtractorOption) *Extractor {
	options := extractorOptions{
		extensions: DefaultExtensions,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if len(options.extensions) == 0 {
		options.extensions = DefaultExtensions
	}

	extensions := make(map[string]struct{}, len(options.extensions))
	for _, ext := range options.extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	return &Extractor{
		extensions: extensions,
		logger:     options.logger,
	}
}

// ExtractDir は rootDir 配下の対象ファイルを走査し、ファイル順・行順の
// LineRecord 列を返す。ディレクトリが読めない場合はログを出して空を返す。
// 個々のファイルの読み込み失敗はスキップ扱いとし、残りの走査を続ける
func (e *Extractor) ExtractDir(rootDir string) []LineRecord {
	if _, err := os.Stat(rootDir); err != nil {
		e.logger.Error("ディレクトリを読み込めません", "dir", rootDir, "error", err)
		return nil
	}

	ignoreFilter := NewIgnoreFilter(rootDir)

	var records []LineRecord
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.logger.Warn("走査中にエラーが発生しました", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			rel = path
		}

		if d.IsDir() {
			if path != rootDir && ignoreFilter.ShouldIgnore(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if ignoreFilter.ShouldIgnore(rel) {
			return nil
		}
		if _, ok := e.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		if enry.IsVendor(rel) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			e.logger.Warn("ファイルを読み込めません", "file", rel, "error", readErr)
			return nil
		}
		if enry.IsBinary(content) {
			return nil
		}

		records = append(records, ExtractLines(rel, string(content))...)
		return nil
	})
	if err != nil {
		e.logger.Error("ディレクトリの走査に失敗しました", "dir", rootDir, "error", err)
		return nil
	}

	return records
}

// ExtractLines はファイル内容を行に分割し、トリム後に空でない行だけを返す。
// 行番号はフィルタリング前の分割位置に基づいて付与される
func ExtractLines(file, content string) []LineRecord {
	language := enry.GetLanguage(filepath.Base(file), []byte(content))

	lines := strings.Split(content, "\n")
	records := make([]LineRecord, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		records = append(records, LineRecord{
			Content:    trimmed,
			File:       file,
			LineNumber: i + 1,
			Language:   language,
		})
	}
	return records
}
