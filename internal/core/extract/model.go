package extract

// LineRecord はソースファイルから抽出された1行を表す
// LineNumber はトリム前の分割結果に対する1始まりの行番号であり、
// 空行の除外によって振り直されることはない
type LineRecord struct {
	// Content はトリム済みの行内容（非空）
	Content string

	// File はルートディレクトリからの相対パス
	File string

	// LineNumber は元ファイル内での1始まりの行位置
	LineNumber int

	// Language は go-enry が判定した言語名（判定不能時は空）
	Language string
}
