package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jinford/code-search/cmd/code-search/commands"
	"github.com/jinford/code-search/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定（診断は標準エラーへ、結果表示は標準出力へ）
	logger.New(logger.DefaultConfig())

	app := &cli.Command{
		Name:  "code-search",
		Usage: "ソースコード行のセマンティック検索ツール",
		Commands: []*cli.Command{
			{
				Name:  "index",
				Usage: "インデックス管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "dir",
						Usage: "ローカルディレクトリをインデックス化",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:  "dir",
								Usage: "インデックス対象ディレクトリ（省略時は設定値）",
							},
							&cli.StringFlag{
								Name:  "collection",
								Usage: "コレクション名（省略時は設定値）",
							},
						},
						Action: commands.IndexDirAction,
					},
					{
						Name:  "git",
						Usage: "Gitリポジトリをクローンしてインデックス化",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "url",
								Usage:    "GitリポジトリURL",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "collection",
								Usage: "コレクション名（省略時はURLから導出）",
							},
						},
						Action: commands.IndexGitAction,
					},
				},
			},
			{
				Name:  "search",
				Usage: "自然言語クエリで類似行を検索",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "query",
						Usage:    "検索クエリ",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "検索結果件数（省略時は設定値）",
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "コレクション名（省略時は設定値）",
					},
				},
				Action: commands.SearchAction,
			},
			{
				Name:  "demo",
				Usage: "インデックス化とデモ検索を続けて実行",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "インデックス対象ディレクトリ（省略時は設定値）",
					},
					&cli.StringFlag{
						Name:  "query",
						Usage: "デモ検索クエリ",
						Value: "function that computes factorial",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "検索結果件数（省略時は設定値）",
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "コレクション名（省略時は設定値）",
					},
				},
				Action: commands.DemoAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
