package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jinford/code-search/internal/core/extract"
	"github.com/jinford/code-search/internal/core/indexing"
	"github.com/jinford/code-search/internal/infra/git"
	"github.com/jinford/code-search/internal/infra/tokenizer"
)

// IndexDirAction はローカルディレクトリをインデックス化するコマンドのアクション
func IndexDirAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	dir := cmd.String("dir")
	if dir == "" {
		dir = appCtx.Config.Index.Dir
	}
	collection := cmd.String("collection")
	if collection == "" {
		collection = appCtx.Config.Index.Collection
	}

	return runIndexing(ctx, appCtx, dir, collection)
}

// IndexGitAction はGitリポジトリをクローンしてインデックス化するコマンドのアクション
func IndexGitAction(ctx context.Context, cmd *cli.Command) error {
	repoURL := cmd.String("url")
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	gitClient := git.NewClient(appCtx.Config.Git.CloneDir)

	collection := cmd.String("collection")
	if collection == "" {
		collection, err = gitClient.CollectionName(repoURL)
		if err != nil {
			return fmt.Errorf("コレクション名の導出に失敗: %w", err)
		}
	}

	fmt.Printf("Cloning %s ...\n", repoURL)
	dir, err := gitClient.CloneOrOpen(ctx, repoURL)
	if err != nil {
		slog.Error("リポジトリの取得に失敗しました", "url", repoURL, "error", err)
		return err
	}

	return runIndexing(ctx, appCtx, dir, collection)
}

// runIndexing はインデックス化パイプラインを組み立てて実行する
func runIndexing(ctx context.Context, appCtx *AppContext, dir, collection string) error {
	extractor := extract.NewExtractor(
		extract.WithExtensions(appCtx.Config.Index.Extensions),
	)

	opts := []indexing.IndexServiceOption{}
	counter, err := tokenizer.NewCounter()
	if err != nil {
		// トークンカウンタはガード用途のため、初期化失敗時は警告してガードなしで続行する
		slog.Warn("トークンカウンタの初期化に失敗しました", "error", err)
	} else {
		opts = append(opts, indexing.WithTokenGuard(counter, appCtx.Config.Index.MaxLineTokens))
	}

	service := indexing.NewIndexService(appCtx.Store, extractor, appCtx.Embedder, opts...)

	fmt.Printf("Indexing %s into collection %q ...\n", dir, collection)

	result, err := service.IndexDirectory(ctx, indexing.IndexParams{
		Dir:        dir,
		Collection: collection,
	})
	if err != nil {
		slog.Error("インデックス化に失敗しました", "dir", dir, "error", err)
		return err
	}

	fmt.Printf("Indexed %d lines (%d skipped) in %s\n",
		result.IndexedLines, result.SkippedLines, result.Duration.Round(time.Millisecond))
	return nil
}
