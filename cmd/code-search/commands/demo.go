package commands

import (
	"context"

	"github.com/urfave/cli/v3"
)

// DemoAction はインデックス化とデモ検索を続けて実行するコマンドのアクション。
// インデックス化が完了してから検索を開始する
func DemoAction(ctx context.Context, cmd *cli.Command) error {
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
	limit := cmd.Int("limit")
	if limit <= 0 {
		limit = appCtx.Config.Search.Limit
	}

	if err := runIndexing(ctx, appCtx, dir, collection); err != nil {
		return err
	}

	runSearch(ctx, appCtx, collection, cmd.String("query"), limit)
	return nil
}
