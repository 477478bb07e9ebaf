package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jinford/code-search/internal/core/search"
)

// SearchAction は自然言語クエリで類似行を検索するコマンドのアクション
func SearchAction(ctx context.Context, cmd *cli.Command) error {
	query := cmd.String("query")
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	collection := cmd.String("collection")
	if collection == "" {
		collection = appCtx.Config.Index.Collection
	}
	limit := cmd.Int("limit")
	if limit <= 0 {
		limit = appCtx.Config.Search.Limit
	}

	runSearch(ctx, appCtx, collection, query, limit)
	return nil
}

// runSearch は検索を実行して結果を標準出力に表示する
func runSearch(ctx context.Context, appCtx *AppContext, collection, query string, limit int) {
	service := search.NewSearchService(appCtx.Store, appCtx.Embedder)

	fmt.Printf("Query: %s\n", query)

	matches := service.Search(ctx, search.SearchParams{
		Collection: collection,
		Query:      query,
		Limit:      limit,
	})

	printMatches(matches)
}

// printMatches は検索結果を1行ずつ整形して表示する
func printMatches(matches []search.Match) {
	if len(matches) == 0 {
		fmt.Println("No matches found.")
		return
	}

	for _, m := range matches {
		fmt.Printf("File: %s, Line: %d, Content: %s, Distance: %.3f\n",
			m.File, m.LineNumber, m.Content, m.Distance)
	}
}
