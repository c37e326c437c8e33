package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/go-job-exact/internal/pipeline"
	"github.com/shouni/go-job-exact/pkg/feed"
)

// フィードURLを保持するフラグ変数
var feedURL string

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "求人フィード (RSS/Atom) から求人リンクを取り込みます",
	Long:  `指定されたURLから求人のRSSまたはAtomフィードを取得し、各アイテムのタイトルとリンクを重複を除いてCSVに追記します。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		processedURL, err := ensureScheme(feedURL)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		timeout := overallTimeout()
		log.Printf("処理対象フィードURL: %s (全体タイムアウト: %s)", processedURL, timeout)

		// 1. 依存性の初期化
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}
		parser := feed.NewParser(fetcher)

		// 2. フィードの取得とパース
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		parsedFeed, err := parser.FetchAndParse(ctx, processedURL)
		if err != nil {
			return fmt.Errorf("フィード解析パイプラインの実行エラー: %w", err)
		}
		records := feed.NewFeedAdapter(parsedFeed, processedURL).GetRecords(time.Now())
		if len(records) == 0 {
			log.Printf("フィードに求人リンクが見つかりませんでした (URL: %s)", processedURL)
		}

		// 3. 永続化
		result, err := pipeline.Persist(newStore(), records)
		if err != nil {
			return err
		}

		printResult(cmd.OutOrStdout(), result, appConfig.Output)
		return nil
	},
}

func init() {
	feedCmd.Flags().StringVarP(&feedURL, "url", "u", "", "取り込み対象のフィード (RSS/Atom) URL")
	feedCmd.MarkFlagRequired("url")
}
