package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/shouni/go-job-exact/internal/pipeline"
	"github.com/shouni/go-job-exact/pkg/jobboard"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <job_board_url>",
	Short: "求人ボードから求人リンクを抽出し、重複を除いてCSVに追記します",
	Long: `指定された求人ボードのページを取得し、求人投稿へのリンクとタイトルを抽出します。
既にCSVに記録されているURLは追加されません。投稿が見つからない場合も正常終了します。`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. URLのスキーム補完とバリデーション
		boardURL, err := ensureScheme(args[0])
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		timeout := overallTimeout()
		log.Printf("処理対象URL: %s (全体タイムアウト: %s)", boardURL, timeout)

		// 2. 依存性の初期化
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}
		extractor, err := jobboard.NewExtractor(fetcher)
		if err != nil {
			return fmt.Errorf("Extractorの初期化エラー: %w", err)
		}

		// 3. メインロジックの実行
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		result, err := pipeline.ScrapeBoard(ctx, extractor, newStore(), boardURL)
		if err != nil {
			return fmt.Errorf("求人ボードの処理エラー (URL: %s): %w", boardURL, err)
		}

		// 4. 結果の出力
		printResult(cmd.OutOrStdout(), result, appConfig.Output)
		return nil
	},
}
