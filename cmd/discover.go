package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-job-exact/internal/pipeline"
	"github.com/shouni/go-job-exact/pkg/jobboard"
	"github.com/shouni/go-job-exact/pkg/search"
)

// コマンドラインフラグ変数を定義
var (
	discoverRoles     []string
	discoverLocations []string
	discoverPause     time.Duration
	searchEndpoint    string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "検索エンジン経由で求人ボード横断の求人リンクを探索します",
	Long: `職種と勤務地の組み合わせごとに site: 検索を順番に実行し、検索結果に含まれる既知の求人ボードの投稿リンクをCSVに追記します。
職種と勤務地は --role / --location フラグ、または設定ファイルで指定します。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 検索条件の決定 (フラグ優先)
		roles := appConfig.Roles
		if len(discoverRoles) > 0 {
			roles = discoverRoles
		}
		locations := appConfig.Locations
		if len(discoverLocations) > 0 {
			locations = discoverLocations
		}
		pause := appConfig.Pause
		if cmd.Flags().Changed("pause") {
			pause = discoverPause
		}
		if pause < 0 {
			return fmt.Errorf("--pause には0以上の値を指定してください: %s", pause)
		}

		queries := search.BuildQueries(appConfig.SearchSite, roles, locations)
		if len(queries) == 0 {
			return fmt.Errorf("検索する職種が一つも指定されていません")
		}
		urls := make([]string, 0, len(queries))
		for _, q := range queries {
			if clibase.Flags.Verbose {
				log.Printf("検索クエリ: %s", q.Text)
			}
			urls = append(urls, q.URL(searchEndpoint))
		}

		// 2. 依存性の初期化
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}
		extractor, err := jobboard.NewExtractor(fetcher,
			jobboard.WithLinkResolver(search.ResolveRedirect),
			jobboard.WithAnyBoard(),
		)
		if err != nil {
			return fmt.Errorf("Extractorの初期化エラー: %w", err)
		}

		// 3. 全体タイムアウト: クエリごとの全体タイムアウトと待機時間の合計
		timeout := time.Duration(len(urls))*overallTimeout() + time.Duration(len(urls)-1)*pause
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		log.Printf("求人リンクの探索を開始します (クエリ数: %d, 待機時間: %s, 全体タイムアウト: %s)", len(urls), pause, timeout)

		result, err := pipeline.Discover(ctx, extractor, newStore(), urls, pause)
		if err != nil {
			return fmt.Errorf("求人リンクの探索エラー: %w", err)
		}

		printResult(cmd.OutOrStdout(), result, appConfig.Output)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringSliceVar(&discoverRoles, "role", nil, "検索する職種 (複数指定可)")
	discoverCmd.Flags().StringSliceVar(&discoverLocations, "location", nil, "検索する勤務地 (複数指定可)")
	discoverCmd.Flags().DurationVar(&discoverPause, "pause", 0, "検索クエリ間の待機時間 (未指定時は設定ファイルの値)")
	discoverCmd.Flags().StringVar(&searchEndpoint, "search-endpoint", search.DefaultEndpoint, "検索結果ページのエンドポイント")
}
