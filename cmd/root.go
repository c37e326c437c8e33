package cmd

import (
	"fmt"
	"log"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/spf13/cobra"

	"github.com/shouni/go-job-exact/internal/config"
	"github.com/shouni/go-job-exact/pkg/jobboard"
	"github.com/shouni/go-job-exact/pkg/store"
)

// --- グローバル定数 ---

const (
	appName           = "job-exact"
	defaultTimeoutSec = 10 // 秒
	defaultMaxRetries = 3  // デフォルトのリトライ回数

	// 全体処理のタイムアウトはクライアントタイムアウトの何倍か
	overallTimeoutFactor = 2
	// クライアントタイムアウトに0が指定された場合の全体タイムアウト
	DefaultOverallTimeout = 20 * time.Second
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec   int    // --timeout タイムアウト
	MaxRetries   int    // --max-retries リトライ回数
	Output       string // --output 出力CSVのパス
	SettingsPath string // --settings YAML設定ファイルのパス
}

var Flags AppFlags
var globalFetcher jobboard.Fetcher
var appConfig *config.Config

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().IntVar(
		&Flags.TimeoutSec,
		"timeout",
		defaultTimeoutSec,
		"HTTPリクエストのタイムアウト時間（秒）",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.MaxRetries,
		"max-retries",
		defaultMaxRetries,
		"HTTPリクエストのリトライ最大回数",
	)
	rootCmd.PersistentFlags().StringVar(
		&Flags.Output,
		"output",
		"",
		fmt.Sprintf("求人データを保存するCSVファイルのパス (未指定時は $%s または %s)", config.EnvOutput, config.DefaultOutput),
	)
	rootCmd.PersistentFlags().StringVar(
		&Flags.SettingsPath,
		"settings",
		"",
		fmt.Sprintf("YAML設定ファイルのパス (未指定時は $%s)", config.EnvSettings),
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	if Flags.MaxRetries < 0 {
		return fmt.Errorf("--max-retries には0以上の値を指定してください: %d", Flags.MaxRetries)
	}

	cfg, err := config.Load(Flags.SettingsPath)
	if err != nil {
		return fmt.Errorf("設定の読み込みエラー: %w", err)
	}
	// フラグは設定ファイルと環境変数より優先
	if Flags.Output != "" {
		cfg.Output = Flags.Output
	}
	appConfig = cfg

	timeout := time.Duration(Flags.TimeoutSec) * time.Second

	if clibase.Flags.Verbose {
		log.Printf("HTTPクライアントのタイムアウトを設定しました (Timeout: %s)。", timeout)
		log.Printf("HTTPクライアントのリトライ回数を設定しました (MaxRetries: %d)。", Flags.MaxRetries)
		log.Printf("出力先CSV: %s", cfg.Output)
	}

	// 共有フェッチャーの初期化
	globalFetcher = httpkit.New(
		timeout,
		httpkit.WithMaxRetries(uint64(Flags.MaxRetries)),
	)

	return nil
}

// GetGlobalFetcher は、初期化されたフェッチャーを返す関数 (DIの代わり)
func GetGlobalFetcher() jobboard.Fetcher {
	return globalFetcher
}

// newStore は設定された出力先の CSVStore を返します。
func newStore() *store.CSVStore {
	return store.NewCSVStore(appConfig.Output)
}

// overallTimeout はクライアントタイムアウトから全体処理のタイムアウトを算出します。
func overallTimeout() time.Duration {
	if Flags.TimeoutSec <= 0 {
		return DefaultOverallTimeout
	}
	return time.Duration(Flags.TimeoutSec*overallTimeoutFactor) * time.Second
}

// --- エントリポイント ---

// Execute は、ルートコマンドを実行するメイン関数です。clibaseのExecuteを使用する。
func Execute() {
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		scrapeCmd,
		feedCmd,
		discoverCmd,
	)
	// clibase.Execute() の中で os.Exit(1) が処理されるため、ここでは不要
}
