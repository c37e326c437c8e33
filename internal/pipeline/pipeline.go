package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shouni/go-job-exact/pkg/jobboard"
	"github.com/shouni/go-job-exact/pkg/store"
	"github.com/shouni/go-job-exact/pkg/types"
)

// Store は、求人レコード集合の永続化先を抽象化します。*store.CSVStore が満たします。
type Store interface {
	Load() ([]types.JobRecord, error)
	Save(records []types.JobRecord) error
}

// Result は1回の実行結果を保持します。
type Result struct {
	Found int               // 抽出された投稿数 (ページ内で重複除去後)
	Added []types.JobRecord // 新しく追加されたレコード
	Total int               // マージ後の集合の件数
}

// ScrapeBoard は、求人ボードを取得して投稿を抽出し、既存の集合にマージして保存するメインの処理パイプラインです。
// 取得の失敗とファイルI/Oの失敗はエラーとして返します。投稿が見つからない場合はエラーではありません。
func ScrapeBoard(ctx context.Context, extractor *jobboard.Extractor, st Store, boardURL string) (*Result, error) {
	// 1. 取得と抽出
	records, err := extractor.FetchAndExtract(ctx, boardURL)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		log.Printf("求人投稿が見つかりませんでした (URL: %s)", boardURL)
	}

	// 2. 永続化
	return Persist(st, records)
}

// Discover は、検索結果ページを順番に取得し、既知の求人ボードの投稿リンクを集めて保存します。
// 個々の検索の失敗はログに記録してスキップし、すべての検索が失敗した場合のみエラーを返します。
// 複数の検索に現れた同じ投稿は1件として数えます。
// 待機中にコンテキストが終了した場合は、それまでに集めたレコードを保存してからエラーを返します。
func Discover(ctx context.Context, extractor *jobboard.Extractor, st Store, searchURLs []string, pause time.Duration) (*Result, error) {
	if len(searchURLs) == 0 {
		return nil, fmt.Errorf("検索クエリが一つも指定されていません")
	}

	var (
		collected   []types.JobRecord
		attempted   int
		failures    int
		interrupted error
	)
	seen := make(map[string]bool)
	for i, u := range searchURLs {
		if i > 0 && pause > 0 {
			select {
			case <-time.After(pause):
			case <-ctx.Done():
				interrupted = ctx.Err()
			}
			if interrupted != nil {
				break
			}
		}

		attempted++
		records, err := extractor.FetchAndExtract(ctx, u)
		if err != nil {
			failures++
			log.Printf("検索に失敗しました。スキップします: %v", err)
			continue
		}
		log.Printf("検索結果 [%d/%d]: %d 件の投稿リンク", i+1, len(searchURLs), len(records))
		for _, r := range records {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			collected = append(collected, r)
		}
	}

	if interrupted != nil {
		result, err := Persist(st, collected)
		if err != nil {
			return nil, err
		}
		log.Printf("検索処理が中断されました。%d 件の新しい投稿を保存しました", len(result.Added))
		return result, fmt.Errorf("検索処理が中断されました (%d/%d 件完了): %w", attempted, len(searchURLs), interrupted)
	}

	if failures == attempted {
		return nil, fmt.Errorf("すべての検索 (%d件) に失敗しました", failures)
	}
	return Persist(st, collected)
}

// Persist は、既存の集合を読み込み、新しいレコードをURLをキーとしてマージして保存します。
// 追加するレコードがない場合、ファイルは書き換えません。
func Persist(st Store, records []types.JobRecord) (*Result, error) {
	existing, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("既存の求人データの読み込みに失敗しました: %w", err)
	}

	merged, added := store.Merge(existing, records)
	result := &Result{
		Found: len(records),
		Added: added,
		Total: len(merged),
	}
	if len(added) == 0 {
		return result, nil
	}

	if err := st.Save(merged); err != nil {
		return nil, fmt.Errorf("求人データの保存に失敗しました: %w", err)
	}
	return result, nil
}
