package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/shouni/go-job-exact/internal/pipeline"
)

// printResult は実行結果を会社ごとの件数とともに出力します。
func printResult(w io.Writer, result *pipeline.Result, output string) {
	fmt.Fprintln(w, "--- 求人リンク抽出結果 ---")
	fmt.Fprintf(w, "抽出された投稿数: %d 件\n", result.Found)

	if len(result.Added) == 0 {
		fmt.Fprintln(w, "新しい求人リンクはありませんでした")
		fmt.Fprintf(w, "保存済みの件数: %d 件 (%s)\n", result.Total, output)
		return
	}

	fmt.Fprintf(w, "%s に %d 件の新しい求人リンクを追加しました (合計 %d 件)\n", output, len(result.Added), result.Total)

	counts := make(map[string]int)
	for _, r := range result.Added {
		counts[r.Company]++
	}
	companies := make([]string, 0, len(counts))
	for c := range counts {
		companies = append(companies, c)
	}
	sort.Strings(companies)

	fmt.Fprintln(w, "\n会社ごとの新しい求人リンク:")
	for _, c := range companies {
		fmt.Fprintf(w, "  %s: %d\n", c, counts[c])
	}
	for i, r := range result.Added {
		fmt.Fprintf(w, "[%d] %s\n", i+1, r.Title)
		fmt.Fprintf(w, "    URL: %s\n", r.URL)
	}
	fmt.Fprintln(w, "-------------------------------")
}
