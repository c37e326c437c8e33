package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shouni/go-job-exact/pkg/types"
)

// Header は出力CSVの列順です。
var Header = []string{"title", "url", "company", "scraped_date"}

// CSVStore は、求人レコードの集合をCSVファイルとして永続化します。
// 1回の実行の中で「読み込み → マージ → 全体の書き直し」を行う前提で、同時書き込みは想定しません。
type CSVStore struct {
	path string
}

// NewCSVStore は、指定されたパスを対象とする CSVStore を生成します。
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path は永続化先のファイルパスを返します。
func (s *CSVStore) Path() string {
	return s.path
}

// Load は、ファイルから既存の求人レコードを読み込みます。
// ファイルが存在しない場合は空の集合を返します。ディスク上で重複しているURLは最初の行のみ残します。
func (s *CSVStore) Load() ([]types.JobRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("CSVファイルのオープンに失敗しました (%s): %w", s.path, err)
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		return nil, fmt.Errorf("CSVファイルの読み込みに失敗しました (%s): %w", s.path, err)
	}
	return records, nil
}

// readRecords はヘッダー行を列名で解決し、行をレコードに変換します。
func readRecords(r io.Reader) ([]types.JobRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ヘッダー行の読み込みエラー: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	if _, ok := columns["url"]; !ok {
		return nil, fmt.Errorf("url 列が見つかりません (ヘッダー: %v)", header)
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	seen := make(map[string]bool)
	var records []types.JobRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%d行目の読み込みエラー: %w", line, err)
		}

		u := field(row, "url")
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true

		record := types.JobRecord{
			Title:   field(row, "title"),
			URL:     u,
			Company: field(row, "company"),
		}
		if d := field(row, "scraped_date"); d != "" {
			parsed, err := time.Parse(types.DateLayout, d)
			if err != nil {
				return nil, fmt.Errorf("%d行目の scraped_date が不正です (%q): %w", line, d, err)
			}
			record.ScrapedDate = parsed
		}
		records = append(records, record)
	}
	return records, nil
}

// Save は、レコード集合全体を一時ファイルに書き出してから対象ファイルに置き換えます。
func (s *CSVStore) Save(records []types.JobRecord) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました (%s): %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗しました: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = writeRecords(tmp, records); err != nil {
		return fmt.Errorf("CSVの書き込みに失敗しました: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("一時ファイルのクローズに失敗しました: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("一時ファイルの権限設定に失敗しました: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("CSVファイルの置き換えに失敗しました (%s): %w", s.path, err)
	}
	return nil
}

func writeRecords(w io.Writer, records []types.JobRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write([]string{r.Title, r.URL, r.Company, r.DateString()}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
