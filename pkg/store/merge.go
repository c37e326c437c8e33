package store

import "github.com/shouni/go-job-exact/pkg/types"

// Merge は、既存の集合に新しいレコードをURLをキーとして追加します。
// 既にURLが存在するレコードは破棄され、既存の順序は維持されます。
// merged は更新後の集合、added は実際に追加されたレコードです。
func Merge(existing, incoming []types.JobRecord) (merged, added []types.JobRecord) {
	seen := make(map[string]bool, len(existing)+len(incoming))
	merged = make([]types.JobRecord, 0, len(existing)+len(incoming))

	for _, r := range existing {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		merged = append(merged, r)
	}

	for _, r := range incoming {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		merged = append(merged, r)
		added = append(added, r)
	}
	return merged, added
}
