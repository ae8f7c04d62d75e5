package ingestion

import "github.com/poiesic/indexit/core"

// Chunks splits actions into contiguous slices of at most size elements,
// preserving order. The returned slices share the backing array of actions.
// A batch no larger than size comes back as a single chunk.
func Chunks(actions []core.WriteAction, size int) [][]core.WriteAction {
	if len(actions) == 0 {
		return nil
	}
	if size <= 0 || len(actions) <= size {
		return [][]core.WriteAction{actions}
	}

	chunks := make([][]core.WriteAction, 0, (len(actions)+size-1)/size)
	for start := 0; start < len(actions); start += size {
		end := min(start+size, len(actions))
		chunks = append(chunks, actions[start:end])
	}
	return chunks
}
