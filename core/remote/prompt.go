package remote

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/huangsam/footprint/schema"
)

// maxStructureDirs bounds the tree summary sent with each request.
const maxStructureDirs = 100

const systemPrompt = `You are a resource estimation service for source code.
You never execute code. Estimate the runtime memory, CPU and network bandwidth
needs of the given file. Respond with exactly one JSON object and no prose.`

const instructions = `Estimate the runtime resources of the file in [INPUT JSON].
Return a JSON object with this exact shape:
{
  "memory": {"base_mb": number, "peak_mb": number, "scaling_factor": number, "notes": string},
  "cpu": {"estimated_cores": number, "complexity": "O(1)|O(log n)|O(n)|O(n log n)|O(n^2)|O(n^3)|O(n^k)", "parallelization_potential": "low|medium|high", "notes": string},
  "bandwidth": {"network_calls_per_execution": integer, "data_transfer_mb": number, "bandwidth_mbps": number, "transfer_type": "bulk|streaming", "notes": string}
}
peak_mb must be at least base_mb and scaling_factor at least 1.0.
Base CPU cores on computational intensity, loops, recursion and concurrency usage.`

// Request is everything the estimation service sees about one file.
type Request struct {
	Path      string
	Content   string
	Structure map[string][]string
	Metrics   schema.StaticMetrics
}

// requestPayload is the structured input document.
type requestPayload struct {
	FilePath      string               `json:"file_path"`
	SourceText    string               `json:"truncated_source_text"`
	Truncated     bool                 `json:"truncated"`
	Structure     map[string][]string  `json:"repository_structure_summary"`
	StaticMetrics schema.StaticMetrics `json:"static_metrics"`
}

// buildPrompt renders the user prompt for req.
func buildPrompt(req Request, maxLines int) (string, error) {
	text, truncated := truncateLines(req.Content, maxLines)
	payload := requestPayload{
		FilePath:      req.Path,
		SourceText:    text,
		Truncated:     truncated,
		Structure:     summarizeStructure(req.Structure, maxStructureDirs),
		StaticMetrics: req.Metrics,
	}
	in, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}
	return instructions + "\n\n[INPUT JSON]\n" + string(in), nil
}

// truncateLines keeps at most maxLines lines. maxLines <= 0 disables truncation.
func truncateLines(text string, maxLines int) (string, bool) {
	if maxLines <= 0 {
		return text, false
	}
	idx := 0
	for range maxLines {
		next := strings.IndexByte(text[idx:], '\n')
		if next < 0 {
			return text, false
		}
		idx += next + 1
	}
	if idx >= len(text) {
		return text, false
	}
	return text[:idx], true
}

// summarizeStructure keeps the first limit directories in sorted order.
func summarizeStructure(structure map[string][]string, limit int) map[string][]string {
	if len(structure) <= limit {
		return structure
	}
	dirs := make([]string, 0, len(structure))
	for dir := range structure {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	out := make(map[string][]string, limit)
	for _, dir := range dirs[:limit] {
		out[dir] = structure[dir]
	}
	return out
}
