// Package urlmap loads the crawl seed files: a URL map keyed by crawl
// depth, or a flat set of URLs, in any of three JSON shapes, and merges
// several such files into one seed set with first-file-wins priority.
package urlmap

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
)

// Task is one URL to fetch, at the depth it was first discovered.
type Task struct {
	URL   string
	Depth int
}

// skipExtensions matches §4.E step 1's literal NON_HTML_EXTENSIONS catalogue
// exactly: anything else (including .css/.js/.ico) is left to the fetcher's
// status and soft-block heuristics rather than skipped by extension alone.
var skipExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".svg": true, ".pdf": true, ".mp4": true, ".mp3": true, ".avi": true,
	".mov": true, ".wmv": true, ".zip": true, ".tar": true, ".gz": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".ppt": true,
	".pptx": true, ".xml": true,
}

// Parse reads one url-map file and returns its tasks ordered by ascending
// depth, deduplicated so the shallowest depth at which a URL appears
// wins. The file may be shaped as:
//
//	{"0": ["url", ...], "1": [...]}               -- urls_by_depth
//	{"https://...": {"depth": 0}, ...}             -- flat URL-keyed dict
//	["https://...", "https://..."]                 -- plain array, depth 0
func Parse(data []byte) ([]Task, error) {
	var byDepth map[string][]string
	if err := json.Unmarshal(data, &byDepth); err == nil && len(byDepth) > 0 {
		if looksLikeDepthMap(byDepth) {
			return tasksFromDepthMap(byDepth), nil
		}
	}

	var flat map[string]struct {
		Depth int `json:"depth"`
	}
	if err := json.Unmarshal(data, &flat); err == nil && len(flat) > 0 {
		return tasksFromFlatMap(flat), nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return tasksFromList(list), nil
	}

	return nil, fmt.Errorf("urlmap: unrecognized JSON shape")
}

func looksLikeDepthMap(m map[string][]string) bool {
	for k := range m {
		if _, err := parseDepthKey(k); err != nil {
			return false
		}
	}
	return true
}

func parseDepthKey(k string) (int, error) {
	var d int
	_, err := fmt.Sscanf(k, "%d", &d)
	return d, err
}

func tasksFromDepthMap(m map[string][]string) []Task {
	seen := make(map[string]int)
	for k, urls := range m {
		depth, err := parseDepthKey(k)
		if err != nil {
			continue
		}
		for _, u := range urls {
			if cur, ok := seen[u]; !ok || depth < cur {
				seen[u] = depth
			}
		}
	}
	return sortedTasks(seen)
}

func tasksFromFlatMap(m map[string]struct {
	Depth int `json:"depth"`
}) []Task {
	seen := make(map[string]int)
	for u, v := range m {
		if cur, ok := seen[u]; !ok || v.Depth < cur {
			seen[u] = v.Depth
		}
	}
	return sortedTasks(seen)
}

func tasksFromList(list []string) []Task {
	seen := make(map[string]int)
	for _, u := range list {
		seen[u] = 0
	}
	return sortedTasks(seen)
}

func sortedTasks(seen map[string]int) []Task {
	tasks := make([]Task, 0, len(seen))
	for u, d := range seen {
		if ShouldSkip(u) {
			continue
		}
		tasks = append(tasks, Task{URL: u, Depth: d})
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Depth != tasks[j].Depth {
			return tasks[i].Depth < tasks[j].Depth
		}
		return tasks[i].URL < tasks[j].URL
	})
	return tasks
}

// ShouldSkip reports whether a URL's file extension marks it as
// non-HTML content not worth fetching.
func ShouldSkip(u string) bool {
	ext := strings.ToLower(path.Ext(strings.SplitN(u, "?", 2)[0]))
	return skipExtensions[ext]
}

// MergeFiles loads several url-map files and merges them with
// first-file-wins priority: a URL already assigned a depth by an earlier
// file keeps that depth even if a later file lists it at a shallower
// one. The result is stably sorted by depth, so URLs of equal depth keep
// the order in which they were first seen across the files.
func MergeFiles(paths []string) ([]Task, error) {
	seen := make(map[string]int)
	order := make([]string, 0)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("urlmap: reading %s: %w", p, err)
		}
		tasks, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("urlmap: parsing %s: %w", p, err)
		}
		for _, t := range tasks {
			if _, ok := seen[t.URL]; ok {
				continue
			}
			seen[t.URL] = t.Depth
			order = append(order, t.URL)
		}
	}

	out := make([]Task, 0, len(order))
	for _, u := range order {
		out = append(out, Task{URL: u, Depth: seen[u]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Depth < out[j].Depth
	})
	return out, nil
}
