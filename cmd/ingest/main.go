// Command ingest turns one or more url-map files into a set of chunked,
// cleaned text documents, writing redirected_urls.json and
// page_character_counts_final.json alongside a chunks output file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sitetext/chunk"
	"sitetext/chunkdoc"
	"sitetext/coordinator"
	"sitetext/urlmap"
)

type urlMapFlag []string

func (f *urlMapFlag) String() string { return strings.Join(*f, ",") }
func (f *urlMapFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	var urlMaps urlMapFlag
	flag.Var(&urlMaps, "url-map", "path to a url-map JSON file (repeatable)")
	maxDepth := flag.Int("max-depth", 0, "maximum crawl depth to process (0 = unbounded)")
	batchSize := flag.Int("batch-size", 0, "number of URLs processed per batch (0 = auto)")
	limit := flag.Int("limit", 0, "maximum number of URLs to process (0 = unbounded)")
	outDir := flag.String("out", ".", "directory to write output files to")
	chunksPath := flag.String("chunks-out", "chunks.jsonl", "path to write chunked documents to")
	verbose := flag.Bool("v", false, "enable verbose logging")
	flag.Parse()

	if len(urlMaps) == 0 {
		log.Fatalf("ingest: at least one -url-map is required")
	}

	tasks, err := urlmap.MergeFiles(urlMaps)
	if err != nil {
		log.Fatalf("ingest: loading url maps: %v", err)
	}
	if *verbose {
		log.Printf("ingest: loaded %d URLs from %d url-map file(s)", len(tasks), len(urlMaps))
	}

	opts := coordinator.DefaultOptions()
	opts.MaxDepth = *maxDepth
	opts.Limit = *limit
	if *batchSize > 0 {
		opts.BatchSize = *batchSize
	}
	opts.ChunkOpts = chunk.DefaultOptions()

	co := coordinator.New(opts)
	log.Printf("ingest: run %s starting on %d URLs", co.RunID, len(tasks))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	docs, err := co.Run(ctx, tasks)
	if err != nil {
		log.Fatalf("ingest: run failed: %v", err)
	}

	if err := writeChunks(*chunksPath, docs); err != nil {
		log.Fatalf("ingest: writing chunks: %v", err)
	}
	if err := co.WriteOutputs(*outDir); err != nil {
		log.Fatalf("ingest: writing summary files: %v", err)
	}

	log.Printf("ingest: wrote %d chunks to %s", len(docs), *chunksPath)
}

// writeChunks writes one JSON object per line, the chunked-document
// interchange format consumers of this pipeline expect.
func writeChunks(path string, docs []chunkdoc.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, d := range docs {
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return nil
}
