package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer/corpus"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	dir := flag.String("dir", "", "corpus directory (overrides corpus.dir)")
	query := flag.String("q", "", "term to look up; prompts on stdin when empty")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: search [flags] [file ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dir != "" {
		cfg.Corpus.Dir = *dir
	}

	// stdout carries the answer only.
	logger.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Args(), *query, os.Stdin, os.Stdout); err != nil {
		slog.Error("search failed", "error", err)
		os.Exit(1)
	}
}

// run builds the index from files (or cfg.Corpus when files is empty),
// evaluates one query and prints the answer to out.
func run(ctx context.Context, cfg *config.Config, files []string, query string, in io.Reader, out io.Writer) error {
	var (
		docs []corpus.Document
		err  error
	)
	if len(files) > 0 {
		docs, err = corpus.FromFiles(files)
	} else {
		docs, err = corpus.FromDir(cfg.Corpus.Dir, cfg.Corpus.Ext)
	}
	if err != nil {
		return err
	}

	idx, err := indexer.NewBuilder(cfg.Indexer, indexer.WithLogger(logger.WithComponent("search-cli"))).Build(ctx, docs)
	if err != nil {
		return err
	}

	if query == "" {
		fmt.Fprint(out, "Enter a query: ")
		query, err = readLine(in)
		if err != nil {
			return err
		}
	}

	result, found := executor.New(idx).Lookup(query)
	printResult(out, result, found)
	return nil
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading query: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printResult(out io.Writer, result executor.Result, found bool) {
	if !found {
		fmt.Fprintln(out, "Not found.")
		return
	}
	ids := make([]string, len(result.DocumentIDs))
	for i, id := range result.DocumentIDs {
		ids[i] = fmt.Sprint(id)
	}
	fmt.Fprintf(out, "Term frequency: %d\n", result.TotalOccurrences)
	fmt.Fprintf(out, "Document frequency: %d\n", result.DocumentCount)
	fmt.Fprintf(out, "Document IDs: [%s]\n", strings.Join(ids, ", "))
}
