package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tagstream/tagstream/tokenizer"
)

var (
	flagJSON     bool
	flagSuppress bool
	flagGzip     bool
	flagVerbose  bool
	flagChunk    int
)

func main() {
	cmd := &cobra.Command{
		Use:   "tagstream [file]",
		Short: "Tokenize an HTML-like byte stream into text, open and close tokens",
		Long: `tagstream reads markup from a file or stdin in chunks and prints one
token per line, without building a document tree or validating nesting.
Files ending in .gz are decompressed transparently.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagVerbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			cmd.SilenceUsage = true
			return run(args)
		},
	}
	cmd.Flags().BoolVar(&flagJSON, "json", false, `emit tokens as ["kind","data"] JSON pairs`)
	cmd.Flags().BoolVar(&flagSuppress, "suppress-text", false, "drop text tokens, keep tag structure only")
	cmd.Flags().BoolVar(&flagGzip, "gzip", false, "treat input as gzip regardless of file name")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().IntVar(&flagChunk, "chunk-size", 0, "read size per chunk in bytes (default 4096)")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		in   io.Reader = os.Stdin
		name           = "stdin"
	)
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "open input")
		}
		defer f.Close()
		in = f
		name = args[0]
	}

	if flagGzip || strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(in)
		if err != nil {
			return errors.Wrap(err, "open gzip stream")
		}
		defer gz.Close()
		in = gz
	}

	counted := &countingReader{r: in}
	st := tokenizer.NewStreamTokenizerConfig(counted, tokenizer.StreamConfig{
		Config:    tokenizer.Config{SuppressText: flagSuppress},
		ChunkSize: flagChunk,
	})

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	enc := json.NewEncoder(out)

	var counts [3]uint64
	for {
		tok, err := st.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		counts[tok.Type]++
		if flagJSON {
			if err := enc.Encode(tok); err != nil {
				return errors.Wrap(err, "encode token")
			}
			continue
		}
		fmt.Fprintf(out, "%-5s %q\n", tok.Type, tok.Data)
	}

	fmt.Fprintf(os.Stderr, "%s: %s in, %d open / %d close / %d text\n",
		name, humanize.Bytes(counted.n),
		counts[tokenizer.OpenTagToken], counts[tokenizer.CloseTagToken], counts[tokenizer.TextToken])
	return nil
}

type countingReader struct {
	r io.Reader
	n uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n)
	return n, err
}
