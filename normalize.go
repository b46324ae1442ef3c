package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/phobologic/funcseg/internal/normalize"
	"github.com/phobologic/funcseg/internal/pyast"
	"github.com/phobologic/funcseg/internal/segment"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "normalize [file...]",
		Short: "Print the normalized canonical text of Python files",
		Long: `Print each file after parsing, normalization and canonical rendering. With no
arguments, or with "-", the source is read from stdin. With --raw only the
canonical rendering is applied.

Failures are reported per file on stderr; the remaining files are still
printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := normalize.New()
			if raw {
				n = normalize.Identity()
			}

			p := pyast.NewParser()
			defer p.Close()
			seg := segment.New(p, n)

			if len(args) == 0 {
				args = []string{"-"}
			}

			failed := 0
			for _, path := range args {
				src, err := readSource(path, cmd.InOrStdin())
				if err == nil {
					var text string
					text, err = seg.Normalized(cmd.Context(), src)
					if err == nil {
						if len(args) > 1 {
							_, _ = fmt.Fprintf(a.stdout, "# %s\n", path)
						}
						_, _ = fmt.Fprintln(a.stdout, text)
						continue
					}
				}
				failed++
				_, _ = fmt.Fprintf(a.stderr, "%s: %v\n", path, err)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "skip normalization rules")
	return cmd
}

func readSource(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		if stdin == nil {
			return nil, errors.New("no stdin")
		}
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
