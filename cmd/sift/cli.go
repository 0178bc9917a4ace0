package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/sift/internal/api"
	"github.com/hpungsan/sift/internal/config"
	"github.com/hpungsan/sift/internal/db"
	"github.com/hpungsan/sift/internal/errors"
	"github.com/hpungsan/sift/internal/filter"
	"github.com/hpungsan/sift/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(store *db.Store, cfg *config.Config, log *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "sift",
		Usage:   "String analyzer with natural-language filters",
		Version: Version,
		Commands: []*cli.Command{
			analyzeCmd(store, cfg),
			fetchCmd(store),
			deleteCmd(store),
			listCmd(store),
			queryCmd(store),
			translateCmd(),
			serveCmd(store, cfg, log),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// analyzeCmd creates the analyze command.
func analyzeCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze and store a string (argument or stdin)",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			value, err := readValue(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Create(c.Context, store, cfg, ops.CreateInput{Value: value})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(store *db.Store) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch the stored analysis of a string",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			value, err := readValue(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Fetch(c.Context, store, ops.FetchInput{Value: value})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(store *db.Store) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a stored string",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			value, err := readValue(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Delete(c.Context, store, ops.DeleteInput{Value: value})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(store *db.Store) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored strings matching all given filters",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "palindrome", Aliases: []string{"p"}, Usage: "Only palindromes (--palindrome=false for non-palindromes)"},
			&cli.IntFlag{Name: "min-length", Usage: "Minimum length in characters"},
			&cli.IntFlag{Name: "max-length", Usage: "Maximum length in characters"},
			&cli.IntFlag{Name: "word-count", Aliases: []string{"w"}, Usage: "Exact number of words"},
			&cli.StringFlag{Name: "contains", Aliases: []string{"c"}, Usage: "Single character that must occur"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, store, ops.ListInput{Filters: specFromFlags(c)})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// queryCmd creates the query command.
func queryCmd(store *db.Store) *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "List stored strings using a natural-language filter",
		ArgsUsage: "<query>",
		Action: func(c *cli.Context) error {
			query := strings.Join(c.Args().Slice(), " ")

			output, err := ops.Query(c.Context, store, ops.QueryInput{Query: query})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// translateOutput is the result of the translate command.
type translateOutput struct {
	InterpretedQuery filter.Interpretation `json:"interpreted_query"`
	Valid            bool                  `json:"valid"`
	Error            string                `json:"error,omitempty"`
}

// translateCmd creates the translate command. It needs no database.
func translateCmd() *cli.Command {
	return &cli.Command{
		Name:      "translate",
		Usage:     "Show the filters a natural-language query translates to",
		ArgsUsage: "<query>",
		Action: func(c *cli.Context) error {
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return outputError(errors.NewInvalidRequest("query must not be empty"))
			}

			out := translateOutput{InterpretedQuery: filter.Interpret(query), Valid: true}
			if err := filter.Validate(out.InterpretedQuery.ParsedFilters); err != nil {
				out.Valid = false
				out.Error = errors.As(err).Message
			}

			return outputJSON(c.App.Writer, out)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(store *db.Store, cfg *config.Config, log *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Usage: "Interface to listen on (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (overrides config and SIFT_PORT)"},
		},
		Action: func(c *cli.Context) error {
			serveCfg := *cfg
			if c.IsSet("bind") {
				serveCfg.Bind = c.String("bind")
			}
			if c.IsSet("port") {
				serveCfg.Port = c.Int("port")
			}

			srv := api.NewServer(store, &serveCfg, log, Version)
			if err := api.Run(c.Context, srv, log); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// Helper functions

// specFromFlags builds a filter spec from the flags the user actually set.
func specFromFlags(c *cli.Context) filter.Spec {
	var spec filter.Spec
	if c.IsSet("palindrome") {
		spec.IsPalindrome = filter.Bool(c.Bool("palindrome"))
	}
	if c.IsSet("min-length") {
		spec.MinLength = filter.Int(c.Int("min-length"))
	}
	if c.IsSet("max-length") {
		spec.MaxLength = filter.Int(c.Int("max-length"))
	}
	if c.IsSet("word-count") {
		spec.WordCount = filter.Int(c.Int("word-count"))
	}
	if c.IsSet("contains") {
		spec.ContainsCharacter = filter.String(c.String("contains"))
	}
	return spec
}

// readValue returns the positional arguments joined by spaces, or stdin
// when no arguments are given and input is piped.
func readValue(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if c.App.Reader == os.Stdin && !stdinHasData() {
		return "", errors.NewInvalidRequest("text must be given as an argument or piped via stdin")
	}
	data, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(data), nil
}

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	sErr := errors.As(err)
	if sErr.Code == errors.ErrInternal {
		return cli.Exit(fmt.Sprintf("[%s] %s: %v", sErr.Code, sErr.Message, sErr.Details["internal_error"]), 1)
	}
	return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
