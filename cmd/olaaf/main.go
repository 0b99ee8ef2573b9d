package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"olaaf-go/internal/app"
	"olaaf-go/internal/config"
	"olaaf-go/internal/database"
	"olaaf-go/internal/olaaf"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the --library override.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if libraryRoot != "" {
		cfg.LibraryRoot = libraryRoot
	}
	return cfg, nil
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Sync", "Check").
func newApp(operation string) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// readPassphrase prompts on the terminal without echo. Piped input is read
// as a single line.
func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

var libraryRoot string

var rootCmd = &cobra.Command{
	Use:          "olaaf",
	Short:        "Document authenticity index for published law libraries",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and the history index",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		cfg.LibraryRoot = libraryRoot

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if err := database.InitDatabase(cfg.Database); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Index:    %s\n", cfg.Database.Path)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Log Level:    %s\n", cfg.LogLevel)
		fmt.Printf("Library Root: %s\n", cfg.LibraryRoot)
		fmt.Printf("Database:     %s %s\n", cfg.Database.Type, cfg.Database.Path)
		fmt.Printf("Search:       %s %s\n", cfg.Search.Type, cfg.Search.IndexDir)
		fmt.Printf("Encryption:   %s\n", cfg.Encryption.Type)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:        %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := app.GenerateKeys(cfg, passphrase); err != nil {
			return err
		}
		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// sync command
var syncCmd = &cobra.Command{
	Use:   "sync [DESCRIPTION | REPOSITORY...]",
	Short: "Index publication history",
	Long: `Index publication history into the hash history index.

DESCRIPTION is a JSON sync description, inline or as a file path.
With --discover the arguments name repositories under the library root and
their publication branches are indexed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		discover, _ := cmd.Flags().GetBool("discover")

		a, err := newApp("Sync")
		if err != nil {
			return err
		}
		defer a.Close()

		var stats *olaaf.SyncStats
		if discover {
			if len(args) == 0 {
				return fmt.Errorf("--discover needs at least one repository")
			}
			stats, err = a.SyncDiscover(args)
		} else {
			if len(args) != 1 {
				return fmt.Errorf("expected one sync description")
			}
			input, lerr := olaaf.LoadSyncInput(args[0])
			if lerr != nil {
				return lerr
			}
			stats, err = a.Sync(input)
		}
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		fmt.Printf("Repositories: %d (%d skipped)\n", stats.Repositories, stats.SkippedRepos)
		fmt.Printf("Publications: %d (%d revoked)\n", stats.Publications, stats.Revoked)
		fmt.Printf("Commits:      %d synced, %d already indexed\n", stats.CommitsSynced, stats.CommitsSkipped)
		fmt.Printf("Paths:        %d created\n", stats.PathsCreated)
		fmt.Printf("Hashes:       %d opened, %d closed\n", stats.HashesOpened, stats.HashesClosed)
		if stats.ConsistencyWarnings > 0 {
			fmt.Printf("Warnings:     %d\n", stats.ConsistencyWarnings)
		}
		fmt.Printf("Elapsed:      %s\n", stats.Elapsed().Truncate(time.Millisecond))
		return nil
	},
}

// check command
var checkCmd = &cobra.Command{
	Use:   "check URL [FILE]",
	Short: "Check whether a document is authentic",
	Long: `Check whether FILE is an authentic version of the document served at URL.

Without FILE, --hash KIND:VALUE checks a fingerprint computed elsewhere.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repository, _ := cmd.Flags().GetString("repo")
		publication, _ := cmd.Flags().GetString("publication")
		date, _ := cmd.Flags().GetString("date")
		document, _ := cmd.Flags().GetString("doc")
		contentType, _ := cmd.Flags().GetString("content-type")
		hash, _ := cmd.Flags().GetString("hash")

		a, err := newApp("Check")
		if err != nil {
			return err
		}
		defer a.Close()

		var result *olaaf.AuthenticityResult
		switch {
		case len(args) == 2:
			content, rerr := os.ReadFile(args[1])
			if rerr != nil {
				return fmt.Errorf("reading document: %w", rerr)
			}
			result, err = a.Check(olaaf.CheckRequest{
				Repository:  repository,
				Publication: publication,
				Date:        date,
				Document:    document,
				URL:         args[0],
				ContentType: contentType,
				Content:     content,
			})
		case hash != "":
			kindName, value, ok := strings.Cut(hash, ":")
			if !ok {
				return fmt.Errorf("--hash must be KIND:VALUE")
			}
			kind, kerr := olaaf.ParseHashKind(kindName)
			if kerr != nil {
				return kerr
			}
			result, err = a.CheckValue(repository, publication, date, args[0], kind, value)
		default:
			return fmt.Errorf("expected a FILE or --hash")
		}
		if err != nil {
			return err
		}

		verdict := "NOT AUTHENTIC"
		switch {
		case !result.Authenticable:
			verdict = "NOT AUTHENTICABLE"
		case result.Authentic && result.Current:
			verdict = "AUTHENTIC (current)"
		case result.Authentic:
			verdict = "AUTHENTIC (superseded)"
		}
		fmt.Printf("%s\n", verdict)
		fmt.Printf("URL:         %s\n", result.URL)
		fmt.Printf("Publication: %s\n", result.Publication)
		fmt.Printf("Hash:        %s:%s\n", result.Kind, result.Value)
		if result.ValidFrom != "" {
			to := result.ValidTo
			if to == "" {
				to = "open"
			}
			fmt.Printf("Valid:       %s .. %s\n", result.ValidFrom, to)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history URL",
	Short: "View the hash history of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repository, _ := cmd.Flags().GetString("repo")
		publication, _ := cmd.Flags().GetString("publication")

		a, err := newApp("PathHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		history, err := a.PathHistory(repository, publication, args[0])
		if err != nil {
			return err
		}
		if history == nil {
			fmt.Println("No history recorded.")
			return nil
		}

		fmt.Printf("%s  %s\n", history.Publication, history.URL)
		for _, iv := range history.Intervals {
			to := "open"
			if !iv.Open() {
				to = iv.EndDate
			}
			fmt.Printf("%-10s  %s  %s .. %s  %s\n", iv.Kind, shortHash(iv.Value), iv.StartDate, to, iv.Filesystem)
		}
		return nil
	},
}

func shortHash(v string) string {
	if len(v) > 12 {
		return v[:12]
	}
	return v
}

// publications command
var publicationsCmd = &cobra.Command{
	Use:   "publications",
	Short: "List the publication lines of a repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		repository, _ := cmd.Flags().GetString("repo")

		a, err := newApp("Publications")
		if err != nil {
			return err
		}
		defer a.Close()

		pubs, err := a.Publications(repository)
		if err != nil {
			return err
		}
		for _, p := range pubs {
			flag := ""
			switch {
			case p.Revoked:
				flag = "  [revoked]"
			case p.Latest:
				flag = "  [latest]"
			}
			fmt.Printf("%-16s  %s  %4d commits  last %s%s\n", p.Name, p.Date, p.Commits, p.LastCommit, flag)
		}
		return nil
	},
}

// runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "View sync run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("Runs")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.Runs(limit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No sync runs recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				duration = op.FinishedAt.Time.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-8s  %s  %-10s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

// search command
var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search indexed documents by search path or citation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repository, _ := cmd.Flags().GetString("repo")
		publication, _ := cmd.Flags().GetString("publication")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("Search")
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.Search(args[0], repository, publication, limit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, r := range results {
			fmt.Printf("%s/%s  %s  %s\n", r.Repository, r.Publication, r.URL, r.SearchPath)
		}
		return nil
	},
}

var searchReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from the history index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Reindex")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.ReindexSearch()
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d path(s)\n", n)
		return nil
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage index snapshots",
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the local index with the latest vault snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		passphrase := ""
		if cfg.Encryption.Type == "age" {
			if passphrase, err = readPassphrase("Passphrase: "); err != nil {
				return err
			}
		}

		version, err := app.RestoreSnapshot(cfg, passphrase)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("Restored snapshot version %d to %s\n", version, cfg.Database.Path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&libraryRoot, "library", "", "Directory holding the document repositories")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)

	// query flags
	for _, c := range []*cobra.Command{checkCmd, historyCmd, publicationsCmd, searchCmd} {
		c.Flags().StringP("repo", "r", "", "Repository name")
	}
	for _, c := range []*cobra.Command{checkCmd, historyCmd, searchCmd} {
		c.Flags().StringP("publication", "p", "", "Publication name (default: latest)")
	}
	checkCmd.Flags().StringP("date", "d", "", "Check as of this day (YYYY-MM-DD)")
	checkCmd.Flags().String("doc", "", "Document segment of the dated view the page came from")
	checkCmd.Flags().String("content-type", "", "Treat the document as this media type")
	checkCmd.Flags().String("hash", "", "Check a fingerprint instead of a file (bitstream:HEX or rendered:HEX)")
	searchCmd.Flags().IntP("limit", "n", 20, "Maximum number of matches")
	searchCmd.AddCommand(searchReindexCmd)

	syncCmd.Flags().Bool("discover", false, "Discover publication branches of the named repositories")

	snapshotCmd.AddCommand(snapshotRestoreCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(publicationsCmd)
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(snapshotCmd)
}
