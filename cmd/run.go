package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/internal/iofs"
	"github.com/gnames/sp7tree/internal/iogbif"
	"github.com/gnames/sp7tree/internal/iorows"
	"github.com/gnames/sp7tree/pkg/tree"
	"github.com/spf13/cobra"
)

// noFile is the menu entry of tools that can run without a data file.
const noFile = "(no file)"

// tool is an entry of the interactive menu.
type tool struct {
	name string

	// optionalFile lets the tool run without a data file.
	optionalFile bool

	run func(ctx context.Context, s *session, file string) error
}

func menuTools() []tool {
	importTool := func(tt tree.Type) func(context.Context, *session, string) error {
		return func(ctx context.Context, s *session, file string) error {
			res, err := s.runner.Import(ctx, tt, file)
			if err != nil {
				return err
			}
			gn.Info("%s", res.String())
			return nil
		}
	}

	return []tool{
		{name: "Import taxa", run: importTool(tree.Taxon)},
		{name: "Import storage nodes", run: importTool(tree.Storage)},
		{name: "Import geography nodes", run: importTool(tree.Geography)},
		{
			name:         "Merge duplicate taxa",
			optionalFile: true,
			run: func(ctx context.Context, s *session, file string) error {
				m, err := iogbif.New(cfg)
				if err != nil {
					return err
				}
				res, err := s.runner.Dedup(ctx, m, file)
				gn.Info("%s", res.String())
				return err
			},
		},
		{
			name: "Merge taxon pairs",
			run: func(ctx context.Context, s *session, file string) error {
				m, err := iogbif.New(cfg)
				if err != nil {
					return err
				}
				engine, err := s.runner.NewEngine(ctx, m)
				if err != nil {
					return err
				}
				res, err := s.runner.MergePairs(ctx, engine, file)
				if err != nil {
					return err
				}
				gn.Info("Merged <em>%d</em> of %d pairs", res.Merged, res.Rows)
				return nil
			},
		},
	}
}

// getRunCmd returns the run command.
func getRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Choose a tool and a data file from a menu",
		Long: `Show the tools of sp7tree and the data files of the data directory,
then run the chosen tool on the chosen file.

Examples:
  sp7tree run
  sp7tree --mode test run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runMenu(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	addFlags(runCmd, dataDirFlag, outputDirFlag, withTokensFlag)

	return runCmd
}

func runMenu(cmd *cobra.Command) error {
	if opts := flagOptions(cmd); len(opts) > 0 {
		cfg.Update(opts)
	}
	if err := iofs.EnsureWorkDirs(cfg); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	fmt.Fprintln(out, "**** Specify7 API Toolbox ****")
	fmt.Fprintln(out, "Current domain:", cfg.Specify.BaseURL)
	coll := cfg.Specify.Collection
	if coll == "" {
		coll = strconv.Itoa(cfg.Specify.CollectionID)
	}
	fmt.Fprintln(out, "Selected collection:", coll)

	t, file, err := selectRun(in, out, menuTools(), cfg.Import.DataDir)
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	fmt.Fprintln(out, "Running tool...")
	if err = t.run(ctx, s, file); err != nil {
		return err
	}
	fmt.Fprintln(out, "*** Finished running tool ***")
	return nil
}

// selectRun asks for a tool and a data file. The file is empty when the
// tool runs without one.
func selectRun(
	in *bufio.Scanner,
	out io.Writer,
	tools []tool,
	dataDir string,
) (tool, string, error) {
	names := make([]string, len(tools))
	for i := range tools {
		names[i] = tools[i].name
	}
	i, err := choose(in, out, "Choose your tool:",
		"Enter the number of the tool you want to run: ", names)
	if err != nil {
		return tool{}, "", err
	}
	t := tools[i]
	fmt.Fprintf(out, "\nSelected tool: %s\n", t.name)

	files, err := iorows.DataFiles(dataDir)
	if err != nil {
		return tool{}, "", err
	}
	if t.optionalFile {
		files = append([]string{noFile}, files...)
	}
	if len(files) == 0 {
		return tool{}, "", NoDataFilesError(dataDir)
	}

	j, err := choose(in, out, "Choose your datafile:",
		"Enter the number of the datafile you want to use: ", files)
	if err != nil {
		return tool{}, "", err
	}
	file := files[j]
	fmt.Fprintf(out, "\nSelected datafile: %s\n", file)
	if file == noFile {
		return t, "", nil
	}
	return t, filepath.Join(dataDir, file), nil
}

// choose prints numbered items and reads a choice until it is valid.
func choose(
	in *bufio.Scanner,
	out io.Writer,
	title, prompt string,
	items []string,
) (int, error) {
	for {
		fmt.Fprintf(out, "\n%s\n", title)
		for i, v := range items {
			fmt.Fprintf(out, "%d. %s\n", i+1, v)
		}
		fmt.Fprintf(out, "\n%s", prompt)

		if !in.Scan() {
			return 0, MenuInputError(in.Err())
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err == nil && n >= 1 && n <= len(items) {
			return n - 1, nil
		}
		fmt.Fprintln(out, "Invalid choice. Please try again.")
	}
}
