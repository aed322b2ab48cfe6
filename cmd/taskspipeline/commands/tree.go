package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskspipeline/internal/pipeline"
	"github.com/slok/taskspipeline/internal/printer"
)

type TreeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewTreeCommand returns the tree command.
func NewTreeCommand(rootCmd *RootCommand, app *kingpin.Application) *TreeCommand {
	c := &TreeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("tree", "Validate the pipeline and print the task tree index.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c TreeCommand) Name() string { return c.Cmd.FullCommand() }

func (c TreeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := loadPipelineConfig(ctx, c.rootCmd.PipelineFile)
	if err != nil {
		return err
	}

	root, err := pipeline.BuildTaskTree(cfg, logger)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Config{
		Title:  cfg.Title,
		Root:   root,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create pipeline: %w", err)
	}

	// Print output.
	var pr printer.Printer
	switch c.format {
	case "json":
		pr = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		pr = printer.NewTablePrinter(c.rootCmd.Stdout)
		if err := pr.PrintMessage(p.Title()); err != nil {
			return fmt.Errorf("could not print title: %w", err)
		}
	}

	if err := pr.PrintTasks(p.Snapshot(time.Now())); err != nil {
		return fmt.Errorf("could not print tree: %w", err)
	}

	return nil
}
