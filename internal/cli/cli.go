// Package cli provides the command line interface.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dirsnap/dirsnap/internal/config"
	"github.com/dirsnap/dirsnap/internal/output"
	"github.com/dirsnap/dirsnap/internal/services/clipboard"
	"github.com/dirsnap/dirsnap/internal/snapshot"
	"github.com/dirsnap/dirsnap/internal/tokenizer"
	"github.com/dirsnap/dirsnap/internal/utils"
)

const (
	ignoreFlagName          = "ignore"
	ignoreFlagShorthand     = "I"
	noGitignoreFlagName     = "no-gitignore"
	hiddenFlagName          = "hidden"
	followSymlinksFlagName  = "follow-symlinks"
	maxDepthFlagName        = "max-depth"
	formatFlagName          = "format"
	prettyFlagName          = "pretty"
	binaryDetectionFlagName = "binary-detection"
	fileSizeLimitFlagName   = "file-size-limit"
	strategyFlagName        = "strategy"
	workersFlagName         = "workers"
	sizeFlagName            = "size"
	tokensFlagName          = "tokens"
	modelFlagName           = "model"
	clipboardFlagName       = "clipboard"
	outputFlagName          = "output"
	verboseFlagName         = "verbose"
	versionFlagName         = "version"
	globalFlagName          = "global"
	forceFlagName           = "force"

	versionTemplate      = "dirsnap version: %s\n"
	defaultPath          = "."
	rootUse              = "dirsnap"
	rootShortDescription = "dirsnap command line interface"
	rootLongDescription  = `dirsnap captures a filtered snapshot of a directory tree.
It renders an ASCII tree, collects file content with binary and size handling, and emits Markdown, text, or JSON.
Use --format to select the output format and --version to print the application version.`
	versionFlagDescription = "display application version"
	verboseFlagDescription = "enable debug logging"

	snapshotUse              = "snapshot [path]"
	treeUse                  = "tree [path]"
	pathsUse                 = "paths [path]"
	streamUse                = "stream [path]"
	initUse                  = "init"
	snapshotAlias            = "s"
	treeAlias                = "t"
	pathsAlias               = "p"
	streamAlias              = "st"
	snapshotShortDescription = "capture a directory snapshot (" + snapshotAlias + ")"
	treeShortDescription     = "render the directory tree (" + treeAlias + ")"
	pathsShortDescription    = "list captured file paths (" + pathsAlias + ")"
	streamShortDescription   = "stream file records as NDJSON (" + streamAlias + ")"
	initShortDescription     = "write a starter configuration file"

	// snapshotLongDescription provides detailed help for the snapshot command.
	snapshotLongDescription = `Capture the directory tree and file contents below a path.
Use --format to select markdown, text, or json output, --strategy to pick sequential or parallel capture, and --tokens to add token counts.`
	// snapshotUsageExample demonstrates snapshot command usage.
	snapshotUsageExample = `  # Capture the current directory as Markdown
  dirsnap snapshot

  # Capture a project as pretty JSON without .gitignore filtering
  dirsnap snapshot --format json --pretty --no-gitignore ./project`

	// treeLongDescription provides detailed help for the tree command.
	treeLongDescription = `Render only the directory tree below a path, without reading file contents.`
	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Render the tree for the current directory
  dirsnap tree

  # Limit depth and exclude logs
  dirsnap tree --max-depth 2 -I "*.log" .`

	// pathsLongDescription provides detailed help for the paths command.
	pathsLongDescription = `List the file paths a snapshot of the given path would capture, one per line.`
	// pathsUsageExample demonstrates paths command usage.
	pathsUsageExample = `  # List files that a snapshot would capture
  dirsnap paths ./src`

	// streamLongDescription provides detailed help for the stream command.
	streamLongDescription = `Emit one JSON object per captured file as records become available.
Failures on individual files or directories are reported on stderr and the stream continues.`
	// streamUsageExample demonstrates stream command usage.
	streamUsageExample = `  # Stream records as NDJSON
  dirsnap stream .

  # Stream while withholding large file contents
  dirsnap stream --file-size-limit 1048576 .`

	// initLongDescription provides detailed help for the init command.
	initLongDescription = `Write a starter configuration file with the default snapshot settings.
The local target writes ` + config.LocalConfigFileName + ` into the working directory; --global writes ` + config.GlobalConfigFileName + ` under ~/` + config.GlobalConfigDirectoryName + `.`
	// initUsageExample demonstrates init command usage.
	initUsageExample = `  # Write ` + config.LocalConfigFileName + ` into the current directory
  dirsnap init

  # Replace the global configuration
  dirsnap init --global --force`

	ignoreFlagDescription          = "exclude paths matching pattern (repeatable)"
	noGitignoreFlagDescription     = "do not honor .gitignore files"
	hiddenFlagDescription          = "include hidden files and directories"
	followSymlinksFlagDescription  = "descend into symlinked directories"
	maxDepthFlagDescription        = "maximum traversal depth below the root (-1 for unlimited)"
	formatFlagDescription          = "output format (markdown, text, json)"
	prettyFlagDescription          = "indent JSON output"
	binaryDetectionFlagDescription = "binary detection mode (none, simple, accurate)"
	fileSizeLimitFlagDescription   = "maximum file size in bytes to read (0 for unlimited)"
	strategyFlagDescription        = "execution strategy (sequential, parallel)"
	workersFlagDescription         = "worker count for the parallel strategy (0 for automatic)"
	sizeFlagDescription            = "include file sizes"
	tokensFlagDescription          = "include token counts"
	modelFlagDescription           = "tokenizer model to use for token counting"
	clipboardFlagDescription       = "copy rendered output to the clipboard"
	outputFlagDescription          = "write rendered output to a file"
	globalFlagDescription          = "write the global configuration file"
	forceFlagDescription           = "overwrite an existing configuration file"

	invalidFormatMessage           = "invalid format value %q"
	clipboardServiceMissingMessage = "clipboard service is not available"
	warningRecordFormat            = "Warning: %v\n"
	initializedConfigurationFormat = "Configuration written to %s\n"
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case output.FormatMarkdown, output.FormatText, output.FormatJSON:
		return true
	default:
		return false
	}
}

// Execute runs the dirsnap application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool
	var verboseEnabled bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
			if verboseEnabled {
				debugLogger, loggerError := utils.NewDebugLogger()
				if loggerError != nil {
					return loggerError
				}
				zap.ReplaceGlobals(debugLogger)
			}
			return nil
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&verboseEnabled, verboseFlagName, false, verboseFlagDescription)
	rootCommand.AddCommand(
		createSnapshotCommand(),
		createTreeCommand(),
		createPathsCommand(),
		createStreamCommand(),
		createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// traversalFlagValues stores flags shared by every walking command.
type traversalFlagValues struct {
	ignorePatterns   []string
	disableGitignore bool
	includeHidden    bool
	followSymlinks   bool
	maxDepth         int
}

// captureFlagValues stores flags controlling file content capture.
type captureFlagValues struct {
	binaryDetection string
	fileSizeLimit   int64
	includeSizes    bool
}

// renderFlagValues stores flags controlling snapshot rendering and delivery.
type renderFlagValues struct {
	format          string
	pretty          bool
	strategy        string
	workers         int
	countTokens     bool
	tokenModel      string
	copyToClipboard bool
	outputPath      string
}

// addTraversalFlags registers walking flags on the command.
func addTraversalFlags(command *cobra.Command, values *traversalFlagValues) {
	command.Flags().StringArrayVarP(&values.ignorePatterns, ignoreFlagName, ignoreFlagShorthand, nil, ignoreFlagDescription)
	command.Flags().BoolVar(&values.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	command.Flags().BoolVar(&values.includeHidden, hiddenFlagName, false, hiddenFlagDescription)
	command.Flags().BoolVar(&values.followSymlinks, followSymlinksFlagName, false, followSymlinksFlagDescription)
	command.Flags().IntVar(&values.maxDepth, maxDepthFlagName, snapshot.UnlimitedDepth, maxDepthFlagDescription)
}

// addCaptureFlags registers content capture flags on the command.
func addCaptureFlags(command *cobra.Command, values *captureFlagValues) {
	command.Flags().StringVar(&values.binaryDetection, binaryDetectionFlagName, string(snapshot.DetectionSimple), binaryDetectionFlagDescription)
	command.Flags().Int64Var(&values.fileSizeLimit, fileSizeLimitFlagName, 0, fileSizeLimitFlagDescription)
	command.Flags().BoolVar(&values.includeSizes, sizeFlagName, false, sizeFlagDescription)
}

// addRenderFlags registers rendering and delivery flags on the command.
func addRenderFlags(command *cobra.Command, values *renderFlagValues) {
	command.Flags().StringVar(&values.format, formatFlagName, output.FormatMarkdown, formatFlagDescription)
	command.Flags().BoolVar(&values.pretty, prettyFlagName, false, prettyFlagDescription)
	command.Flags().StringVar(&values.strategy, strategyFlagName, string(snapshot.StrategySequential), strategyFlagDescription)
	command.Flags().IntVar(&values.workers, workersFlagName, 0, workersFlagDescription)
	command.Flags().BoolVar(&values.countTokens, tokensFlagName, false, tokensFlagDescription)
	command.Flags().StringVar(&values.tokenModel, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	command.Flags().BoolVar(&values.copyToClipboard, clipboardFlagName, false, clipboardFlagDescription)
	command.Flags().StringVar(&values.outputPath, outputFlagName, "", outputFlagDescription)
}

// applyConfiguredDefaults overlays configuration file defaults onto flags the
// user did not set explicitly.
func applyConfiguredDefaults(command *cobra.Command, traversal *traversalFlagValues, capture *captureFlagValues, render *renderFlagValues, defaults config.SnapshotCommandConfiguration) {
	flags := command.Flags()
	if traversal != nil {
		if !flags.Changed(noGitignoreFlagName) && defaults.Paths.UseGitignore != nil {
			traversal.disableGitignore = !*defaults.Paths.UseGitignore
		}
		if !flags.Changed(hiddenFlagName) && defaults.Hidden != nil {
			traversal.includeHidden = *defaults.Hidden
		}
		if !flags.Changed(followSymlinksFlagName) && defaults.FollowSymlinks != nil {
			traversal.followSymlinks = *defaults.FollowSymlinks
		}
		if len(defaults.Paths.Exclude) > 0 {
			combined := append(append([]string{}, defaults.Paths.Exclude...), traversal.ignorePatterns...)
			traversal.ignorePatterns = utils.DeduplicatePatterns(combined)
		}
	}
	if capture != nil {
		if !flags.Changed(binaryDetectionFlagName) && defaults.BinaryDetection != "" {
			capture.binaryDetection = defaults.BinaryDetection
		}
		if !flags.Changed(fileSizeLimitFlagName) && defaults.FileSizeLimit != nil {
			capture.fileSizeLimit = *defaults.FileSizeLimit
		}
		if !flags.Changed(sizeFlagName) && defaults.Sizes != nil {
			capture.includeSizes = *defaults.Sizes
		}
	}
	if render != nil {
		if !flags.Changed(formatFlagName) && defaults.Format != "" {
			render.format = defaults.Format
		}
		if !flags.Changed(strategyFlagName) && defaults.Strategy != "" {
			render.strategy = defaults.Strategy
		}
		if !flags.Changed(workersFlagName) && defaults.Workers != nil {
			render.workers = *defaults.Workers
		}
		if !flags.Changed(tokensFlagName) && defaults.Tokens.Enabled != nil {
			render.countTokens = *defaults.Tokens.Enabled
		}
		if !flags.Changed(modelFlagName) && defaults.Tokens.Model != "" {
			render.tokenModel = defaults.Tokens.Model
		}
		if !flags.Changed(clipboardFlagName) && defaults.Clipboard != nil {
			render.copyToClipboard = *defaults.Clipboard
		}
	}
}

// buildWalkOptions translates traversal and capture flags into engine options.
func buildWalkOptions(rootPath string, traversal traversalFlagValues, capture *captureFlagValues) snapshot.Options {
	options := snapshot.DefaultOptions(rootPath)
	options.RespectGitignore = !traversal.disableGitignore
	options.IncludeHidden = traversal.includeHidden
	options.FollowSymlinks = traversal.followSymlinks
	options.MaxDepth = traversal.maxDepth
	options.IgnorePatterns = traversal.ignorePatterns
	if capture != nil {
		options.BinaryDetection = snapshot.BinaryDetection(strings.ToLower(capture.binaryDetection))
		options.FileSizeLimit = capture.fileSizeLimit
		options.IncludeFileSize = capture.includeSizes
	}
	return options
}

// rootPathArgument returns the positional path or the default.
func rootPathArgument(arguments []string) string {
	if len(arguments) > 0 {
		return arguments[0]
	}
	return defaultPath
}

// loadSnapshotDefaults loads the merged configuration for the snapshot command family.
func loadSnapshotDefaults() (config.SnapshotCommandConfiguration, error) {
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{})
	if configurationError != nil {
		return config.SnapshotCommandConfiguration{}, configurationError
	}
	return applicationConfiguration.Snapshot, nil
}

// createSnapshotCommand returns the snapshot subcommand.
func createSnapshotCommand() *cobra.Command {
	var traversalValues traversalFlagValues
	var captureValues captureFlagValues
	var renderValues renderFlagValues

	snapshotCommand := &cobra.Command{
		Use:     snapshotUse,
		Aliases: []string{snapshotAlias},
		Short:   snapshotShortDescription,
		Long:    snapshotLongDescription,
		Example: snapshotUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			defaults, defaultsError := loadSnapshotDefaults()
			if defaultsError != nil {
				return defaultsError
			}
			applyConfiguredDefaults(command, &traversalValues, &captureValues, &renderValues, defaults)
			return runSnapshotCommand(rootPathArgument(arguments), traversalValues, captureValues, renderValues, nil, clipboard.NewService())
		},
	}

	addTraversalFlags(snapshotCommand, &traversalValues)
	addCaptureFlags(snapshotCommand, &captureValues)
	addRenderFlags(snapshotCommand, &renderValues)
	return snapshotCommand
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand() *cobra.Command {
	var traversalValues traversalFlagValues

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			defaults, defaultsError := loadSnapshotDefaults()
			if defaultsError != nil {
				return defaultsError
			}
			applyConfiguredDefaults(command, &traversalValues, nil, nil, defaults)
			return runTreeCommand(rootPathArgument(arguments), traversalValues, nil)
		},
	}

	addTraversalFlags(treeCommand, &traversalValues)
	return treeCommand
}

// createPathsCommand returns the paths subcommand.
func createPathsCommand() *cobra.Command {
	var traversalValues traversalFlagValues

	pathsCommand := &cobra.Command{
		Use:     pathsUse,
		Aliases: []string{pathsAlias},
		Short:   pathsShortDescription,
		Long:    pathsLongDescription,
		Example: pathsUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			defaults, defaultsError := loadSnapshotDefaults()
			if defaultsError != nil {
				return defaultsError
			}
			applyConfiguredDefaults(command, &traversalValues, nil, nil, defaults)
			return runPathsCommand(rootPathArgument(arguments), traversalValues, nil)
		},
	}

	addTraversalFlags(pathsCommand, &traversalValues)
	return pathsCommand
}

// createStreamCommand returns the stream subcommand.
func createStreamCommand() *cobra.Command {
	var traversalValues traversalFlagValues
	var captureValues captureFlagValues

	streamCommand := &cobra.Command{
		Use:     streamUse,
		Aliases: []string{streamAlias},
		Short:   streamShortDescription,
		Long:    streamLongDescription,
		Example: streamUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			defaults, defaultsError := loadSnapshotDefaults()
			if defaultsError != nil {
				return defaultsError
			}
			applyConfiguredDefaults(command, &traversalValues, &captureValues, nil, defaults)
			return runStreamCommand(rootPathArgument(arguments), traversalValues, captureValues, nil, nil)
		},
	}

	addTraversalFlags(streamCommand, &traversalValues)
	addCaptureFlags(streamCommand, &captureValues)
	return streamCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var globalTarget bool
	var forceOverwrite bool

	initCommand := &cobra.Command{
		Use:     initUse,
		Short:   initShortDescription,
		Long:    initLongDescription,
		Example: initUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: forceOverwrite})
			if initError != nil {
				return initError
			}
			fmt.Printf(initializedConfigurationFormat, writtenPath)
			return nil
		},
	}

	initCommand.Flags().BoolVar(&globalTarget, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&forceOverwrite, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// runSnapshotCommand captures a snapshot and delivers the rendered output.
func runSnapshotCommand(rootPath string, traversal traversalFlagValues, capture captureFlagValues, render renderFlagValues, writer io.Writer, copier clipboard.Copier) error {
	formatLower := strings.ToLower(render.format)
	if !isSupportedFormat(formatLower) {
		return fmt.Errorf(invalidFormatMessage, render.format)
	}

	options := buildWalkOptions(rootPath, traversal, &capture)
	options.Strategy = snapshot.Strategy(strings.ToLower(render.strategy))
	options.Workers = render.workers

	result, captureError := snapshot.Capture(options)
	if captureError != nil {
		return captureError
	}

	renderOptions := output.RenderOptions{
		Pretty:         render.pretty,
		IncludeSummary: capture.includeSizes || render.countTokens,
	}
	if render.countTokens {
		tokenCounter, resolvedModel, counterError := tokenizer.NewCounter(render.tokenModel)
		if counterError != nil {
			return counterError
		}
		renderOptions.TokenCounter = tokenCounter
		renderOptions.TokenModel = resolvedModel
	}

	rendered, renderError := output.Render(result, formatLower, renderOptions)
	if renderError != nil {
		return renderError
	}
	return deliverRenderedOutput(rendered, render, writer, copier)
}

// deliverRenderedOutput prints rendered output or writes it to the requested
// destinations.
func deliverRenderedOutput(rendered string, render renderFlagValues, writer io.Writer, copier clipboard.Copier) error {
	if writer == nil {
		writer = os.Stdout
	}
	if render.outputPath != "" {
		if writeError := output.WriteToFile(render.outputPath, rendered); writeError != nil {
			return writeError
		}
	} else {
		fmt.Fprint(writer, rendered)
		if !strings.HasSuffix(rendered, "\n") {
			fmt.Fprintln(writer)
		}
	}
	if render.copyToClipboard {
		if copier == nil {
			return errors.New(clipboardServiceMissingMessage)
		}
		if copyError := copier.Copy(rendered); copyError != nil {
			return copyError
		}
	}
	return nil
}

// runTreeCommand renders only the directory tree.
func runTreeCommand(rootPath string, traversal traversalFlagValues, writer io.Writer) error {
	if writer == nil {
		writer = os.Stdout
	}
	treeText, treeError := snapshot.Tree(buildWalkOptions(rootPath, traversal, nil))
	if treeError != nil {
		return treeError
	}
	fmt.Fprintln(writer, treeText)
	return nil
}

// runPathsCommand lists the file paths a snapshot would capture.
func runPathsCommand(rootPath string, traversal traversalFlagValues, writer io.Writer) error {
	if writer == nil {
		writer = os.Stdout
	}
	capturedPaths, pathsError := snapshot.Paths(buildWalkOptions(rootPath, traversal, nil))
	if pathsError != nil {
		return pathsError
	}
	for _, capturedPath := range capturedPaths {
		fmt.Fprintln(writer, capturedPath)
	}
	return nil
}

// runStreamCommand emits one JSON object per captured record as the walk
// progresses. In-band failures are reported on the warning writer and the
// stream continues.
func runStreamCommand(rootPath string, traversal traversalFlagValues, capture captureFlagValues, outputWriter io.Writer, warningWriter io.Writer) error {
	if outputWriter == nil {
		outputWriter = os.Stdout
	}
	if warningWriter == nil {
		warningWriter = os.Stderr
	}
	recordStream, streamError := snapshot.NewStream(buildWalkOptions(rootPath, traversal, &capture))
	if streamError != nil {
		return streamError
	}
	return pumpRecords(recordStream, outputWriter, warningWriter)
}

// pumpRecords connects the pull-based record stream to the NDJSON encoder
// through a producer and consumer pair.
func pumpRecords(recordStream *snapshot.Stream, outputWriter io.Writer, warningWriter io.Writer) error {
	group, groupContext := errgroup.WithContext(context.Background())
	records := make(chan snapshot.FileRecord)

	group.Go(func() error {
		defer close(records)
		for {
			record, nextError := recordStream.Next()
			if nextError != nil {
				if errors.Is(nextError, io.EOF) {
					return nil
				}
				var traversalFailure *snapshot.TraversalError
				var fileFailure *snapshot.FileError
				if errors.As(nextError, &traversalFailure) || errors.As(nextError, &fileFailure) {
					fmt.Fprintf(warningWriter, warningRecordFormat, nextError)
					continue
				}
				return nextError
			}
			select {
			case records <- *record:
			case <-groupContext.Done():
				return groupContext.Err()
			}
		}
	})

	group.Go(func() error {
		encoder := json.NewEncoder(outputWriter)
		for {
			select {
			case <-groupContext.Done():
				return groupContext.Err()
			case record, open := <-records:
				if !open {
					return nil
				}
				if encodeError := encoder.Encode(record); encodeError != nil {
					return encodeError
				}
			}
		}
	})

	if waitError := group.Wait(); waitError != nil && !errors.Is(waitError, context.Canceled) {
		return waitError
	}
	return nil
}
