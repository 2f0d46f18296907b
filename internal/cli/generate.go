package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/homalozoa/pcb-placement-generator/internal/export"
	"github.com/homalozoa/pcb-placement-generator/internal/importer"
	"github.com/homalozoa/pcb-placement-generator/internal/layout"
	"github.com/homalozoa/pcb-placement-generator/internal/model"
	"github.com/homalozoa/pcb-placement-generator/internal/project"
)

const (
	formatPDF  = "pdf"
	formatDXF  = "dxf"
	formatBoth = "both"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output     string // output directory (a per-input subdirectory is created inside)
	refdes     bool   // generate reference designator drawings
	pkg        bool   // generate package name drawings
	value      bool   // generate component value drawings
	all        bool   // shorthand for all three fields
	format     string // "pdf", "dxf" or "both"
	configPath string // application config file (default ~/.pcbplot/config.json)
}

// newGenerateCmd creates the generate command, the main entry point of the
// tool. It takes a single pick-and-place file argument and produces one
// drawing per selected label field per populated board side.
func newGenerateCmd() *cobra.Command {
	opts := generateOpts{
		output: "output",
	}

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Generate layout drawings from a pick-and-place file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return runGenerate(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output directory")
	cmd.Flags().BoolVar(&opts.refdes, "refdes", false, "generate reference designator drawings (default)")
	cmd.Flags().BoolVar(&opts.pkg, "package", false, "generate package name drawings")
	cmd.Flags().BoolVar(&opts.value, "value", false, "generate component value drawings")
	// Compatibility spellings; same selection semantics as the flags above.
	cmd.Flags().BoolVar(&opts.refdes, "refdes-only", false, "alias for --refdes")
	cmd.Flags().BoolVar(&opts.pkg, "package-only", false, "alias for --package")
	cmd.Flags().BoolVar(&opts.value, "value-only", false, "alias for --value")
	cmd.Flags().MarkHidden("refdes-only")
	cmd.Flags().MarkHidden("package-only")
	cmd.Flags().MarkHidden("value-only")
	cmd.Flags().BoolVar(&opts.all, "all", false, "generate drawings for all label fields")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: pdf (default), dxf, both")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.pcbplot/config.json)")

	return cmd
}

// determineFields resolves the field selection flags into the list of label
// fields to draw. With no field flag set it defaults to reference
// designators only.
func determineFields(opts *generateOpts) []model.LabelField {
	if opts.all {
		return []model.LabelField{model.FieldRefDes, model.FieldPackage, model.FieldValue}
	}
	var fields []model.LabelField
	if opts.refdes {
		fields = append(fields, model.FieldRefDes)
	}
	if opts.pkg {
		fields = append(fields, model.FieldPackage)
	}
	if opts.value {
		fields = append(fields, model.FieldValue)
	}
	if len(fields) == 0 {
		fields = []model.LabelField{model.FieldRefDes}
	}
	return fields
}

func validateFormat(format string) error {
	switch format {
	case "", formatPDF, formatDXF, formatBoth:
		return nil
	}
	return fmt.Errorf("unknown format %q (expected pdf, dxf or both)", format)
}

// settingsFromConfig applies user calibration overrides to the engine
// defaults. Zero config values keep the defaults.
func settingsFromConfig(cfg model.AppConfig) layout.Settings {
	s := layout.DefaultSettings()
	if cfg.MinFontSize > 0 {
		s.MinFontSize = cfg.MinFontSize
	}
	if cfg.MaxFontSize > 0 {
		s.MaxFontSize = cfg.MaxFontSize
	}
	if cfg.CharWidthRatio > 0 {
		s.CharWidthRatio = cfg.CharWidthRatio
	}
	if cfg.MinBuffer > 0 {
		s.MinBuffer = cfg.MinBuffer
	}
	return s
}

// buildRequests converts one side's components into placement requests for
// the given label field, resolving footprint sizes through the catalog.
func buildRequests(comps []model.Component, field model.LabelField, catalog *model.Catalog) []layout.Request {
	reqs := make([]layout.Request, len(comps))
	for i, c := range comps {
		fp := catalog.Lookup(c.Package)
		reqs[i] = layout.Request{
			Anchor:    layout.Point{X: c.X, Y: c.Y},
			Text:      c.LabelText(field),
			Footprint: layout.Size{W: fp.Width, H: fp.Height},
			Rotation:  c.Rotation,
		}
	}
	return reqs
}

// layerJob is one placement unit: a label field on a board side.
type layerJob struct {
	field  model.LabelField
	layer  model.Layer
	reqs   []layout.Request
	result layout.LayerResult
}

func runGenerate(ctx context.Context, path string, opts *generateOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	configPath := opts.configPath
	if configPath == "" {
		configPath = project.DefaultConfigPath()
	}
	cfg, err := project.LoadAppConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	format := opts.format
	if format == "" {
		format = cfg.OutputFormat
	}
	if format == "" {
		format = formatPDF
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	catalog, err := project.LoadCatalog(cfg.FootprintOverrides)
	if err != nil {
		return fmt.Errorf("loading footprint overrides: %w", err)
	}

	res := importer.Import(path)
	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	for _, e := range res.Errors {
		logger.Error(e)
	}
	if len(res.Components) == 0 {
		return fmt.Errorf("no usable components in %s", path)
	}
	board := model.SplitByLayer(res.Components)
	stats := board.Stats()
	logger.Infof("Loaded %d components (%d top, %d bottom, %d package types)",
		stats.Total, stats.Top, stats.Bottom, stats.Packages)

	// Recent-file bookkeeping is best effort; a read-only home directory
	// must not fail the run.
	project.RememberFile(&cfg, path)
	if err := project.SaveAppConfig(configPath, cfg); err != nil {
		logger.Debugf("could not save config: %v", err)
	}

	settings := settingsFromConfig(cfg)
	fields := determineFields(opts)

	var jobs []*layerJob
	for _, field := range fields {
		for _, layer := range []model.Layer{model.LayerTop, model.LayerBottom} {
			comps := board.Side(layer)
			if len(comps) == 0 {
				logger.Debugf("skipping %s/%s: no components", field, layer)
				continue
			}
			jobs = append(jobs, &layerJob{
				field: field,
				layer: layer,
				reqs:  buildRequests(comps, field, catalog),
			})
		}
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no populated layers in %s", path)
	}

	// Each field/side pair is an independent placement run.
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(j *layerJob) {
			defer wg.Done()
			j.result = layout.PlaceLayer(j.reqs, settings)
		}(job)
	}
	wg.Wait()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outDir := filepath.Join(opts.output, stem)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	renderOpts := export.Options{MarginRatio: cfg.MarginRatio}
	if renderOpts.MarginRatio <= 0 {
		renderOpts = export.DefaultOptions()
	}

	var summary []export.SummaryRow
	for _, job := range jobs {
		d := export.Drawing{
			Source:     stem,
			Field:      job.field,
			Layer:      job.layer,
			Placements: job.result.Placements,
			FontSize:   job.result.FontSize,
		}
		logger.Debugf("%s: %d labels, font %.1fpt, min spacing %.2fmm, %d forced",
			d.FileName(), len(d.Placements), d.FontSize, job.result.MinSpacing, job.result.Forced)
		if job.result.Forced > 0 {
			logger.Warnf("%s: %d labels could not avoid overlap and were force-placed", d.FileName(), job.result.Forced)
		}

		if format == formatPDF || format == formatBoth {
			out := filepath.Join(outDir, d.FileName()+".pdf")
			if err := export.WritePDF(out, d, renderOpts); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			logger.Infof("Wrote %s", out)
		}
		if format == formatDXF || format == formatBoth {
			out := filepath.Join(outDir, d.FileName()+".dxf")
			if err := export.WriteDXF(out, d); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			logger.Infof("Wrote %s", out)
		}
		summary = append(summary, export.SummaryRow{Drawing: d, Forced: job.result.Forced})
	}

	if format == formatPDF || format == formatBoth {
		summaryPath := filepath.Join(outDir, "Summary.pdf")
		if err := export.WriteSummaryPDF(summaryPath, stem, summary); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		logger.Infof("Wrote %s", summaryPath)
	}

	prog.done(fmt.Sprintf("Generated %d drawings", len(jobs)))
	return nil
}
