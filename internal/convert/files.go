// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/pdiddy/tyx/pkg/types"
)

// History is the part of the conversion history the pipeline needs: the
// latest record of a source, to skip unchanged inputs, and recording new
// conversions.
type History interface {
	Latest(ctx context.Context, sourcePath string, dir types.Direction) (*types.ConversionRecord, error)
	Record(ctx context.Context, rec *types.ConversionRecord) error
}

// FileResult is the outcome of converting one file.
type FileResult struct {
	SourcePath string
	OutputPath string
	Status     types.ConversionStatus
	// Result is empty when the file was skipped or failed before
	// conversion.
	Result Result
	Err    error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
	Files     []FileResult
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// OutputPath is where the conversion of sourcePath in direction dir is
// written.
func (c *Converter) OutputPath(sourcePath string, dir types.Direction) string {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	outDir := c.cfg.OutDir
	if outDir == "" {
		outDir = "."
	}
	return filepath.Join(outDir, base+dir.TargetExt())
}

// ConvertFile converts a single file and writes the output into the
// configured output directory. A source whose hash matches the latest
// recorded conversion is skipped unless the configuration forces
// reconversion. A status line is written to w.
func (c *Converter) ConvertFile(ctx context.Context, path string, dir types.Direction, w io.Writer) FileResult {
	res := FileResult{SourcePath: path, OutputPath: c.OutputPath(path, dir)}
	fail := func(err error) FileResult {
		return c.failed(res, err, w)
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(fmt.Errorf("reading source: %w", err))
	}
	hash := hashOf(data)

	if !c.cfg.Force && c.history != nil {
		prev, err := c.history.Latest(ctx, path, dir)
		if err != nil {
			return fail(fmt.Errorf("looking up history: %w", err))
		}
		if prev != nil && prev.SourceHash == hash && fileExists(res.OutputPath) {
			res.Status = types.ConversionNone
			fmt.Fprintf(w, "skipped: %s (unchanged)\n", path)
			return res
		}
	}

	converted, err := c.Convert(string(data), dir)
	if err != nil {
		return fail(err)
	}
	res.Result = converted

	if err := os.MkdirAll(filepath.Dir(res.OutputPath), 0o755); err != nil {
		return fail(fmt.Errorf("creating output directory: %w", err))
	}
	if err := os.WriteFile(res.OutputPath, []byte(converted.Output), 0o644); err != nil {
		return fail(fmt.Errorf("writing output: %w", err))
	}

	if c.history != nil {
		if err := c.history.Record(ctx, c.record(path, dir, hash, res)); err != nil {
			return fail(fmt.Errorf("recording conversion: %w", err))
		}
	}

	res.Status = types.ConversionDone
	fmt.Fprintf(w, "converted: %s -> %s (%d diagnostics)\n", path, res.OutputPath, len(converted.Diagnostics))
	return res
}

func (c *Converter) failed(res FileResult, err error, w io.Writer) FileResult {
	res.Status = types.ConversionFailed
	res.Err = err
	fmt.Fprintf(w, "failed:  %s (%v)\n", res.SourcePath, err)
	c.log.Warn("conversion failed", "path", res.SourcePath, "error", err)
	return res
}

func (c *Converter) record(path string, dir types.Direction, hash string, res FileResult) *types.ConversionRecord {
	rec := &types.ConversionRecord{
		SourcePath:  path,
		Direction:   dir,
		SourceHash:  hash,
		OutputPath:  res.OutputPath,
		OutputHash:  hashOf([]byte(res.Result.Output)),
		Diagnostics: len(res.Result.Diagnostics),
		ConvertedAt: time.Now().UTC(),
	}
	for _, l := range res.Result.Labels {
		rec.Labels = append(rec.Labels, types.LabelRecord{Label: l.Label, Kind: l.Kind, Title: l.Title})
	}
	for _, d := range res.Result.Diagnostics {
		rec.Issues = append(rec.Issues, types.DiagnosticRecord{
			Kind:    string(d.Kind),
			Message: d.Message,
			From:    d.Range.From,
			To:      d.Range.To,
		})
	}
	return rec
}

// ConvertBatch converts paths on a bounded worker pool. Documents are
// independent, so the only shared state is the history store. Status lines
// are written to w in input order once all files are done, so the output
// does not depend on scheduling. Failures are counted and never stop the
// batch. A file whose output path was already claimed by an earlier input,
// such as a/x.tex and b/x.tex, fails instead of overwriting it.
func (c *Converter) ConvertBatch(ctx context.Context, paths []string, dir types.Direction, w io.Writer) BatchResult {
	workers := c.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	files := make([]FileResult, len(paths))
	logs := make([]bytes.Buffer, len(paths))

	owners := make(map[string]string, len(paths))
	p := pool.New().WithMaxGoroutines(workers)
	for i, path := range paths {
		out := c.OutputPath(path, dir)
		if first, taken := owners[out]; taken {
			files[i] = c.failed(FileResult{SourcePath: path, OutputPath: out},
				fmt.Errorf("output %s is also written by %s", out, first), &logs[i])
			continue
		}
		owners[out] = path
		p.Go(func() {
			files[i] = c.ConvertFile(ctx, path, dir, &logs[i])
		})
	}
	p.Wait()

	result := BatchResult{Files: files}
	for i, f := range files {
		w.Write(logs[i].Bytes())
		switch f.Status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionNone:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	c.log.Info("batch finished",
		"converted", result.Converted,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result
}

func hashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
