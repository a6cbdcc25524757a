package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"firds/shared/config"
	"firds/shared/domain/observability"
	"firds/shared/domain/runtime"
	"firds/shared/domain/storage"
	"firds/workers/exporter/internal/domain"
	"firds/workers/exporter/internal/domain/service"
)

// ExportPipeline runs the five export stages in order
type ExportPipeline struct {
	downloads *service.DownloadService
	extractor *service.Extractor
	workspace storage.ObjectStorage
	remote    storage.ObjectStorage

	source  config.SourceConfig
	archive config.ArchiveConfig
	files   config.WorkspaceConfig
	sink    config.SinkConfig
	bucket  string

	logger  observability.Logger
	metrics observability.Metrics
	stdout  io.Writer
	now     func() time.Time
}

// runState carries values from one stage to the next
type runState struct {
	report    *Report
	logger    observability.Logger
	index     []byte
	reference domain.IndexEntry
	document  string
	records   []domain.InstrumentRecord
}

type stageFunc func(ctx context.Context, run *runState) error

// NewExportPipeline wires the stages. remote may be nil when uploads
// are disabled.
func NewExportPipeline(
	cfg *config.Config,
	downloads *service.DownloadService,
	workspace storage.ObjectStorage,
	remote storage.ObjectStorage,
	logger observability.Logger,
	metrics observability.Metrics,
) *ExportPipeline {
	return &ExportPipeline{
		downloads: downloads,
		extractor: service.NewExtractor(cfg.Extract),
		workspace: workspace,
		remote:    remote,
		source:    cfg.Source,
		archive:   cfg.Archive,
		files:     cfg.Workspace,
		sink:      cfg.Sink,
		bucket:    cfg.Storage.BucketOrPath,
		logger:    logger,
		metrics:   metrics,
		stdout:    os.Stdout,
		now:       time.Now,
	}
}

// WithOutput redirects what the run prints for the operator
func (p *ExportPipeline) WithOutput(w io.Writer) *ExportPipeline {
	p.stdout = w
	return p
}

// Handle runs the export for a runtime trigger
func (p *ExportPipeline) Handle(ctx context.Context, trigger runtime.Trigger) (interface{}, error) {
	report := p.run(ctx, p.logger.WithFields(map[string]interface{}{
		"trigger_id": trigger.ID,
		"trigger":    trigger.Source,
	}))
	return report, report.Err()
}

// Run executes every stage once. After the first failure the remaining
// stages are skipped.
func (p *ExportPipeline) Run(ctx context.Context) *Report {
	return p.run(ctx, p.logger)
}

func (p *ExportPipeline) run(ctx context.Context, logger observability.Logger) *Report {
	report := newReport(p.now().UTC())
	run := &runState{
		report: report,
		logger: logger.WithFields(map[string]interface{}{"run_id": report.RunID}),
	}

	steps := map[Stage]stageFunc{
		StageIndexFetch:      p.fetchIndex,
		StageLocateReference: p.locateReference,
		StageArchiveFetch:    p.fetchArchive,
		StageExtractFields:   p.extractFields,
		StageSink:            p.writeOutput,
	}

	run.logger.Info("Export started")

	failed := false
	for _, stage := range Stages {
		tags := map[string]string{"stage": string(stage)}

		if failed {
			report.record(stage, StatusSkipped, nil, 0)
			run.logger.Warn("Stage skipped", "stage", stage)
			p.metrics.IncrementCounter("stage.skipped", tags)
			continue
		}

		run.logger.Info("Stage started", "stage", stage)
		startTime := p.now()

		err := ctx.Err()
		if err == nil {
			err = steps[stage](ctx, run)
		}
		duration := p.now().Sub(startTime)
		p.metrics.RecordHistogram("stage.duration", duration.Seconds(), tags)

		if err != nil {
			failed = true
			report.record(stage, StatusFailed, err, duration)
			run.logger.Error("Stage failed", "stage", stage, "error", err, "duration_ms", duration.Milliseconds())
			p.metrics.IncrementCounter("stage.failed", tags)
			continue
		}

		report.record(stage, StatusSucceeded, nil, duration)
		run.logger.Info("Stage succeeded", "stage", stage, "duration_ms", duration.Milliseconds())
		p.metrics.IncrementCounter("stage.succeeded", tags)
	}

	report.FinishedAt = p.now().UTC()

	if report.Succeeded() {
		run.logger.Info("Export completed",
			"records", report.Records,
			"destination", report.Destination)
		p.metrics.IncrementCounter("export.completed", nil)
	} else {
		run.logger.Error("Export failed", "error", report.Err())
		p.metrics.IncrementCounter("export.failed", nil)
	}

	return report
}

func (p *ExportPipeline) fetchIndex(ctx context.Context, run *runState) error {
	queryURL, err := service.QueryURL(p.source)
	if err != nil {
		return err
	}

	run.logger.Info("Downloading file index", "url", queryURL)
	payload, err := p.downloads.Fetch(ctx, queryURL)
	if err != nil {
		return err
	}
	p.metrics.RecordHistogram("download.bytes", float64(payload.Size()), map[string]string{"target": "index"})

	run.index = payload.Content()
	p.persist(ctx, run, p.files.IndexFile, run.index)

	run.logger.Info("XML file downloaded successfully", "bytes", payload.Size(), "sha256", payload.Hash())
	return nil
}

func (p *ExportPipeline) locateReference(ctx context.Context, run *runState) error {
	entries, err := service.ParseIndex(bytes.NewReader(run.index))
	if err != nil {
		return err
	}

	for i, entry := range entries {
		run.logger.Debug("Index entry", "position", i+1, "file_name", entry.FileName, "file_type", entry.FileType)
	}

	reference, err := service.LocateReference(entries, p.source.FileType)
	if err != nil {
		return err
	}

	run.reference = reference
	run.report.Reference = &reference

	fmt.Fprintln(p.stdout, reference.DownloadLink)
	run.logger.Info("Download link found successfully",
		"download_link", reference.DownloadLink,
		"file_name", reference.FileName,
		"entries", len(entries))
	return nil
}

func (p *ExportPipeline) fetchArchive(ctx context.Context, run *runState) error {
	payload, err := p.downloads.Fetch(ctx, run.reference.DownloadLink)
	if err != nil {
		return err
	}
	p.metrics.RecordHistogram("download.bytes", float64(payload.Size()), map[string]string{"target": "archive"})

	if run.reference.Checksum != "" {
		run.logger.Debug("Archive downloaded",
			"sha256", payload.Hash(),
			"index_checksum", run.reference.Checksum)
	}

	content := payload.Content()
	p.persist(ctx, run, p.files.ArchiveFile, content)

	entries, err := service.Unpack(content)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		p.persist(ctx, run, entry.Name, entry.Content)
	}

	selected, err := service.SelectEntry(entries, p.archive.EntryName, run.reference.FileName)
	if err != nil {
		return err
	}

	text, err := service.DecodeText(selected.Content)
	if err != nil {
		return err
	}
	if p.archive.EchoDocument {
		fmt.Fprintln(p.stdout, text)
	}

	run.document = text
	run.logger.Info("Download and extraction successful",
		"entries", len(entries),
		"document", selected.Name,
		"bytes", len(selected.Content))
	return nil
}

func (p *ExportPipeline) extractFields(ctx context.Context, run *runState) error {
	records, err := p.extractor.Extract(strings.NewReader(run.document))
	if err != nil {
		return err
	}

	run.records = records
	run.report.Records = len(records)
	p.metrics.RecordGauge("export.records", float64(len(records)), nil)

	run.logger.Info("Data extraction successful", "records", len(records))
	return nil
}

func (p *ExportPipeline) writeOutput(ctx context.Context, run *runState) error {
	data, err := service.EncodeCSV(run.records, p.sink.UseCRLF)
	if err != nil {
		return err
	}

	localErr := p.save(ctx, p.files.OutputFile, data)

	if !p.sink.Upload {
		if localErr != nil {
			return domain.NewDomainError(domain.ErrStorageFailed.Code, "failed to write output file", localErr, false)
		}
		run.report.Destination = filepath.Join(p.files.Dir, p.files.OutputFile)
		run.logger.Info("Data written to output file successfully", "path", run.report.Destination, "upload", false)
		return nil
	}

	if localErr != nil {
		run.logger.Warn("Failed to write local output file; uploading from memory", "file", p.files.OutputFile, "error", localErr)
	} else {
		run.logger.Info("Data written to output file successfully", "file", p.files.OutputFile)
	}

	if p.remote == nil {
		return domain.NewDomainError(domain.ErrStorageFailed.Code, "remote storage is not configured", nil, false)
	}

	metadata := storage.ObjectMetadata{
		ContentType:   "text/csv",
		ContentLength: int64(len(data)),
		UserMetadata: map[string]string{
			"run_id":           run.report.RunID,
			"source_reference": run.reference.DownloadLink,
			"record_count":     strconv.Itoa(len(run.records)),
		},
	}

	run.logger.Info("Uploading output", "bucket", p.bucket, "key", p.sink.Key, "bytes", len(data))
	if err := p.remote.Put(ctx, "", p.sink.Key, bytes.NewReader(data), metadata); err != nil {
		return domain.NewDomainError(domain.ErrStorageFailed.Code, "failed to upload output", err, true)
	}

	run.report.Destination = p.bucket + "/" + p.sink.Key
	run.logger.Info("Output uploaded successfully", "destination", run.report.Destination)
	return nil
}

// persist stores an inspection artifact; failures are only logged
func (p *ExportPipeline) persist(ctx context.Context, run *runState, name string, content []byte) {
	if err := p.save(ctx, name, content); err != nil {
		run.logger.Warn("Failed to persist artifact", "file", name, "error", err)
		p.metrics.IncrementCounter("artifact.errors", nil)
	}
}

func (p *ExportPipeline) save(ctx context.Context, name string, content []byte) error {
	if p.workspace == nil {
		return fmt.Errorf("workspace is not configured")
	}
	return p.workspace.Put(ctx, "", name, bytes.NewReader(content), storage.ObjectMetadata{})
}
