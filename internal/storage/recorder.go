package storage

import (
	"log/slog"

	"github.com/artemshloyda/imagecompressor/internal/pipeline"
)

// Recorder пишет события пакета в журнал. Реализует pipeline.Reporter.
// Ошибки записи не прерывают пакет: они уходят в лог.
type Recorder struct {
	s        *Storage
	runID    string
	log      *slog.Logger
	warnings int
}

// NewRecorder создаёт Recorder для открытого пакета runID.
func NewRecorder(s *Storage, runID string, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{s: s, runID: runID, log: log}
}

// RunID возвращает ID пакета.
func (r *Recorder) RunID() string { return r.runID }

func (r *Recorder) Progress(int, int) {}

func (r *Recorder) FileDone(out pipeline.Output) {
	r.record(Job{
		RunID:   r.runID,
		Index:   out.Index,
		SrcPath: out.Source,
		SrcSize: out.InputSize,
		DstPath: out.Path,
		DstSize: out.OutputSize,
		Width:   out.Width,
		Height:  out.Height,
		Status:  StatusOK,
	})
}

func (r *Recorder) FileFailed(ferr *pipeline.FileError) {
	r.record(Job{
		RunID:     r.runID,
		Index:     ferr.Index,
		SrcPath:   ferr.Path,
		Status:    StatusFailed,
		ErrorKind: string(ferr.Kind),
		Error:     ferr.Err.Error(),
	})
}

func (r *Recorder) Warning(pipeline.Warning) {
	r.warnings++
}

// Finish закрывает пакет в журнале.
func (r *Recorder) Finish() error {
	return r.s.FinishRun(r.runID, r.warnings)
}

func (r *Recorder) record(job Job) {
	if err := r.s.RecordJob(job); err != nil {
		r.log.Warn("журнал недоступен", "run", r.runID, "error", err)
	}
}
