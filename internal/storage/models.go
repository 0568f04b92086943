package storage

import "time"

// RunStatus - статус пакета.
type RunStatus string

const (
	// RunRunning - пакет выполняется.
	RunRunning RunStatus = "running"
	// RunDone - пакет завершён (отдельные файлы могли упасть).
	RunDone RunStatus = "done"
	// RunInterrupted - процесс завершился, не закрыв пакет.
	RunInterrupted RunStatus = "interrupted"
)

// JobStatus - статус одного файла.
type JobStatus string

const (
	// StatusOK - файл записан.
	StatusOK JobStatus = "ok"
	// StatusFailed - файл пропущен из-за ошибки.
	StatusFailed JobStatus = "failed"
)

// Run - запись о пакете.
type Run struct {
	ID         string
	OutDir     string
	OutFormat  string
	OutParams  string
	Total      int
	OK         int
	Failed     int
	Warnings   int
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Job - запись об одном файле пакета.
type Job struct {
	ID        int64
	RunID     string
	Index     int
	SrcPath   string
	SrcSize   int64
	DstPath   string
	DstSize   int64
	Width     int
	Height    int
	Status    JobStatus
	ErrorKind string
	Error     string
}

// Stats - сводка по всем пакетам.
type Stats struct {
	Runs        int64
	OK          int64
	Failed      int64
	InputBytes  int64
	OutputBytes int64
}
