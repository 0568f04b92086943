// Package storage ведёт журнал пакетов сжатия в SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Storage предоставляет методы для работы с журналом.
type Storage struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultPath возвращает путь к журналу внутри выходной директории.
func DefaultPath(outDir string) string {
	return filepath.Join(outDir, ".imagecompressor", "history.sqlite")
}

// New открывает (или создаёт) журнал и выполняет миграции.
func New(dbPath string) (*Storage, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для БД: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_foreign_keys=on", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть БД: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	// SQLite не поддерживает concurrent writes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Storage{db: db, now: time.Now}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось выполнить миграции: %w", err)
	}

	return s, nil
}

// migrate выполняет все SQL-миграции.
func (s *Storage) migrate() error {
	for i, m := range GetMigrations() {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("миграция %d: %w", i+1, err)
		}
	}
	return nil
}

// Close закрывает подключение к БД.
func (s *Storage) Close() error {
	return s.db.Close()
}

// BeginRun открывает запись о пакете и возвращает её ID.
func (s *Storage) BeginRun(outDir, outFormat, outParams string, total int) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, out_dir, out_format, out_params, total, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, outDir, outFormat, outParams, total, RunRunning, s.now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("не удалось создать запись пакета: %w", err)
	}
	return id, nil
}

// RecordJob записывает результат одного файла.
func (s *Storage) RecordJob(job Job) error {
	var errKind, errMsg *string
	if job.Status == StatusFailed {
		errKind, errMsg = &job.ErrorKind, &job.Error
	}

	_, err := s.db.Exec(
		`INSERT INTO jobs (run_id, idx, src_path, src_size, dst_path, dst_size, width, height,
		                   status, error_kind, error, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.RunID, job.Index, job.SrcPath, job.SrcSize, nullString(job.DstPath), job.DstSize,
		job.Width, job.Height, job.Status, errKind, errMsg, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("не удалось записать файл в журнал: %w", err)
	}
	return nil
}

// FinishRun закрывает пакет и пересчитывает его счётчики.
func (s *Storage) FinishRun(runID string, warnings int) error {
	_, err := s.db.Exec(
		`UPDATE runs SET
			status = ?,
			finished_at = ?,
			warnings = ?,
			ok = (SELECT COUNT(*) FROM jobs WHERE run_id = runs.id AND status = 'ok'),
			failed = (SELECT COUNT(*) FROM jobs WHERE run_id = runs.id AND status = 'failed')
		 WHERE id = ?`,
		RunDone, s.now().Unix(), warnings, runID,
	)
	if err != nil {
		return fmt.Errorf("не удалось закрыть пакет: %w", err)
	}
	return nil
}

// CleanupInterrupted помечает незакрытые пакеты как прерванные.
// Вызывается при старте для очистки после аварийного завершения.
func (s *Storage) CleanupInterrupted() (int64, error) {
	result, err := s.db.Exec(
		"UPDATE runs SET status = ? WHERE status = ?",
		RunInterrupted, RunRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("не удалось очистить незакрытые пакеты: %w", err)
	}
	return result.RowsAffected()
}

// RecentRuns возвращает последние пакеты, новые первыми.
func (s *Storage) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, out_dir, out_format, out_params, total, ok, failed, warnings, status, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать историю: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var started int64
		var finished sql.NullInt64
		if err := rows.Scan(&r.ID, &r.OutDir, &r.OutFormat, &r.OutParams, &r.Total,
			&r.OK, &r.Failed, &r.Warnings, &r.Status, &started, &finished); err != nil {
			return nil, fmt.Errorf("не удалось прочитать пакет: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		if finished.Valid {
			t := time.Unix(finished.Int64, 0)
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunJobs возвращает файлы пакета в порядке обработки.
func (s *Storage) RunJobs(runID string) ([]Job, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, idx, src_path, COALESCE(src_size, 0), COALESCE(dst_path, ''), COALESCE(dst_size, 0),
		        COALESCE(width, 0), COALESCE(height, 0), status, COALESCE(error_kind, ''), COALESCE(error, '')
		 FROM jobs WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файлы пакета: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.RunID, &j.Index, &j.SrcPath, &j.SrcSize, &j.DstPath, &j.DstSize,
			&j.Width, &j.Height, &j.Status, &j.ErrorKind, &j.Error); err != nil {
			return nil, fmt.Errorf("не удалось прочитать файл пакета: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// GetStats возвращает сводку по всем пакетам.
func (s *Storage) GetStats() (Stats, error) {
	var st Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&st.Runs); err != nil {
		return st, fmt.Errorf("не удалось получить статистику: %w", err)
	}
	err := s.db.QueryRow(
		`SELECT
			COALESCE(SUM(CASE WHEN status = 'ok' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'ok' THEN src_size ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'ok' THEN dst_size ELSE 0 END), 0)
		 FROM jobs`,
	).Scan(&st.OK, &st.Failed, &st.InputBytes, &st.OutputBytes)
	if err != nil {
		return st, fmt.Errorf("не удалось получить статистику: %w", err)
	}
	return st, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

/*
Возможные расширения:
- Добавить метод для очистки старых пакетов
- Пропускать файлы, уже сжатые с теми же параметрами
*/
