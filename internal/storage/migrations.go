package storage

// migrations содержит SQL-миграции в порядке выполнения.
var migrations = []string{
	// Миграция 1: Пакеты (один запуск сжатия)
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		out_dir TEXT NOT NULL,
		out_format TEXT NOT NULL,
		out_params TEXT NOT NULL,
		total INTEGER NOT NULL,
		ok INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER
	);`,

	// Миграция 2: Файлы пакета
	`CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		idx INTEGER NOT NULL,
		src_path TEXT NOT NULL,
		src_size INTEGER,
		dst_path TEXT,
		dst_size INTEGER,
		width INTEGER,
		height INTEGER,
		status TEXT NOT NULL,
		error_kind TEXT,
		error TEXT,
		finished_at INTEGER NOT NULL
	);`,

	// Миграция 3: Один файл записывается в пакете один раз
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_jobs_run_idx ON jobs (run_id, idx);`,

	// Миграция 4: Индекс для истории по времени
	`CREATE INDEX IF NOT EXISTS ix_runs_started ON runs (started_at);`,

	// Миграция 5: Таблица метаданных для версионирования схемы
	`CREATE TABLE IF NOT EXISTS schema_info (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,

	// Миграция 6: Запись версии схемы
	`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', '1');`,
}

// GetMigrations возвращает список SQL-миграций.
func GetMigrations() []string {
	return migrations
}
