package pipeline

// Reporter получает события пакетной обработки.
// Все методы вызываются из горутины, выполняющей Run.
type Reporter interface {
	// Progress вызывается после каждого файла: current из total обработано.
	Progress(current, total int)

	// FileDone - файл успешно записан.
	FileDone(out Output)

	// FileFailed - файл пропущен из-за ошибки.
	FileFailed(err *FileError)

	// Warning - некритичная проблема (например, метаданные не перенесены).
	Warning(w Warning)
}

// NopReporter игнорирует все события.
type NopReporter struct{}

func (NopReporter) Progress(int, int)     {}
func (NopReporter) FileDone(Output)       {}
func (NopReporter) FileFailed(*FileError) {}
func (NopReporter) Warning(Warning)       {}

// Reporters рассылает события нескольким получателям.
type Reporters []Reporter

func (rs Reporters) Progress(current, total int) {
	for _, r := range rs {
		r.Progress(current, total)
	}
}

func (rs Reporters) FileDone(out Output) {
	for _, r := range rs {
		r.FileDone(out)
	}
}

func (rs Reporters) FileFailed(err *FileError) {
	for _, r := range rs {
		r.FileFailed(err)
	}
}

func (rs Reporters) Warning(w Warning) {
	for _, r := range rs {
		r.Warning(w)
	}
}
