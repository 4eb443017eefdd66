// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionOptions is the plain, serializable form of a conversion
// configuration. It is what flags, config files, and batch manifests decode
// into; convert.NewConfig validates it into an immutable convert.Config.
type ConversionOptions struct {
	// StartPage is the first page to convert, 0-based (default 0).
	StartPage int `json:"start_page" yaml:"start_page"`

	// EndPage is the last page to convert, 0-based and inclusive.
	// Nil means the last page of the source.
	EndPage *int `json:"end_page,omitempty" yaml:"end_page,omitempty"`

	// Overwrite allows replacing an existing destination file.
	Overwrite bool `json:"overwrite" yaml:"overwrite"`

	// CreateBackup copies an existing destination aside before overwriting it.
	CreateBackup bool `json:"create_backup" yaml:"create_backup"`

	// Verbose enables informational and debug output.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// LogFile, when set, receives a copy of every emitted log record.
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`

	// MultiProcessing splits the page range across parallel workers.
	MultiProcessing bool `json:"multi_processing" yaml:"multi_processing"`

	// CPUCount is the number of workers for MultiProcessing.
	// Nil means one worker per CPU.
	CPUCount *int `json:"cpu_count,omitempty" yaml:"cpu_count,omitempty"`
}

// EngineBackend selects how the external pdf2docx engine is run.
type EngineBackend string

const (
	BackendAuto      EngineBackend = "auto"
	BackendLocal     EngineBackend = "local"
	BackendContainer EngineBackend = "container"
)

// EngineConfig holds settings for the external conversion engine.
type EngineConfig struct {
	// Backend selects local, container, or auto (local first).
	Backend EngineBackend `json:"backend" yaml:"backend"`

	// Binary is the pdf2docx executable name or path (default "pdf2docx").
	Binary string `json:"binary" yaml:"binary"`

	// Image is the container image providing pdf2docx (default "pdf2docx:latest").
	Image string `json:"image" yaml:"image"`

	// Args are extra arguments appended to every engine invocation.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// HistoryConfig holds settings for the conversion history journal.
type HistoryConfig struct {
	// Enabled turns journaling on (default true).
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`
}
