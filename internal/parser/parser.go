// Package parser turns CSV/TSV/XLSX files, optionally gzip, zip or lz4
// compressed, into typed tables.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/tidyloom-cli/internal/ordered"
	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

// Options controls how files are read and how columns are classified.
type Options struct {
	// Delimiter for CSV. If 0, sniffs among ',', ';', '\t', '|'.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// DetectDates tags columns whose every value parses as a timestamp as temporal.
	DetectDates bool
	// XLSX sheet by name, else by 1-based index.
	SheetName  string
	SheetIndex int
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// DefaultOptions returns reasonable defaults for dataset loading.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// FileInfo describes a loaded file.
type FileInfo struct {
	Filename      string               `json:"filename" yaml:"filename"`
	FileType      string               `json:"file_type" yaml:"file_type"`
	Compression   string               `json:"compression,omitempty" yaml:"compression,omitempty"`
	Sheet         string               `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	LoadTime      string               `json:"load_time" yaml:"load_time"`
	OriginalShape table.Shape          `json:"original_shape" yaml:"original_shape"`
	Columns       []string             `json:"columns" yaml:"columns"`
	DataTypes     *ordered.Map[string] `json:"data_types" yaml:"data_types"`
	Truncated     bool                 `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// Parser reads one tabular format into a header and raw string records.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte, opt Options) (*Sheet, error)
}

// Sheet is the raw grid a Parser produces.
type Sheet struct {
	Type   string
	Name   string
	Header []string
	Rows   [][]string
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}

func lookup(name string) Parser {
	for _, p := range registry {
		if p.CanParse(name) {
			return p
		}
	}
	return nil
}

// Loader reads files into tables.
type Loader struct {
	opt    Options
	logger *zap.Logger
	now    func() time.Time
}

// NewLoader returns a loader; a nil logger disables logging.
func NewLoader(opt Options, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{opt: opt, logger: logger.Named("parser"), now: time.Now}
}

// Load reads, decompresses, parses and classifies the file at path.
func (l *Loader) Load(path string) (*table.Table, *FileInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}
	data, name, compression, err := decompress(data, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}
	p := lookup(name)
	if p == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	sh, err := p.Parse(data, l.opt)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", name, err)
	}
	truncated := false
	if l.opt.MaxRows > 0 && len(sh.Rows) > l.opt.MaxRows {
		l.logger.Warn("row limit reached",
			zap.String("file", name),
			zap.Int("rows", len(sh.Rows)),
			zap.Int("max_rows", l.opt.MaxRows))
		sh.Rows = sh.Rows[:l.opt.MaxRows]
		truncated = true
	}
	t, err := Build(sh.Header, sh.Rows, l.opt)
	if err != nil {
		return nil, nil, fmt.Errorf("build table: %w", err)
	}
	info := &FileInfo{
		Filename:      filepath.Base(path),
		FileType:      sh.Type,
		Compression:   compression,
		Sheet:         sh.Name,
		LoadTime:      l.now().Format(table.TimeLayout),
		OriginalShape: t.Shape(),
		Columns:       t.Names(),
		DataTypes:     ordered.New[string](),
		Truncated:     truncated,
	}
	for _, c := range t.Columns {
		info.DataTypes.Set(c.Name, c.Kind.String())
	}
	l.logger.Info("file loaded",
		zap.String("file", info.Filename),
		zap.String("type", info.FileType),
		zap.Stringer("shape", info.OriginalShape))
	return t, info, nil
}
