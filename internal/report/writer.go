package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"
	"go.uber.org/zap"

	"github.com/KaramelBytes/tidyloom-cli/internal/utils"
)

// Formats accepted by Writer.Write.
const (
	FormatHTML     = "html"
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

var knownExt = map[string]bool{
	".gz": true, ".lz4": true, ".zip": true,
	".csv": true, ".tsv": true, ".txt": true, ".xlsx": true, ".xlsm": true,
}

// Slug turns a file name into a lowercase ASCII token for report names.
func Slug(name string) string {
	stem := filepath.Base(name)
	for ext := filepath.Ext(stem); knownExt[strings.ToLower(ext)]; ext = filepath.Ext(stem) {
		stem = strings.TrimSuffix(stem, ext)
	}
	s := strings.ToLower(unidecode.Unidecode(stem))
	s = strings.Trim(slugUnsafe.ReplaceAllString(s, "_"), "_")
	if s == "" {
		return "data"
	}
	return s
}

// Writer stores reports in one output directory.
type Writer struct {
	dir    string
	now    func() time.Time
	logger *zap.Logger
}

func NewWriter(dir string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{dir: dir, now: time.Now, logger: logger.Named("report")}
}

// Write renders d in each format and writes
// data_report_<slug>_<YYYYMMDD_HHMMSS>.<ext> files, returning their paths in
// format order. An existing file is never overwritten.
func (w *Writer) Write(d *Data, formats []string) ([]string, error) {
	if err := utils.EnsureDir(w.dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	base := fmt.Sprintf("data_report_%s_%s", Slug(d.Filename()), w.now().Format("20060102_150405"))
	var paths []string
	for _, f := range formats {
		body, ext, err := render(d, strings.ToLower(strings.TrimSpace(f)))
		if err != nil {
			return paths, err
		}
		path, err := utils.UniquePath(filepath.Join(w.dir, base+ext))
		if err != nil {
			return paths, fmt.Errorf("resolve report path: %w", err)
		}
		if err := utils.SafeWriteFile(path, body); err != nil {
			return paths, fmt.Errorf("write %s report: %w", f, err)
		}
		w.logger.Debug("report written", zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}

func render(d *Data, format string) ([]byte, string, error) {
	switch format {
	case FormatHTML:
		var buf bytes.Buffer
		if err := HTML(&buf, d); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ".html", nil
	case FormatMarkdown, "markdown":
		return []byte(Markdown(d)), ".md", nil
	case FormatJSON:
		b, err := JSON(d)
		return b, ".json", err
	case FormatYAML, "yml":
		b, err := YAML(d)
		return b, ".yaml", err
	}
	return nil, "", fmt.Errorf("unsupported report format: %q (use html, md, json or yaml)", format)
}
