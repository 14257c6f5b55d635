package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-sections/internal/logger"
)

// Ensure SegmentService implements the interface.
var _ driving.SegmentService = (*SegmentService)(nil)

// Heading markers recognised by the segmenter. Deeper headings are content.
const (
	mainHeadingPrefix    = "# "
	sectionHeadingPrefix = "## "
)

// maxLineBytes bounds a single scanned line.
const maxLineBytes = 1024 * 1024

// SegmentService splits markdown into section records.
type SegmentService struct{}

// NewSegmentService creates a new segment service.
func NewSegmentService() *SegmentService {
	return &SegmentService{}
}

// Segment parses document text line by line.
func (s *SegmentService) Segment(document string) []domain.Section {
	seg := newSegmenter()
	for _, line := range strings.Split(document, "\n") {
		seg.line(line)
	}
	return seg.finish()
}

// SegmentReader parses a document from r.
func (s *SegmentService) SegmentReader(ctx context.Context, r io.Reader) ([]domain.Section, error) {
	seg := newSegmenter()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seg.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	return seg.finish(), nil
}

// SegmentFile parses the document at path.
func (s *SegmentService) SegmentFile(ctx context.Context, path string) ([]domain.Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	sections, err := s.SegmentReader(ctx, f)
	if err != nil {
		return nil, err
	}
	logger.Debug("Segmented %s into %d sections", path, len(sections))
	return sections, nil
}

// segmenter accumulates the current section while lines are fed in.
// Content seen before the first second-level heading is never emitted.
type segmenter struct {
	out       []domain.Section
	mainTitle string
	current   pendingSection
}

type pendingSection struct {
	mainTitle    string
	sectionTitle string
	lines        []string
}

func newSegmenter() *segmenter {
	return &segmenter{}
}

func (g *segmenter) line(raw string) {
	line := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(line, mainHeadingPrefix):
		g.emit()
		g.mainTitle = strings.TrimSpace(line[len(mainHeadingPrefix):])
		g.current = pendingSection{mainTitle: g.mainTitle}

	case strings.HasPrefix(line, sectionHeadingPrefix):
		g.emit()
		g.current = pendingSection{
			mainTitle:    g.mainTitle,
			sectionTitle: strings.TrimSpace(line[len(sectionHeadingPrefix):]),
		}

	default:
		g.current.lines = append(g.current.lines, line)
	}
}

// emit appends the current section if it has a section title.
func (g *segmenter) emit() {
	if g.current.sectionTitle == "" {
		return
	}
	g.out = append(g.out, domain.Section{
		MainTitle:    g.current.mainTitle,
		SectionTitle: g.current.sectionTitle,
		Content:      strings.TrimSpace(strings.Join(g.current.lines, "\n")),
	})
}

func (g *segmenter) finish() []domain.Section {
	g.emit()
	g.current = pendingSection{}
	if g.out == nil {
		return []domain.Section{}
	}
	return g.out
}
