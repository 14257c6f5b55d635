package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

const paperDocument = "# Paper\n## Abstract\nThis paper studies X.\n## Introduction\nBackground on X.\n"

func TestSegmentService_Segment(t *testing.T) {
	tests := []struct {
		name     string
		document string
		expected []domain.Section
	}{
		{
			name:     "paper with two sections",
			document: paperDocument,
			expected: []domain.Section{
				{MainTitle: "Paper", SectionTitle: "Abstract", Content: "This paper studies X."},
				{MainTitle: "Paper", SectionTitle: "Introduction", Content: "Background on X."},
			},
		},
		{
			name:     "no headings",
			document: "just some text\nand more text\n",
			expected: []domain.Section{},
		},
		{
			name:     "empty document",
			document: "",
			expected: []domain.Section{},
		},
		{
			name:     "main title only",
			document: "# Title\nintro paragraph\n",
			expected: []domain.Section{},
		},
		{
			name:     "section without main title",
			document: "## Methods\nWe measured things.\n",
			expected: []domain.Section{
				{MainTitle: "", SectionTitle: "Methods", Content: "We measured things."},
			},
		},
		{
			name:     "content before first section is dropped",
			document: "preamble\n# Paper\nauthor list\n## Abstract\nbody\n",
			expected: []domain.Section{
				{MainTitle: "Paper", SectionTitle: "Abstract", Content: "body"},
			},
		},
		{
			name:     "deeper headings are content",
			document: "# Paper\n## Results\n### Table 1\nvalues\n",
			expected: []domain.Section{
				{MainTitle: "Paper", SectionTitle: "Results", Content: "### Table 1\nvalues"},
			},
		},
		{
			name:     "new main title closes section",
			document: "# A\n## One\nfirst\n# B\n## Two\nsecond\n",
			expected: []domain.Section{
				{MainTitle: "A", SectionTitle: "One", Content: "first"},
				{MainTitle: "B", SectionTitle: "Two", Content: "second"},
			},
		},
		{
			name:     "empty section body",
			document: "# Paper\n## Abstract\n## Introduction\ntext\n",
			expected: []domain.Section{
				{MainTitle: "Paper", SectionTitle: "Abstract", Content: ""},
				{MainTitle: "Paper", SectionTitle: "Introduction", Content: "text"},
			},
		},
		{
			name:     "lines are trimmed and blank lines kept inside content",
			document: "# Paper\n  ## Abstract  \n  line one  \n\n  line two\n\n",
			expected: []domain.Section{
				{MainTitle: "Paper", SectionTitle: "Abstract", Content: "line one\n\nline two"},
			},
		},
		{
			name:     "heading marker without space is content",
			document: "# Paper\n## Abstract\n##nospace\n#tag\n",
			expected: []domain.Section{
				{MainTitle: "Paper", SectionTitle: "Abstract", Content: "##nospace\n#tag"},
			},
		},
	}

	service := NewSegmentService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, service.Segment(tt.document))
		})
	}
}

func TestSegmentService_SectionTitlesNeverEmpty(t *testing.T) {
	doc := "# T\n## \nignored?\n## Real\nbody\n"

	sections := NewSegmentService().Segment(doc)

	for _, s := range sections {
		assert.NotEmpty(t, s.SectionTitle)
	}
}

func TestSegmentService_SegmentReader_MatchesSegment(t *testing.T) {
	service := NewSegmentService()

	fromReader, err := service.SegmentReader(context.Background(), strings.NewReader(paperDocument))
	require.NoError(t, err)

	assert.Equal(t, service.Segment(paperDocument), fromReader)
}

func TestSegmentService_SegmentReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSegmentService().SegmentReader(ctx, strings.NewReader(paperDocument))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSegmentService_SegmentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.md")
	require.NoError(t, os.WriteFile(path, []byte(paperDocument), 0o600))

	sections, err := NewSegmentService().SegmentFile(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "Abstract", sections[0].SectionTitle)
	assert.Equal(t, "Background on X.", sections[1].Content)
}

func TestSegmentService_SegmentFile_Missing(t *testing.T) {
	_, err := NewSegmentService().SegmentFile(context.Background(), filepath.Join(t.TempDir(), "nope.md"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
