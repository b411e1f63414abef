package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadataPrefersOpenGraph(t *testing.T) {
	doc := `<html><head>
        <title>Document Title</title>
        <meta name="description" content="plain description">
        <meta property="og:title" content="OG Title">
        <meta property="og:description" content="OG description">
    </head><body></body></html>`

	meta, err := ParseMetadata(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "OG Title", meta.Title)
	assert.Equal(t, "OG description", meta.Description)
}

func TestParseMetadataFallsBackToDocumentTitle(t *testing.T) {
	doc := `<html><head>
        <title>Document Title</title>
        <meta name="description" content="plain description">
    </head><body></body></html>`

	meta, err := ParseMetadata(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Document Title", meta.Title)
	assert.Equal(t, "plain description", meta.Description)
}

func TestParseMetadataEmptyDocument(t *testing.T) {
	meta, err := ParseMetadata(strings.NewReader("<html><head></head><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, meta.Title)
	assert.Empty(t, meta.Description)
}

func TestParseMetadataTrimsWhitespace(t *testing.T) {
	doc := `<html><head>
        <meta property="og:title" content="  padded title  ">
    </head></html>`

	meta, err := ParseMetadata(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "padded title", meta.Title)
}
