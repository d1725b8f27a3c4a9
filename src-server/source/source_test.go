package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"commcal/src-server/source"
)

const sampleSources = `
sources:
  - name: one-club
    title: One Club
    color: "#ff0000"
    type: ics
    url: https://example.org/one.ics
  - name: organizer
    title: Organizer
    type: eventbrite
    organizer: "98765"
  - name: combined
    title: Combined
    website: https://example.org
    type: multiple
    sources:
      - name: fb-page
        title: FB Page
        type: facebook
        page_id: "12345"
      - name: md-page
        title: MD Page
        type: microdata
        url: https://example.org/events
`

func decodeSources(t *testing.T, payload string) ([]source.Source, error) {
	t.Helper()
	var file struct {
		Sources []source.Source `yaml:"sources"`
	}
	err := yaml.Unmarshal([]byte(payload), &file)
	return file.Sources, err
}

func TestSourceDecoding(t *testing.T) {
	sources, err := decodeSources(t, sampleSources)
	require.NoError(t, err)
	require.Len(t, sources, 3)

	require.Equal(t, "one-club", sources[0].Name)
	require.Equal(t, "One Club", sources[0].Title)
	require.Equal(t, "#ff0000", sources[0].Color)
	require.Equal(t, source.ICS{URL: "https://example.org/one.ics"}, sources[0].Spec)

	require.Equal(t, source.Eventbrite{Organizer: "98765"}, sources[1].Spec)

	require.Equal(t, "https://example.org", sources[2].Website)
	composite, ok := sources[2].Spec.(source.Composite)
	require.True(t, ok)
	require.Len(t, composite.Sources, 2)
	require.Equal(t, source.Facebook{PageID: "12345"}, composite.Sources[0].Spec)
	require.Equal(t, source.Microdata{URL: "https://example.org/events"}, composite.Sources[1].Spec)
}

func TestSourceDecodingErrors(t *testing.T) {
	cases := map[string]string{
		"unknown type": `
sources:
  - name: x
    title: X
    type: telepathy
`,
		"missing type": `
sources:
  - name: x
    title: X
`,
		"blank name": `
sources:
  - title: X
    type: ics
    url: https://example.org/x.ics
`,
		"blank title": `
sources:
  - name: x
    type: ics
    url: https://example.org/x.ics
`,
		"ics without url": `
sources:
  - name: x
    title: X
    type: ics
`,
		"eventbrite without organizer": `
sources:
  - name: x
    title: X
    type: eventbrite
`,
		"facebook without page id": `
sources:
  - name: x
    title: X
    type: facebook
`,
		"empty multiple": `
sources:
  - name: x
    title: X
    type: multiple
`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeSources(t, payload)
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSources), 0644))

	sources, err := source.Load(path)
	require.NoError(t, err)
	require.Len(t, sources, 3)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := source.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: []\n"), 0644))

	_, err := source.Load(path)
	require.Error(t, err)
}
