// The `source` package holds the event-source configuration and the leaf
// adapters that fetch raw per-event records from the outside world.
package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// What kind of source a Source is. Instead of dispatching on the raw type
// string everywhere, decoding builds one of the Spec variants below and
// the driver matches exhaustively over them.
type Spec interface {
	sourceSpec()
}

// An iCalendar feed reachable over HTTP
type ICS struct {
	URL string
}

// All events of one Eventbrite organizer
type Eventbrite struct {
	Organizer string
}

// The public events of one Facebook page, scraped from the mbasic pages
type Facebook struct {
	PageID string
}

// A web page carrying schema.org/Event microdata
type Microdata struct {
	URL string
}

// A group of sub-sources aggregated under one name. Caching happens at the
// leaf level only; the composite itself is never used for fallback.
type Composite struct {
	Sources []Source
}

func (ICS) sourceSpec()        {}
func (Eventbrite) sourceSpec() {}
func (Facebook) sourceSpec()   {}
func (Microdata) sourceSpec()  {}
func (Composite) sourceSpec()  {}

// One configured event source
type Source struct {
	Name    string // cache filename key, required
	Title   string // display name, required
	Color   string // display hint for the frontend
	Website string // fallback link for announcements without an event URL
	Spec    Spec
}

func (s *Source) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name      string   `yaml:"name"`
		Title     string   `yaml:"title"`
		Color     string   `yaml:"color"`
		Website   string   `yaml:"website"`
		Type      string   `yaml:"type"`
		URL       string   `yaml:"url"`
		Organizer string   `yaml:"organizer"`
		PageID    string   `yaml:"page_id"`
		Sources   []Source `yaml:"sources"`
	}
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("(*Source).UnmarshalYAML: %w", err)
	}

	switch {
	case raw.Name == "":
		return fmt.Errorf("(*Source).UnmarshalYAML: source name is blank")
	case raw.Title == "":
		return fmt.Errorf("(*Source).UnmarshalYAML: source %q has no title", raw.Name)
	}

	s.Name = raw.Name
	s.Title = raw.Title
	s.Color = raw.Color
	s.Website = raw.Website

	switch raw.Type {
	case "ics":
		if raw.URL == "" {
			return fmt.Errorf("(*Source).UnmarshalYAML: ics source %q has no url", raw.Name)
		}
		s.Spec = ICS{URL: raw.URL}
	case "eventbrite":
		if raw.Organizer == "" {
			return fmt.Errorf("(*Source).UnmarshalYAML: eventbrite source %q has no organizer", raw.Name)
		}
		s.Spec = Eventbrite{Organizer: raw.Organizer}
	case "facebook":
		if raw.PageID == "" {
			return fmt.Errorf("(*Source).UnmarshalYAML: facebook source %q has no page_id", raw.Name)
		}
		s.Spec = Facebook{PageID: raw.PageID}
	case "microdata":
		if raw.URL == "" {
			return fmt.Errorf("(*Source).UnmarshalYAML: microdata source %q has no url", raw.Name)
		}
		s.Spec = Microdata{URL: raw.URL}
	case "multiple":
		if len(raw.Sources) == 0 {
			return fmt.Errorf("(*Source).UnmarshalYAML: multiple source %q has no sources", raw.Name)
		}
		s.Spec = Composite{Sources: raw.Sources}
	case "":
		return fmt.Errorf("(*Source).UnmarshalYAML: source %q has no type", raw.Name)
	default:
		return fmt.Errorf("(*Source).UnmarshalYAML: source %q has unknown type %q", raw.Name, raw.Type)
	}

	return nil
}

// Load the configured source list from a YAML file. An unreadable or
// invalid file is fatal to the run; nothing meaningful can happen without
// the source list.
func Load(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source.Load: %w", err)
	}

	var file struct {
		Sources []Source `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("source.Load: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("source.Load: no sources configured in %s", path)
	}

	return file.Sources, nil
}
