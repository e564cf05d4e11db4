// Package report renders resolved descriptor metadata for the terminal or for
// machine consumption.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fulmenhq/nuspecgen/pkg/resolver"
	"github.com/mattn/go-runewidth"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatTOML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want text, json, yaml or toml)", s)
}

// Report is what a run produced.
type Report struct {
	Descriptor    string            `json:"descriptor" yaml:"descriptor" toml:"descriptor"`
	Saved         bool              `json:"saved" yaml:"saved" toml:"saved"`
	VersionSource string            `json:"version_source,omitempty" yaml:"version_source,omitempty" toml:"version_source,omitempty"`
	IconPath      string            `json:"icon_path,omitempty" yaml:"icon_path,omitempty" toml:"icon_path,omitempty"`
	Fields        resolver.Metadata `json:"fields" yaml:"fields" toml:"fields"`
}

// FromOutcome builds a Report from a pipeline outcome.
func FromOutcome(o *resolver.Outcome) Report {
	return Report{
		Descriptor:    o.DescriptorPath,
		Saved:         o.Saved,
		VersionSource: o.VersionSource,
		IconPath:      o.IconPath,
		Fields:        o.Metadata,
	}
}

// Render writes r to w in the given format.
func Render(w io.Writer, format Format, r Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(r)
	case FormatText, "":
		_, err := io.WriteString(w, renderText(r))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderText(r Report) string {
	var sb strings.Builder
	status := "not saved"
	if r.Saved {
		status = "saved"
	}
	fmt.Fprintf(&sb, "%s (%s)\n", r.Descriptor, status)

	width := 0
	for _, f := range r.Fields {
		if w := runewidth.StringWidth(f.Name); w > width {
			width = w
		}
	}

	for _, f := range r.Fields {
		lines := strings.Split(strings.TrimRight(f.Value, "\r\n"), "\n")
		for i, line := range lines {
			label := ""
			if i == 0 {
				label = f.Name
			}
			fmt.Fprintf(&sb, "  %s  %s\n", runewidth.FillRight(label, width), strings.TrimRight(line, "\r"))
		}
	}
	return sb.String()
}
