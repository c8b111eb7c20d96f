package types

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// FormatSummary renders the filled fields as a markdown review table.
// Fields with an empty value are listed as "-".
func FormatSummary(fields []FieldID, value func(FieldID) string) string {
	var buf strings.Builder
	buf.WriteString("# Registration summary:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value")
	for _, f := range fields {
		v := value(f)
		if v == "" {
			v = "-"
		}
		_ = table.Append(f.DisplayName(), v)
	}
	_ = table.Render()
	return buf.String()
}

// FormatMissingFields renders a markdown table of fields still outstanding.
func FormatMissingFields(fields []FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Missing required fields:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Pointer", "Description")
	for _, field := range fields {
		_ = table.Append(field.DisplayName, field.JSONPointer, field.Description)
	}
	_ = table.Render()
	return buf.String()
}
