// Package prettyprint renders parsed MFT entries as styled terminal reports for interactive
// triage - the non-interactive counterpart to a recovery tool's TUI output.
package prettyprint

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dfirtools/gomft/mft"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	orphanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	streamStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))
)

// field renders one "label: value" line at the given indent.
func field(indent int, label, value string) string {
	return strings.Repeat("  ", indent) + labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// Entry renders recordNumber's assembled entry as a multi-section report: a title bar naming the
// record and its primary name, core STANDARD_INFORMATION/FILE_NAME fields, every datastream, and
// any warnings raised while assembling it.
func Entry(recordNumber uint64, entry *mft.LogicalEntry) string {
	var s strings.Builder

	name := "(no name)"
	if fn, _, ok := entry.MainFileName(); ok {
		name = fn.Name
	}
	s.WriteString(titleStyle.Render(fmt.Sprintf(" entry %d: %s ", recordNumber, name)))
	s.WriteString("\n")

	s.WriteString(field(0, "sequence", fmt.Sprintf("%d", entry.Header.SequenceNumber)))
	s.WriteString("\n")
	s.WriteString(field(0, "flags", flagString(entry.Header.Flags)))
	s.WriteString("\n")

	if si := standardInformation(entry); si != nil {
		s.WriteString(field(0, "created", si.Creation.Format("2006-01-02 15:04:05")))
		s.WriteString("\n")
		s.WriteString(field(0, "modified", si.FileLastModified.Format("2006-01-02 15:04:05")))
		s.WriteString("\n")
		s.WriteString(field(0, "accessed", si.LastAccess.Format("2006-01-02 15:04:05")))
		s.WriteString("\n")
	}

	for _, fn := range entry.UniqueNames() {
		s.WriteString(field(0, "name", fmt.Sprintf("%s [%s]", fn.Name, namespaceString(fn.Namespace))))
		s.WriteString("\n")
	}

	for _, ds := range entry.Datastreams {
		s.WriteString(Datastream(ds))
		s.WriteString("\n")
	}

	for _, w := range entry.Warnings {
		s.WriteString(strings.Repeat("  ", 1) + warnStyle.Render("! "+w.Msg))
		s.WriteString("\n")
	}

	return s.String()
}

// Datastream renders a single named (or unnamed) datastream as one indented line reporting its
// name, residency and size.
func Datastream(ds *mft.Datastream) string {
	name := ds.Name
	if name == "" {
		name = "(unnamed)"
	}
	residency := "non-resident"
	if ds.Resident {
		residency = "resident"
	}
	return "  " + streamStyle.Render(fmt.Sprintf(":%s", name)) + " " +
		labelStyle.Render(fmt.Sprintf("(%s, %d bytes)", residency, ds.Size))
}

// Path renders a resolved full path, marking orphaned chains distinctly from normal ones.
func Path(recordNumber uint64, isOrphan bool, path string) string {
	if isOrphan {
		return fmt.Sprintf("%d: %s %s", recordNumber, orphanStyle.Render("[orphan]"), path)
	}
	return fmt.Sprintf("%d: %s", recordNumber, pathStyle.Render(path))
}

func standardInformation(entry *mft.LogicalEntry) *mft.StandardInformation {
	attrs := entry.FindAttributes(mft.AttributeTypeStandardInformation)
	if len(attrs) == 0 {
		return nil
	}
	si, ok := attrs[0].Content.(mft.StandardInformation)
	if !ok {
		return nil
	}
	return &si
}

func namespaceString(ns mft.FileNameNamespace) string {
	switch ns {
	case mft.FileNameNamespacePosix:
		return "Posix"
	case mft.FileNameNamespaceWin32:
		return "Win32"
	case mft.FileNameNamespaceDos:
		return "Dos"
	case mft.FileNameNamespaceWin32Dos:
		return "Win32+Dos"
	}
	return "unknown"
}

func flagString(f mft.RecordFlag) string {
	var parts []string
	if f.Is(mft.RecordFlagInUse) {
		parts = append(parts, "InUse")
	}
	if f.Is(mft.RecordFlagIsDirectory) {
		parts = append(parts, "Directory")
	}
	if f.Is(mft.RecordFlagInExtend) {
		parts = append(parts, "Extend")
	}
	if f.Is(mft.RecordFlagIsIndex) {
		parts = append(parts, "Index")
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, "|")
}
