package clientcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/upload"
)

// Formatter formats results for output.
type Formatter interface {
	FormatTable(w io.Writer, v any, t *Table) error
	FormatDetails(w io.Writer, v any, d *Details) error
	FormatUpload(w io.Writer, result *upload.Result) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatMessage(w io.Writer, msg string, v any) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// maxColumnWidth caps a table column; longer cells are truncated.
const maxColumnWidth = 60

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	// Quiet prints only the first column of tables and no confirmations.
	Quiet bool
}

// FormatTable formats a list as aligned columns.
func (f *HumanFormatter) FormatTable(w io.Writer, _ any, t *Table) error {
	if len(t.Rows) == 0 {
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "No %s found\n", strings.TrimSuffix(t.Kind, "(s)")+"s")
		}
		return nil
	}

	if f.Quiet {
		for _, row := range t.Rows {
			_, _ = fmt.Fprintln(w, row[0])
		}
		return nil
	}

	writeTable(w, t)

	if t.Total > 0 {
		_, _ = fmt.Fprintf(w, "\n%d of %d %s\n", len(t.Rows), t.Total, t.Kind)
	}
	return nil
}

// writeTable prints the header, a separator and every row of t.
func writeTable(w io.Writer, t *Table) {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len(c)
	}
	for _, row := range t.Rows {
		for i := range widths {
			if i < len(row) && len(row[i]) > widths[i] {
				widths[i] = min(len(row[i]), maxColumnWidth)
			}
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if len(cell) > widths[i] {
				cell = cell[:widths[i]-3] + "..."
			}
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(t.Columns)
	seps := make([]string, len(widths))
	for i, n := range widths {
		seps[i] = strings.Repeat("-", n)
	}
	line(seps)
	for _, row := range t.Rows {
		line(row)
	}
}

// FormatDetails formats one entity as labelled lines.
func (f *HumanFormatter) FormatDetails(w io.Writer, _ any, d *Details) error {
	width := 0
	for _, fd := range d.Fields {
		width = max(width, len(fd.Label)+1)
	}
	for _, fd := range d.Fields {
		_, _ = fmt.Fprintf(w, "%-*s %s\n", width, fd.Label+":", fd.Value)
	}
	for _, t := range d.Tables {
		_, _ = fmt.Fprintln(w)
		if len(t.Rows) == 0 {
			_, _ = fmt.Fprintf(w, "No %ss\n", strings.TrimSuffix(t.Kind, "(s)"))
			continue
		}
		writeTable(w, t)
	}
	return nil
}

// FormatUpload formats an upload session as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, result *upload.Result) error {
	if f.Quiet {
		return nil
	}
	for i := range result.Files {
		file := &result.Files[i]
		_, _ = fmt.Fprintf(w, "Uploaded: %s (%s)\n", file.Key(), formatSize(file.Size))
		if file.CID != "" {
			_, _ = fmt.Fprintf(w, "  CID: %s\n", file.CID)
		}
	}
	_, _ = fmt.Fprintf(w, "\n%d file(s) in session %s\n", len(result.Files), result.SessionUUID)
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.UUID, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.UUID)
		}
	}
	return nil
}

// FormatMessage prints a confirmation line.
func (f *HumanFormatter) FormatMessage(w io.Writer, msg string, _ any) error {
	if !f.Quiet {
		_, _ = fmt.Fprintln(w, msg)
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatTable writes the list value itself.
func (f *JSONFormatter) FormatTable(w io.Writer, v any, _ *Table) error {
	return writeJSON(w, v)
}

// FormatDetails writes the entity itself.
func (f *JSONFormatter) FormatDetails(w io.Writer, v any, _ *Details) error {
	return writeJSON(w, v)
}

// FormatUpload formats an upload session as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, result *upload.Result) error {
	type jsonFile struct {
		FileName    string `json:"fileName"`
		Path        string `json:"path,omitempty"`
		ContentType string `json:"contentType,omitempty"`
		Size        int64  `json:"size"`
		FileUUID    string `json:"fileUuid,omitempty"`
		CID         string `json:"CID,omitempty"`
	}

	output := struct {
		SessionUUID string     `json:"sessionUuid"`
		Files       []jsonFile `json:"files"`
	}{
		SessionUUID: result.SessionUUID,
		Files:       make([]jsonFile, len(result.Files)),
	}

	for i := range result.Files {
		file := &result.Files[i]
		output.Files[i] = jsonFile{
			FileName:    file.FileName,
			Path:        file.Path,
			ContentType: file.ContentType,
			Size:        file.Size,
			FileUUID:    file.FileUUID,
			CID:         file.CID,
		}
	}

	return writeJSON(w, output)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	type jsonResult struct {
		UUID    string `json:"fileUuid"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{
			UUID:    r.UUID,
			Deleted: r.Deleted,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatMessage writes v, or the message when there is no value.
func (f *JSONFormatter) FormatMessage(w io.Writer, msg string, v any) error {
	if v != nil {
		return writeJSON(w, v)
	}
	return writeJSON(w, struct {
		Message string `json:"message"`
	}{Message: msg})
}

// FormatError formats an error as JSON. API errors carry their status and code.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
		Code   int    `json:"code,omitempty"`
	}{
		Error: err.Error(),
	}

	var apiErr *apillon.APIError
	if errors.As(err, &apiErr) {
		output.Status = apiErr.StatusCode
		output.Code = apiErr.Code
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 7 // "API URL"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
		maxEndpointLen = max(maxEndpointLen, len(profiles[i].Endpoint()))
	}
	maxNameLen = min(maxNameLen, 20)
	maxEndpointLen = min(maxEndpointLen, 50)

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxEndpointLen, "API URL", "API KEY")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		endpoint := p.Endpoint()
		if len(endpoint) > maxEndpointLen {
			endpoint = endpoint[:maxEndpointLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker, maxNameLen, name, maxEndpointLen, endpoint, maskSecret(p.APIKey, showSecrets))
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:       %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "API URL:    %s\n", profile.Endpoint())
	_, _ = fmt.Fprintf(w, "API Key:    %s\n", maskSecret(profile.APIKey, showSecrets))
	_, _ = fmt.Fprintf(w, "API Secret: %s\n", maskSecret(profile.APISecret, showSecrets))
	return nil
}

type jsonProfile struct {
	Name      string `json:"name"`
	APIURL    string `json:"api_url"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	Default   bool   `json:"default"`
}

func newJSONProfile(p *Profile, isDefault, showSecrets bool) jsonProfile {
	return jsonProfile{
		Name:      p.Name,
		APIURL:    p.Endpoint(),
		APIKey:    maskSecret(p.APIKey, showSecrets),
		APISecret: maskSecret(p.APISecret, showSecrets),
		Default:   isDefault,
	}
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		output.Profiles[i] = newJSONProfile(&profiles[i], profiles[i].Name == defaultName, showSecrets)
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, newJSONProfile(&profile, isDefault, showSecrets))
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
