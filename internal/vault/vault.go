// Package vault manages an Obsidian-style Markdown note vault on disk.
// Notes are plain .md files with optional YAML frontmatter; the vault owns
// no index or database, the filesystem is the source of truth.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

const defaultDailyFolder = "daily"

// Vault provides note operations rooted at a single directory.
type Vault struct {
	root        string
	dailyFolder string
}

// Note is a parsed vault note.
type Note struct {
	Path        string         `json:"path"`
	Title       string         `json:"title"`
	Body        string         `json:"content"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
}

// NoteInfo is listing metadata for a note, without its content.
type NoteInfo struct {
	Path     string    `json:"path"`
	Title    string    `json:"title"`
	Folder   string    `json:"folder"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Stats summarizes the vault.
type Stats struct {
	TotalNotes int            `json:"total_notes"`
	TotalBytes int64          `json:"total_bytes"`
	Folders    map[string]int `json:"folders"`
	Root       string         `json:"root"`
}

// Open returns a Vault rooted at path. The directory must already exist.
func Open(path string) (*Vault, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("vault path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path is not a directory: %s", path)
	}

	dailyFolder := os.Getenv("WREN_DAILY_FOLDER")
	if dailyFolder == "" {
		dailyFolder = defaultDailyFolder
	}

	return &Vault{root: path, dailyFolder: dailyFolder}, nil
}

// Root returns the vault root directory.
func (v *Vault) Root() string {
	return v.root
}

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// resolve converts a vault-relative path to an absolute one, rejecting
// paths that escape the vault root.
func (v *Vault) resolve(rel string) (string, error) {
	full := filepath.Join(v.root, filepath.FromSlash(rel))
	clean, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	rootAbs, err := filepath.Abs(v.root)
	if err != nil {
		return "", err
	}
	if clean != rootAbs && !strings.HasPrefix(clean, rootAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes vault: %s", rel)
	}
	return clean, nil
}

// Create writes a new note. Title becomes the filename (sanitized); folder is
// a vault-relative subdirectory created on demand. Fails if the note exists.
func (v *Vault) Create(title, body, folder string, tags []string, frontmatter map[string]any) (string, error) {
	filename := unsafeFilenameChars.ReplaceAllString(title, "") + ".md"
	rel := filename
	if folder != "" {
		rel = filepath.ToSlash(filepath.Join(folder, filename))
	}

	full, err := v.resolve(rel)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err == nil {
		return "", fmt.Errorf("note already exists: %s", rel)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}

	fm := make(map[string]any, len(frontmatter)+2)
	for k, val := range frontmatter {
		fm[k] = val
	}
	fm["created"] = time.Now().Format(time.RFC3339)
	if len(tags) > 0 {
		fm["tags"] = tags
	}

	content, err := renderNote(fm, fmt.Sprintf("# %s\n\n%s", title, body))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write note: %w", err)
	}
	return rel, nil
}

// Read loads a note by vault-relative path.
func (v *Vault) Read(rel string) (*Note, error) {
	full, err := v.resolve(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("note not found: %s", rel)
		}
		return nil, fmt.Errorf("read note: %w", err)
	}

	fm, body := splitFrontmatter(string(data))
	return &Note{
		Path:        rel,
		Title:       strings.TrimSuffix(filepath.Base(rel), ".md"),
		Body:        body,
		Frontmatter: fm,
	}, nil
}

// Update modifies an existing note. A non-empty body replaces the content, or
// is appended when append is true. Frontmatter keys are merged over the
// existing ones and a modified timestamp is stamped.
func (v *Vault) Update(rel, body string, frontmatter map[string]any, appendBody bool) error {
	note, err := v.Read(rel)
	if err != nil {
		return err
	}

	fm := note.Frontmatter
	if fm == nil {
		fm = make(map[string]any)
	}
	for k, val := range frontmatter {
		fm[k] = val
	}
	fm["modified"] = time.Now().Format(time.RFC3339)

	newBody := note.Body
	if body != "" {
		if appendBody {
			newBody = note.Body + "\n\n" + body
		} else {
			newBody = body
		}
	}

	content, err := renderNote(fm, newBody)
	if err != nil {
		return err
	}
	full, err := v.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	return nil
}

// Delete removes a note.
func (v *Vault) Delete(rel string) error {
	full, err := v.resolve(rel)
	if err != nil {
		return err
	}
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return fmt.Errorf("note not found: %s", rel)
	}
	return os.Remove(full)
}

// Search returns notes whose content contains query (case-insensitive),
// optionally restricted to a folder and filtered by tag. A tag matches
// either an inline #tag or a frontmatter tags entry.
func (v *Vault) Search(query, folder, tag string) ([]NoteInfo, error) {
	root := v.root
	if folder != "" {
		full, err := v.resolve(folder)
		if err != nil {
			return nil, err
		}
		root = full
	}

	queryLower := strings.ToLower(query)
	var tagInline, tagFM *regexp.Regexp
	if tag != "" {
		tagInline = regexp.MustCompile(`#` + regexp.QuoteMeta(tag) + `\b`)
		tagFM = regexp.MustCompile(`(?m)^tags:.*` + regexp.QuoteMeta(tag))
	}

	var results []NoteInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil // unreadable file, keep walking
		}
		content := string(data)

		if tag != "" && !tagInline.MatchString(content) && !tagFM.MatchString(content) {
			// Frontmatter list form ("- tag") is not covered by the line
			// regex; check the parsed tags too.
			fm, _ := splitFrontmatter(content)
			if !frontmatterHasTag(fm, tag) {
				return nil
			}
		}
		if queryLower != "" && !strings.Contains(strings.ToLower(content), queryLower) {
			return nil
		}

		rel, _ := filepath.Rel(v.root, path)
		results = append(results, v.infoFor(rel, path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search vault: %w", err)
	}
	return results, nil
}

func frontmatterHasTag(fm map[string]any, tag string) bool {
	tags, ok := fm["tags"]
	if !ok {
		return false
	}
	switch v := tags.(type) {
	case []any:
		for _, t := range v {
			if s, ok := t.(string); ok && s == tag {
				return true
			}
		}
	case string:
		return strings.Contains(v, tag)
	}
	return false
}

// List returns note metadata under folder (vault root if empty), newest first.
func (v *Vault) List(folder string, recursive bool) ([]NoteInfo, error) {
	root := v.root
	if folder != "" {
		full, err := v.resolve(folder)
		if err != nil {
			return nil, err
		}
		root = full
	}

	var notes []NoteInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, _ := filepath.Rel(v.root, path)
		notes = append(notes, v.infoFor(rel, path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list vault: %w", err)
	}

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].Modified.After(notes[j].Modified)
	})
	return notes, nil
}

func (v *Vault) infoFor(rel, full string) NoteInfo {
	info := NoteInfo{
		Path:   filepath.ToSlash(rel),
		Title:  strings.TrimSuffix(filepath.Base(rel), ".md"),
		Folder: filepath.ToSlash(filepath.Dir(rel)),
	}
	if st, err := os.Stat(full); err == nil {
		info.Size = st.Size()
		info.Modified = st.ModTime()
	}
	return info
}

// DailyNote returns the note for the given date (today if zero), creating it
// with a standard header when missing.
func (v *Vault) DailyNote(date time.Time) (*Note, error) {
	if date.IsZero() {
		date = time.Now()
	}
	dateStr := date.Format("2006-01-02")
	rel := filepath.ToSlash(filepath.Join(v.dailyFolder, dateStr+".md"))

	if _, err := v.Read(rel); err != nil {
		_, err := v.Create(dateStr, fmt.Sprintf("## Daily Note - %s\n", dateStr), v.dailyFolder, nil, map[string]any{
			"date": dateStr,
			"type": "daily-note",
		})
		if err != nil {
			return nil, err
		}
	}
	return v.Read(rel)
}

// Stats walks the vault and reports note counts and sizes per folder.
func (v *Vault) Stats() (*Stats, error) {
	stats := &Stats{
		Folders: make(map[string]int),
		Root:    v.root,
	}
	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return err
		}
		rel, _ := filepath.Rel(v.root, path)
		stats.TotalNotes++
		stats.Folders[filepath.ToSlash(filepath.Dir(rel))]++
		if st, err := os.Stat(path); err == nil {
			stats.TotalBytes += st.Size()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}
	return stats, nil
}
