// Package docs holds the bundled help topics shown by `leadconsole docs`.
package docs

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

var ErrUnknownTopic = errors.New("unknown docs topic")

// Topic is one help page. Title is the page's first "# " heading.
type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Topics lists the bundled pages sorted by name.
func Topics() []Topic {
	files, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return []Topic{}
	}
	out := make([]Topic, 0, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".md")
		if name == "" {
			continue
		}
		b, err := contentFS.ReadFile(f)
		if err != nil {
			continue
		}
		out = append(out, Topic{Name: name, Title: heading(string(b), name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the page for name. Case and surrounding space are ignored, and a prefix
// that matches exactly one topic ("stor") selects it.
func Get(name string) (Topic, string, error) {
	topic, err := resolve(Topics(), name)
	if err != nil {
		return Topic{}, "", err
	}
	b, err := contentFS.ReadFile(path.Join("content", topic.Name+".md"))
	if err != nil {
		return Topic{}, "", fmt.Errorf("read docs topic %s: %w", topic.Name, err)
	}
	return topic, string(b), nil
}

func resolve(topics []Topic, name string) (Topic, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" || strings.ContainsAny(want, "/\\.") {
		return Topic{}, fmt.Errorf("%w: %q", ErrUnknownTopic, name)
	}
	var matches []string
	byName := make(map[string]Topic, len(topics))
	for _, t := range topics {
		if t.Name == want {
			return t, nil
		}
		if strings.HasPrefix(t.Name, want) {
			matches = append(matches, t.Name)
			byName[t.Name] = t
		}
	}
	switch len(matches) {
	case 0:
		return Topic{}, fmt.Errorf("%w: %q", ErrUnknownTopic, name)
	case 1:
		return byName[matches[0]], nil
	}
	return Topic{}, fmt.Errorf("%w: %q matches %s", ErrUnknownTopic, name, strings.Join(matches, ", "))
}

func heading(body, fallback string) string {
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		if title, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	return fallback
}
