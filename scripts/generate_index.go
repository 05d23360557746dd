// Command generate_index renders README.md into dist/index.html with a
// downloads section listing the release archives found in dist.
package main

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const binaryName = "fwtable"

var archivePattern = regexp.MustCompile(`^` + binaryName + `_(.+)_(Darwin|Linux|Windows)_(arm64|x86_64)\.(?:tar\.gz|zip)$`)

var platformNames = map[string]string{
	"Darwin_arm64":   "macOS (Apple Silicon)",
	"Darwin_x86_64":  "macOS (Intel)",
	"Linux_arm64":    "Linux (ARM64)",
	"Linux_x86_64":   "Linux (x86_64)",
	"Windows_arm64":  "Windows (ARM64)",
	"Windows_x86_64": "Windows (x86_64)",
}

type download struct {
	Platform string
	Archive  string
}

type release struct {
	Version   string
	Downloads []download
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <dist-dir>\n", os.Args[0])
		os.Exit(1)
	}
	if err := run("README.md", os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "generate_index: %v\n", err)
		os.Exit(1)
	}
}

func run(readmePath, distDir string) error {
	readme, err := os.ReadFile(readmePath)
	if err != nil {
		return fmt.Errorf("read readme: %w", err)
	}
	names, err := archiveNames(distDir)
	if err != nil {
		return fmt.Errorf("list dist: %w", err)
	}

	body, err := replaceInstallation(renderMarkdown(readme), findRelease(names))
	if err != nil {
		return err
	}

	var page bytes.Buffer
	if err := pageTemplate.Execute(&page, template.HTML(body)); err != nil { //nolint:gosec // rendered from the repository README
		return fmt.Errorf("render page: %w", err)
	}
	indexPath := filepath.Join(distDir, "index.html")
	if err := os.WriteFile(indexPath, page.Bytes(), 0o644); err != nil { //nolint:gosec // published page
		return fmt.Errorf("write index: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Generated %s\n", indexPath)
	return nil
}

func renderMarkdown(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(p.Parse(md), r)
}

func archiveNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// findRelease picks the version from the first matching archive and lists
// one download per platform, sorted by platform name.
func findRelease(names []string) release {
	rel := release{Version: "unknown"}
	seen := map[string]bool{}
	for _, name := range names {
		m := archivePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if rel.Version == "unknown" {
			rel.Version = m[1]
		}
		key := m[2] + "_" + m[3]
		if seen[key] {
			continue
		}
		seen[key] = true
		rel.Downloads = append(rel.Downloads, download{Platform: platformNames[key], Archive: name})
	}
	sort.Slice(rel.Downloads, func(i, j int) bool {
		return rel.Downloads[i].Platform < rel.Downloads[j].Platform
	})
	return rel
}

// replaceInstallation swaps the README installation section for the
// downloads table. The body is returned unchanged when the section is absent.
func replaceInstallation(body []byte, rel release) ([]byte, error) {
	s := string(body)
	start := strings.Index(s, `<h2 id="installation">`)
	if start == -1 {
		return body, nil
	}
	end := strings.Index(s[start+1:], "<h2 ")
	if end == -1 {
		end = len(s)
	} else {
		end += start + 1
	}

	var section bytes.Buffer
	if err := downloadsTemplate.Execute(&section, rel); err != nil {
		return nil, fmt.Errorf("render downloads: %w", err)
	}
	return []byte(s[:start] + section.String() + s[end:]), nil
}

var downloadsTemplate = template.Must(template.New("downloads").Parse(`<h2 id="installation">Installation</h2>
<div class="downloads">
  <h3>{{.Version}}</h3>
  <table class="download-table">
{{- range .Downloads}}
    <tr><td class="platform-name">{{.Platform}}</td><td class="platform-links"><a href="{{.Archive}}">download</a></td></tr>
{{- end}}
  </table>
</div>
<pre><code class="language-bash"># macOS / Linux
tar -xzf ` + binaryName + `_*.tar.gz
sudo mv ` + binaryName + ` /usr/local/bin/
</code></pre>
`))

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>` + binaryName + ` - fixed-width text tables</title>
  <style>
    body { font-family: system-ui, sans-serif; max-width: 900px; margin: 40px auto; padding: 0 20px; line-height: 1.6; color: #333; }
    pre { background: #1e293b; color: #e2e8f0; padding: 16px; border-radius: 6px; overflow-x: auto; }
    code { font-family: Monaco, Menlo, monospace; font-size: 0.9em; }
    .downloads { background: #eff6ff; padding: 20px; border-radius: 8px; border-left: 4px solid #2563eb; }
    .platform-name { font-weight: 500; width: 200px; }
  </style>
</head>
<body>
{{.}}
</body>
</html>
`))
