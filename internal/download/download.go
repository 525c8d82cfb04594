package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/hack-pad/hackpadfs"
)

const defaultUserAgent = "noodle-demo/1.0"

// DefaultTimeout bounds a single fetch when the caller passes a nil client.
const DefaultTimeout = 60 * time.Second

// IsRemote reports whether p should be fetched over HTTP rather than read from the filesystem.
func IsRemote(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// Download fetches url and saves it under destDir on fsys. The filename is derived from
// Content-Disposition or the URL path; the extension from the URL or Content-Type. If the file
// already exists it is not fetched again. Returns the FS path of the saved file.
func Download(ctx context.Context, client *http.Client, url string, fsys hackpadfs.FS, destDir string) (savedPath string, err error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if name := cachedName(url); name != "" {
		p := path.Join(destDir, name)
		if _, err := hackpadfs.Stat(fsys, p); err == nil {
			return p, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: %s: HTTP %d", url, resp.StatusCode)
	}
	ext := extensionFromURL(url)
	if ext == "" {
		ext = extensionFromContentType(resp.Header.Get("Content-Type"))
	}
	if ext == "" {
		ext = ".bin"
	}
	name := filenameFromContentDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = filenameFromURL(url)
	}
	name = sanitizeFilename(name)
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name = name + ext
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	if err := hackpadfs.MkdirAll(fsys, destDir, 0755); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	savedPath = path.Join(destDir, name)
	if err := hackpadfs.WriteFullFile(fsys, savedPath, data, 0644); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	return savedPath, nil
}

// cachedName is the name a URL with a known extension is saved under, or "" when the name
// depends on response headers.
func cachedName(url string) string {
	ext := extensionFromURL(url)
	if ext == "" {
		return ""
	}
	return sanitizeFilename(filenameFromURL(url)) + ext
}

func filenameFromContentDisposition(cd string) string {
	cd = strings.TrimSpace(cd)
	// filename="..."; or filename*=UTF-8''...
	if i := strings.Index(cd, "filename*=UTF-8''"); i >= 0 {
		s := cd[i+len("filename*=UTF-8''"):]
		if j := strings.IndexAny(s, ";\r\n"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSuffix(strings.Trim(s, "\""), path.Ext(strings.Trim(s, "\"")))
	}
	if i := strings.Index(cd, "filename="); i >= 0 {
		s := cd[i+len("filename="):]
		if j := strings.IndexAny(s, ";\r\n"); j >= 0 {
			s = s[:j]
		}
		s = strings.Trim(s, "\" ")
		return strings.TrimSuffix(s, path.Ext(s))
	}
	return ""
}

func extensionFromContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	switch ct {
	case "model/gltf-binary":
		return ".glb"
	case "model/gltf+json":
		return ".gltf"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "application/zip":
		return ".zip"
	}
	return ""
}

func extensionFromURL(url string) string {
	p := url
	if idx := strings.IndexAny(p, "?#"); idx >= 0 {
		p = p[:idx]
	}
	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".glb", ".gltf", ".bin", ".png", ".jpg", ".jpeg", ".zip":
		return ext
	}
	return ""
}

func filenameFromURL(url string) string {
	p := url
	if idx := strings.IndexAny(p, "?#"); idx >= 0 {
		p = p[:idx]
	}
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

var safeNameRe = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func sanitizeFilename(name string) string {
	name = safeNameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "_" {
		return "download"
	}
	if len(name) > 96 {
		name = name[:96]
	}
	return name
}
