package target

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const maxBodyBytes = 1 << 20

const notFoundPage = "<!DOCTYPE html>" +
	"<html>" +
	"<header>" +
	"<title>smokespec</title>" +
	"</header>" +
	"<body>" +
	"<H1>Not Found</H1>" +
	"</body>" +
	"</html>"

var mimeTypes = map[string]string{
	".html":  "text/html",
	".htm":   "text/html",
	".css":   "text/css",
	".js":    "text/javascript",
	".mjs":   "text/javascript",
	".json":  "application/json",
	".txt":   "text/plain",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".ico":   "image/x-icon",
	".ttf":   "font/ttf",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".pdf":   "application/pdf",
	".mp3":   "audio/mpeg",
	".ogg":   "audio/ogg",
	".wav":   "audio/wav",
	".zip":   "application/zip",
	".gz":    "application/gzip",
	".rar":   "application/vnd.rar",
	".bmp":   "image/bmp",
	".tiff":  "image/tiff",
}

// contentType maps a file extension to its MIME type, case-insensitively
func contentType(path string) string {
	if ct, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeText(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	path, ok := s.resolve(r.URL.Path)
	if !ok {
		writeNotFound(w)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeNotFound(w)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeNotFound(w)
		return
	}

	w.Header().Set("Content-Type", contentType(path))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// resolve maps a URL path to a regular file under root, trying the default
// index files for directories
func (s *Server) resolve(urlPath string) (string, bool) {
	path := filepath.Join(s.root, filepath.FromSlash(filepath.Clean("/"+urlPath)))

	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if !info.IsDir() {
		return path, true
	}

	for _, name := range s.defaults {
		candidate := filepath.Join(path, name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, notFoundPage)
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}
