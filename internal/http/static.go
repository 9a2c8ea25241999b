package httpx

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// pageHandler serves the built pages from fsys with clean URLs: /login is
// answered by login.html when no file named login exists.
func pageHandler(fsys fs.FS) http.Handler {
	if fsys == nil {
		return http.NotFoundHandler()
	}
	files := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if name := cleanPageName(fsys, r.URL.Path); name != "" {
			r2 := r.Clone(r.Context())
			r2.URL.Path = "/" + name
			files.ServeHTTP(w, r2)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// cleanPageName returns the .html file backing an extensionless path, or "".
func cleanPageName(fsys fs.FS, urlPath string) string {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" || path.Ext(name) != "" {
		return ""
	}
	if st, err := fs.Stat(fsys, name); err == nil && !st.IsDir() {
		return ""
	}
	if _, err := fs.Stat(fsys, name+".html"); err == nil {
		return name + ".html"
	}
	return ""
}
