package devserver

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
)

// clientScript subscribes to the event stream. Stylesheet events swap the
// matching <link> for a cache-busted copy; anything else reloads the page.
const clientScript = `<script>
(function () {
  var source = new EventSource("` + EventsPath + `");
  source.addEventListener("` + EventCSS + `", function (e) {
    var found = false;
    document.querySelectorAll('link[rel="stylesheet"]').forEach(function (link) {
      var url = new URL(link.href);
      if (url.pathname === e.data) {
        url.searchParams.set("v", Date.now());
        link.href = url.toString();
        found = true;
      }
    });
    if (!found) { location.reload(); }
  });
  source.addEventListener("` + EventReload + `", function () { location.reload(); });
})();
</script>
`

var bodyClose = []byte("</body>")

// injectScript inserts the client script before the last </body>, or appends
// it when the page has none.
func injectScript(page []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(page), bodyClose)
	if idx < 0 {
		return append(page, clientScript...)
	}
	out := make([]byte, 0, len(page)+len(clientScript))
	out = append(out, page[:idx]...)
	out = append(out, clientScript...)
	return append(out, page[idx:]...)
}

// injectingWriter buffers HTML responses so the script can be inserted;
// other responses pass through.
type injectingWriter struct {
	http.ResponseWriter
	status    int
	buffering bool
	decided   bool
	buf       bytes.Buffer
}

func (w *injectingWriter) WriteHeader(status int) {
	if w.decided {
		return
	}
	w.decided = true
	w.status = status
	ct := w.Header().Get("Content-Type")
	w.buffering = status == http.StatusOK && strings.HasPrefix(ct, "text/html")
	if !w.buffering {
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *injectingWriter) Write(p []byte) (int, error) {
	if !w.decided {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(p))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.buffering {
		return w.buf.Write(p)
	}
	return w.ResponseWriter.Write(p)
}

func (w *injectingWriter) finish() error {
	if !w.buffering {
		return nil
	}
	page := injectScript(w.buf.Bytes())
	w.Header().Set("Content-Length", strconv.Itoa(len(page)))
	w.ResponseWriter.WriteHeader(w.status)
	_, err := w.ResponseWriter.Write(page)
	return err
}

// withReloadScript injects the client script into HTML responses of next.
func withReloadScript(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		iw := &injectingWriter{ResponseWriter: w}
		next.ServeHTTP(iw, r)
		_ = iw.finish()
	})
}
