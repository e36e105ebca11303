package server

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/manifest"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// handleManifest synthesizes an ad-hoc manifest over the project's demo
// manifest. Query parameters override application identity, window
// geometry, runtime arguments and the service inclusion mode;
// platform=true re-projects the result into the platform snapshot shape.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	over, err := overridesFromQuery(q)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	demoPath := filepath.Join(s.project.Dir, filepath.FromSlash(s.project.DemoManifest()))
	m, err := s.rewriter.RewriteFile(r.Context(), demoPath, types.ModeDebug, over)
	if err != nil {
		if types.IsManifestError(err) {
			s.writeError(w, r, http.StatusNotFound, err)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	s.applyIdentity(m, q)
	s.applyGeometry(m, q)
	s.applyRuntimeFlags(m, q)

	if q.Get("platform") == "true" {
		writeJSON(w, http.StatusOK, manifest.ToPlatform(m))
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// applyIdentity sets uuid, name, title and url from query parameters.
// A missing uuid gets a generated one so each request yields a distinct
// application instance; the name follows the uuid unless given.
func (s *Server) applyIdentity(m *types.Manifest, q url.Values) {
	if m.StartupApp == nil {
		return
	}

	id := q.Get("uuid")
	if id == "" {
		id = uuid.NewString()
	}
	m.StartupApp.UUID = id

	if name := q.Get("name"); name != "" {
		m.StartupApp.Name = name
	} else {
		m.StartupApp.Name = id
	}

	if title := q.Get("title"); title != "" {
		if m.Shortcut == nil {
			m.Shortcut = &types.Shortcut{}
		}
		m.Shortcut.Name = title
	}

	if u := q.Get("url"); u != "" {
		m.StartupApp.URL = u
	}
}

// applyGeometry sets window geometry and chrome from query parameters.
// Unparseable values are logged and skipped.
func (s *Server) applyGeometry(m *types.Manifest, q url.Values) {
	if m.StartupApp == nil {
		return
	}

	setInt := func(param string, dst **int) {
		raw := q.Get(param)
		if raw == "" {
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			s.log.Warn("ignoring unparseable query parameter",
				"param", param,
				"value", raw,
			)
			return
		}
		*dst = &v
	}
	setBool := func(param string, dst **bool) {
		raw := q.Get(param)
		if raw == "" {
			return
		}
		switch raw {
		case "true":
			v := true
			*dst = &v
		case "false":
			v := false
			*dst = &v
		default:
			s.log.Warn("ignoring unparseable query parameter",
				"param", param,
				"value", raw,
			)
		}
	}

	setInt("defaultWidth", &m.StartupApp.DefaultWidth)
	setInt("defaultHeight", &m.StartupApp.DefaultHeight)
	setInt("defaultTop", &m.StartupApp.DefaultTop)
	setInt("defaultLeft", &m.StartupApp.DefaultLeft)
	setBool("frame", &m.StartupApp.Frame)
	setBool("autoShow", &m.StartupApp.AutoShow)
}

// applyRuntimeFlags translates security-realm parameters into runtime
// argument flags
func (s *Server) applyRuntimeFlags(m *types.Manifest, q url.Values) {
	realm := q.Get("realm")
	mesh := q.Get("enableMesh") == "true"
	if realm == "" && !mesh {
		return
	}

	if m.Runtime == nil {
		m.Runtime = &types.RuntimeOptions{}
	}
	if realm != "" {
		m.Runtime.Arguments = appendArgument(m.Runtime.Arguments, "--security-realm="+realm)
	}
	if mesh {
		m.Runtime.Arguments = appendArgument(m.Runtime.Arguments, "--enable-mesh")
	}
}

func appendArgument(args, flag string) string {
	if args == "" {
		return flag
	}
	return args + " " + flag
}

// overridesFromQuery builds rewrite overrides from request parameters
func overridesFromQuery(q url.Values) (manifest.Overrides, error) {
	over := manifest.Overrides{
		ProviderVersion: q.Get("providerVersion"),
		RuntimeVersion:  q.Get("runtimeVersion"),
	}

	switch mode := q.Get("services"); mode {
	case "":
	case string(types.ServiceModeNormal), string(types.ServiceModeNone), string(types.ServiceModeInjected):
		over.Services = types.ServiceMode(mode)
	default:
		return over, types.NewAppError("BAD_REQUEST",
			fmt.Sprintf("services must be normal, none or injected, got %q", mode), nil)
	}

	return over, nil
}

// rewriteManifests intercepts GET requests for .json files under res/
// and serves them rewritten for local development. Files that are not
// application manifests fall through to the static handler untouched.
func (s *Server) rewriteManifests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !strings.HasSuffix(r.URL.Path, ".json") {
			next.ServeHTTP(w, r)
			return
		}

		rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if rel == "" || strings.Contains(rel, "..") {
			next.ServeHTTP(w, r)
			return
		}

		over, err := overridesFromQuery(r.URL.Query())
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}

		full := filepath.Join(s.project.Dir, consts.ResourcesDir, filepath.FromSlash(rel))
		m, err := s.rewriter.RewriteFile(r.Context(), full, types.ModeDebug, over)
		if err != nil {
			if types.IsManifestError(err) {
				s.log.Debug("serving file without rewriting",
					"path", rel,
					"reason", err,
				)
				next.ServeHTTP(w, r)
				return
			}
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, m)
	})
}
