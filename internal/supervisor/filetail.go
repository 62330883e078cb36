package supervisor

import (
	"os"
	"path/filepath"
)

// GetFilePath resolves a log name to an absolute path per §6 and §12.1:
// "stderr"/"stdout" resolve to the synthesized Ice.StdErr/Ice.StdOut
// property values (falling back to <serverDir>/<id>.err|.out when no
// outputDir is configured), and "#<logname>" must match one of the
// descriptor's logs entries after simplify/absolutize.
func (s *Supervisor) GetFilePath(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case "stderr":
		if p := s.syntheticLogPathLocked("Ice.StdErr"); p != "" {
			return p, nil
		}
		return s.serverDirLocked(s.id + ".err"), nil
	case "stdout":
		if p := s.syntheticLogPathLocked("Ice.StdOut"); p != "" {
			return p, nil
		}
		return s.serverDirLocked(s.id + ".out"), nil
	}

	if len(name) > 1 && name[0] == '#' {
		want := canonicalLogPath(name[1:], s.serverDirLocked(""))
		if s.descriptor != nil {
			for _, log := range s.descriptor.Logs {
				if canonicalLogPath(log, s.serverDirLocked("")) == want {
					return want, nil
				}
			}
		}
	}

	return "", &FileNotAvailableError{ServerID: s.id, Name: name}
}

func (s *Supervisor) syntheticLogPathLocked(propName string) string {
	if s.descriptor == nil {
		return ""
	}
	for _, ps := range s.descriptor.Properties {
		for _, line := range ps.Lines {
			if k, v, ok := splitProperty(line); ok && k == propName {
				return v
			}
		}
	}
	return ""
}

func (s *Supervisor) serverDirLocked(rel string) string {
	base := s.id
	if s.nodeCfg != nil && s.nodeCfg.ServersDir != "" {
		base = filepath.Join(s.nodeCfg.ServersDir, s.id)
	}
	if rel == "" {
		return base
	}
	return filepath.Join(base, rel)
}

// canonicalLogPath simplifies a log path and makes it absolute against
// base when it is relative (§4.5 step 6, §12.1).
func canonicalLogPath(p, base string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	return filepath.Clean(p)
}

func splitProperty(line string) (key, value string, ok bool) {
	for i := 0; i < len(line); i++ {
		if line[i] == '=' {
			return line[:i], line[i+1:], true
		}
	}
	return "", "", false
}

// pathExists reports whether p can be stat'ed; no code in this package
// calls it.
func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
