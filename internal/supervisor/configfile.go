package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// writeConfigFile writes one property set to <serverDir>/config/<name>,
// per §6's file format: a header comment, then one line per property —
// "name=value", or just "name" as a pass-through comment when the line
// begins with "#" and carries no value.
func writeConfigFile(dir, name string, lines []string) error {
	path := filepath.Join(dir, "config", name)
	var b strings.Builder
	fmt.Fprintf(&b, "# Configuration file (%s)\n", time.Now().UTC().Format(time.RFC3339))
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// renderPropertyLine renders one descriptor property-set line per §4.5
// step 10: a line whose name starts with "#" and has no value is emitted
// verbatim as a comment; other "name=value" pairs pass through unchanged
// (the descriptor already stores lines pre-formatted as name[=value]).
func renderPropertyLine(line string) string {
	return line
}

// removeOrphanConfigFiles deletes files in <dir>/config/ whose name
// begins with "config_" and is not among keep (§4.5 step 10).
func removeOrphanConfigFiles(dir string, keep map[string]bool) error {
	configDir := filepath.Join(dir, "config")
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "config_") {
			continue
		}
		if keep[name] {
			continue
		}
		if err := os.Remove(filepath.Join(configDir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// writeDBConfig writes <serverDir>/dbs/<name>/DB_CONFIG (§4.5 step 11).
func writeDBConfig(dir, name string, properties []string) error {
	dbDir := filepath.Join(dir, "dbs", name)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return err
	}
	content := strings.Join(properties, "\n")
	if content != "" {
		content += "\n"
	}
	return os.WriteFile(filepath.Join(dbDir, "DB_CONFIG"), []byte(content), 0o644)
}

// removeOrphanDBEnvs recursively removes dbs/<name> directories not in
// keep (§4.5 step 11).
func removeOrphanDBEnvs(dir string, keep map[string]bool) error {
	dbsDir := filepath.Join(dir, "dbs")
	entries, err := os.ReadDir(dbsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if keep[e.Name()] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dbsDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// removeServerDirectory clears a server's entire on-disk layout, used on
// destroy when the caller requested wipeDir or the server never
// completed its first load (§12.4).
func removeServerDirectory(dir string) error {
	err := os.RemoveAll(dir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ensureLayoutDirs creates config/, dbs/, and distrib/ under dir.
func ensureLayoutDirs(dir string) error {
	for _, sub := range []string{"config", "dbs", "distrib"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return err
		}
	}
	return nil
}

// chownLayout recursively chowns config/, dbs/, and distrib/ to uid/gid
// (§4.5 step 12).
func chownLayout(dir string, uid, gid int) error {
	for _, sub := range []string{"config", "dbs", "distrib"} {
		root := filepath.Join(dir, sub)
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			return os.Chown(path, uid, gid)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
