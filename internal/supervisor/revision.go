package supervisor

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RevisionRecord identifies a descriptor's provenance (§3, §6).
type RevisionRecord struct {
	Application string
	UUID        string
	Revision    int64
}

// writeRevisionFile writes <serverDir>/revision in the format of §6.
func writeRevisionFile(dir string, rec RevisionRecord) error {
	var b strings.Builder
	fmt.Fprintf(&b, "#\n# This server belongs to the application '%s'\n#\n", rec.Application)
	fmt.Fprintf(&b, "uuid: %s\n", rec.UUID)
	fmt.Fprintf(&b, "revision: %d\n", rec.Revision)
	return os.WriteFile(filepath.Join(dir, "revision"), []byte(b.String()), 0o644)
}

// readRevisionFile parses <serverDir>/revision, used to satisfy replica
// revision checks when no in-memory descriptor is loaded (§6, §12.2).
func readRevisionFile(dir string) (*RevisionRecord, error) {
	f, err := os.Open(filepath.Join(dir, "revision"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rec := &RevisionRecord{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "uuid:"):
			rec.UUID = strings.TrimSpace(strings.TrimPrefix(line, "uuid:"))
		case strings.HasPrefix(line, "revision:"):
			n, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "revision:")), 10, 64)
			if err == nil {
				rec.Revision = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

// checkRevisionLocked validates (uuid, revision) against the current
// descriptor, falling back to the on-disk revision record when no
// descriptor is loaded (§6, §12.2). A Master replica always passes.
// Must be called with mu held.
func (s *Supervisor) checkRevisionLocked(uuid string, revision int64, replicaName string) error {
	if s.registrySession != nil && s.registrySession.IsMaster(replicaName) {
		return nil
	}

	var expectedUUID string
	var expectedRev int64

	if s.descriptor != nil {
		expectedUUID, expectedRev = s.descriptor.UUID, s.descriptor.Revision
	} else if s.nodeCfg != nil {
		rec, err := readRevisionFile(filepath.Join(s.nodeCfg.ServersDir, s.id))
		if err != nil {
			// No recorded revision: nothing to conflict with yet.
			return nil
		}
		expectedUUID, expectedRev = rec.UUID, rec.Revision
	} else {
		return nil
	}

	if expectedUUID != uuid || expectedRev != revision {
		return &RevisionMismatchError{
			ServerID:     s.id,
			ExpectedUUID: expectedUUID,
			ExpectedRev:  expectedRev,
			GotUUID:      uuid,
			GotRev:       revision,
		}
	}
	return nil
}
