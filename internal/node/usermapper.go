package node

import (
	"os/user"

	"github.com/gridnode/supervisor/internal/supervisor"
)

// OSUserMapper maps a descriptor's logical user name directly to an OS
// account, validating it exists in the local password database.
type OSUserMapper struct{}

var _ supervisor.UserAccountMapper = OSUserMapper{}

// Map validates name against the local password database and returns it
// unchanged; a node that needs session-to-OS-account translation (e.g. a
// directory-backed mapping) can substitute a different UserAccountMapper.
func (OSUserMapper) Map(name string) (string, error) {
	if _, err := user.Lookup(name); err != nil {
		return "", err
	}
	return name, nil
}
