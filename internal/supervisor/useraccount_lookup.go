package supervisor

import (
	"os/user"
	"strconv"
)

// lookupUidGid resolves an OS account name to (uid, gid) via the
// standard password database (§4.5 step 4). changed is false when the
// lookup fails, so callers fall back to leaving ownership untouched
// rather than failing the whole update for a cosmetic chown.
func lookupUidGid(name string) (uid, gid int, changed bool) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, 0, false
	}
	uidN, err1 := strconv.Atoi(u.Uid)
	gidN, err2 := strconv.Atoi(u.Gid)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return uidN, gidN, true
}
