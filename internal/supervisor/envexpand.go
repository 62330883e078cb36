package supervisor

import (
	"os"
	"strings"
)

// expandEnvValue substitutes host environment variables inside value
// using the platform-appropriate grammar (§9 design note): "%NAME%" on
// Windows, "$NAME"/"${NAME}" elsewhere. Unknown variables expand to the
// empty string; an unterminated token is left as a literal tail.
func expandEnvValue(value string, goos string, lookup func(string) (string, bool)) string {
	if goos == "windows" {
		return expandPercent(value, lookup)
	}
	return expandDollar(value, lookup)
}

func expandPercent(value string, lookup func(string) (string, bool)) string {
	var b strings.Builder
	i := 0
	for i < len(value) {
		if value[i] != '%' {
			b.WriteByte(value[i])
			i++
			continue
		}
		end := strings.IndexByte(value[i+1:], '%')
		if end < 0 {
			b.WriteString(value[i:])
			break
		}
		name := value[i+1 : i+1+end]
		if v, ok := lookup(name); ok {
			b.WriteString(v)
		}
		i = i + 1 + end + 1
	}
	return b.String()
}

func expandDollar(value string, lookup func(string) (string, bool)) string {
	var b strings.Builder
	i := 0
	for i < len(value) {
		if value[i] != '$' {
			b.WriteByte(value[i])
			i++
			continue
		}
		if i+1 < len(value) && value[i+1] == '{' {
			end := strings.IndexByte(value[i+2:], '}')
			if end < 0 {
				b.WriteString(value[i:])
				break
			}
			name := value[i+2 : i+2+end]
			if v, ok := lookup(name); ok {
				b.WriteString(v)
			}
			i = i + 2 + end + 1
			continue
		}
		j := i + 1
		for j < len(value) && isEnvNameByte(value[j]) {
			j++
		}
		if j == i+1 {
			// Bare '$' with no following identifier char: literal.
			b.WriteByte('$')
			i++
			continue
		}
		name := value[i+1 : j]
		if v, ok := lookup(name); ok {
			b.WriteString(v)
		}
		i = j
	}
	return b.String()
}

func isEnvNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// osLookupEnv adapts os.LookupEnv to the lookup signature used above.
func osLookupEnv(name string) (string, bool) {
	return os.LookupEnv(name)
}

// expandEnvEntries expands every "KEY=VALUE" entry's VALUE half using the
// host environment, leaving entries without "=" untouched.
func expandEnvEntries(entries []string, goos string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		idx := strings.IndexByte(e, '=')
		if idx < 0 {
			out[i] = e
			continue
		}
		key, val := e[:idx], e[idx+1:]
		out[i] = key + "=" + expandEnvValue(val, goos, osLookupEnv)
	}
	return out
}
