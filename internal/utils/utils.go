package utils

import (
	"os"
	"regexp"
	"strings"
)

var envPattern = regexp.MustCompile(`\${([^}]+)}`)

// EnvSubst replaces ${NAME} with the value of the environment variable NAME,
// or with the empty string when it is unset.
func EnvSubst(input string) string {
	return envPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := match[2 : len(match)-1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}

		return ""
	})
}

// SafeFileName replaces path separators so a layer name cannot escape the
// image directory. The names "." and ".." become "_".
func SafeFileName(name string) string {
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	if name == "." || name == ".." {
		return "_"
	}
	return name
}
