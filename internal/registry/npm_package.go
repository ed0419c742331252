package registry

import (
	"strings"
)

const (
	npmScopePrefixConstant      = "@"
	npmVersionSeparatorConstant = "@"
	npmFlagPrefixConstant       = "-"
)

var npmCommandWords = map[string]struct{}{
	"npm":        {},
	"install":    {},
	"i":          {},
	"-g":         {},
	"--global":   {},
	"--save":     {},
	"--save-dev": {},
}

// ExtractNpmPackage returns the package name installed by an npm install
// command, without any version suffix. Scoped names keep their scope.
func ExtractNpmPackage(installCommand string) (string, bool) {
	cleanedCommand := strings.NewReplacer(`"`, "", `'`, "").Replace(installCommand)
	fields := strings.Fields(cleanedCommand)
	if len(fields) < 2 || fields[0] != "npm" {
		return "", false
	}
	if fields[1] != "install" && fields[1] != "i" {
		return "", false
	}

	index := 0
	for index < len(fields) {
		_, isCommandWord := npmCommandWords[fields[index]]
		if !isCommandWord && !strings.HasPrefix(fields[index], npmFlagPrefixConstant) {
			break
		}
		index++
	}
	if index >= len(fields) {
		return "", false
	}

	packageSpecifier := fields[index]
	if strings.HasPrefix(packageSpecifier, npmScopePrefixConstant) {
		versionIndex := strings.LastIndex(packageSpecifier, npmVersionSeparatorConstant)
		if versionIndex > 0 {
			return packageSpecifier[:versionIndex], true
		}
		return packageSpecifier, true
	}
	packageName, _, _ := strings.Cut(packageSpecifier, npmVersionSeparatorConstant)
	if len(packageName) == 0 {
		return "", false
	}
	return packageName, true
}
