// Package registry loads the catalog of external CLI tools and their install
// commands from YAML and turns entries into upgrade.InstallSpec values.
package registry
