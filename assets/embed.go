// Package assets embeds the default vocabulary catalog so the server runs
// without any files configured.
package assets

import (
	"embed"
)

//go:embed words.json levels.json
var FS embed.FS

func readFile(name string) ([]byte, error) {
	return FS.ReadFile(name)
}

// WordsJSON returns the embedded word list.
func WordsJSON() ([]byte, error) {
	return readFile("words.json")
}

// LevelsJSON returns the embedded level table, in progression order.
func LevelsJSON() ([]byte, error) {
	return readFile("levels.json")
}
