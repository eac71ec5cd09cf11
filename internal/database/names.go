package database

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/photo-sheet/internal/constants"
)

// CleanPresetName trims name and checks its length.
func CleanPresetName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" || utf8.RuneCountInString(name) > constants.MaxPresetNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// PresetKey returns the comparison key for a preset name: no diacritics,
// lowercase, single spaces. "Pas  Jiří" and "pas jiri" share a key.
func PresetKey(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, name)
	return strings.Join(strings.Fields(strings.ToLower(result)), " ")
}
