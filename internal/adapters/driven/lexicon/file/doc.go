// Package file provides the file-backed lexicon store. The store ships
// with an embedded default lexicon, supports a user-editable TOML
// override, and watches the override for edits so reloads take effect
// without restarting.
package file
